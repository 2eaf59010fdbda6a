package mocks

//go:generate mockgen -destination=./mock_marketdata.go -package=mocks github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider MarketDataSource,Provider
//go:generate mockgen -destination=./mock_execution.go -package=mocks github.com/rxtech-lab/argo-autotrader/internal/execution PriceQuote,OrderGateway
//go:generate mockgen -destination=./mock_forecast.go -package=mocks github.com/rxtech-lab/argo-autotrader/internal/forecast Source
//go:generate mockgen -destination=./mock_observer.go -package=mocks github.com/rxtech-lab/argo-autotrader/internal/recorder Observer

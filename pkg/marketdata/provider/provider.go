package provider

import (
	"context"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderCSV     ProviderType = "csv"
)

type OnDownloadProgress = func(current float64, total float64, message string)

// MarketDataSource returns the most recent bars of a symbol.
type MarketDataSource interface {
	// FetchBars returns up to limit of the most recent bars, oldest first.
	// example:
	// FetchBars(ctx, "BTCUSDT", "1h", 100)
	FetchBars(ctx context.Context, symbol, timeframe string, limit int) (types.Series, error)
}

// Downloader archives a historical range of bars through a writer.
type Downloader interface {
	// ConfigWriter configures the writer for the provider
	ConfigWriter(writer writer.MarketDataWriter)
	// Download downloads the bars for the given symbol and date range and returns
	// the output path of the writer. The context can be used to cancel the download.
	Download(ctx context.Context, symbol string, startDate time.Time, endDate time.Time, timeframe Timeframe, onProgress OnDownloadProgress) (path string, err error)
}

// Provider is a market data source that can also archive history.
type Provider interface {
	MarketDataSource
	Downloader
}

// Config selects and configures a provider.
type Config struct {
	Type          ProviderType
	PolygonApiKey string
	CSVPath       string
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(config Config) (Provider, error) {
	switch config.Type {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		return NewPolygonClient(config.PolygonApiKey)
	case ProviderCSV:
		return NewCSVSource(config.CSVPath)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", config.Type)
	}
}

// normalizeSymbol turns "BTC/USDT" into "BTCUSDT".
func normalizeSymbol(symbol string) string {
	return symbolReplacer.Replace(strings.ToUpper(strings.TrimSpace(symbol)))
}

var symbolReplacer = strings.NewReplacer("/", "", "-", "")

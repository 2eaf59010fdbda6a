package main

import (
	"context"
	"strings"

	"github.com/rxtech-lab/argo-autotrader/internal/config"
	"github.com/rxtech-lab/argo-autotrader/internal/execution"
	"github.com/rxtech-lab/argo-autotrader/internal/forecast"
	"github.com/rxtech-lab/argo-autotrader/internal/indicator"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/loop"
	"github.com/rxtech-lab/argo-autotrader/internal/metrics"
	"github.com/rxtech-lab/argo-autotrader/internal/recorder"
	"github.com/rxtech-lab/argo-autotrader/internal/strategy"
	tradingprovider "github.com/rxtech-lab/argo-autotrader/internal/trading/provider"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// trader is a fully wired autotrader instance.
type trader struct {
	cfg      *config.Config
	log      *logger.Logger
	mode     types.ExecutionMode
	ledger   *ledger.Ledger
	gateway  *tradingprovider.BinanceGateway
	engine   *execution.Engine
	loop     *loop.Loop
	server   *metrics.Server
	recorder recorder.Recorder
	forecast forecast.Source
	closers  []func() error
}

// buildTrader wires every component the configuration selects. The metrics
// server is built but not started.
func buildTrader(cfg *config.Config, log *logger.Logger, scheduler loop.Scheduler) (_ *trader, err error) {
	t := &trader{cfg: cfg, log: log}

	defer func() {
		if err != nil {
			multierr.AppendInto(&err, t.Close())
		}
	}()

	mode, err := cfg.ExecutionMode()
	if err != nil {
		return nil, err
	}

	t.ledger, err = ledger.NewLedger(cfg.Trading.PaperBalance)
	if err != nil {
		return nil, err
	}

	source, err := provider.NewMarketDataProvider(cfg.ProviderConfig())
	if err != nil {
		return nil, err
	}

	t.mode = mode

	gateway, err := buildGateway(cfg, mode)
	if err != nil {
		return nil, err
	}

	t.gateway = gateway

	if gateway != nil {
		log.Info("Exchange gateway ready",
			zap.Bool("testnet", cfg.Binance.Testnet),
			zap.Stringer("account", binanceCredentials(cfg)))
	}

	quote := buildQuote(cfg, source, gateway)

	t.recorder, err = buildRecorder(cfg, log)
	if err != nil {
		return nil, err
	}

	t.closers = append(t.closers, t.recorder.Close)

	observers := []recorder.Observer{t.recorder}

	var m *metrics.Metrics

	var hub *metrics.Hub

	if cfg.Server.Enabled {
		m = metrics.NewMetrics()
		hub = metrics.NewHub(log)
		observers = append(observers, metrics.NewObserver(m, hub))
	}

	observer := recorder.NewMulti(observers...)

	var orderGateway execution.OrderGateway
	if gateway != nil {
		orderGateway = gateway
	}

	t.engine, err = execution.NewEngine(mode, t.ledger, quote, orderGateway,
		execution.WithObserver(observer),
		execution.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	t.forecast, err = buildForecast(cfg)
	if err != nil {
		return nil, err
	}

	t.loop, err = loop.New(cfg.LoopConfig(), loop.Dependencies{
		Source:    source,
		Pipeline:  indicator.NewDefaultPipeline(),
		Policy:    strategy.NewDefaultPolicy(),
		Engine:    t.engine,
		Ledger:    t.ledger,
		Forecast:  t.forecast,
		Observer:  observer,
		Logger:    log,
		Scheduler: scheduler,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Server.Enabled {
		t.server = metrics.NewServer(cfg.Server.Addr, m, hub, t.loop, log)
	}

	log.Info("Autotrader configured",
		zap.String("symbol", cfg.Trading.Symbol),
		zap.String("mode", string(mode)),
		zap.String("provider", cfg.Data.Provider),
		zap.String("recorder", cfg.Recorder.Kind),
		zap.Bool("forecast", cfg.Model.Enabled),
	)

	return t, nil
}

// buildGateway returns the Binance gateway when credentials are present or
// live mode requires one. Simulated runs without keys get nil.
func buildGateway(cfg *config.Config, mode types.ExecutionMode) (*tradingprovider.BinanceGateway, error) {
	hasKeys := cfg.Binance.APIKey != "" && cfg.Binance.APISecret != ""

	if mode != types.ExecutionModeLive && (!cfg.Binance.Enabled || !hasKeys) {
		return nil, nil
	}

	return tradingprovider.NewGateway(tradingprovider.ProviderForTestnet(cfg.Binance.Testnet), binanceCredentials(cfg))
}

func binanceCredentials(cfg *config.Config) tradingprovider.BinanceProviderConfig {
	return tradingprovider.BinanceProviderConfig{
		ApiKey:    cfg.Binance.APIKey,
		SecretKey: cfg.Binance.APISecret,
		BaseURL:   cfg.Binance.BaseURL,
	}
}

// buildQuote prefers the exchange ticker, then a source that quotes itself,
// then the close of the latest bar.
func buildQuote(cfg *config.Config, source provider.MarketDataSource, gateway *tradingprovider.BinanceGateway) execution.PriceQuote {
	if gateway != nil {
		return gateway
	}

	if quote, ok := source.(execution.PriceQuote); ok {
		return quote
	}

	return tradingprovider.NewLastCloseQuote(source, cfg.Data.Timeframe)
}

func buildRecorder(cfg *config.Config, log *logger.Logger) (recorder.Recorder, error) {
	switch recorder.Kind(cfg.Recorder.Kind) {
	case recorder.KindSQLite:
		return recorder.NewSQLite(cfg.Recorder.Path, log)
	case recorder.KindParquet:
		return recorder.NewParquet(cfg.Recorder.Path, log)
	case recorder.KindNoop, "":
		return recorder.NewNoop(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported recorder: %s", cfg.Recorder.Kind)
	}
}

func buildForecast(cfg *config.Config) (forecast.Source, error) {
	if !cfg.Model.Enabled {
		return forecast.Noop{}, nil
	}

	source, err := forecast.Open(cfg.Model.ModelPath, cfg.Model.LibraryPath, cfg.Model.Lookback)
	if err != nil {
		return nil, err
	}

	return source, nil
}

// Run starts the metrics server when enabled and blocks in the loop until ctx
// is cancelled. The server stops with ctx.
func (t *trader) Run(ctx context.Context) error {
	if err := t.preflight(ctx); err != nil {
		return err
	}

	if t.server != nil {
		if err := t.server.Start(ctx); err != nil {
			return err
		}
	}

	return t.loop.Run(ctx)
}

// preflight checks the exchange account before the first tick. Only live
// mode treats an unreachable exchange as fatal.
func (t *trader) preflight(ctx context.Context) error {
	if t.gateway == nil {
		return nil
	}

	if err := t.gateway.CheckConnection(ctx); err != nil {
		if t.mode == types.ExecutionModeLive {
			return err
		}

		t.log.Warn("Exchange unreachable, quotes may fail", zap.Error(err))

		return nil
	}

	asset := quoteAsset(t.cfg.Trading.Symbol)

	free, err := t.gateway.FreeBalance(ctx, asset)
	if err != nil {
		t.log.Warn("Failed to read exchange balance", zap.String("asset", asset), zap.Error(err))

		return nil
	}

	t.log.Info("Exchange account ready",
		zap.String("asset", asset),
		zap.Float64("free", free),
		zap.Float64("paper_balance", t.ledger.Balance()))

	return nil
}

var quoteAssets = []string{"USDT", "USDC", "FDUSD", "BUSD", "BTC", "ETH", "BNB"}

// quoteAsset returns the quote currency of a spot symbol such as BTCUSDT.
func quoteAsset(symbol string) string {
	for _, quote := range quoteAssets {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return quote
		}
	}

	return symbol
}

// Close releases the recorder and the model session.
func (t *trader) Close() error {
	var err error

	if closer, ok := t.forecast.(interface{ Close() error }); ok {
		multierr.AppendInto(&err, closer.Close())
	}

	for _, closer := range t.closers {
		multierr.AppendInto(&err, closer())
	}

	t.closers = nil

	return err
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-autotrader/e2e/binance/mockserver"
	"github.com/rxtech-lab/argo-autotrader/internal/config"
	"github.com/rxtech-lab/argo-autotrader/internal/forecast"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/loop"
	"github.com/rxtech-lab/argo-autotrader/internal/recorder"
	tradingprovider "github.com/rxtech-lab/argo-autotrader/internal/trading/provider"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/internal/version"
	"github.com/rxtech-lab/argo-autotrader/mocks"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AutotraderTestSuite struct {
	suite.Suite
	dir string
}

func TestAutotraderSuite(t *testing.T) {
	suite.Run(t, new(AutotraderTestSuite))
}

func (suite *AutotraderTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

// writeBars writes closes as an hourly BTCUSDT csv file.
func (suite *AutotraderTestSuite) writeBars(closes []float64) string {
	var b strings.Builder

	b.WriteString("time,symbol,open,high,low,close,volume\n")

	for _, bar := range mocks.SeriesFromCloses("BTCUSDT", closes) {
		fmt.Fprintf(&b, "%s,%s,%g,%g,%g,%g,%g\n",
			bar.Time.Format(time.RFC3339), bar.Symbol, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}

	path := filepath.Join(suite.dir, "bars.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(b.String()), 0o644))

	return path
}

func (suite *AutotraderTestSuite) csvConfig(closes []float64) *config.Config {
	cfg := config.Default()
	cfg.Data.Provider = string(provider.ProviderCSV)
	cfg.Data.CSVPath = suite.writeBars(closes)
	cfg.Data.DataDir = filepath.Join(suite.dir, "market")
	cfg.Logging.LogDir = filepath.Join(suite.dir, "logs")

	return cfg
}

func (suite *AutotraderTestSuite) runApp(args ...string) (string, error) {
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out

	err := app.Run(context.Background(), append([]string{"autotrader", "--env-file", filepath.Join(suite.dir, "absent.env")}, args...))

	return out.String(), err
}

func (suite *AutotraderTestSuite) TestVersionCommand() {
	out, err := suite.runApp("version")
	suite.Require().NoError(err)
	suite.Equal(version.GetVersion()+"\n", out)
}

func (suite *AutotraderTestSuite) TestConfigInitAndCheck() {
	path := filepath.Join(suite.dir, "config", "user_config.yaml")

	out, err := suite.runApp("--config", path, "config", "init")
	suite.Require().NoError(err)
	suite.Contains(out, path)
	suite.FileExists(path)

	_, err = suite.runApp("--config", path, "config", "init")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = suite.runApp("--config", path, "config", "init", "--force")
	suite.NoError(err)

	out, err = suite.runApp("--config", path, "config", "check")
	suite.Require().NoError(err)
	suite.Contains(out, "BTCUSDT")
}

func (suite *AutotraderTestSuite) TestConfigCheckRejectsInvalidFile() {
	path := filepath.Join(suite.dir, "bad.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("trading:\n  risk_fraction: 3\n"), 0o600))

	_, err := suite.runApp("--config", path, "config", "check")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *AutotraderTestSuite) TestSchemaCommands() {
	out, err := suite.runApp("schema")
	suite.Require().NoError(err)
	suite.Contains(out, "risk_fraction")

	out, err = suite.runApp("schema", "download", "polygon")
	suite.Require().NoError(err)
	suite.Contains(out, "apiKey")

	out, err = suite.runApp("schema", "trading", "binance-paper")
	suite.Require().NoError(err)
	suite.Contains(out, "secretKey")

	_, err = suite.runApp("schema", "trading", "kraken")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

func (suite *AutotraderTestSuite) TestProvidersCommand() {
	out, err := suite.runApp("providers")
	suite.Require().NoError(err)
	suite.Contains(out, "polygon")
	suite.Contains(out, "csv")
	suite.Contains(out, "binance-paper")
	suite.Contains(out, "binance-live")
}

func (suite *AutotraderTestSuite) TestBuildGateway() {
	cfg := config.Default()

	gateway, err := buildGateway(cfg, types.ExecutionModeSimulated)
	suite.Require().NoError(err)
	suite.Nil(gateway)

	cfg.Binance.APIKey = "key"
	cfg.Binance.APISecret = "secret"

	gateway, err = buildGateway(cfg, types.ExecutionModeSimulated)
	suite.Require().NoError(err)
	suite.NotNil(gateway)

	cfg.Binance.APISecret = ""

	_, err = buildGateway(cfg, types.ExecutionModeLive)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *AutotraderTestSuite) TestBuildQuote() {
	cfg := config.Default()
	ctrl := gomock.NewController(suite.T())

	quote := buildQuote(cfg, mocks.NewMockMarketDataSource(ctrl), nil)
	suite.IsType(&tradingprovider.LastCloseQuote{}, quote)

	csvSource, err := provider.NewCSVSource(suite.writeBars(mocks.FlatCloses(3, 100)))
	suite.Require().NoError(err)

	quote = buildQuote(cfg, csvSource, nil)
	suite.Same(csvSource, quote)
}

func (suite *AutotraderTestSuite) TestBuildRecorder() {
	cfg := config.Default()

	rec, err := buildRecorder(cfg, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.IsType(&recorder.Noop{}, rec)

	cfg.Recorder.Kind = string(recorder.KindSQLite)
	cfg.Recorder.Path = filepath.Join(suite.dir, "journal.db")

	rec, err = buildRecorder(cfg, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.IsType(&recorder.SQLite{}, rec)
	suite.NoError(rec.Close())

	cfg.Recorder.Kind = "kafka"

	_, err = buildRecorder(cfg, logger.NewNopLogger())
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *AutotraderTestSuite) TestBuildForecast() {
	cfg := config.Default()

	source, err := buildForecast(cfg)
	suite.Require().NoError(err)
	suite.Equal(forecast.Noop{}, source)

	cfg.Model.Enabled = true
	cfg.Model.ModelPath = filepath.Join(suite.dir, "missing.onnx")

	_, err = buildForecast(cfg)
	suite.True(errors.HasCode(err, errors.ErrCodeModelNotLoaded))
}

func (suite *AutotraderTestSuite) TestOnceExecutesFromCSV() {
	cfg := suite.csvConfig(mocks.ReboundCloses(60, 200))
	cfg.Recorder.Kind = string(recorder.KindSQLite)
	cfg.Recorder.Path = filepath.Join(suite.dir, "journal.db")

	t, err := buildTrader(cfg, logger.NewNopLogger(), loop.NewManualScheduler(0))
	suite.Require().NoError(err)

	defer func() { suite.NoError(t.Close()) }()

	report, err := runOnce(context.Background(), t)
	suite.Require().NoError(err)

	suite.Equal(loop.OutcomeExecuted, report.Outcome)
	suite.Equal(types.SignalBuy, report.Signal)
	suite.Equal(60, report.Bars)
	suite.InDelta(145.0, report.Price, 1e-9)
	suite.InDelta(9000.0, report.Ledger.Balance, 1e-6)
	suite.True(report.Record.IsSome())

	journal, ok := t.recorder.(*recorder.SQLite)
	suite.Require().True(ok)

	records, err := journal.Executions(context.Background(), 10)
	suite.Require().NoError(err)
	suite.Len(records, 1)
}

func (suite *AutotraderTestSuite) TestOnceNeutralOnFlatMarket() {
	cfg := suite.csvConfig(mocks.FlatCloses(60, 100))

	t, err := buildTrader(cfg, logger.NewNopLogger(), loop.NewManualScheduler(0))
	suite.Require().NoError(err)

	defer func() { suite.NoError(t.Close()) }()

	report, err := runOnce(context.Background(), t)
	suite.Require().NoError(err)
	suite.Equal(loop.OutcomeNeutral, report.Outcome)
	suite.InDelta(10000.0, report.Ledger.Balance, 1e-9)
}

func (suite *AutotraderTestSuite) TestBuildTraderWithServer() {
	cfg := suite.csvConfig(mocks.FlatCloses(60, 100))
	cfg.Server.Enabled = true
	cfg.Server.Addr = "127.0.0.1:0"

	t, err := buildTrader(cfg, logger.NewNopLogger(), loop.NewManualScheduler(0))
	suite.Require().NoError(err)
	suite.NotNil(t.server)
	suite.NoError(t.Close())
}

func (suite *AutotraderTestSuite) TestBuildTraderRejectsMissingModel() {
	cfg := suite.csvConfig(mocks.FlatCloses(60, 100))
	cfg.Model.Enabled = true
	cfg.Model.ModelPath = filepath.Join(suite.dir, "missing.onnx")

	_, err := buildTrader(cfg, logger.NewNopLogger(), nil)
	suite.True(errors.HasCode(err, errors.ErrCodeModelNotLoaded))
}

func (suite *AutotraderTestSuite) TestFetchFromCSV() {
	cfg := suite.csvConfig(mocks.FlatCloses(10, 100))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	paths, err := fetch(context.Background(), fetchClientConfig(cfg, "", ""), fetchRequest{
		Symbols:  fetchSymbols(cfg, "", false),
		Start:    start,
		End:      start.Add(5 * time.Hour),
		Interval: "1h",
	}, &bytes.Buffer{})
	suite.Require().NoError(err)
	suite.Require().Len(paths, 1)
	suite.FileExists(paths[0])
	suite.Equal(filepath.Join(cfg.Data.DataDir, "BTCUSDT_2024-01-01_2024-01-01_1h.parquet"), paths[0])
}

func (suite *AutotraderTestSuite) TestFetchHelpers() {
	cfg := config.Default()

	suite.Equal([]string{"BTCUSDT"}, fetchSymbols(cfg, "", false))
	suite.Equal([]string{"ETHUSDT"}, fetchSymbols(cfg, "ethusdt", false))
	suite.Equal(cfg.Data.Pairs, fetchSymbols(cfg, "ethusdt", true))

	clientConfig := fetchClientConfig(cfg, "polygon", "out")
	suite.Equal(provider.ProviderPolygon, clientConfig.ProviderType)
	suite.Equal(marketdata.WriterDuckDB, clientConfig.WriterType)
	suite.Equal("out", clientConfig.DataPath)

	_, err := fetch(context.Background(), fetchClientConfig(cfg, "", ""), fetchRequest{Interval: "2d"}, &bytes.Buffer{})
	suite.Error(err)
}

func (suite *AutotraderTestSuite) TestPreflightReadsExchangeBalance() {
	exchange := mockserver.New(map[string]float64{"USDT": 2500})
	suite.Require().NoError(exchange.Start())

	defer func() { suite.NoError(exchange.Stop()) }()

	cfg := suite.csvConfig(mocks.FlatCloses(60, 100))
	cfg.Binance.APIKey = "key"
	cfg.Binance.APISecret = "secret"
	cfg.Binance.BaseURL = exchange.BaseURL()

	t, err := buildTrader(cfg, logger.NewNopLogger(), loop.NewManualScheduler(0))
	suite.Require().NoError(err)

	defer func() { suite.NoError(t.Close()) }()

	suite.Require().NotNil(t.gateway)
	suite.NoError(t.preflight(context.Background()))
}

func (suite *AutotraderTestSuite) TestPreflightFailsLiveWithoutExchange() {
	exchange := mockserver.New(nil)
	suite.Require().NoError(exchange.Start())

	baseURL := exchange.BaseURL()
	suite.Require().NoError(exchange.Stop())

	cfg := suite.csvConfig(mocks.FlatCloses(60, 100))
	cfg.Binance.APIKey = "key"
	cfg.Binance.APISecret = "secret"
	cfg.Binance.BaseURL = baseURL

	t, err := buildTrader(cfg, logger.NewNopLogger(), loop.NewManualScheduler(0))
	suite.Require().NoError(err)

	defer func() { suite.NoError(t.Close()) }()

	// simulated runs only warn
	suite.NoError(t.preflight(context.Background()))

	t.mode = types.ExecutionModeLive
	suite.True(errors.HasCode(t.preflight(context.Background()), errors.ErrCodeLiveOrderFailed))
}

func (suite *AutotraderTestSuite) TestQuoteAsset() {
	suite.Equal("USDT", quoteAsset("BTCUSDT"))
	suite.Equal("BTC", quoteAsset("ETHBTC"))
	suite.Equal("FDUSD", quoteAsset("SOLFDUSD"))
	suite.Equal("XYZ", quoteAsset("XYZ"))
}

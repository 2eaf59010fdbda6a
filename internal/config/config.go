package config

import (
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/forecast"
	"github.com/rxtech-lab/argo-autotrader/internal/loop"
	"github.com/rxtech-lab/argo-autotrader/internal/recorder"
	"github.com/rxtech-lab/argo-autotrader/internal/version"
)

// DefaultPath is where the CLI looks for the config file.
const DefaultPath = "config/user_config.yaml"

// Config is the full configuration of an autotrader instance.
type Config struct {
	// Version is the binary version the file was written for
	Version  string   `yaml:"version" json:"version" jsonschema:"description=Version the config file was written for"`
	Binance  Binance  `yaml:"binance" json:"binance"`
	Polygon  Polygon  `yaml:"polygon" json:"polygon"`
	Model    Model    `yaml:"model" json:"model"`
	Trading  Trading  `yaml:"trading" json:"trading"`
	Data     Data     `yaml:"data" json:"data"`
	Logging  Logging  `yaml:"logging" json:"logging"`
	Recorder Recorder `yaml:"recorder" json:"recorder"`
	Server   Server   `yaml:"server" json:"server"`
}

// Binance holds exchange credentials. Market data does not need them; live
// trading does.
type Binance struct {
	APIKey    string `yaml:"api_key" json:"api_key" jsonschema:"description=Binance API key"`
	APISecret string `yaml:"api_secret" json:"api_secret" jsonschema:"description=Binance API secret"`
	Testnet   bool   `yaml:"testnet" json:"testnet" jsonschema:"description=Route orders to the Binance testnet,default=true"`
	Enabled   bool   `yaml:"enabled" json:"enabled" jsonschema:"description=Allow Binance order and price endpoints,default=true"`
	BaseURL   string `yaml:"base_url" json:"base_url" jsonschema:"description=Override of the REST endpoint" validate:"omitempty,url"`
}

type Polygon struct {
	APIKey string `yaml:"api_key" json:"api_key" jsonschema:"description=Polygon.io API key"`
}

// Model configures the optional ONNX price forecast.
type Model struct {
	Enabled     bool   `yaml:"enabled" json:"enabled" jsonschema:"description=Blend the model forecast into buy signals"`
	ModelPath   string `yaml:"model_path" json:"model_path" jsonschema:"description=Path of the exported ONNX model" validate:"required_if=Enabled true"`
	LibraryPath string `yaml:"library_path" json:"library_path" jsonschema:"description=Path of the onnxruntime shared library"`
	Lookback    int    `yaml:"lookback" json:"lookback" jsonschema:"description=Closes per prediction window,default=60" validate:"gt=0"`
}

// Trading configures execution and sizing. The loss and volatility limits
// are validated and reported but not enforced by the loop.
type Trading struct {
	Mode              string  `yaml:"mode" json:"mode" jsonschema:"description=Execution mode,enum=simulated,enum=paper,enum=live,default=simulated" validate:"required,oneof=simulated paper live"`
	Symbol            string  `yaml:"symbol" json:"symbol" jsonschema:"description=Traded symbol,default=BTCUSDT" validate:"required"`
	PaperBalance      float64 `yaml:"paper_balance" json:"paper_balance" jsonschema:"description=Starting cash of the simulated ledger,default=10000" validate:"gt=0"`
	RiskFraction      float64 `yaml:"risk_fraction" json:"risk_fraction" jsonschema:"description=Fraction of the balance committed per order,default=0.1" validate:"gt=0,lte=1"`
	MaxDailyLoss      float64 `yaml:"max_daily_loss" json:"max_daily_loss" validate:"gte=0,lte=1"`
	StopLossPercent   float64 `yaml:"stop_loss_percent" json:"stop_loss_percent" validate:"gte=0"`
	TakeProfitPercent float64 `yaml:"take_profit_percent" json:"take_profit_percent" validate:"gte=0"`
	MinVolatility     float64 `yaml:"min_volatility" json:"min_volatility" validate:"gte=0"`
	MaxVolatility     float64 `yaml:"max_volatility" json:"max_volatility" validate:"gtefield=MinVolatility"`
}

// Data configures market data ingestion and the loop cadence.
type Data struct {
	Provider     string        `yaml:"provider" json:"provider" jsonschema:"description=Market data provider,enum=binance,enum=polygon,enum=csv,default=binance" validate:"required,oneof=binance polygon csv"`
	CSVPath      string        `yaml:"csv_path" json:"csv_path" jsonschema:"description=Bar file replayed by the csv provider" validate:"required_if=Provider csv"`
	DataDir      string        `yaml:"data_dir" json:"data_dir" jsonschema:"description=Directory of downloaded parquet archives,default=data/market" validate:"required"`
	Timeframe    string        `yaml:"timeframe" json:"timeframe" jsonschema:"description=Bar interval,default=1h" validate:"required"`
	Limit        int           `yaml:"limit" json:"limit" jsonschema:"description=Bars fetched per iteration,default=100" validate:"gt=0"`
	Pairs        []string      `yaml:"pairs" json:"pairs" jsonschema:"description=Symbols available to the fetch command"`
	Schedule     string        `yaml:"schedule" json:"schedule" jsonschema:"description=Cron spec of the loop cadence,default=@every 60s" validate:"required"`
	Backoff      time.Duration `yaml:"backoff" json:"backoff" jsonschema:"description=Initial wait after a failed iteration" validate:"gt=0"`
	MaxBackoff   time.Duration `yaml:"max_backoff" json:"max_backoff" validate:"gtefield=Backoff"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" validate:"gt=0"`
	OrderTimeout time.Duration `yaml:"order_timeout" json:"order_timeout" validate:"gt=0"`
}

type Logging struct {
	Level       string `yaml:"level" json:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"oneof=debug info warn error"`
	LogDir      string `yaml:"log_dir" json:"log_dir" jsonschema:"default=data/logs"`
	MaxFileSize int64  `yaml:"max_file_size" json:"max_file_size" jsonschema:"description=Rotation threshold in bytes" validate:"gte=0"`
	BackupCount int    `yaml:"backup_count" json:"backup_count" validate:"gte=0"`
}

// Recorder selects where executions, errors and snapshots are journaled.
type Recorder struct {
	Kind string `yaml:"kind" json:"kind" jsonschema:"enum=noop,enum=sqlite,enum=parquet,default=noop" validate:"oneof=noop sqlite parquet"`
	Path string `yaml:"path" json:"path" jsonschema:"description=SQLite file or parquet directory" validate:"required_unless=Kind noop"`
}

// Server configures the metrics and status endpoint.
type Server struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr" jsonschema:"default=:9090" validate:"required_if=Enabled true"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: version.GetVersion(),
		Binance: Binance{
			Testnet: true,
			Enabled: true,
		},
		Model: Model{
			Enabled:  false,
			Lookback: forecast.DefaultLookback,
		},
		Trading: Trading{
			Mode:              "simulated",
			Symbol:            "BTCUSDT",
			PaperBalance:      10000,
			RiskFraction:      0.1,
			MaxDailyLoss:      0.05,
			StopLossPercent:   2.0,
			TakeProfitPercent: 5.0,
			MinVolatility:     0.5,
			MaxVolatility:     5.0,
		},
		Data: Data{
			Provider:  "binance",
			DataDir:   "data/market",
			Timeframe: "1h",
			Limit:     100,
			Pairs: []string{
				"BTCUSDT", "ETHUSDT", "BNBUSDT", "ADAUSDT",
				"DOGEUSDT", "XRPUSDT", "SOLUSDT", "MATICUSDT",
			},
			Schedule:     loop.DefaultSchedule,
			Backoff:      10 * time.Second,
			MaxBackoff:   5 * time.Minute,
			FetchTimeout: 30 * time.Second,
			OrderTimeout: 30 * time.Second,
		},
		Logging: Logging{
			Level:       "info",
			LogDir:      "data/logs",
			MaxFileSize: 10 * 1024 * 1024,
			BackupCount: 5,
		},
		Recorder: Recorder{
			Kind: string(recorder.KindNoop),
		},
		Server: Server{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

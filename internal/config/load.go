package config

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-autotrader/internal/indicator"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/loop"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/internal/version"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-autotrader/pkg/utils"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvBinanceAPIKey    = "BINANCE_API_KEY"
	EnvBinanceAPISecret = "BINANCE_API_SECRET"
	EnvBinanceTestnet   = "BINANCE_TESTNET"
	EnvPolygonAPIKey    = "POLYGON_API_KEY"
	EnvMode             = "AUTOTRADER_MODE"
	EnvSymbol           = "AUTOTRADER_SYMBOL"
)

// Load reads .env from the working directory and then path.
func Load(path string) (*Config, error) {
	return LoadWithEnvFile(path, ".env")
}

// LoadWithEnvFile loads envFile into the process environment, reads the YAML
// file at path over the defaults, applies environment overrides and
// validates the result. Missing files are not errors.
func LoadWithEnvFile(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load %s", envFile)
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	default:
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML into cfg. Keys absent from data keep their current
// values. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvBinanceAPIKey); ok {
		c.Binance.APIKey = v
	}

	if v, ok := os.LookupEnv(EnvBinanceAPISecret); ok {
		c.Binance.APISecret = v
	}

	if v, ok := os.LookupEnv(EnvBinanceTestnet); ok {
		testnet, err := cast.ToBoolE(v)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid %s", EnvBinanceTestnet)
		}

		c.Binance.Testnet = testnet
	}

	if v, ok := os.LookupEnv(EnvPolygonAPIKey); ok {
		c.Polygon.APIKey = v
	}

	if v, ok := os.LookupEnv(EnvMode); ok {
		c.Trading.Mode = v
	}

	if v, ok := os.LookupEnv(EnvSymbol); ok {
		c.Trading.Symbol = v
	}

	return nil
}

func (c *Config) normalize() {
	c.Trading.Mode = strings.ToLower(strings.TrimSpace(c.Trading.Mode))
	c.Trading.Symbol = strings.ToUpper(strings.TrimSpace(c.Trading.Symbol))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Data.Provider = strings.ToLower(strings.TrimSpace(c.Data.Provider))
}

// Validate checks field constraints and the rules that span sections. Every
// failure is an InvalidConfiguration error.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "incompatible config version", err)
	}

	if _, err := provider.ParseTimeframe(c.Data.Timeframe); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid data.timeframe", err)
	}

	if _, err := loop.NewCronScheduler(c.Data.Schedule); err != nil {
		return err
	}

	mode, err := types.ParseExecutionMode(c.Trading.Mode)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid trading.mode", err)
	}

	if mode == types.ExecutionModeLive {
		if !c.Binance.Enabled {
			return errors.New(errors.ErrCodeInvalidConfiguration, "live mode requires binance.enabled")
		}

		if c.Binance.APIKey == "" || c.Binance.APISecret == "" {
			return errors.New(errors.ErrCodeInvalidConfiguration, "live mode requires binance.api_key and binance.api_secret")
		}
	}

	if c.Data.Provider == string(provider.ProviderPolygon) && c.Polygon.APIKey == "" {
		return errors.New(errors.ErrCodeInvalidConfiguration, "polygon provider requires polygon.api_key")
	}

	warmup := indicator.NewDefaultPipeline().Warmup()
	if c.Data.Limit < warmup {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"data.limit %d is below the indicator warm-up of %d bars", c.Data.Limit, warmup)
	}

	if c.Model.Enabled && c.Data.Limit < c.Model.Lookback+warmup {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"data.limit %d leaves no forecast after a %d bar lookback and %d bar warm-up",
			c.Data.Limit, c.Model.Lookback, warmup)
	}

	return nil
}

// Save writes cfg as YAML to path, creating parent directories. The file may
// hold credentials and is written owner-only.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to create %s", dir)
		}
	}

	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode config", err)
	}

	if err := encoder.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode config", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to write %s", path)
	}

	return nil
}

// Schema returns the JSON schema of Config.
func Schema() (string, error) {
	return utils.GetSchemaFromConfig(Config{})
}

// ExecutionMode returns the parsed trading mode.
func (c *Config) ExecutionMode() (types.ExecutionMode, error) {
	mode, err := types.ParseExecutionMode(c.Trading.Mode)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid trading.mode", err)
	}

	return mode, nil
}

// LoggerOptions maps the logging section to logger options.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:       c.Logging.Level,
		Dir:         c.Logging.LogDir,
		MaxFileSize: c.Logging.MaxFileSize,
		BackupCount: c.Logging.BackupCount,
	}
}

// LoopConfig maps the trading and data sections to loop parameters.
func (c *Config) LoopConfig() loop.Config {
	cfg := loop.DefaultConfig(c.Trading.Symbol)
	cfg.Timeframe = c.Data.Timeframe
	cfg.Limit = c.Data.Limit
	cfg.RiskFraction = c.Trading.RiskFraction
	cfg.Schedule = c.Data.Schedule
	cfg.Backoff = c.Data.Backoff
	cfg.MaxBackoff = c.Data.MaxBackoff
	cfg.FetchTimeout = c.Data.FetchTimeout
	cfg.ForecastTimeout = c.Data.FetchTimeout
	cfg.ExecuteTimeout = c.Data.OrderTimeout

	return cfg
}

// ProviderConfig returns the market data provider selection.
func (c *Config) ProviderConfig() provider.Config {
	return provider.Config{
		Type:          provider.ProviderType(c.Data.Provider),
		PolygonApiKey: c.Polygon.APIKey,
		CSVPath:       c.Data.CSVPath,
	}
}

package marketdata

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider"
)

// BaseDownloadConfig contains common fields for all download configurations.
type BaseDownloadConfig struct {
	Ticker    string `json:"ticker" jsonschema:"title=Ticker,description=The trading symbol to download data for (e.g. SPY or BTCUSDT),required" validate:"required"`
	StartDate string `json:"startDate" jsonschema:"title=Start Date,description=Start date in RFC3339,format=date-time,required" validate:"required"`
	EndDate   string `json:"endDate" jsonschema:"title=End Date,description=End date in RFC3339,format=date-time,required" validate:"required"`
	Interval  string `json:"interval" jsonschema:"title=Interval,description=Bar interval,required,enum=1m,enum=3m,enum=5m,enum=15m,enum=30m,enum=1h,enum=2h,enum=4h,enum=6h,enum=8h,enum=12h,enum=1d,enum=3d,enum=1w,enum=1M" validate:"required,oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
}

// PolygonDownloadConfig contains configuration for downloading from Polygon.io.
type PolygonDownloadConfig struct {
	BaseDownloadConfig

	ApiKey string `json:"apiKey" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" validate:"required"`
}

// BinanceDownloadConfig contains configuration for downloading from Binance.
// Binance public market data API does not require authentication.
type BinanceDownloadConfig struct {
	BaseDownloadConfig
}

// CSVDownloadConfig converts a local CSV bar file into the parquet archive.
type CSVDownloadConfig struct {
	BaseDownloadConfig

	Path string `json:"path" jsonschema:"title=CSV Path,description=CSV file with a time symbol open high low close volume header,required" validate:"required"`
}

// Validate validates the BaseDownloadConfig fields.
func (c *BaseDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid config", err)
	}

	start, err := time.Parse(time.RFC3339, c.StartDate)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid startDate format, expected RFC3339", err)
	}

	end, err := time.Parse(time.RFC3339, c.EndDate)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid endDate format, expected RFC3339", err)
	}

	if !end.After(start) {
		return errors.New(errors.ErrCodeInvalidParameter, "endDate must be after startDate")
	}

	return nil
}

// Validate validates the PolygonDownloadConfig.
func (c *PolygonDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid config", err)
	}

	return c.BaseDownloadConfig.Validate()
}

// Validate validates the BinanceDownloadConfig.
func (c *BinanceDownloadConfig) Validate() error {
	return c.BaseDownloadConfig.Validate()
}

// Validate validates the CSVDownloadConfig.
func (c *CSVDownloadConfig) Validate() error {
	if c.Path == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "path is required")
	}

	return c.BaseDownloadConfig.Validate()
}

// ToDownloadParams converts a BaseDownloadConfig to DownloadParams.
func (c *BaseDownloadConfig) ToDownloadParams() (DownloadParams, error) {
	if err := c.Validate(); err != nil {
		return DownloadParams{}, err
	}

	timeframe, err := provider.ParseTimeframe(c.Interval)
	if err != nil {
		return DownloadParams{}, err
	}

	// Validate already checked both dates.
	startDate, _ := time.Parse(time.RFC3339, c.StartDate)
	endDate, _ := time.Parse(time.RFC3339, c.EndDate)

	return DownloadParams{
		Ticker:    c.Ticker,
		StartDate: startDate,
		EndDate:   endDate,
		Timeframe: timeframe,
	}, nil
}

// ToClientConfig converts a PolygonDownloadConfig to ClientConfig.
func (c *PolygonDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  provider.ProviderPolygon,
		WriterType:    WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: c.ApiKey,
	}
}

// ToClientConfig converts a BinanceDownloadConfig to ClientConfig.
func (c *BinanceDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType: provider.ProviderBinance,
		WriterType:   WriterDuckDB,
		DataPath:     dataPath,
	}
}

// ToClientConfig converts a CSVDownloadConfig to ClientConfig.
func (c *CSVDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType: provider.ProviderCSV,
		WriterType:   WriterDuckDB,
		DataPath:     dataPath,
		CSVPath:      c.Path,
	}
}

// DownloadConfig is implemented by every provider-specific download configuration.
type DownloadConfig interface {
	Validate() error
	ToDownloadParams() (DownloadParams, error)
	ToClientConfig(dataPath string) ClientConfig
}

func parseConfig[T any, P interface {
	*T
	Validate() error
}](jsonConfig string) (*T, error) {
	var config T
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to parse JSON config", err)
	}

	if err := P(&config).Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParsePolygonConfig parses JSON into a PolygonDownloadConfig.
func ParsePolygonConfig(jsonConfig string) (*PolygonDownloadConfig, error) {
	return parseConfig[PolygonDownloadConfig](jsonConfig)
}

// ParseBinanceConfig parses JSON into a BinanceDownloadConfig.
func ParseBinanceConfig(jsonConfig string) (*BinanceDownloadConfig, error) {
	return parseConfig[BinanceDownloadConfig](jsonConfig)
}

// ParseCSVConfig parses JSON into a CSVDownloadConfig.
func ParseCSVConfig(jsonConfig string) (*CSVDownloadConfig, error) {
	return parseConfig[CSVDownloadConfig](jsonConfig)
}

var (
	_ DownloadConfig = (*PolygonDownloadConfig)(nil)
	_ DownloadConfig = (*BinanceDownloadConfig)(nil)
	_ DownloadConfig = (*CSVDownloadConfig)(nil)
)

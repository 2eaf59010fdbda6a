package marketdata

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
)

type DownloadConfigTestSuite struct {
	suite.Suite
}

func TestDownloadConfigTestSuite(t *testing.T) {
	suite.Run(t, new(DownloadConfigTestSuite))
}

func validBase() BaseDownloadConfig {
	return BaseDownloadConfig{
		Ticker:    "SPY",
		StartDate: "2024-01-01T00:00:00Z",
		EndDate:   "2024-12-31T23:59:59Z",
		Interval:  "1d",
	}
}

func (suite *DownloadConfigTestSuite) TestBaseValidation() {
	tests := []struct {
		name     string
		mutate   func(c *BaseDownloadConfig)
		contains string
	}{
		{name: "valid", mutate: func(*BaseDownloadConfig) {}},
		{name: "missing ticker", mutate: func(c *BaseDownloadConfig) { c.Ticker = "" }, contains: "Ticker"},
		{name: "unsupported interval", mutate: func(c *BaseDownloadConfig) { c.Interval = "1s" }, contains: "Interval"},
		{name: "bad start date", mutate: func(c *BaseDownloadConfig) { c.StartDate = "2024-01-01" }, contains: "startDate"},
		{name: "bad end date", mutate: func(c *BaseDownloadConfig) { c.EndDate = "yesterday" }, contains: "endDate"},
		{name: "end before start", mutate: func(c *BaseDownloadConfig) { c.EndDate = "2023-01-01T00:00:00Z" }, contains: "after"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := validBase()
			tc.mutate(&config)

			err := config.Validate()
			if tc.contains == "" {
				suite.NoError(err)

				return
			}

			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
			suite.Contains(err.Error(), tc.contains)
		})
	}
}

func (suite *DownloadConfigTestSuite) TestPolygonRequiresApiKey() {
	config := &PolygonDownloadConfig{BaseDownloadConfig: validBase()}
	err := config.Validate()
	suite.Error(err)
	suite.Contains(err.Error(), "ApiKey")

	config.ApiKey = "test-api-key"
	suite.NoError(config.Validate())
}

func (suite *DownloadConfigTestSuite) TestCSVRequiresPath() {
	config := &CSVDownloadConfig{BaseDownloadConfig: validBase()}
	suite.Error(config.Validate())

	config.Path = "bars.csv"
	suite.NoError(config.Validate())
}

func (suite *DownloadConfigTestSuite) TestParseConfigs() {
	polygon, err := ParsePolygonConfig(`{"ticker":"SPY","startDate":"2024-01-01T00:00:00Z","endDate":"2024-02-01T00:00:00Z","interval":"1h","apiKey":"k"}`)
	suite.Require().NoError(err)
	suite.Equal("k", polygon.ApiKey)
	suite.Equal("SPY", polygon.Ticker)

	binance, err := ParseBinanceConfig(`{"ticker":"BTCUSDT","startDate":"2024-01-01T00:00:00Z","endDate":"2024-02-01T00:00:00Z","interval":"4h"}`)
	suite.Require().NoError(err)
	suite.Equal("4h", binance.Interval)

	csv, err := ParseCSVConfig(`{"ticker":"BTCUSDT","startDate":"2024-01-01T00:00:00Z","endDate":"2024-02-01T00:00:00Z","interval":"1h","path":"bars.csv"}`)
	suite.Require().NoError(err)
	suite.Equal("bars.csv", csv.Path)

	_, err = ParsePolygonConfig(`{not json}`)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = ParsePolygonConfig(`{"ticker":"SPY","startDate":"2024-01-01T00:00:00Z","endDate":"2024-02-01T00:00:00Z","interval":"1h"}`)
	suite.Error(err)
}

func (suite *DownloadConfigTestSuite) TestToDownloadParams() {
	config := validBase()
	config.Interval = "15m"

	params, err := config.ToDownloadParams()
	suite.Require().NoError(err)
	suite.Equal("SPY", params.Ticker)
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), params.StartDate.UTC())
	suite.Equal(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), params.EndDate.UTC())
	suite.Equal(provider.TimeframeFifteenMinutes, params.Timeframe)

	config.StartDate = "nope"
	_, err = config.ToDownloadParams()
	suite.Error(err)
}

func (suite *DownloadConfigTestSuite) TestToClientConfig() {
	polygon := &PolygonDownloadConfig{BaseDownloadConfig: validBase(), ApiKey: "k"}
	suite.Equal(ClientConfig{
		ProviderType:  provider.ProviderPolygon,
		WriterType:    WriterDuckDB,
		DataPath:      "/data",
		PolygonApiKey: "k",
	}, polygon.ToClientConfig("/data"))

	binance := &BinanceDownloadConfig{BaseDownloadConfig: validBase()}
	suite.Equal(provider.ProviderBinance, binance.ToClientConfig("/data").ProviderType)
	suite.Empty(binance.ToClientConfig("/data").PolygonApiKey)

	csv := &CSVDownloadConfig{BaseDownloadConfig: validBase(), Path: "bars.csv"}
	suite.Equal("bars.csv", csv.ToClientConfig("/data").CSVPath)
}

func (suite *DownloadConfigTestSuite) TestAllIntervals() {
	for _, interval := range []string{"1m", "3m", "5m", "15m", "30m", "1h", "2h", "4h", "6h", "8h", "12h", "1d", "3d", "1w", "1M"} {
		config := validBase()
		config.Interval = interval

		params, err := config.ToDownloadParams()
		suite.NoError(err, interval)
		suite.Equal(provider.Timeframe(interval), params.Timeframe)
	}
}

func (suite *DownloadConfigTestSuite) TestSchemaIsInline() {
	schema, err := GetDownloadConfigSchema("polygon")
	suite.Require().NoError(err)

	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &result))
	suite.NotContains(result, "$ref")

	properties, ok := result["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "ticker")
	suite.Contains(properties, "apiKey")
}

package tradingprovider

import (
	"testing"

	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type TradingSystemProviderTestSuite struct {
	suite.Suite
}

func TestTradingSystemProviderSuite(t *testing.T) {
	suite.Run(t, new(TradingSystemProviderTestSuite))
}

func (suite *TradingSystemProviderTestSuite) TestGetSupportedProviders() {
	suite.Equal([]string{"binance-live", "binance-paper"}, GetSupportedProviders())
}

func (suite *TradingSystemProviderTestSuite) TestGetProviderInfo() {
	info, err := GetProviderInfo("binance-paper")
	suite.NoError(err)
	suite.Equal("Binance Testnet", info.DisplayName)
	suite.True(info.IsPaperTrading)

	info, err = GetProviderInfo("binance-live")
	suite.NoError(err)
	suite.Equal("Binance Live", info.DisplayName)
	suite.False(info.IsPaperTrading)

	_, err = GetProviderInfo("unsupported-provider")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
	suite.Contains(err.Error(), "unsupported trading provider")
}

func (suite *TradingSystemProviderTestSuite) TestGetProviderConfigSchema() {
	for _, name := range GetSupportedProviders() {
		schema, err := GetProviderConfigSchema(name)
		suite.NoError(err)
		suite.Contains(schema, "apiKey")
		suite.Contains(schema, "secretKey")
		suite.Contains(schema, "baseUrl")
	}

	_, err := GetProviderConfigSchema("unsupported-provider")
	suite.Error(err)
}

func (suite *TradingSystemProviderTestSuite) TestParseProviderConfig() {
	tests := []struct {
		name     string
		provider string
		json     string
		wantErr  bool
	}{
		{"valid", "binance-paper", `{"apiKey": "k", "secretKey": "s"}`, false},
		{"with base url", "binance-live", `{"apiKey": "k", "secretKey": "s", "baseUrl": "https://api.binance.com"}`, false},
		{"bad base url", "binance-live", `{"apiKey": "k", "secretKey": "s", "baseUrl": "not a url"}`, true},
		{"missing secret", "binance-paper", `{"apiKey": "k"}`, true},
		{"invalid json", "binance-paper", `{`, true},
		{"unknown provider", "kraken", `{"apiKey": "k", "secretKey": "s"}`, true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config, err := ParseProviderConfig(tc.provider, tc.json)
			if tc.wantErr {
				suite.Error(err)

				return
			}

			suite.Require().NoError(err)
			suite.Equal("k", config.ApiKey)
		})
	}
}

func (suite *TradingSystemProviderTestSuite) TestNewGateway() {
	suite.Equal(ProviderBinancePaper, ProviderForTestnet(true))
	suite.Equal(ProviderBinanceLive, ProviderForTestnet(false))

	gateway, err := NewGateway(ProviderBinanceLive, BinanceProviderConfig{ApiKey: "k", SecretKey: "s"})
	suite.NoError(err)
	suite.NotNil(gateway)

	_, err = NewGateway("kraken", BinanceProviderConfig{ApiKey: "k", SecretKey: "s"})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

func (suite *TradingSystemProviderTestSuite) TestConfigStringMasksSecrets() {
	config := BinanceProviderConfig{ApiKey: "abcdefgh", SecretKey: "topsecret"}
	suite.Equal("binance(key=abcd****, endpoint=default)", config.String())
	suite.NotContains(config.String(), "topsecret")

	config.BaseURL = "http://127.0.0.1:9000"
	config.ApiKey = "ab"
	suite.Equal("binance(key=**, endpoint=http://127.0.0.1:9000)", config.String())
}

func (suite *TradingSystemProviderTestSuite) TestParseProviderConfigRejectsUnknownFields() {
	_, err := ParseProviderConfig("binance-paper", `{"apiKey": "k", "secretKey": "s", "passphrase": "p"}`)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

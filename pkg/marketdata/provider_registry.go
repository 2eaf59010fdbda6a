package marketdata

import (
	"slices"

	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-autotrader/pkg/utils"
)

// ProviderInfo describes a market data provider for the providers command.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

type registration struct {
	info   ProviderInfo
	schema any
	parse  func(string) (DownloadConfig, error)
}

// parseAs adapts a typed parser so a failed parse yields a nil interface.
func parseAs[T DownloadConfig](parse func(string) (T, error)) func(string) (DownloadConfig, error) {
	return func(raw string) (DownloadConfig, error) {
		config, err := parse(raw)
		if err != nil {
			return nil, err
		}

		return config, nil
	}
}

var registry = map[provider.ProviderType]registration{
	provider.ProviderPolygon: {
		info: ProviderInfo{
			Name:         string(provider.ProviderPolygon),
			DisplayName:  "Polygon.io",
			Description:  "Historical OHLCV aggregates, API key required",
			RequiresAuth: true,
		},
		schema: PolygonDownloadConfig{},
		parse:  parseAs(ParsePolygonConfig),
	},
	provider.ProviderBinance: {
		info: ProviderInfo{
			Name:        string(provider.ProviderBinance),
			DisplayName: "Binance",
			Description: "Public spot klines for crypto pairs",
		},
		schema: BinanceDownloadConfig{},
		parse:  parseAs(ParseBinanceConfig),
	},
	provider.ProviderCSV: {
		info: ProviderInfo{
			Name:        string(provider.ProviderCSV),
			DisplayName: "CSV replay",
			Description: "Local CSV bar file replayed one bar per fetch",
		},
		schema: CSVDownloadConfig{},
		parse:  parseAs(ParseCSVConfig),
	},
}

func registered(providerName string) (registration, error) {
	reg, ok := registry[provider.ProviderType(providerName)]
	if !ok {
		return registration{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return reg, nil
}

func GetSupportedProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, string(name))
	}

	slices.Sort(names)

	return names
}

func GetProviderInfo(providerName string) (ProviderInfo, error) {
	reg, err := registered(providerName)

	return reg.info, err
}

// GetDownloadConfigSchema returns the inline JSON schema of a provider's
// download request.
func GetDownloadConfigSchema(providerName string) (string, error) {
	reg, err := registered(providerName)
	if err != nil {
		return "", err
	}

	return utils.GetInlineSchema(reg.schema)
}

// ParseDownloadConfig decodes and validates a provider's JSON download request.
func ParseDownloadConfig(providerName string, jsonConfig string) (DownloadConfig, error) {
	reg, err := registered(providerName)
	if err != nil {
		return nil, err
	}

	return reg.parse(jsonConfig)
}

package tradingprovider

import (
	"slices"

	"github.com/rxtech-lab/argo-autotrader/internal/execution"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/utils"
)

// Gateway is an exchange connection that can both quote and trade.
type Gateway interface {
	execution.PriceQuote
	execution.OrderGateway
}

var _ Gateway = (*BinanceGateway)(nil)

type ProviderType string

const (
	ProviderBinancePaper ProviderType = "binance-paper"
	ProviderBinanceLive  ProviderType = "binance-live"
)

// ProviderInfo describes a trading provider for the providers command.
type ProviderInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description"`
	IsPaperTrading bool   `json:"isPaperTrading"`
}

var providers = []ProviderInfo{
	{
		Name:           string(ProviderBinanceLive),
		DisplayName:    "Binance Live",
		Description:    "Binance spot with real funds",
		IsPaperTrading: false,
	},
	{
		Name:           string(ProviderBinancePaper),
		DisplayName:    "Binance Testnet",
		Description:    "Binance spot testnet, orders fill against test balances",
		IsPaperTrading: true,
	},
}

func lookup(name string) (ProviderInfo, error) {
	i := slices.IndexFunc(providers, func(p ProviderInfo) bool { return p.Name == name })
	if i < 0 {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported trading provider: %s", name)
	}

	return providers[i], nil
}

// GetSupportedProviders returns the provider names in sorted order.
func GetSupportedProviders() []string {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}

	slices.Sort(names)

	return names
}

func GetProviderInfo(providerName string) (ProviderInfo, error) {
	return lookup(providerName)
}

// GetProviderConfigSchema returns the JSON schema of the credentials a
// provider expects. Both Binance environments share one schema.
func GetProviderConfigSchema(providerName string) (string, error) {
	if _, err := lookup(providerName); err != nil {
		return "", err
	}

	return utils.GetInlineSchema(BinanceProviderConfig{})
}

// ParseProviderConfig decodes and validates JSON credentials for a provider.
func ParseProviderConfig(providerName string, jsonConfig string) (*BinanceProviderConfig, error) {
	if _, err := lookup(providerName); err != nil {
		return nil, err
	}

	return decodeBinanceConfig(jsonConfig)
}

func ProviderForTestnet(testnet bool) ProviderType {
	if testnet {
		return ProviderBinancePaper
	}

	return ProviderBinanceLive
}

// NewGateway connects to the environment the provider type names.
func NewGateway(providerType ProviderType, config BinanceProviderConfig) (*BinanceGateway, error) {
	info, err := lookup(string(providerType))
	if err != nil {
		return nil, err
	}

	return NewBinanceGateway(config, info.IsPaperTrading)
}

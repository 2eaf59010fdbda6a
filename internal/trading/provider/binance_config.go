package tradingprovider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

var configValidator = validator.New()

// BinanceProviderConfig holds the API credentials of a Binance account.
// BaseURL is only set when pointing the gateway at a local exchange double.
type BinanceProviderConfig struct {
	ApiKey    string `json:"apiKey" jsonschema:"title=API Key,description=Binance API key" validate:"required"`
	SecretKey string `json:"secretKey" jsonschema:"title=Secret Key,description=Binance API secret key" validate:"required"`
	BaseURL   string `json:"baseUrl,omitempty" jsonschema:"title=Base URL,description=Overrides the REST endpoint" validate:"omitempty,url"`
}

func (c *BinanceProviderConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid binance provider config", err)
	}

	return nil
}

// String masks the credentials so the config can be logged.
func (c BinanceProviderConfig) String() string {
	return fmt.Sprintf("binance(key=%s, endpoint=%s)", mask(c.ApiKey), firstNonBlank(c.BaseURL, "default"))
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}

	return secret[:4] + strings.Repeat("*", len(secret)-4)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}

func decodeBinanceConfig(raw string) (*BinanceProviderConfig, error) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()

	config := &BinanceProviderConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to decode binance config", err)
	}

	return config, config.Validate()
}

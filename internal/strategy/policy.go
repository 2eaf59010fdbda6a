package strategy

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// PolicyConfig holds the RSI thresholds of the signal policy.
type PolicyConfig struct {
	Oversold   float64 `yaml:"oversold" json:"oversold" jsonschema:"title=RSI oversold threshold,default=30" validate:"gt=0,lt=100"`
	Overbought float64 `yaml:"overbought" json:"overbought" jsonschema:"title=RSI overbought threshold,default=70" validate:"gt=0,lt=100,gtfield=Oversold"`
}

// DefaultPolicyConfig returns oversold 30 and overbought 70.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Oversold:   30,
		Overbought: 70,
	}
}

// Validate validates the PolicyConfig struct.
func (c PolicyConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid policy config", err)
	}

	return nil
}

// Policy turns an enriched series into one signal per bar. It is stateless.
//
// A bar is Buy when RSI is below the oversold threshold and MACD is above its
// signal line, Sell when RSI is above the overbought threshold and MACD is
// below its signal line, and Neutral otherwise. An optional forecast can only
// veto a Buy: the Buy stands when the forecast for the bar is above the
// previous bar's close.
type Policy struct {
	config PolicyConfig
}

// NewPolicy creates a policy with the given thresholds.
func NewPolicy(config PolicyConfig) (*Policy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Policy{config: config}, nil
}

// NewDefaultPolicy creates a policy with DefaultPolicyConfig.
func NewDefaultPolicy() *Policy {
	return &Policy{config: DefaultPolicyConfig()}
}

// Generate returns a signal for every bar of series, in the same order.
func (p *Policy) Generate(series []types.EnrichedBar, forecast optional.Option[[]float64]) []types.Signal {
	signals := make([]types.Signal, len(series))

	var predictions []float64
	if forecast.IsSome() {
		predictions = forecast.Unwrap()
	}

	for i, bar := range series {
		signal := p.baseSignal(bar)

		if signal == types.SignalBuy && vetoed(series, predictions, i) {
			signal = types.SignalNeutral
		}

		signals[i] = signal
	}

	return signals
}

// Latest returns the signal of the last bar. An empty series is Neutral.
func (p *Policy) Latest(series []types.EnrichedBar, forecast optional.Option[[]float64]) types.Signal {
	if len(series) == 0 {
		return types.SignalNeutral
	}

	signals := p.Generate(series, forecast)

	return signals[len(signals)-1]
}

func (p *Policy) baseSignal(bar types.EnrichedBar) types.Signal {
	switch {
	case bar.RSI < p.config.Oversold && bar.MACD > bar.MACDSignal:
		return types.SignalBuy
	case bar.RSI > p.config.Overbought && bar.MACD < bar.MACDSignal:
		return types.SignalSell
	default:
		return types.SignalNeutral
	}
}

// vetoed reports whether the forecast rejects a Buy at index i.
// Missing forecast values and the first bar, which has no prior close, never veto.
func vetoed(series []types.EnrichedBar, predictions []float64, i int) bool {
	if i >= len(predictions) || i == 0 {
		return false
	}

	prediction := predictions[i]
	if math.IsNaN(prediction) {
		return false
	}

	return prediction <= series[i-1].Close
}

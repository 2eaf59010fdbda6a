package indicator

import (
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// EMA indicator implements Exponential Moving Average calculation.
// The recurrence is seeded with the first value, so EMA is defined from the first bar.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() *EMA {
	return &EMA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() IndicatorType {
	return IndicatorTypeEMA
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := intParam(params, 0, "period")
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

// Warmup is 1 since the first value seeds the average.
func (e *EMA) Warmup() int {
	return 1
}

// Series returns the EMA of values with alpha = 2/(period+1).
func (e *EMA) Series(values []float64) []float64 {
	return ema(values, e.period)
}

func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}

	return out
}

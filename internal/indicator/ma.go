package indicator

import (
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// MA indicator implements Simple Moving Average calculation.
type MA struct {
	period int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() *MA {
	return &MA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() IndicatorType {
	return IndicatorTypeSMA
}

// Config configures the MA indicator.
// Expected parameters: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := intParam(params, 0, "period")
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

// Warmup returns the period.
func (m *MA) Warmup() int {
	return m.period
}

// Period returns the configured window.
func (m *MA) Period() int {
	return m.period
}

// Series returns the trailing arithmetic mean of closes. The first period-1 values are NaN.
func (m *MA) Series(closes []float64) []float64 {
	return rollingMean(closes, m.period)
}

// rollingMean is the windowed mean used by MA, RSI and Bollinger Bands.
func rollingMean(values []float64, period int) []float64 {
	out := nanSlice(len(values))

	for i := period - 1; i < len(values); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}

		out[i] = sum / float64(period)
	}

	return out
}

func invalidPeriodf(format string, args ...any) error {
	return errors.Newf(errors.ErrCodeInvalidPeriod, format, args...)
}

package indicator

import (
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() *MACD {
	return &MACD{
		fastPeriod:   12, // Default fast period
		slowPeriod:   26, // Default slow period
		signalPeriod: 9,  // Default signal period
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() IndicatorType {
	return IndicatorTypeMACD
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	fast, err := intParam(params, 0, "fastPeriod")
	if err != nil {
		return err
	}

	slow, err := intParam(params, 1, "slowPeriod")
	if err != nil {
		return err
	}

	signal, err := intParam(params, 2, "signalPeriod")
	if err != nil {
		return err
	}

	if fast >= slow {
		return invalidPeriodf("fastPeriod (%d) must be less than slowPeriod (%d)", fast, slow)
	}

	m.fastPeriod = fast
	m.slowPeriod = slow
	m.signalPeriod = signal

	return nil
}

// Warmup is 1. Both lines follow the first-value-seeded EMA recurrence.
func (m *MACD) Warmup() int {
	return 1
}

// Series returns the MACD line (fast EMA minus slow EMA) and its signal line.
func (m *MACD) Series(closes []float64) (macd, signal []float64) {
	fast := ema(closes, m.fastPeriod)
	slow := ema(closes, m.slowPeriod)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}

	return macd, ema(macd, m.signalPeriod)
}

package indicator

import "math"

// IndicatorType names a technical indicator.
type IndicatorType string

const (
	IndicatorTypeSMA            IndicatorType = "sma"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
)

// Indicator interface defines methods that any technical indicator must implement.
// Values are computed over a close-price column. Positions where the indicator
// is not yet defined hold NaN.
type Indicator interface {
	// Name returns the name of the indicator
	Name() IndicatorType
	// Config configures the indicator
	Config(params ...any) error
	// Warmup returns the number of bars needed before the first defined value
	Warmup() int
}

// nanSlice returns a slice of n NaN values.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// intParam reads params[i] as a positive int.
func intParam(params []any, i int, name string) (int, error) {
	v, ok := params[i].(int)
	if !ok {
		return 0, invalidPeriodf("invalid type for %s parameter, expected int", name)
	}

	if v <= 0 {
		return 0, invalidPeriodf("%s must be a positive integer, got %d", name, v)
	}

	return v, nil
}

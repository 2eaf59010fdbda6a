package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// BollingerBands computes a moving average with bands at a multiple of the
// rolling sample standard deviation.
type BollingerBands struct {
	period int
	stdDev float64
}

// Bands holds the Bollinger Band columns. Undefined positions are NaN.
type Bands struct {
	Middle []float64
	StdDev []float64
	Upper  []float64
	Lower  []float64
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() *BollingerBands {
	return &BollingerBands{
		period: 20,  // Default period
		stdDev: 2.0, // Default standard deviation multiplier
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() IndicatorType {
	return IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, err := intParam(params, 0, "period")
	if err != nil {
		return err
	}

	// sample standard deviation needs two observations
	if period < 2 {
		return invalidPeriodf("period must be at least 2, got %d", period)
	}

	stdDev, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidParameter, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

// Warmup returns the period.
func (bb *BollingerBands) Warmup() int {
	return bb.period
}

// Series returns the band columns aligned with closes.
func (bb *BollingerBands) Series(closes []float64) Bands {
	bands := Bands{
		Middle: rollingMean(closes, bb.period),
		StdDev: nanSlice(len(closes)),
		Upper:  nanSlice(len(closes)),
		Lower:  nanSlice(len(closes)),
	}

	for i := bb.period - 1; i < len(closes); i++ {
		mean := bands.Middle[i]

		var squaredDiffSum float64
		for j := i - bb.period + 1; j <= i; j++ {
			diff := closes[j] - mean
			squaredDiffSum += diff * diff
		}

		std := math.Sqrt(squaredDiffSum / float64(bb.period-1))
		bands.StdDev[i] = std
		bands.Upper[i] = mean + bb.stdDev*std
		bands.Lower[i] = mean - bb.stdDev*std
	}

	return bands
}

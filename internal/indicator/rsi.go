package indicator

import (
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// RSISaturated is reported when the average loss over the window is zero.
const RSISaturated = 100.0

// RSI represents the Relative Strength Index indicator.
// Average gain and loss are simple rolling means of the one-step close
// differences, not Wilder-smoothed averages.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() *RSI {
	return &RSI{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() IndicatorType {
	return IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := intParam(params, 0, "period")
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

// Warmup is period+1 because period differences need period+1 closes.
func (r *RSI) Warmup() int {
	return r.period + 1
}

// Series returns RSI values aligned with closes. The first period values are NaN.
// A window with zero average loss, including a flat window, reports RSISaturated.
func (r *RSI) Series(closes []float64) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < r.Warmup() {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))

	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	for i := r.period; i < len(closes); i++ {
		var gainSum, lossSum float64
		for j := i - r.period + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}

		out[i] = rsiFromAverages(gainSum/float64(r.period), lossSum/float64(r.period))
	}

	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return RSISaturated
	}

	rs := avgGain / avgLoss

	return 100 - 100/(1+rs)
}

package types

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// Bar is one OHLCV observation.
type Bar struct {
	Time   time.Time `yaml:"time" json:"time" csv:"time" validate:"required"`
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Open   float64   `yaml:"open" json:"open" csv:"open" validate:"gt=0"`
	High   float64   `yaml:"high" json:"high" csv:"high" validate:"gt=0"`
	Low    float64   `yaml:"low" json:"low" csv:"low" validate:"gt=0"`
	Close  float64   `yaml:"close" json:"close" csv:"close" validate:"gt=0"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume" validate:"gte=0"`
}

// Series is a timestamp-ascending sequence of bars with unique timestamps.
type Series []Bar

// Validate validates the Bar struct.
func (b *Bar) Validate() error {
	validate := validator.New()
	if err := validate.Struct(b); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSeries, "invalid bar", err)
	}

	return nil
}

// NormalizeSeries validates every bar and returns a copy sorted by time.
// Out-of-order input is re-sorted. Duplicate timestamps are rejected.
func NormalizeSeries(bars []Bar) (Series, error) {
	validate := validator.New()

	out := make(Series, len(bars))
	copy(out, bars)

	for i := range out {
		if err := validate.Struct(&out[i]); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidSeries, err, "invalid bar at index %d", i)
		}
	}

	if !sort.SliceIsSorted(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) }) {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	}

	for i := 1; i < len(out); i++ {
		if out[i].Time.Equal(out[i-1].Time) {
			return nil, errors.Newf(errors.ErrCodeInvalidSeries, "duplicate bar timestamp %s", out[i].Time.Format(time.RFC3339))
		}
	}

	return out, nil
}

// Closes returns the close prices of the series in order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}

	return closes
}

// Last returns the most recent bar. ok is false for an empty series.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}

	return s[len(s)-1], true
}

// Package forecast produces per-bar price forecasts that the signal policy
// uses to veto buys.
package forecast

import (
	"context"
	"math"
	"sync"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// DefaultLookback is the window length the LSTM export was trained with.
const DefaultLookback = 60

// Source forecasts the close of every bar in series. The result is aligned
// one-to-one with series; bars without a full lookback window hold NaN.
// None means no forecast is available at all.
type Source interface {
	Forecast(ctx context.Context, series []types.EnrichedBar) (optional.Option[[]float64], error)
}

// Predictor runs a single-step model over a normalized window of closes and
// returns the normalized next close.
type Predictor interface {
	Predict(window []float32) (float32, error)
	Close() error
}

// Noop never forecasts.
type Noop struct{}

func (Noop) Forecast(context.Context, []types.EnrichedBar) (optional.Option[[]float64], error) {
	return optional.None[[]float64](), nil
}

// ModelSource slides a lookback window over the closes and asks the
// predictor for the next close. forecast[i] is predicted from
// closes[i-lookback:i], so it never sees bar i itself.
type ModelSource struct {
	mu        sync.Mutex
	predictor Predictor
	lookback  int
}

// NewModelSource wraps predictor.
func NewModelSource(predictor Predictor, lookback int) (*ModelSource, error) {
	if predictor == nil {
		return nil, errors.New(errors.ErrCodeModelNotLoaded, "predictor is required")
	}

	if lookback <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "lookback must be positive, got %d", lookback)
	}

	return &ModelSource{predictor: predictor, lookback: lookback}, nil
}

// Lookback returns the window length.
func (s *ModelSource) Lookback() int {
	return s.lookback
}

// Forecast normalizes the closes with the series mean and population
// standard deviation, the same scaling the model was trained on.
func (s *ModelSource) Forecast(ctx context.Context, series []types.EnrichedBar) (optional.Option[[]float64], error) {
	out := make([]float64, len(series))
	for i := range out {
		out[i] = math.NaN()
	}

	if len(series) <= s.lookback {
		return optional.Some(out), nil
	}

	closes := make([]float64, len(series))
	for i, bar := range series {
		closes[i] = bar.Close
	}

	mean, std := meanStd(closes)
	if std == 0 {
		std = 1
	}

	window := make([]float32, s.lookback)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := s.lookback; i < len(closes); i++ {
		if err := ctx.Err(); err != nil {
			return optional.None[[]float64](), errors.Wrap(errors.ErrCodeForecastFailed, "forecast cancelled", err)
		}

		for j, c := range closes[i-s.lookback : i] {
			window[j] = float32((c - mean) / std)
		}

		pred, err := s.predictor.Predict(window)
		if err != nil {
			return optional.None[[]float64](), errors.Wrapf(errors.ErrCodeForecastFailed, err, "prediction failed at bar %d", i)
		}

		out[i] = float64(pred)*std + mean
	}

	return optional.Some(out), nil
}

// Close releases the predictor.
func (s *ModelSource) Close() error {
	return s.predictor.Close()
}

func meanStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}

	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}

	return mean, math.Sqrt(sq / float64(len(values)))
}

var (
	_ Source = Noop{}
	_ Source = (*ModelSource)(nil)
)

package forecast

import (
	"context"
	stderrors "errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// lastValuePredictor predicts the last value of the window, so a
// denormalized forecast equals the previous close.
type lastValuePredictor struct {
	calls   int
	failAt  int
	closed  bool
	windows [][]float32
}

func (p *lastValuePredictor) Predict(window []float32) (float32, error) {
	p.calls++
	if p.failAt > 0 && p.calls == p.failAt {
		return 0, stderrors.New("bad tensor")
	}

	p.windows = append(p.windows, append([]float32(nil), window...))

	return window[len(window)-1], nil
}

func (p *lastValuePredictor) Close() error {
	p.closed = true

	return nil
}

type ForecastTestSuite struct {
	suite.Suite
}

func TestForecastSuite(t *testing.T) {
	suite.Run(t, new(ForecastTestSuite))
}

func enriched(closes ...float64) []types.EnrichedBar {
	out := make([]types.EnrichedBar, len(closes))
	for i, c := range closes {
		out[i].Close = c
	}

	return out
}

func (suite *ForecastTestSuite) TestNoop() {
	result, err := Noop{}.Forecast(context.Background(), enriched(1, 2, 3))
	suite.NoError(err)
	suite.True(result.IsNone())
}

func (suite *ForecastTestSuite) TestNewModelSourceValidation() {
	_, err := NewModelSource(nil, 3)
	suite.True(errors.HasCode(err, errors.ErrCodeModelNotLoaded))

	_, err = NewModelSource(&lastValuePredictor{}, 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ForecastTestSuite) TestAlignedWithLeadingNaN() {
	predictor := &lastValuePredictor{}
	source, err := NewModelSource(predictor, 3)
	suite.Require().NoError(err)
	suite.Equal(3, source.Lookback())

	series := enriched(10, 12, 11, 13, 15, 14)

	result, err := source.Forecast(context.Background(), series)
	suite.Require().NoError(err)

	values := result.Unwrap()
	suite.Require().Len(values, len(series))

	for i := range 3 {
		suite.True(math.IsNaN(values[i]), "index %d", i)
	}

	// forecast[i] sees closes up to i-1 only
	suite.InDelta(11.0, values[3], 1e-4)
	suite.InDelta(13.0, values[4], 1e-4)
	suite.InDelta(15.0, values[5], 1e-4)
	suite.Equal(3, predictor.calls)
}

func (suite *ForecastTestSuite) TestWindowIsNormalized() {
	predictor := &lastValuePredictor{}
	source, err := NewModelSource(predictor, 2)
	suite.Require().NoError(err)

	// mean 2, population std 1
	_, err = source.Forecast(context.Background(), enriched(1, 3, 1, 3))
	suite.Require().NoError(err)

	suite.Require().Len(predictor.windows, 2)
	suite.Equal([]float32{-1, 1}, predictor.windows[0])
	suite.Equal([]float32{1, -1}, predictor.windows[1])
}

func (suite *ForecastTestSuite) TestFlatSeries() {
	source, err := NewModelSource(&lastValuePredictor{}, 2)
	suite.Require().NoError(err)

	result, err := source.Forecast(context.Background(), enriched(5, 5, 5, 5))
	suite.Require().NoError(err)
	suite.Equal(5.0, result.Unwrap()[3])
}

func (suite *ForecastTestSuite) TestShortSeriesIsAllNaN() {
	predictor := &lastValuePredictor{}
	source, err := NewModelSource(predictor, 60)
	suite.Require().NoError(err)

	result, err := source.Forecast(context.Background(), enriched(1, 2, 3))
	suite.Require().NoError(err)
	suite.Require().True(result.IsSome())

	for _, v := range result.Unwrap() {
		suite.True(math.IsNaN(v))
	}

	suite.Zero(predictor.calls)
}

func (suite *ForecastTestSuite) TestPredictorFailure() {
	source, err := NewModelSource(&lastValuePredictor{failAt: 2}, 2)
	suite.Require().NoError(err)

	result, err := source.Forecast(context.Background(), enriched(1, 2, 3, 4, 5))
	suite.True(errors.HasCode(err, errors.ErrCodeForecastFailed))
	suite.True(result.IsNone())
}

func (suite *ForecastTestSuite) TestCancelled() {
	source, err := NewModelSource(&lastValuePredictor{}, 2)
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = source.Forecast(ctx, enriched(1, 2, 3, 4))
	suite.True(errors.HasCode(err, errors.ErrCodeForecastFailed))
	suite.ErrorIs(err, context.Canceled)
}

func (suite *ForecastTestSuite) TestClose() {
	predictor := &lastValuePredictor{}
	source, err := NewModelSource(predictor, 2)
	suite.Require().NoError(err)

	suite.NoError(source.Close())
	suite.True(predictor.closed)
}

func (suite *ForecastTestSuite) TestONNXPredictorValidation() {
	_, err := NewONNXPredictor("model.onnx", "", 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = Open(filepath.Join(suite.T().TempDir(), "missing.onnx"), "", DefaultLookback)
	suite.True(errors.HasCode(err, errors.ErrCodeModelNotLoaded))

	suite.NotEmpty(DefaultLibraryPath())
}

package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/mocks"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PipelineTestSuite struct {
	suite.Suite
	pipeline *Pipeline
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (suite *PipelineTestSuite) SetupTest() {
	suite.pipeline = NewDefaultPipeline()
}

func (suite *PipelineTestSuite) TestDefaultWarmup() {
	suite.Equal(50, suite.pipeline.Warmup())
}

func (suite *PipelineTestSuite) TestShortSeriesIsEmpty() {
	tests := []struct {
		name  string
		count int
	}{
		{name: "empty", count: 0},
		{name: "nineteen bars", count: 19},
		{name: "one short of warmup", count: 49},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			series := mocks.SeriesFromCloses("X", mocks.FlatCloses(tc.count, 100))
			out := suite.pipeline.Enrich(series)
			suite.NotNil(out)
			suite.Empty(out)
		})
	}
}

func (suite *PipelineTestSuite) TestDropsLeadingBars() {
	series := mocks.SeriesFromCloses("X", mocks.ReboundCloses(60, 200))

	out := suite.pipeline.Enrich(series)
	suite.Require().Len(out, 11)
	suite.Equal(series[49].Time, out[0].Time)
	suite.Equal(series[59].Time, out[10].Time)

	exactlyWarmup := suite.pipeline.Enrich(series[:50])
	suite.Len(exactlyWarmup, 1)
}

func (suite *PipelineTestSuite) TestEveryFieldIsDefined() {
	gen := mocks.NewDataGenerator(7)
	config := mocks.DefaultConfig()
	config.Count = 300
	config.Volatility = 0.02

	out := suite.pipeline.Enrich(gen.Generate(config))
	suite.Require().Len(out, 251)

	for _, row := range out {
		for _, v := range []float64{
			row.SMAShort, row.SMALong, row.RSI, row.MACD, row.MACDSignal,
			row.StdDev, row.BollingerUpper, row.BollingerLower,
		} {
			suite.False(math.IsNaN(v))
			suite.False(math.IsInf(v, 0))
		}

		suite.GreaterOrEqual(row.RSI, 0.0)
		suite.LessOrEqual(row.RSI, 100.0)
		suite.GreaterOrEqual(row.BollingerUpper, row.SMAShort)
		suite.LessOrEqual(row.BollingerLower, row.SMAShort)
	}
}

func (suite *PipelineTestSuite) TestFlatSeriesValues() {
	out := suite.pipeline.Enrich(mocks.SeriesFromCloses("X", mocks.FlatCloses(55, 100)))
	suite.Require().Len(out, 6)

	for _, row := range out {
		suite.InDelta(100.0, row.SMAShort, 1e-9)
		suite.InDelta(100.0, row.SMALong, 1e-9)
		suite.Equal(RSISaturated, row.RSI)
		suite.InDelta(0.0, row.MACD, 1e-9)
		suite.InDelta(0.0, row.StdDev, 1e-9)
	}
}

func (suite *PipelineTestSuite) TestReboundValuesOnLastBar() {
	out := suite.pipeline.Enrich(mocks.SeriesFromCloses("X", mocks.ReboundCloses(60, 200)))
	last := out[len(out)-1]

	// 12 one-unit losses and 2 one-unit gains in the RSI window
	suite.InDelta(100-100/(1+2.0/12.0), last.RSI, 1e-9)
	suite.Greater(last.MACD, last.MACDSignal)
}

func (suite *PipelineTestSuite) TestDeterministic() {
	series := mocks.NewDataGenerator(11).Generate(mocks.DefaultConfig())
	suite.Equal(suite.pipeline.Enrich(series), suite.pipeline.Enrich(series))
}

func (suite *PipelineTestSuite) TestInputIsNotMutated() {
	series := mocks.SeriesFromCloses("X", mocks.ReboundCloses(60, 200))
	before := make(types.Series, len(series))
	copy(before, series)

	suite.pipeline.Enrich(series)
	suite.Equal(before, series)
}

func (suite *PipelineTestSuite) TestCustomConfigWarmup() {
	cfg := DefaultConfig()
	cfg.SMAShort = 10
	cfg.SMALong = 10
	cfg.BollingerPeriod = 10

	p, err := NewPipeline(cfg)
	suite.Require().NoError(err)
	// RSI needs 15 bars, the largest requirement
	suite.Equal(15, p.Warmup())

	cfg.SMAShort = 20
	cfg.RSIPeriod = 5
	p, err = NewPipeline(cfg)
	suite.Require().NoError(err)
	suite.Equal(20, p.Warmup())
	suite.Len(p.Enrich(mocks.SeriesFromCloses("X", mocks.FlatCloses(25, 10))), 6)
}

func (suite *PipelineTestSuite) TestInvalidConfig() {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero sma", mutate: func(c *Config) { c.SMAShort = 0 }},
		{name: "negative rsi", mutate: func(c *Config) { c.RSIPeriod = -1 }},
		{name: "macd fast not below slow", mutate: func(c *Config) { c.MACDFast = 26 }},
		{name: "bollinger period one", mutate: func(c *Config) { c.BollingerPeriod = 1 }},
		{name: "zero band width", mutate: func(c *Config) { c.BollingerStdDev = 0 }},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			_, err := NewPipeline(cfg)
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
		})
	}
}

package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type BollingerBandsTestSuite struct {
	suite.Suite
}

func TestBollingerBandsSuite(t *testing.T) {
	suite.Run(t, new(BollingerBandsTestSuite))
}

func (suite *BollingerBandsTestSuite) TestSampleStandardDeviation() {
	bb := NewBollingerBands()
	suite.Require().NoError(bb.Config(3, 2.0))

	bands := bb.Series([]float64{1, 2, 3, 5})
	suite.True(math.IsNaN(bands.Middle[1]))
	suite.True(math.IsNaN(bands.StdDev[1]))

	// window 1,2,3: mean 2, sample variance (1+0+1)/2 = 1
	suite.InDelta(2.0, bands.Middle[2], 1e-12)
	suite.InDelta(1.0, bands.StdDev[2], 1e-12)
	suite.InDelta(4.0, bands.Upper[2], 1e-12)
	suite.InDelta(0.0, bands.Lower[2], 1e-12)

	// window 2,3,5: mean 10/3
	mean := 10.0 / 3.0
	variance := ((2-mean)*(2-mean) + (3-mean)*(3-mean) + (5-mean)*(5-mean)) / 2
	suite.InDelta(mean, bands.Middle[3], 1e-12)
	suite.InDelta(math.Sqrt(variance), bands.StdDev[3], 1e-12)
}

func (suite *BollingerBandsTestSuite) TestFlatWindowCollapsesBands() {
	closes := []float64{10, 10, 10, 10, 10}
	bb := NewBollingerBands()
	suite.Require().NoError(bb.Config(5, 2.0))

	bands := bb.Series(closes)
	suite.InDelta(10.0, bands.Upper[4], 1e-12)
	suite.InDelta(10.0, bands.Lower[4], 1e-12)
	suite.InDelta(0.0, bands.StdDev[4], 1e-12)
}

func (suite *BollingerBandsTestSuite) TestConfig() {
	tests := []struct {
		name    string
		params  []any
		wantErr bool
	}{
		{name: "valid", params: []any{20, 2.0}},
		{name: "period one", params: []any{1, 2.0}, wantErr: true},
		{name: "zero std dev", params: []any{20, 0.0}, wantErr: true},
		{name: "int std dev", params: []any{20, 2}, wantErr: true},
		{name: "one param", params: []any{20}, wantErr: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			bb := NewBollingerBands()
			err := bb.Config(tc.params...)
			if tc.wantErr {
				suite.Error(err)

				return
			}

			suite.NoError(err)
			suite.Equal(IndicatorTypeBollingerBands, bb.Name())
			suite.Equal(20, bb.Warmup())
		})
	}
}

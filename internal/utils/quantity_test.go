package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestRoundToDecimalPrecision() {
	tests := []struct {
		name      string
		quantity  float64
		precision int
		expected  float64
	}{
		{"truncates instead of rounding", 1.239, 2, 1.23},
		{"satoshi precision", 0.123456789, 8, 0.12345678},
		{"whole units", 9.99, 0, 9},
		{"below precision", 0.000000001, 8, 0},
		{"already exact", 0.5, 4, 0.5},
		{"float noise", 0.1 + 0.2, 2, 0.3},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, RoundToDecimalPrecision(tc.quantity, tc.precision))
		})
	}
}

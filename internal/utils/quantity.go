package utils

import (
	"github.com/shopspring/decimal"
)

// RoundToDecimalPrecision floors quantity to decimalPrecision places.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	return decimal.NewFromFloat(quantity).Truncate(int32(decimalPrecision)).InexactFloat64()
}

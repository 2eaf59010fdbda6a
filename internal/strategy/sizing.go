package strategy

import "github.com/shopspring/decimal"

// PositionSize returns the quantity to trade: balance * riskFraction / price.
// It is zero when any input is not positive.
func PositionSize(balance, riskFraction, price float64) float64 {
	if balance <= 0 || riskFraction <= 0 || price <= 0 {
		return 0
	}

	size := decimal.NewFromFloat(balance).
		Mul(decimal.NewFromFloat(riskFraction)).
		Div(decimal.NewFromFloat(price))

	return size.InexactFloat64()
}

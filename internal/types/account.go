package types

import "time"

// LedgerSnapshot is a point-in-time copy of the simulated ledger.
type LedgerSnapshot struct {
	// Balance is the cash balance
	Balance float64 `json:"balance" yaml:"balance"`
	// Positions maps symbol to held quantity. Symbols with zero quantity are omitted.
	Positions map[string]float64 `json:"positions" yaml:"positions"`
	// Time is when the snapshot was taken
	Time time.Time `json:"time" yaml:"time"`
}

// Equity values the snapshot using the given prices. Symbols without a price are skipped.
func (s LedgerSnapshot) Equity(prices map[string]float64) float64 {
	equity := s.Balance

	for symbol, qty := range s.Positions {
		if price, ok := prices[symbol]; ok {
			equity += qty * price
		}
	}

	return equity
}

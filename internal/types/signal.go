package types

type Signal string

const (
	// SignalBuy tells the engine to open or add to a long position
	SignalBuy Signal = "buy"
	// SignalSell tells the engine to reduce a long position
	SignalSell Signal = "sell"
	// SignalNeutral tells the engine to take no action
	SignalNeutral Signal = "neutral"
)

// Side maps an actionable signal to an order side. ok is false for Neutral.
func (s Signal) Side() (Side, bool) {
	switch s {
	case SignalBuy:
		return SideBuy, true
	case SignalSell:
		return SideSell, true
	default:
		return "", false
	}
}

// IsActionable reports whether the signal leads to an execution.
func (s Signal) IsActionable() bool {
	_, ok := s.Side()

	return ok
}

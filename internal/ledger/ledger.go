package ledger

import (
	"maps"
	"math"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/shopspring/decimal"
)

// Ledger tracks the simulated cash balance and per-symbol long positions.
// Balance and every position are never negative. The four mutators are the
// only way to change state, and each one either applies fully or fails
// without side effects.
type Ledger struct {
	mu        sync.Mutex
	balance   decimal.Decimal
	positions map[string]decimal.Decimal
}

// Tx is the view of a ledger inside Transact. It must not be retained after
// the callback returns.
type Tx struct {
	l *Ledger
}

// NewLedger creates a ledger with the given starting balance.
func NewLedger(initialBalance float64) (*Ledger, error) {
	if initialBalance < 0 || !finite(initialBalance) {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "initial balance must be a non-negative finite number, got %f", initialBalance)
	}

	return &Ledger{
		mu:        sync.Mutex{},
		balance:   decimal.NewFromFloat(initialBalance),
		positions: make(map[string]decimal.Decimal),
	}, nil
}

// Credit adds amount to the balance.
func (l *Ledger) Credit(amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, err := toDecimal(amount)
	if err != nil {
		return err
	}

	return l.credit(d)
}

// Debit removes amount from the balance. It fails with InsufficientFunds when
// amount exceeds the balance.
func (l *Ledger) Debit(amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, err := toDecimal(amount)
	if err != nil {
		return err
	}

	return l.debit(d)
}

// IncreasePosition adds qty to the symbol's position.
func (l *Ledger) IncreasePosition(symbol string, qty float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, err := toDecimal(qty)
	if err != nil {
		return err
	}

	return l.increase(symbol, d)
}

// DecreasePosition removes qty from the symbol's position. It fails with
// InsufficientPosition when qty exceeds the position.
func (l *Ledger) DecreasePosition(symbol string, qty float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, err := toDecimal(qty)
	if err != nil {
		return err
	}

	return l.decrease(symbol, d)
}

// Balance returns the cash balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balance.InexactFloat64()
}

// Position returns the quantity held for symbol. Unknown symbols are 0.
func (l *Ledger) Position(symbol string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.positions[symbol].InexactFloat64()
}

// Snapshot returns a copy of the ledger state.
func (l *Ledger) Snapshot() types.LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	positions := make(map[string]float64, len(l.positions))
	for symbol, qty := range l.positions {
		positions[symbol] = qty.InexactFloat64()
	}

	return types.LedgerSnapshot{
		Balance:   l.balance.InexactFloat64(),
		Positions: positions,
		Time:      time.Now(),
	}
}

// Transact runs fn while holding the ledger lock. No other caller can read or
// mutate the ledger until fn returns. If fn returns an error every mutation it
// made is rolled back.
func (l *Ledger) Transact(fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balance
	positions := maps.Clone(l.positions)

	if err := fn(&Tx{l: l}); err != nil {
		l.balance = balance
		l.positions = positions

		return err
	}

	return nil
}

// Credit adds amount to the balance.
func (tx *Tx) Credit(amount float64) error {
	d, err := toDecimal(amount)
	if err != nil {
		return err
	}

	return tx.l.credit(d)
}

// Debit removes amount from the balance.
func (tx *Tx) Debit(amount float64) error {
	d, err := toDecimal(amount)
	if err != nil {
		return err
	}

	return tx.l.debit(d)
}

// IncreasePosition adds qty to the symbol's position.
func (tx *Tx) IncreasePosition(symbol string, qty float64) error {
	d, err := toDecimal(qty)
	if err != nil {
		return err
	}

	return tx.l.increase(symbol, d)
}

// DecreasePosition removes qty from the symbol's position.
func (tx *Tx) DecreasePosition(symbol string, qty float64) error {
	d, err := toDecimal(qty)
	if err != nil {
		return err
	}

	return tx.l.decrease(symbol, d)
}

// Balance returns the cash balance.
func (tx *Tx) Balance() float64 {
	return tx.l.balance.InexactFloat64()
}

// Position returns the quantity held for symbol.
func (tx *Tx) Position(symbol string) float64 {
	return tx.l.positions[symbol].InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// toDecimal converts v, rejecting NaN and infinities which decimal cannot represent.
func toDecimal(v float64) (decimal.Decimal, error) {
	if !finite(v) {
		return decimal.Decimal{}, errors.Newf(errors.ErrCodeInvalidParameter, "amount must be a finite number, got %f", v)
	}

	return decimal.NewFromFloat(v), nil
}

// unlocked mutators, callers hold l.mu

func (l *Ledger) credit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "credit amount must not be negative, got %s", amount)
	}

	l.balance = l.balance.Add(amount)

	return nil
}

func (l *Ledger) debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "debit amount must not be negative, got %s", amount)
	}

	if amount.GreaterThan(l.balance) {
		return errors.Newf(errors.ErrCodeInsufficientFunds, "debit %s exceeds balance %s", amount, l.balance)
	}

	l.balance = l.balance.Sub(amount)

	return nil
}

func (l *Ledger) increase(symbol string, qty decimal.Decimal) error {
	if symbol == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "symbol is required")
	}

	if qty.IsNegative() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "quantity must not be negative, got %s", qty)
	}

	if qty.IsZero() {
		return nil
	}

	l.positions[symbol] = l.positions[symbol].Add(qty)

	return nil
}

func (l *Ledger) decrease(symbol string, qty decimal.Decimal) error {
	if qty.IsNegative() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "quantity must not be negative, got %s", qty)
	}

	held := l.positions[symbol]
	if qty.GreaterThan(held) {
		return errors.Newf(errors.ErrCodeInsufficientPosition, "cannot decrease %s by %s, position is %s", symbol, qty, held)
	}

	remaining := held.Sub(qty)
	if remaining.IsZero() {
		delete(l.positions, symbol)

		return nil
	}

	l.positions[symbol] = remaining

	return nil
}

package types

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

type Side string

type ExecutionMode string

type OrderStatus string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

const (
	// ExecutionModeSimulated settles orders against the local ledger
	ExecutionModeSimulated ExecutionMode = "simulated"
	// ExecutionModeLive submits orders to the exchange
	ExecutionModeLive ExecutionMode = "live"
)

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusRejected OrderStatus = "REJECTED"
	OrderStatusFailed   OrderStatus = "FAILED"
)

// ParseExecutionMode parses a mode name. "paper" is accepted as an alias of simulated.
func ParseExecutionMode(mode string) (ExecutionMode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case string(ExecutionModeSimulated), "paper":
		return ExecutionModeSimulated, nil
	case string(ExecutionModeLive):
		return ExecutionModeLive, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidMode, "unknown execution mode: %q", mode)
	}
}

// ExecutionRecord is the normalized outcome of one execution attempt.
type ExecutionRecord struct {
	ID       string        `yaml:"id" json:"id" csv:"id" validate:"required"`
	Symbol   string        `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Side     Side          `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL"`
	Quantity float64       `yaml:"quantity" json:"quantity" csv:"quantity" validate:"gt=0"`
	Price    float64       `yaml:"price" json:"price" csv:"price" validate:"gt=0"`
	Origin   ExecutionMode `yaml:"origin" json:"origin" csv:"origin" validate:"required,oneof=simulated live"`
	// OrderID is the exchange order id. It is empty for simulated fills.
	OrderID   string    `yaml:"order_id" json:"order_id" csv:"order_id"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp" csv:"timestamp" validate:"required"`
}

// Notional returns quantity times price.
func (r ExecutionRecord) Notional() float64 {
	return r.Quantity * r.Price
}

// Validate validates the ExecutionRecord struct.
func (r *ExecutionRecord) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid execution record", err)
	}

	return nil
}

// OrderConfirmation is what an order gateway reports back for a submitted market order.
type OrderConfirmation struct {
	OrderID        string      `yaml:"order_id" json:"order_id"`
	FilledQuantity float64     `yaml:"filled_quantity" json:"filled_quantity"`
	FillPrice      float64     `yaml:"fill_price" json:"fill_price"`
	Status         OrderStatus `yaml:"status" json:"status"`
}

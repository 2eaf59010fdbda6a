package execution

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/recorder"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

// PriceQuote returns the latest tradable price of a symbol.
type PriceQuote interface {
	LatestPrice(ctx context.Context, symbol string) (float64, error)
}

// OrderGateway submits market orders to an exchange.
type OrderGateway interface {
	SubmitMarketOrder(ctx context.Context, symbol string, side types.Side, quantity float64) (types.OrderConfirmation, error)
}

const (
	recordPrefixSimBuy  = "sim_buy"
	recordPrefixSimSell = "sim_sell"
	recordPrefixLive    = "live"
)

// Engine routes actionable signals to the simulated ledger or to a live
// gateway. The mode is fixed at construction.
type Engine struct {
	mode     types.ExecutionMode
	ledger   *ledger.Ledger
	quote    PriceQuote
	gateway  OrderGateway
	observer recorder.Observer
	logger   *logger.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver reports every execution and failure to observer.
func WithObserver(observer recorder.Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observer = observer
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an execution engine. Simulated mode needs a ledger and a
// price quote. Live mode needs an order gateway and never touches the ledger.
func NewEngine(mode types.ExecutionMode, l *ledger.Ledger, quote PriceQuote, gateway OrderGateway, opts ...Option) (*Engine, error) {
	switch mode {
	case types.ExecutionModeSimulated:
		if l == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "simulated mode requires a ledger")
		}

		if quote == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "simulated mode requires a price quote")
		}
	case types.ExecutionModeLive:
		if gateway == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "live mode requires an order gateway")
		}
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid execution mode: %q", mode)
	}

	e := &Engine{
		mode:     mode,
		ledger:   l,
		quote:    quote,
		gateway:  gateway,
		observer: recorder.NewNoop(),
		logger:   logger.NewNopLogger(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Mode returns the execution mode.
func (e *Engine) Mode() types.ExecutionMode {
	return e.mode
}

// Execute acts on signal for quantity units of symbol. Neutral yields None.
// Failures leave the ledger unchanged.
func (e *Engine) Execute(ctx context.Context, symbol string, signal types.Signal, quantity float64) (optional.Option[types.ExecutionRecord], error) {
	side, ok := signal.Side()
	if !ok {
		return optional.None[types.ExecutionRecord](), nil
	}

	if !positiveFinite(quantity) {
		return e.fail(errors.Newf(errors.ErrCodeInvalidParameter, "quantity must be a positive finite number, got %f", quantity))
	}

	var (
		record types.ExecutionRecord
		err    error
	)

	switch {
	case e.mode == types.ExecutionModeLive:
		record, err = e.executeLive(ctx, symbol, side, quantity)
	case side == types.SideBuy:
		record, err = e.simulateBuy(ctx, symbol, quantity)
	default:
		record, err = e.simulateSell(ctx, symbol, quantity)
	}

	if err != nil {
		return e.fail(err)
	}

	e.logger.Info("Order executed",
		zap.String("id", record.ID),
		zap.String("symbol", record.Symbol),
		zap.String("side", string(record.Side)),
		zap.Float64("quantity", record.Quantity),
		zap.Float64("price", record.Price),
		zap.String("origin", string(record.Origin)),
	)
	e.observer.OnExecution(record)

	return optional.Some(record), nil
}

func (e *Engine) simulateBuy(ctx context.Context, symbol string, quantity float64) (types.ExecutionRecord, error) {
	var record types.ExecutionRecord

	err := e.ledger.Transact(func(tx *ledger.Tx) error {
		price, err := e.latestPrice(ctx, symbol)
		if err != nil {
			return err
		}

		cost := quantity * price
		if cost > tx.Balance() {
			return errors.Newf(errors.ErrCodeInsufficientFunds,
				"buy %f %s at %f costs %f, balance is %f", quantity, symbol, price, cost, tx.Balance())
		}

		if err := tx.Debit(cost); err != nil {
			return err
		}

		if err := tx.IncreasePosition(symbol, quantity); err != nil {
			return err
		}

		record = e.newRecord(recordPrefixSimBuy, symbol, types.SideBuy, quantity, price)

		return nil
	})

	return record, err
}

func (e *Engine) simulateSell(ctx context.Context, symbol string, quantity float64) (types.ExecutionRecord, error) {
	var record types.ExecutionRecord

	err := e.ledger.Transact(func(tx *ledger.Tx) error {
		if held := tx.Position(symbol); held < quantity {
			return errors.Newf(errors.ErrCodeInsufficientPosition,
				"sell %f %s exceeds position %f", quantity, symbol, held)
		}

		price, err := e.latestPrice(ctx, symbol)
		if err != nil {
			return err
		}

		if err := tx.DecreasePosition(symbol, quantity); err != nil {
			return err
		}

		if err := tx.Credit(quantity * price); err != nil {
			return err
		}

		record = e.newRecord(recordPrefixSimSell, symbol, types.SideSell, quantity, price)

		return nil
	})

	return record, err
}

func (e *Engine) executeLive(ctx context.Context, symbol string, side types.Side, quantity float64) (types.ExecutionRecord, error) {
	confirmation, err := e.gateway.SubmitMarketOrder(ctx, symbol, side, quantity)
	if err != nil {
		return types.ExecutionRecord{}, errors.Wrapf(errors.ErrCodeLiveOrderFailed, err, "live %s order for %s failed", side, symbol)
	}

	switch {
	case confirmation.Status == types.OrderStatusRejected, confirmation.Status == types.OrderStatusFailed:
		return types.ExecutionRecord{}, errors.Newf(errors.ErrCodeLiveOrderFailed,
			"live %s order %s for %s ended %s", side, confirmation.OrderID, symbol, confirmation.Status)
	case !positiveFinite(confirmation.FilledQuantity), !positiveFinite(confirmation.FillPrice):
		return types.ExecutionRecord{}, errors.Newf(errors.ErrCodeLiveOrderFailed,
			"live %s order %s for %s reported no fill: quantity %f at %f",
			side, confirmation.OrderID, symbol, confirmation.FilledQuantity, confirmation.FillPrice)
	}

	record := e.newRecord(recordPrefixLive, symbol, side, confirmation.FilledQuantity, confirmation.FillPrice)
	record.OrderID = confirmation.OrderID

	return record, nil
}

func (e *Engine) latestPrice(ctx context.Context, symbol string) (float64, error) {
	price, err := e.quote.LatestPrice(ctx, symbol)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeDataError, err, "failed to quote %s", symbol)
	}

	if !positiveFinite(price) {
		return 0, errors.Newf(errors.ErrCodeDataError, "quote for %s is not a positive finite price: %f", symbol, price)
	}

	return price, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func (e *Engine) newRecord(prefix, symbol string, side types.Side, quantity, price float64) types.ExecutionRecord {
	return types.ExecutionRecord{
		ID:        prefix + "-" + uuid.New().String(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Origin:    e.mode,
		OrderID:   "",
		Timestamp: e.now(),
	}
}

func (e *Engine) fail(err error) (optional.Option[types.ExecutionRecord], error) {
	e.logger.Warn("Execution failed",
		zap.String("mode", string(e.mode)),
		zap.String("label", errors.Label(err)),
		zap.Error(err),
	)
	e.observer.OnError(err)

	return optional.None[types.ExecutionRecord](), err
}

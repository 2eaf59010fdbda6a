package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/execution"
	"github.com/rxtech-lab/argo-autotrader/internal/forecast"
	"github.com/rxtech-lab/argo-autotrader/internal/indicator"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/recorder"
	"github.com/rxtech-lab/argo-autotrader/internal/strategy"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// State is the run state of a Loop.
type State int32

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}

	return "stopped"
}

// Outcome classifies a finished iteration.
type Outcome string

const (
	OutcomeSkipped  Outcome = "skipped"
	OutcomeNeutral  Outcome = "neutral"
	OutcomeExecuted Outcome = "executed"
	OutcomeFailed   Outcome = "failed"

	// OutcomeDuplicate means the newest bar was already traded on.
	OutcomeDuplicate Outcome = "duplicate"
)

// Config holds the loop parameters.
type Config struct {
	Symbol    string `validate:"required"`
	Timeframe string `validate:"required"`
	// Limit is the number of bars fetched per iteration. It must cover the
	// pipeline warm-up.
	Limit        int     `validate:"gt=0"`
	RiskFraction float64 `validate:"gt=0,lte=1"`
	// Schedule is a cron spec used when no Scheduler is supplied.
	Schedule        string
	Backoff         time.Duration `validate:"gt=0"`
	MaxBackoff      time.Duration `validate:"gtefield=Backoff"`
	FetchTimeout    time.Duration `validate:"gt=0"`
	ForecastTimeout time.Duration `validate:"gt=0"`
	ExecuteTimeout  time.Duration `validate:"gt=0"`
}

// DefaultConfig returns the loop defaults for symbol.
func DefaultConfig(symbol string) Config {
	return Config{
		Symbol:          symbol,
		Timeframe:       "1h",
		Limit:           100,
		RiskFraction:    0.1,
		Schedule:        DefaultSchedule,
		Backoff:         10 * time.Second,
		MaxBackoff:      5 * time.Minute,
		FetchTimeout:    30 * time.Second,
		ForecastTimeout: 30 * time.Second,
		ExecuteTimeout:  30 * time.Second,
	}
}

// Dependencies are the collaborators of a Loop. Forecast, Observer, Logger
// and Scheduler are optional.
type Dependencies struct {
	Source    provider.MarketDataSource
	Pipeline  *indicator.Pipeline
	Policy    *strategy.Policy
	Engine    *execution.Engine
	Ledger    *ledger.Ledger
	Forecast  forecast.Source
	Observer  recorder.Observer
	Logger    *logger.Logger
	Scheduler Scheduler
}

// IterationResult describes one pass through fetch, enrich, signal and execute.
type IterationResult struct {
	Outcome  Outcome
	Signal   types.Signal
	Bars     int
	Enriched int
	Price    float64
	Quantity float64
	Record   optional.Option[types.ExecutionRecord]
	Started  time.Time
	Duration time.Duration
}

// Status is a point-in-time summary of a Loop for status reporting.
type Status struct {
	State      string                     `json:"state"`
	Symbol     string                     `json:"symbol"`
	Mode       string                     `json:"mode"`
	Iterations int                        `json:"iterations"`
	Failures   int                        `json:"failures"`
	Executions int                        `json:"executions"`
	LastRun    time.Time                  `json:"lastRun"`
	LastResult Outcome                    `json:"lastResult,omitempty"`
	LastSignal types.Signal               `json:"lastSignal,omitempty"`
	LastError  string                     `json:"lastError,omitempty"`
	NextRetry  optional.Option[time.Time] `json:"nextRetry"`
}

// Option configures a Loop.
type Option func(*Loop)

// WithSleep replaces the function used to wait out a backoff.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Loop) {
		if sleep != nil {
			l.sleep = sleep
		}
	}
}

// WithClock overrides the iteration timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		if now != nil {
			l.now = now
		}
	}
}

// Loop sequences fetch, indicator, signal and execution on every tick of
// its scheduler. Iteration failures are logged and retried after a backoff.
type Loop struct {
	cfg       Config
	source    provider.MarketDataSource
	pipeline  *indicator.Pipeline
	policy    *strategy.Policy
	engine    *execution.Engine
	ledger    *ledger.Ledger
	forecast  forecast.Source
	observer  recorder.Observer
	logger    *logger.Logger
	scheduler Scheduler
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time

	state atomic.Int32

	mu     sync.RWMutex
	status Status
	// lastActed is the time of the last bar an order was executed on.
	lastActed time.Time
}

// New validates cfg and deps and returns a stopped Loop.
func New(cfg Config, deps Dependencies, opts ...Option) (*Loop, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid loop configuration", err)
	}

	switch {
	case deps.Source == nil:
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "loop requires a market data source")
	case deps.Pipeline == nil:
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "loop requires an indicator pipeline")
	case deps.Policy == nil:
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "loop requires a signal policy")
	case deps.Engine == nil:
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "loop requires an execution engine")
	case deps.Ledger == nil:
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "loop requires a ledger")
	}

	if warmup := deps.Pipeline.Warmup(); cfg.Limit < warmup {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration,
			"limit %d is below the indicator warm-up of %d bars", cfg.Limit, warmup)
	}

	scheduler := deps.Scheduler
	if scheduler == nil {
		spec := cfg.Schedule
		if spec == "" {
			spec = DefaultSchedule
		}

		cronScheduler, err := NewCronScheduler(spec)
		if err != nil {
			return nil, err
		}

		scheduler = cronScheduler
	}

	l := &Loop{
		cfg:       cfg,
		source:    deps.Source,
		pipeline:  deps.Pipeline,
		policy:    deps.Policy,
		engine:    deps.Engine,
		ledger:    deps.Ledger,
		forecast:  deps.Forecast,
		observer:  deps.Observer,
		logger:    deps.Logger,
		scheduler: scheduler,
		sleep:     sleepContext,
		now:       time.Now,
	}

	if l.forecast == nil {
		l.forecast = forecast.Noop{}
	}

	if l.observer == nil {
		l.observer = recorder.NewNoop()
	}

	if l.logger == nil {
		l.logger = logger.NewNopLogger()
	}

	for _, opt := range opts {
		opt(l)
	}

	l.status = Status{
		State:     StateStopped.String(),
		Symbol:    cfg.Symbol,
		Mode:      string(deps.Engine.Mode()),
		NextRetry: optional.None[time.Time](),
	}

	return l, nil
}

// State returns the current run state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Status returns a copy of the loop status.
func (l *Loop) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()

	status := l.status
	status.State = l.State().String()

	return status
}

// Ledger returns the ledger the loop trades against.
func (l *Loop) Ledger() *ledger.Ledger {
	return l.ledger
}

// Run ticks until ctx is cancelled or the scheduler is exhausted. The first
// iteration runs immediately. An iteration in flight is never interrupted by
// cancellation; each blocking step is bounded by its own timeout instead.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return errors.New(errors.ErrCodeLoopAlreadyRunning, "control loop is already running")
	}
	defer l.state.Store(int32(StateStopped))

	l.logger.Info("Control loop started",
		zap.String("symbol", l.cfg.Symbol),
		zap.String("timeframe", l.cfg.Timeframe),
		zap.String("mode", string(l.engine.Mode())),
	)

	ticks := l.scheduler.Ticks(ctx)
	defer l.scheduler.Stop()

	retry := l.newBackOff()

	for {
		if !l.iterate(ctx, retry) {
			break
		}

		select {
		case <-ctx.Done():
		case _, ok := <-ticks:
			if ok {
				continue
			}
		}

		break
	}

	l.logger.Info("Control loop stopped", zap.String("symbol", l.cfg.Symbol))

	return nil
}

// iterate runs one iteration and waits out the backoff after a failure.
// It returns false when ctx was cancelled during the backoff.
func (l *Loop) iterate(ctx context.Context, retry backoff.BackOff) bool {
	if ctx.Err() != nil {
		return false
	}

	_, err := l.RunOnce(context.WithoutCancel(ctx))
	if err == nil {
		retry.Reset()

		return true
	}

	wait := retry.NextBackOff()

	l.logger.Warn("Iteration failed, backing off",
		zap.String("symbol", l.cfg.Symbol),
		zap.String("label", errors.Label(err)),
		zap.Bool("recoverable", errors.IsRecoverable(err)),
		zap.Duration("backoff", wait),
		zap.Error(err),
	)

	l.mu.Lock()
	l.status.NextRetry = optional.Some(l.now().Add(wait))
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.status.NextRetry = optional.None[time.Time]()
		l.mu.Unlock()
	}()

	return l.sleep(ctx, wait) == nil
}

// RunOnce performs a single iteration. Skipped and Neutral outcomes are not
// errors. The observer receives a ledger snapshot after every iteration.
func (l *Loop) RunOnce(ctx context.Context) (result IterationResult, err error) {
	result = IterationResult{
		Outcome: OutcomeFailed,
		Signal:  types.SignalNeutral,
		Record:  optional.None[types.ExecutionRecord](),
		Started: l.now(),
	}

	defer func() {
		result.Duration = l.now().Sub(result.Started)
		l.finish(result, err)
		l.observer.OnSnapshot(l.ledger.Snapshot())
	}()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeUnknown, "iteration panicked: %v", r)
			result.Outcome = OutcomeFailed
			result.Record = optional.None[types.ExecutionRecord]()

			l.logger.Error("Iteration panicked",
				zap.String("symbol", l.cfg.Symbol),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			l.observer.OnError(err)
		}
	}()

	series, err := l.fetch(ctx)
	if err != nil {
		l.observer.OnError(err)

		return result, err
	}

	result.Bars = len(series)

	enriched := l.pipeline.Enrich(series)
	result.Enriched = len(enriched)

	if len(enriched) == 0 {
		l.logger.Info("Insufficient history, skipping iteration",
			zap.String("symbol", l.cfg.Symbol),
			zap.Int("bars", len(series)),
			zap.Int("required", l.pipeline.Warmup()),
		)

		result.Outcome = OutcomeSkipped

		return result, nil
	}

	last := enriched[len(enriched)-1]
	result.Price = last.Close
	result.Signal = l.policy.Latest(enriched, l.predict(ctx, enriched))

	if !result.Signal.IsActionable() {
		l.logger.Debug("Neutral signal",
			zap.String("symbol", l.cfg.Symbol),
			zap.Float64("close", last.Close),
			zap.Float64("rsi", last.RSI),
		)

		result.Outcome = OutcomeNeutral

		return result, nil
	}

	if l.actedOn(last.Time) {
		l.logger.Debug("Signal already acted on for this bar",
			zap.String("symbol", l.cfg.Symbol),
			zap.String("signal", string(result.Signal)),
			zap.Time("bar", last.Time),
		)

		result.Outcome = OutcomeDuplicate

		return result, nil
	}

	result.Quantity = strategy.PositionSize(l.ledger.Balance(), l.cfg.RiskFraction, last.Close)

	l.logger.Info("Actionable signal",
		zap.String("symbol", l.cfg.Symbol),
		zap.String("signal", string(result.Signal)),
		zap.Float64("close", last.Close),
		zap.Float64("quantity", result.Quantity),
	)

	executeCtx, cancel := context.WithTimeout(ctx, l.cfg.ExecuteTimeout)
	defer cancel()

	record, err := l.engine.Execute(executeCtx, l.cfg.Symbol, result.Signal, result.Quantity)
	if err != nil {
		return result, timeoutOr(executeCtx, err, "execute")
	}

	l.mu.Lock()
	l.lastActed = last.Time
	l.mu.Unlock()

	result.Record = record
	result.Outcome = OutcomeExecuted

	return result, nil
}

// actedOn reports whether an order was already executed on a bar at or after t.
func (l *Loop) actedOn(t time.Time) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return !l.lastActed.IsZero() && !t.After(l.lastActed)
}

func (l *Loop) fetch(ctx context.Context) (types.Series, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, l.cfg.FetchTimeout)
	defer cancel()

	bars, err := l.source.FetchBars(fetchCtx, l.cfg.Symbol, l.cfg.Timeframe, l.cfg.Limit)
	if err != nil {
		return nil, timeoutOr(fetchCtx, errors.Wrapf(errors.ErrCodeDataError, err, "failed to fetch %s bars", l.cfg.Symbol), "fetch")
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataError, "no bars returned for %s", l.cfg.Symbol)
	}

	return types.NormalizeSeries(bars)
}

// predict runs the forecast source. A failure is logged and treated as no
// forecast.
func (l *Loop) predict(ctx context.Context, enriched []types.EnrichedBar) optional.Option[[]float64] {
	forecastCtx, cancel := context.WithTimeout(ctx, l.cfg.ForecastTimeout)
	defer cancel()

	prediction, err := l.forecast.Forecast(forecastCtx, enriched)
	if err != nil {
		l.logger.Warn("Forecast failed, continuing without it",
			zap.String("symbol", l.cfg.Symbol),
			zap.Error(err),
		)

		return optional.None[[]float64]()
	}

	return prediction
}

func (l *Loop) finish(result IterationResult, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.status.Iterations++
	l.status.LastRun = result.Started
	l.status.LastResult = result.Outcome
	l.status.LastSignal = result.Signal
	l.status.LastError = ""

	if err != nil {
		l.status.Failures++
		l.status.LastError = err.Error()
	}

	if result.Outcome == OutcomeExecuted {
		l.status.Executions++
	}
}

func (l *Loop) newBackOff() backoff.BackOff {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = l.cfg.Backoff
	retry.MaxInterval = l.cfg.MaxBackoff
	retry.RandomizationFactor = 0
	retry.MaxElapsedTime = 0
	retry.Reset()

	return retry
}

// timeoutOr reports a deadline hit on stepCtx as IterationTimeout and
// otherwise returns err unchanged.
func timeoutOr(stepCtx context.Context, err error, step string) error {
	if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		return errors.Wrapf(errors.ErrCodeIterationTimeout, err, "%s step timed out", step)
	}

	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package metrics

import (
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-autotrader/internal/recorder"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

const namespace = "autotrader"

// Metrics holds the prometheus collectors of one trading instance. Each
// instance owns its registry so several can coexist in one process.
type Metrics struct {
	registry   *prometheus.Registry
	executions *prometheus.CounterVec
	notional   *prometheus.CounterVec
	failures   *prometheus.CounterVec
	balance    prometheus.Gauge
	positions  *prometheus.GaugeVec
	snapshots  prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "executions_total", Help: "Executed orders"},
			[]string{"symbol", "side", "origin"},
		),
		notional: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "traded_notional_total", Help: "Quantity times fill price of executed orders"},
			[]string{"symbol", "side"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "errors_total", Help: "Failed executions and iterations by error code"},
			[]string{"code"},
		),
		balance: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "ledger_balance", Help: "Cash balance of the simulated ledger"},
		),
		positions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: namespace, Name: "ledger_position", Help: "Held quantity per symbol"},
			[]string{"symbol"},
		),
		snapshots: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "iterations_total", Help: "Completed control loop iterations"},
		),
	}

	m.registry.MustRegister(m.executions, m.notional, m.failures, m.balance, m.positions, m.snapshots)

	return m
}

// Registry returns the registry that holds the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Event is the websocket message pushed to status subscribers.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

const (
	EventExecution = "execution"
	EventError     = "error"
	EventSnapshot  = "snapshot"
)

type errorPayload struct {
	Code    int    `json:"code"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

// Observer records executions, failures and snapshots as prometheus metrics
// and broadcasts them to websocket subscribers.
type Observer struct {
	metrics *Metrics
	hub     *Hub
	now     func() time.Time
}

// NewObserver creates an observer. hub may be nil when no websocket
// endpoint is served.
func NewObserver(m *Metrics, hub *Hub) *Observer {
	return &Observer{metrics: m, hub: hub, now: time.Now}
}

func (o *Observer) OnExecution(record types.ExecutionRecord) {
	o.metrics.executions.WithLabelValues(record.Symbol, string(record.Side), string(record.Origin)).Inc()
	o.metrics.notional.WithLabelValues(record.Symbol, string(record.Side)).Add(record.Notional())
	o.publish(EventExecution, record)
}

func (o *Observer) OnError(err error) {
	o.metrics.failures.WithLabelValues(errors.Label(err)).Inc()
	o.publish(EventError, errorPayload{
		Code:    int(errors.GetCode(err)),
		Label:   errors.Label(err),
		Message: err.Error(),
	})
}

func (o *Observer) OnSnapshot(snapshot types.LedgerSnapshot) {
	o.metrics.snapshots.Inc()
	o.metrics.balance.Set(snapshot.Balance)

	o.metrics.positions.Reset()
	for symbol, qty := range snapshot.Positions {
		o.metrics.positions.WithLabelValues(symbol).Set(qty)
	}

	o.publish(EventSnapshot, snapshot)
}

func (o *Observer) publish(kind string, data any) {
	if o.hub == nil {
		return
	}

	payload, err := json.Marshal(Event{Type: kind, Time: o.now(), Data: data})
	if err != nil {
		return
	}

	o.hub.Broadcast(payload)
}

var _ recorder.Observer = (*Observer)(nil)

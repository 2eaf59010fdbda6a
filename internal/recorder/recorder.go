package recorder

import (
	"io"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// Kind selects a recorder backend in configuration.
type Kind string

const (
	KindNoop    Kind = "noop"
	KindSQLite  Kind = "sqlite"
	KindParquet Kind = "parquet"
)

// Observer receives execution records, iteration failures and ledger
// snapshots. Implementations are sinks: they never return errors to the
// caller and must be safe for concurrent use.
type Observer interface {
	// OnExecution is called once for every executed order
	OnExecution(record types.ExecutionRecord)
	// OnError is called for every failed execution or iteration
	OnError(err error)
	// OnSnapshot is called with the ledger state at the end of an iteration
	OnSnapshot(snapshot types.LedgerSnapshot)
}

// Recorder is an Observer backed by a resource that must be closed.
type Recorder interface {
	Observer
	io.Closer
}

// Noop discards everything. It is the default when no recorder is configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) OnExecution(types.ExecutionRecord) {}
func (Noop) OnError(error)                     {}
func (Noop) OnSnapshot(types.LedgerSnapshot)   {}
func (Noop) Close() error                      { return nil }

var _ Recorder = (*Noop)(nil)

package recorder

import (
	"io"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"go.uber.org/multierr"
)

// Multi fans every event out to a list of observers in order.
type Multi struct {
	observers []Observer
}

// NewMulti creates a fan-out observer. Nil entries are skipped.
func NewMulti(observers ...Observer) *Multi {
	m := &Multi{observers: make([]Observer, 0, len(observers))}

	for _, o := range observers {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}

	return m
}

func (m *Multi) OnExecution(record types.ExecutionRecord) {
	for _, o := range m.observers {
		o.OnExecution(record)
	}
}

func (m *Multi) OnError(err error) {
	for _, o := range m.observers {
		o.OnError(err)
	}
}

func (m *Multi) OnSnapshot(snapshot types.LedgerSnapshot) {
	for _, o := range m.observers {
		o.OnSnapshot(snapshot)
	}
}

// Close closes every observer that is also an io.Closer and combines their errors.
func (m *Multi) Close() error {
	var err error

	for _, o := range m.observers {
		if closer, ok := o.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	}

	return err
}

var _ Recorder = (*Multi)(nil)

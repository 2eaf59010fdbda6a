// Package writer archives downloaded bars.
package writer

import (
	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// MarketDataWriter receives bars one at a time between Initialize and
// Finalize. Finalize flushes the archive and reports where it landed. Close
// is safe to call after Finalize.
type MarketDataWriter interface {
	Initialize() error
	Write(bar types.Bar) error
	Finalize() (outputPath string, err error)
	Close() error
	GetOutputPath() string
}

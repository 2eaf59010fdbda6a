package tradingprovider

import (
	"context"

	"github.com/rxtech-lab/argo-autotrader/internal/execution"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider"
)

// LastCloseQuote prices a symbol at the close of its most recent bar. It
// serves simulated runs against sources without a ticker endpoint.
type LastCloseQuote struct {
	source    provider.MarketDataSource
	timeframe string
}

// NewLastCloseQuote quotes from the latest bar of timeframe.
func NewLastCloseQuote(source provider.MarketDataSource, timeframe string) *LastCloseQuote {
	return &LastCloseQuote{source: source, timeframe: timeframe}
}

// LatestPrice fetches a single bar and returns its close.
func (q *LastCloseQuote) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	bars, err := q.source.FetchBars(ctx, symbol, q.timeframe, 1)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQuoteFailed, err, "failed to fetch last bar of %s", symbol)
	}

	last, ok := bars.Last()
	if !ok {
		return 0, errors.Newf(errors.ErrCodeQuoteFailed, "no bars for %s", symbol)
	}

	return last.Close, nil
}

var _ execution.PriceQuote = (*LastCloseQuote)(nil)

package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/writer"
)

// PolygonAggsIterator is the iterator returned by ListAggs.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the Polygon client for testing.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type realPolygonAPIClient struct {
	client *polygon.Client
}

func (r *realPolygonAPIClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return r.client.ListAggs(ctx, params, options...)
}

// PolygonClient reads aggregate bars from Polygon.io.
type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.MarketDataWriter
	now       func() time.Time
}

func NewPolygonClient(apiKey string) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	return NewPolygonClientWithAPI(&realPolygonAPIClient{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a client over a custom API, used with mocks in tests.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		writer:    nil,
		now:       time.Now,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// FetchBars requests aggregates covering limit bars back from now and keeps the
// last limit of them. Markets that close overnight may return fewer bars.
func (c *PolygonClient) FetchBars(ctx context.Context, symbol, timeframe string, limit int) (types.Series, error) {
	tf, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "limit must be positive, got %d", limit)
	}

	end := c.now()
	start := end.Add(-time.Duration(limit) * tf.Duration())

	bars := make(types.Series, 0, limit)

	err = c.listAggs(ctx, symbol, start, end, tf, func(bar types.Bar) error {
		bars = append(bars, bar)

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	return bars, nil
}

// Download writes every aggregate of [startDate, endDate].
func (c *PolygonClient) Download(ctx context.Context, symbol string, startDate time.Time, endDate time.Time, timeframe Timeframe, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "no writer configured for PolygonClient, call ConfigWriter first")
	}

	if err := c.writer.Initialize(); err != nil {
		return "", err
	}

	total := float64(endDate.Sub(startDate))

	err = c.listAggs(ctx, symbol, startDate, endDate, timeframe, func(bar types.Bar) error {
		if err := c.writer.Write(bar); err != nil {
			return err
		}

		if onProgress != nil {
			onProgress(float64(bar.Time.Sub(startDate)), total, "Downloading "+symbol+" from Polygon")
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return c.writer.Finalize()
}

func (c *PolygonClient) listAggs(ctx context.Context, symbol string, start, end time.Time, tf Timeframe, yield func(types.Bar) error) error {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: tf.Multiplier(),
		Timespan:   tf.Timespan(),
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithOrder(models.Asc).WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	for iter.Next() {
		agg := iter.Item()

		bar := types.Bar{
			Time:   time.Time(agg.Timestamp).UTC(),
			Symbol: symbol,
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		}

		if err := yield(bar); err != nil {
			return err
		}
	}

	if err := iter.Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "error iterating polygon aggregates for %s", symbol)
	}

	return nil
}

var _ Provider = (*PolygonClient)(nil)

package provider

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/writer"
)

// CSVSource replays bars from a CSV file with a header of
// time,symbol,open,high,low,close,volume. Times are RFC3339.
//
// Every FetchBars call moves a replay cursor forward by one bar, so a loop
// polling the source sees the file as if bars arrived one at a time. The
// first call returns the first limit bars. Once the file is exhausted the
// last window is returned again.
type CSVSource struct {
	FilePath string

	mu     sync.Mutex
	cache  map[string]types.Series
	cursor map[string]int
	writer writer.MarketDataWriter
}

// NewCSVSource creates a replay source over filePath. The file is read lazily.
func NewCSVSource(filePath string) (*CSVSource, error) {
	if filePath == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "csv path is required")
	}

	return &CSVSource{
		FilePath: filePath,
		cache:    nil,
		cursor:   make(map[string]int),
	}, nil
}

func (c *CSVSource) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// FetchBars returns the replay window for symbol and advances the cursor.
// The timeframe is not resampled; the file is assumed to hold one timeframe.
func (c *CSVSource) FetchBars(_ context.Context, symbol, _ string, limit int) (types.Series, error) {
	if limit <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "limit must be positive, got %d", limit)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	series, err := c.load(symbol)
	if err != nil {
		return nil, err
	}

	end, ok := c.cursor[symbol]
	if !ok {
		end = min(limit, len(series))
	} else {
		end = min(end+1, len(series))
	}

	c.cursor[symbol] = end

	start := max(0, end-limit)
	out := make(types.Series, end-start)
	copy(out, series[start:end])

	for i := range out {
		if out[i].Symbol == "" {
			out[i].Symbol = symbol
		}
	}

	return out, nil
}

// LatestPrice returns the close of the bar at the replay cursor without
// advancing it. Before the first fetch it is the first bar's close.
func (c *CSVSource) LatestPrice(_ context.Context, symbol string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	series, err := c.load(symbol)
	if err != nil {
		return 0, err
	}

	idx := max(c.cursor[symbol]-1, 0)

	return series[idx].Close, nil
}

// Download writes every bar of [startDate, endDate]. The timeframe is ignored.
func (c *CSVSource) Download(_ context.Context, symbol string, startDate time.Time, endDate time.Time, _ Timeframe, onProgress OnDownloadProgress) (string, error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not configured")
	}

	c.mu.Lock()
	series, err := c.load(symbol)
	c.mu.Unlock()

	if err != nil {
		return "", err
	}

	if err := c.writer.Initialize(); err != nil {
		return "", err
	}

	for i, bar := range series {
		if bar.Time.Before(startDate) || bar.Time.After(endDate) {
			continue
		}

		if err := c.writer.Write(bar); err != nil {
			return "", err
		}

		if onProgress != nil {
			onProgress(float64(i+1), float64(len(series)), "Copying "+symbol+" from "+c.FilePath)
		}
	}

	return c.writer.Finalize()
}

// load reads the file once and returns the normalized bars of symbol.
// Rows without a symbol belong to every symbol. Callers hold c.mu.
func (c *CSVSource) load(symbol string) (types.Series, error) {
	if c.cache == nil {
		file, err := os.Open(c.FilePath)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open csv file %s", c.FilePath)
		}
		defer file.Close()

		var rows []types.Bar
		if err := gocsv.UnmarshalFile(file, &rows); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to parse csv file %s", c.FilePath)
		}

		c.cache = make(map[string]types.Series)
		for _, row := range rows {
			c.cache[row.Symbol] = append(c.cache[row.Symbol], row)
		}

		for key, bars := range c.cache {
			normalized, err := types.NormalizeSeries(bars)
			if err != nil {
				c.cache = nil

				return nil, err
			}

			c.cache[key] = normalized
		}
	}

	series, ok := c.cache[symbol]
	if !ok {
		series, ok = c.cache[""]
	}

	if !ok || len(series) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoDataFound, "no bars for %s in %s", symbol, c.FilePath)
	}

	return series, nil
}

var _ Provider = (*CSVSource)(nil)

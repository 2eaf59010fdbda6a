package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/writer"
)

// binanceMaxKlines is the largest page the klines endpoint returns.
const binanceMaxKlines = 1000

// BinanceKlinesService is the subset of binance.KlinesService used here.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient abstracts the Binance client for testing.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type realBinanceAPIClient struct {
	client *binance.Client
}

func (r *realBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	return &realBinanceKlinesService{service: r.client.NewKlinesService()}
}

type realBinanceKlinesService struct {
	service *binance.KlinesService
}

func (s *realBinanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *realBinanceKlinesService) Limit(limit int) BinanceKlinesService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realBinanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	s.service = s.service.StartTime(startTime)

	return s
}

func (s *realBinanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	s.service = s.service.EndTime(endTime)

	return s
}

func (s *realBinanceKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

// BinanceClient reads public spot klines. No credentials are needed.
type BinanceClient struct {
	apiClient BinanceAPIClient
	writer    writer.MarketDataWriter
}

func NewBinanceClient() (*BinanceClient, error) {
	client := binance.NewClient("", "")

	return NewBinanceClientWithAPI(&realBinanceAPIClient{client: client}), nil
}

// NewBinanceClientWithAPI creates a client over a custom API, used with mocks in tests.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *BinanceClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// FetchBars returns the most recent klines of symbol, oldest first.
func (c *BinanceClient) FetchBars(ctx context.Context, symbol, timeframe string, limit int) (types.Series, error) {
	tf, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > binanceMaxKlines {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "limit must be between 1 and %d, got %d", binanceMaxKlines, limit)
	}

	ticker := normalizeSymbol(symbol)

	klines, err := c.apiClient.NewKlinesService().
		Symbol(ticker).
		Interval(tf.BinanceInterval()).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from Binance", ticker)
	}

	return convertKlines(ticker, klines)
}

// Download pages through the klines of [startDate, endDate] and writes every bar.
func (c *BinanceClient) Download(ctx context.Context, symbol string, startDate time.Time, endDate time.Time, timeframe Timeframe, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not configured")
	}

	if err := c.writer.Initialize(); err != nil {
		return "", err
	}

	ticker := normalizeSymbol(symbol)
	startMillis := startDate.UnixMilli()
	endMillis := endDate.UnixMilli()
	current := startMillis

	for current < endMillis {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download cancelled", err)
		}

		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(timeframe.BinanceInterval()).
			StartTime(current).
			EndTime(endMillis).
			Limit(binanceMaxKlines).
			Do(ctx)
		if err != nil {
			return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from Binance", ticker)
		}

		bars, err := convertKlines(ticker, klines)
		if err != nil {
			return "", err
		}

		for _, bar := range bars {
			if err := c.writer.Write(bar); err != nil {
				return "", err
			}
		}

		if onProgress != nil {
			onProgress(float64(current-startMillis), float64(endMillis-startMillis), "Downloading "+ticker+" klines from Binance")
		}

		if len(klines) < binanceMaxKlines {
			break
		}

		// next page starts right after the last close time
		current = klines[len(klines)-1].CloseTime + 1
	}

	return c.writer.Finalize()
}

// convertKlines parses kline strings into bars. Any malformed field fails the batch.
func convertKlines(symbol string, klines []*binance.Kline) (types.Series, error) {
	bars := make(types.Series, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q at %d", raw, k.OpenTime)
			}

			values[i] = v
		}

		bars = append(bars, types.Bar{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Symbol: symbol,
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return bars, nil
}

var _ Provider = (*BinanceClient)(nil)

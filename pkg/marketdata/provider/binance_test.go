package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BinanceClientTestSuite struct {
	suite.Suite
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func kline(openTime int64, closePrice string) *binance.Kline {
	return &binance.Kline{
		OpenTime:  openTime,
		Open:      "100",
		High:      "110",
		Low:       "90",
		Close:     closePrice,
		Volume:    "12.5",
		CloseTime: openTime + 3_599_999,
	}
}

func pageOfKlines(start int64, n int) []*binance.Kline {
	out := make([]*binance.Kline, n)
	for i := range out {
		out[i] = kline(start+int64(i)*3_600_000, fmt.Sprintf("%d", 100+i))
	}

	return out
}

func (suite *BinanceClientTestSuite) TestNewBinanceClient() {
	client, err := NewBinanceClient()
	suite.NoError(err)
	suite.NotNil(client.apiClient)
	suite.Nil(client.writer)
}

func (suite *BinanceClientTestSuite) TestFetchBars() {
	mockAPI := &mockBinanceAPIClient{klines: []*binance.Kline{
		kline(1704067200000, "105.5"),
		kline(1704070800000, "106"),
	}}
	client := NewBinanceClientWithAPI(mockAPI)

	bars, err := client.FetchBars(context.Background(), "BTC/USDT", "1h", 100)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)

	suite.Equal("BTCUSDT", bars[0].Symbol)
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Time)
	suite.Equal(105.5, bars[0].Close)
	suite.Equal(110.0, bars[0].High)
	suite.Equal(12.5, bars[0].Volume)
	suite.Equal(106.0, bars[1].Close)

	suite.Require().Len(mockAPI.requests, 1)
	suite.Equal("BTCUSDT", mockAPI.requests[0].symbol)
	suite.Equal("1h", mockAPI.requests[0].interval)
	suite.Equal(100, mockAPI.requests[0].limit)
}

func (suite *BinanceClientTestSuite) TestFetchBarsInvalidInput() {
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{})

	_, err := client.FetchBars(context.Background(), "BTCUSDT", "7h", 10)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = client.FetchBars(context.Background(), "BTCUSDT", "1h", 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = client.FetchBars(context.Background(), "BTCUSDT", "1h", 1001)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *BinanceClientTestSuite) TestFetchBarsAPIError() {
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{klinesErr: stderrors.New("API rate limit exceeded")})

	_, err := client.FetchBars(context.Background(), "BTCUSDT", "1h", 10)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.Contains(err.Error(), "API rate limit exceeded")
}

func (suite *BinanceClientTestSuite) TestFetchBarsMalformedKline() {
	bad := kline(1704067200000, "not-a-number")
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{klines: []*binance.Kline{bad}})

	_, err := client.FetchBars(context.Background(), "BTCUSDT", "1h", 10)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataParseFailed))
}

func (suite *BinanceClientTestSuite) TestDownloadPaginates() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := pageOfKlines(start.UnixMilli(), binanceMaxKlines)
	second := pageOfKlines(first[len(first)-1].CloseTime+1, 3)

	mockAPI := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{first, second}}
	mockW := &mockWriter{outputPath: "/tmp/test.parquet"}

	client := NewBinanceClientWithAPI(mockAPI)
	client.ConfigWriter(mockW)

	var progressCalls int

	path, err := client.Download(context.Background(), "BTCUSDT", start, start.Add(2000*time.Hour), TimeframeOneHour,
		func(current, total float64, _ string) {
			progressCalls++
			suite.LessOrEqual(current, total)
		})
	suite.Require().NoError(err)
	suite.Equal("/tmp/test.parquet", path)
	suite.True(mockW.initialized)
	suite.Len(mockW.writtenData, binanceMaxKlines+3)
	suite.Equal(2, progressCalls)

	suite.Require().Len(mockAPI.requests, 2)
	suite.Equal(first[len(first)-1].CloseTime+1, mockAPI.requests[1].start)
}

func (suite *BinanceClientTestSuite) TestDownloadWithoutWriter() {
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{})

	_, err := client.Download(context.Background(), "BTCUSDT", time.Now().Add(-time.Hour), time.Now(), TimeframeOneHour, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
}

func (suite *BinanceClientTestSuite) TestDownloadAPIError() {
	mockW := &mockWriter{outputPath: "/tmp/test.parquet"}
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{klinesErr: stderrors.New("API error")})
	client.ConfigWriter(mockW)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.Download(context.Background(), "BTCUSDT", start, start.Add(24*time.Hour), TimeframeOneHour, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.Equal(0, mockW.finalizeCallCount)
}

func (suite *BinanceClientTestSuite) TestDownloadCancelled() {
	mockW := &mockWriter{outputPath: "/tmp/test.parquet"}
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{})
	client.ConfigWriter(mockW)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.Download(ctx, "BTCUSDT", start, start.Add(24*time.Hour), TimeframeOneHour, nil)
	suite.Error(err)
	suite.ErrorIs(err, context.Canceled)
}

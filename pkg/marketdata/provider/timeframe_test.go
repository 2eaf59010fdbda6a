package provider

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/suite"
)

type TimeframeTestSuite struct {
	suite.Suite
}

func TestTimeframeSuite(t *testing.T) {
	suite.Run(t, new(TimeframeTestSuite))
}

func (suite *TimeframeTestSuite) TestParse() {
	tests := []struct {
		input      string
		multiplier int
		timespan   models.Timespan
		duration   time.Duration
	}{
		{"1m", 1, models.Minute, time.Minute},
		{"15m", 15, models.Minute, 15 * time.Minute},
		{"1h", 1, models.Hour, time.Hour},
		{"4h", 4, models.Hour, 4 * time.Hour},
		{"1d", 1, models.Day, 24 * time.Hour},
		{"1w", 1, models.Week, 7 * 24 * time.Hour},
		{"1M", 1, models.Month, 30 * 24 * time.Hour},
	}

	for _, tc := range tests {
		suite.Run(tc.input, func() {
			tf, err := ParseTimeframe(tc.input)
			suite.Require().NoError(err)
			suite.Equal(tc.multiplier, tf.Multiplier())
			suite.Equal(tc.timespan, tf.Timespan())
			suite.Equal(tc.duration, tf.Duration())
			suite.Equal(tc.input, tf.BinanceInterval())
		})
	}
}

func (suite *TimeframeTestSuite) TestParseInvalid() {
	for _, input := range []string{"", "1s", "2d", "1H", "hour"} {
		_, err := ParseTimeframe(input)
		suite.Error(err, input)
	}
}

func (suite *TimeframeTestSuite) TestUnknownDefaults() {
	tf := Timeframe("unknown")
	suite.Equal(1, tf.Multiplier())
	suite.Equal(models.Day, tf.Timespan())
	suite.Equal(24*time.Hour, tf.Duration())
}

func (suite *TimeframeTestSuite) TestNormalizeSymbol() {
	suite.Equal("BTCUSDT", normalizeSymbol("BTC/USDT"))
	suite.Equal("BTCUSDT", normalizeSymbol(" btc-usdt "))
	suite.Equal("ETHBTC", normalizeSymbol("ETHBTC"))
}

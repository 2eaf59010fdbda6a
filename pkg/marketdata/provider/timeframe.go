package provider

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// Timeframe is a bar interval in exchange notation, e.g. "1h".
type Timeframe string

const (
	TimeframeOneMinute      Timeframe = "1m"
	TimeframeThreeMinutes   Timeframe = "3m"
	TimeframeFiveMinutes    Timeframe = "5m"
	TimeframeFifteenMinutes Timeframe = "15m"
	TimeframeThirtyMinutes  Timeframe = "30m"
	TimeframeOneHour        Timeframe = "1h"
	TimeframeTwoHours       Timeframe = "2h"
	TimeframeFourHours      Timeframe = "4h"
	TimeframeSixHours       Timeframe = "6h"
	TimeframeEightHours     Timeframe = "8h"
	TimeframeTwelveHours    Timeframe = "12h"
	TimeframeOneDay         Timeframe = "1d"
	TimeframeThreeDays      Timeframe = "3d"
	TimeframeOneWeek        Timeframe = "1w"
	TimeframeOneMonth       Timeframe = "1M"
)

var timeframes = map[Timeframe]struct {
	multiplier int
	timespan   models.Timespan
	duration   time.Duration
}{
	TimeframeOneMinute:      {1, models.Minute, time.Minute},
	TimeframeThreeMinutes:   {3, models.Minute, 3 * time.Minute},
	TimeframeFiveMinutes:    {5, models.Minute, 5 * time.Minute},
	TimeframeFifteenMinutes: {15, models.Minute, 15 * time.Minute},
	TimeframeThirtyMinutes:  {30, models.Minute, 30 * time.Minute},
	TimeframeOneHour:        {1, models.Hour, time.Hour},
	TimeframeTwoHours:       {2, models.Hour, 2 * time.Hour},
	TimeframeFourHours:      {4, models.Hour, 4 * time.Hour},
	TimeframeSixHours:       {6, models.Hour, 6 * time.Hour},
	TimeframeEightHours:     {8, models.Hour, 8 * time.Hour},
	TimeframeTwelveHours:    {12, models.Hour, 12 * time.Hour},
	TimeframeOneDay:         {1, models.Day, 24 * time.Hour},
	TimeframeThreeDays:      {3, models.Day, 72 * time.Hour},
	TimeframeOneWeek:        {1, models.Week, 7 * 24 * time.Hour},
	TimeframeOneMonth:       {1, models.Month, 30 * 24 * time.Hour},
}

// ParseTimeframe validates a timeframe string.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if _, ok := timeframes[tf]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported timeframe: %q", s)
	}

	return tf, nil
}

// Multiplier returns the polygon aggregate multiplier.
func (t Timeframe) Multiplier() int {
	if spec, ok := timeframes[t]; ok {
		return spec.multiplier
	}

	return 1
}

// Timespan returns the polygon aggregate timespan.
func (t Timeframe) Timespan() models.Timespan {
	if spec, ok := timeframes[t]; ok {
		return spec.timespan
	}

	return models.Day
}

// Duration returns the approximate length of one bar. A month counts as 30 days.
func (t Timeframe) Duration() time.Duration {
	if spec, ok := timeframes[t]; ok {
		return spec.duration
	}

	return 24 * time.Hour
}

// BinanceInterval returns the kline interval name. Binance uses the same notation.
func (t Timeframe) BinanceInterval() string {
	return string(t)
}

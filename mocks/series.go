package mocks

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// SeriesFromCloses builds an hourly series from 2024-01-01 with the given
// closes. Open equals close and the range is one unit either side.
func SeriesFromCloses(symbol string, closes []float64) types.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(types.Series, len(closes))

	for i, c := range closes {
		series[i] = types.Bar{
			Symbol: symbol,
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 1,
			Low:    math.Max(c-1, c*0.5),
			Close:  c,
			Volume: 1000,
		}
	}

	return series
}

func FlatCloses(n int, price float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}

	return closes
}

// ReboundCloses falls one unit per bar from start for n-2 bars, then rises
// for two. With default indicator windows and n >= 60 the last bar is
// oversold with MACD above its signal line, so the policy buys.
func ReboundCloses(n int, start float64) []float64 {
	return turn(n, start, -1)
}

// RolloverCloses is the mirror of ReboundCloses.
func RolloverCloses(n int, start float64) []float64 {
	return turn(n, start, 1)
}

func turn(n int, start, step float64) []float64 {
	closes := make([]float64, 0, n)
	for i := 0; i < n-2; i++ {
		closes = append(closes, start+step*float64(i))
	}

	last := closes[len(closes)-1]

	return append(closes, last-step, last-2*step)
}

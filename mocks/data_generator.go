package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// DataGenerator produces seeded random-walk bars. Two generators with the
// same seed and config produce the same series.
type DataGenerator struct {
	rng *rand.Rand
}

func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{rng: rand.New(rand.NewSource(seed))}
}

// GeneratorConfig shapes a generated series. Volatility is the per-bar
// standard deviation of returns and Trend the total drift over Count bars.
type GeneratorConfig struct {
	Symbol         string
	StartTime      time.Time
	Interval       time.Duration
	Count          int
	InitialPrice   float64
	Volatility     float64
	Trend          float64
	VolumeBase     float64
	VolumeVariance float64
}

func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "BTCUSDT",
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       time.Hour,
		Count:          100,
		InitialPrice:   100,
		Volatility:     0.002,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate walks the close with normally distributed returns. Wicks extend
// up to half a volatility step past the body.
func (g *DataGenerator) Generate(config GeneratorConfig) types.Series {
	series := make(types.Series, 0, config.Count)
	drift := 0.0

	if config.Count > 0 {
		drift = config.Trend / float64(config.Count)
	}

	price := config.InitialPrice
	at := config.StartTime

	for range config.Count {
		open := price

		closing := open * (1 + drift + config.Volatility*g.rng.NormFloat64())
		if closing <= 0 {
			closing = open * 0.99
		}

		wick := config.Volatility * open / 2
		high := math.Max(open, closing) + wick*g.rng.Float64()

		low := math.Min(open, closing) - wick*g.rng.Float64()
		if low <= 0 {
			low = math.Min(open, closing) * 0.99
		}

		volume := config.VolumeBase * (1 + config.VolumeVariance*(2*g.rng.Float64()-1))

		series = append(series, types.Bar{
			Symbol: config.Symbol,
			Time:   at,
			Open:   round(open, 4),
			High:   round(high, 4),
			Low:    round(low, 4),
			Close:  round(closing, 4),
			Volume: round(math.Max(volume, config.VolumeBase/10), 2),
		})

		price = closing
		at = at.Add(config.Interval)
	}

	return series
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)

	return math.Round(v*scale) / scale
}

package indicator

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// Config holds the window sizes of the enrichment pipeline.
type Config struct {
	SMAShort        int     `yaml:"sma_short" json:"sma_short" jsonschema:"title=Short SMA window,default=20" validate:"gt=0"`
	SMALong         int     `yaml:"sma_long" json:"sma_long" jsonschema:"title=Long SMA window,default=50" validate:"gt=0"`
	RSIPeriod       int     `yaml:"rsi_period" json:"rsi_period" jsonschema:"title=RSI period,default=14" validate:"gt=0"`
	MACDFast        int     `yaml:"macd_fast" json:"macd_fast" jsonschema:"title=MACD fast EMA span,default=12" validate:"gt=0"`
	MACDSlow        int     `yaml:"macd_slow" json:"macd_slow" jsonschema:"title=MACD slow EMA span,default=26" validate:"gt=0"`
	MACDSignal      int     `yaml:"macd_signal" json:"macd_signal" jsonschema:"title=MACD signal EMA span,default=9" validate:"gt=0"`
	BollingerPeriod int     `yaml:"bollinger_period" json:"bollinger_period" jsonschema:"title=Bollinger window,default=20" validate:"gt=1"`
	BollingerStdDev float64 `yaml:"bollinger_std_dev" json:"bollinger_std_dev" jsonschema:"title=Bollinger band width in standard deviations,default=2" validate:"gt=0"`
}

// DefaultConfig returns SMA 20/50, RSI 14, MACD 12/26/9 and Bollinger 20 x 2.
func DefaultConfig() Config {
	return Config{
		SMAShort:        20,
		SMALong:         50,
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerStdDev: 2.0,
	}
}

// Validate validates the Config struct.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPeriod, "invalid indicator config", err)
	}

	if c.MACDFast >= c.MACDSlow {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "macd_fast (%d) must be less than macd_slow (%d)", c.MACDFast, c.MACDSlow)
	}

	return nil
}

// Pipeline turns a bar series into an enriched series. It holds no state
// between calls and is safe for concurrent use.
type Pipeline struct {
	smaShort  *MA
	smaLong   *MA
	rsi       *RSI
	macd      *MACD
	bollinger *BollingerBands
}

// NewPipeline creates a pipeline from the given config.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		smaShort:  NewMA(),
		smaLong:   NewMA(),
		rsi:       NewRSI(),
		macd:      NewMACD(),
		bollinger: NewBollingerBands(),
	}

	configs := []struct {
		ind    Indicator
		params []any
	}{
		{p.smaShort, []any{cfg.SMAShort}},
		{p.smaLong, []any{cfg.SMALong}},
		{p.rsi, []any{cfg.RSIPeriod}},
		{p.macd, []any{cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal}},
		{p.bollinger, []any{cfg.BollingerPeriod, cfg.BollingerStdDev}},
	}

	for _, c := range configs {
		if err := c.ind.Config(c.params...); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// NewDefaultPipeline creates a pipeline with DefaultConfig.
func NewDefaultPipeline() *Pipeline {
	p, err := NewPipeline(DefaultConfig())
	if err != nil {
		panic(err)
	}

	return p
}

// Warmup returns the number of bars needed for the first enriched bar.
func (p *Pipeline) Warmup() int {
	warmup := 0
	for _, ind := range p.indicators() {
		if w := ind.Warmup(); w > warmup {
			warmup = w
		}
	}

	return warmup
}

// Enrich computes every indicator over the series and returns only the bars
// where all of them are defined. A series shorter than Warmup yields an empty
// slice. The series must already be normalized.
func (p *Pipeline) Enrich(series types.Series) []types.EnrichedBar {
	if len(series) < p.Warmup() {
		return []types.EnrichedBar{}
	}

	closes := series.Closes()
	smaShort := p.smaShort.Series(closes)
	smaLong := p.smaLong.Series(closes)
	rsi := p.rsi.Series(closes)
	macd, macdSignal := p.macd.Series(closes)
	bands := p.bollinger.Series(closes)

	out := make([]types.EnrichedBar, 0, len(series)-p.Warmup()+1)

	for i, bar := range series {
		row := types.EnrichedBar{
			Bar:            bar,
			SMAShort:       smaShort[i],
			SMALong:        smaLong[i],
			RSI:            rsi[i],
			MACD:           macd[i],
			MACDSignal:     macdSignal[i],
			StdDev:         bands.StdDev[i],
			BollingerUpper: bands.Upper[i],
			BollingerLower: bands.Lower[i],
		}

		if !isComplete(row) {
			continue
		}

		out = append(out, row)
	}

	return out
}

func (p *Pipeline) indicators() []Indicator {
	return []Indicator{p.smaShort, p.smaLong, p.rsi, p.macd, p.bollinger}
}

// isComplete reports whether every derived field of the row is finite.
func isComplete(row types.EnrichedBar) bool {
	for _, v := range []float64{
		row.SMAShort, row.SMALong, row.RSI, row.MACD, row.MACDSignal,
		row.StdDev, row.BollingerUpper, row.BollingerLower,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

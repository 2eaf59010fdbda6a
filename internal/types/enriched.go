package types

// EnrichedBar is a Bar with every derived indicator field computed from a full window.
type EnrichedBar struct {
	Bar
	// SMAShort is the short simple moving average (20 bars by default)
	SMAShort float64 `yaml:"sma_short" json:"sma_short" csv:"sma_short"`
	// SMALong is the long simple moving average (50 bars by default)
	SMALong        float64 `yaml:"sma_long" json:"sma_long" csv:"sma_long"`
	RSI            float64 `yaml:"rsi" json:"rsi" csv:"rsi"`
	MACD           float64 `yaml:"macd" json:"macd" csv:"macd"`
	MACDSignal     float64 `yaml:"macd_signal" json:"macd_signal" csv:"macd_signal"`
	StdDev         float64 `yaml:"std" json:"std" csv:"std"`
	BollingerUpper float64 `yaml:"bb_upper" json:"bb_upper" csv:"bb_upper"`
	BollingerLower float64 `yaml:"bb_lower" json:"bb_lower" csv:"bb_lower"`
}

// EnrichedCloses returns the close prices of an enriched series in order.
func EnrichedCloses(series []EnrichedBar) []float64 {
	closes := make([]float64, len(series))
	for i, b := range series {
		closes[i] = b.Close
	}

	return closes
}

package model

// MACD holds the MACD line, its signal line and their difference.
type MACD struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Bands are Bollinger bands around a simple moving average.
type Bands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
	StdDev float64 `json:"stdDev"`
}

// IndicatorSet holds the technical indicators computed for one coin.
// Nil pointers mean the indicator could not be computed (not enough history),
// which is different from a computed zero.
type IndicatorSet struct {
	SMA20         *float64 `json:"sma20"`
	SMA50         *float64 `json:"sma50"`
	RSI           *float64 `json:"rsi"`
	MACD          MACD     `json:"macd"`
	Volatility    float64  `json:"volatility"`
	CurrentPrice  float64  `json:"currentPrice"`
	PreviousPrice *float64 `json:"previousPrice"`
	Bollinger     *Bands   `json:"bollinger,omitempty"`
	Support       *float64 `json:"support,omitempty"`
	Resistance    *float64 `json:"resistance,omitempty"`
	MetadataOnly  bool     `json:"metadataOnly,omitempty"`
}

// Float returns a pointer to v, for filling optional indicator fields.
func Float(v float64) *float64 {
	return &v
}

package model

// SignalType is the directional recommendation of a signal.
type SignalType string

const (
	SignalLong    SignalType = "LONG"
	SignalShort   SignalType = "SHORT"
	SignalNeutral SignalType = "NEUTRAL"
)

// FactorScore is the contribution of a single heuristic to the final score.
type FactorScore struct {
	Name       string
	Adjustment float64
	Commentary string
}

// TradeSignal is the output of the signal scorer.
type TradeSignal struct {
	Type                 SignalType
	Score                float64 // clamped to [0,1]
	PotentialGainPercent float64 // 5..25
	Description          string
	Factors              []FactorScore
}

// Confidence returns the score as a rounded percentage.
func (s *TradeSignal) Confidence() int {
	return int(s.Score*100 + 0.5)
}

// RankedResult is one entry of the ranked list returned to clients.
type RankedResult struct {
	Symbol         string        `json:"symbol"`
	Name           string        `json:"name"`
	CurrentPrice   float64       `json:"current_price"`
	PriceChange24h float64       `json:"price_change_24h"`
	Type           SignalType    `json:"type"`
	PotentialGain  float64       `json:"potential_gain"`
	Signal         string        `json:"signal"`
	Score          float64       `json:"score"`
	Indicators     *IndicatorSet `json:"indicators,omitempty"`
	Levels         *TradeLevels  `json:"levels,omitempty"`
}

// TradeLevels are the suggested entry, exits and leverage for a directional signal.
type TradeLevels struct {
	Entry        float64    `json:"entry"`
	TakeProfit   [4]float64 `json:"take_profit"`
	StopLoss     float64    `json:"stop_loss"`
	SafeStopLoss float64    `json:"safe_stop_loss"`
	Leverage     int        `json:"leverage"`
}

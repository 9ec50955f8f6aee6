package model

import "time"

// PricePoint is one sample of a historical price series.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"` // ms since epoch
	Price     float64 `json:"price"`
}

// Time returns the sample time in UTC.
func (p PricePoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp).UTC()
}

// CoinSnapshot is the market state of one coin as reported by a provider.
type CoinSnapshot struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	PriceChange24h           float64 `json:"price_change_24h"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	Volume24h                float64 `json:"volume_24h"`
}

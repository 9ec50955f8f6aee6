package calculator

import (
	"fmt"
	"math"

	"CryptoPulse/internal/model"
)

// CalculateBollinger returns the Bollinger bands of the last period prices:
// the SMA plus and minus k sample standard deviations.
func CalculateBollinger(prices []float64, period int, k float64) (model.Bands, error) {
	if period <= 1 {
		return model.Bands{}, fmt.Errorf("bollinger period %d must be at least 2", period)
	}
	middle, err := CalculateSMA(prices, period)
	if err != nil {
		return model.Bands{}, err
	}
	variance := 0.0
	for _, p := range prices[len(prices)-period:] {
		d := p - middle
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period-1))
	return model.Bands{Upper: middle + k*std, Middle: middle, Lower: middle - k*std, StdDev: std}, nil
}

// SupportResistance returns the lowest and highest of the last lookback
// prices. A lookback longer than the series uses the whole series.
func SupportResistance(prices []float64, lookback int) (support, resistance float64, err error) {
	if lookback <= 0 {
		return 0, 0, errNonPositivePeriod
	}
	if len(prices) == 0 {
		return 0, 0, ErrInsufficientData
	}
	window := prices[max(0, len(prices)-lookback):]
	support, resistance = window[0], window[0]
	for _, p := range window[1:] {
		support = math.Min(support, p)
		resistance = math.Max(resistance, p)
	}
	return support, resistance, nil
}

package calculator

import (
	"errors"
	"fmt"

	"CryptoPulse/internal/model"
)

// ErrInsufficientData is returned when a series is too short for the requested period.
var ErrInsufficientData = errors.New("not enough data")

var errNonPositivePeriod = errors.New("period must be positive")

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errNonPositivePeriod
	}
	if len(prices) < period {
		return 0, fmt.Errorf("sma(%d) over %d prices: %w", period, len(prices), ErrInsufficientData)
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateEMA computes the exponential moving average over the whole series.
// The average is seeded with the first raw price rather than an initial SMA,
// so early values are biased toward prices[0].
func CalculateEMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errNonPositivePeriod
	}
	if len(prices) < period {
		return 0, fmt.Errorf("ema(%d) over %d prices: %w", period, len(prices), ErrInsufficientData)
	}
	series := EMASeries(prices, period)
	return series[len(series)-1], nil
}

// EMASeries returns the running EMA after each price, using the same seeding
// as CalculateEMA. It returns nil for an empty series or a non-positive period.
func EMASeries(prices []float64, period int) []float64 {
	if len(prices) == 0 || period <= 0 {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	ema := prices[0]
	out[0] = ema
	for i := 1; i < len(prices); i++ {
		ema = prices[i]*k + ema*(1-k)
		out[i] = ema
	}
	return out
}

// ExtractPrices returns the price column of a history, keeping order.
func ExtractPrices(points []model.PricePoint) []float64 {
	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	return prices
}

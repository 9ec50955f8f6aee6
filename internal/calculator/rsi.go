package calculator

import "fmt"

// CalculateRSI computes the RSI over the last `period` price transitions using
// plain averages of gains and losses (no Wilder smoothing).
// Requires at least period+1 prices. A window with no losses yields 100.
func CalculateRSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errNonPositivePeriod
	}
	if len(prices) < period+1 {
		return 0, fmt.Errorf("rsi(%d) over %d prices: %w", period, len(prices), ErrInsufficientData)
	}

	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}

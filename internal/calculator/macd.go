package calculator

import (
	"fmt"

	"CryptoPulse/internal/model"
)

// MACDMode selects how the MACD signal line is derived.
type MACDMode string

const (
	// MACDSimple applies the signal EMA to the latest MACD value only, so the
	// signal equals the MACD line and the histogram is always zero.
	MACDSimple MACDMode = "simple"
	// MACDSeries applies the signal EMA to the rolling MACD series.
	MACDSeries MACDMode = "series"
)

// ParseMACDMode maps a config string to a mode. Empty means MACDSimple.
func ParseMACDMode(s string) (MACDMode, error) {
	switch MACDMode(s) {
	case "", MACDSimple:
		return MACDSimple, nil
	case MACDSeries:
		return MACDSeries, nil
	}
	return "", fmt.Errorf("unknown macd mode %q", s)
}

// CalculateMACD computes MACD(fast, slow, signal). When either EMA cannot be
// computed the zero value is returned.
func CalculateMACD(prices []float64, fast, slow, signal int, mode MACDMode) model.MACD {
	fastEMA, err := CalculateEMA(prices, fast)
	if err != nil {
		return model.MACD{}
	}
	slowEMA, err := CalculateEMA(prices, slow)
	if err != nil {
		return model.MACD{}
	}
	line := fastEMA - slowEMA

	if mode == MACDSeries {
		if m, ok := seriesMACD(prices, fast, slow, signal, line); ok {
			return m
		}
	}

	// EMA of a one-element series is that element.
	return model.MACD{MACD: line, Signal: line, Histogram: 0}
}

func seriesMACD(prices []float64, fast, slow, signal int, line float64) (model.MACD, bool) {
	if signal <= 0 {
		return model.MACD{}, false
	}
	fastSeries := EMASeries(prices, fast)
	slowSeries := EMASeries(prices, slow)

	// MACD is only defined once both EMAs have enough data.
	start := max(fast, slow) - 1
	lines := make([]float64, 0, len(prices)-start)
	for i := start; i < len(prices); i++ {
		lines = append(lines, fastSeries[i]-slowSeries[i])
	}
	sig, err := CalculateEMA(lines, signal)
	if err != nil {
		return model.MACD{}, false
	}
	return model.MACD{MACD: line, Signal: sig, Histogram: line - sig}, true
}

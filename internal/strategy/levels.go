package strategy

import (
	"math"

	"CryptoPulse/internal/model"
)

// fibonacci extensions of the base distance for TP1..TP4.
var fibonacci = [4]float64{0.618, 1, 1.618, 2.618}

// Levels derives entry, take-profit and stop-loss prices for a LONG or SHORT
// signal. Volatility is read as a daily percentage. Missing support and
// resistance fall back to fixed offsets from the price. NEUTRAL signals and
// metadata-only indicator sets get no levels.
func Levels(kind model.SignalType, ind *model.IndicatorSet) *model.TradeLevels {
	if ind == nil || ind.MetadataOnly || ind.CurrentPrice <= 0 {
		return nil
	}
	if kind != model.SignalLong && kind != model.SignalShort {
		return nil
	}

	price := ind.CurrentPrice
	volPct := ind.Volatility * 100
	long := kind == model.SignalLong

	var entry float64
	if long {
		entry = math.Min(price*1.001, (price+orDefault(ind.Support, price*0.98))/2)
	} else {
		entry = math.Max(price*0.999, (price+orDefault(ind.Resistance, price*1.02))/2)
	}

	std := entry * 0.02
	if ind.Bollinger != nil && ind.Bollinger.StdDev > 0 {
		std = ind.Bollinger.StdDev
	}
	base := math.Max(std, entry*volPct/100*0.5)
	sign := 1.0
	if !long {
		sign = -1
	}

	levels := &model.TradeLevels{Entry: entry, Leverage: leverageFor(volPct)}
	for i, f := range fibonacci {
		levels.TakeProfit[i] = entry + sign*base*f
	}
	if long {
		levels.StopLoss = orDefault(ind.Support, entry*0.95) * 0.995
	} else {
		levels.StopLoss = orDefault(ind.Resistance, entry*1.05) * 1.005
	}
	levels.SafeStopLoss = entry * (1 - sign*volPct/200)
	return levels
}

func leverageFor(volPct float64) int {
	switch {
	case volPct < 5:
		return 5
	case volPct < 10:
		return 3
	case volPct < 20:
		return 2
	default:
		return 1
	}
}

func orDefault(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

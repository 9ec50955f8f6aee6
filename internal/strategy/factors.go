package strategy

import (
	"fmt"
	"math"

	"CryptoPulse/internal/model"
)

// trend describes where the price sits relative to the moving averages.
type trend int

const (
	trendUnknown trend = iota
	trendMixed
	trendBullish
	trendBearish
)

// classifyTrend compares the price with SMA20 and SMA50. Without SMA50 the
// comparison uses SMA20 alone; without SMA20 the trend is unknown.
func classifyTrend(ind *model.IndicatorSet) trend {
	if ind.SMA20 == nil {
		return trendUnknown
	}
	price := ind.CurrentPrice
	above := price > *ind.SMA20
	below := price < *ind.SMA20
	if ind.SMA50 != nil {
		above = above && price > *ind.SMA50
		below = below && price < *ind.SMA50
	}
	switch {
	case above:
		return trendBullish
	case below:
		return trendBearish
	default:
		return trendMixed
	}
}

func scoreTrend(ind *model.IndicatorSet, p Params) model.FactorScore {
	f := model.FactorScore{Name: "trend"}
	switch classifyTrend(ind) {
	case trendBullish:
		f.Adjustment = p.TrendBullish
		f.Commentary = "price above moving averages"
	case trendBearish:
		f.Adjustment = p.TrendBearish
		f.Commentary = "price below moving averages"
	case trendMixed:
		f.Commentary = "price between moving averages"
	default:
		f.Commentary = "moving averages unavailable"
	}
	return f
}

func scoreRSI(ind *model.IndicatorSet, p Params) model.FactorScore {
	f := model.FactorScore{Name: "rsi"}
	if ind.RSI == nil {
		f.Commentary = "RSI unavailable"
		return f
	}
	rsi := *ind.RSI
	switch {
	case rsi < p.RSIOversold:
		f.Adjustment = p.OversoldBonus
		f.Commentary = fmt.Sprintf("RSI=%.1f oversold", rsi)
	case rsi > p.RSIOverbought:
		f.Adjustment = p.OverboughtPenalty
		f.Commentary = fmt.Sprintf("RSI=%.1f overbought", rsi)
	case rsi >= p.NeutralRSILow && rsi <= p.NeutralRSIHigh:
		f.Adjustment = p.NeutralRSIBonus
		f.Commentary = fmt.Sprintf("RSI=%.1f neutral", rsi)
	default:
		f.Commentary = fmt.Sprintf("RSI=%.1f", rsi)
	}
	return f
}

func scoreMACD(ind *model.IndicatorSet, p Params) model.FactorScore {
	m := ind.MACD
	f := model.FactorScore{Name: "macd", Commentary: "flat"}
	switch {
	case m.MACD > m.Signal && m.Histogram > 0:
		f.Adjustment = p.MACDBullish
		f.Commentary = "bullish crossover"
	case m.MACD < m.Signal && m.Histogram < 0:
		f.Adjustment = p.MACDBearish
		f.Commentary = "bearish crossover"
	}
	return f
}

func scoreVolatility(ind *model.IndicatorSet, p Params) model.FactorScore {
	f := model.FactorScore{
		Name:       "volatility",
		Commentary: fmt.Sprintf("%.1f%%", ind.Volatility*100),
	}
	if ind.Volatility > p.VolatilityThreshold {
		f.Adjustment = p.VolatilityBonus
	}
	return f
}

func scoreVolume(coin *model.CoinSnapshot, p Params) model.FactorScore {
	f := model.FactorScore{Name: "volume"}
	switch {
	case coin.Volume24h >= p.VolumeHigh:
		f.Adjustment = p.VolumeHighBonus
		f.Commentary = "high liquidity"
	case coin.Volume24h >= p.VolumeMid:
		f.Adjustment = p.VolumeMidBonus
		f.Commentary = "moderate liquidity"
	default:
		f.Commentary = "low liquidity"
	}
	return f
}

func scoreMarketCap(coin *model.CoinSnapshot, p Params) model.FactorScore {
	f := model.FactorScore{Name: "market_cap", Commentary: "emerging"}
	if coin.MarketCap >= p.MarketCapThreshold {
		f.Adjustment = p.MarketCapBonus
		f.Commentary = "established"
	}
	return f
}

// recentChangePercent uses the previous sample when history exists and the
// provider's 24h change otherwise.
func recentChangePercent(ind *model.IndicatorSet, coin *model.CoinSnapshot) float64 {
	if ind.PreviousPrice != nil && *ind.PreviousPrice != 0 {
		return (ind.CurrentPrice - *ind.PreviousPrice) / *ind.PreviousPrice * 100
	}
	return coin.PriceChangePercentage24h
}

func scoreMomentum(ind *model.IndicatorSet, coin *model.CoinSnapshot, p Params) model.FactorScore {
	change := recentChangePercent(ind, coin)
	f := model.FactorScore{Name: "momentum", Commentary: fmt.Sprintf("%+.2f%%", change)}
	if math.Abs(change) > p.MomentumThreshold {
		f.Adjustment = p.MomentumBonus
	}
	return f
}

package strategy

import (
	"math"

	"CryptoPulse/internal/model"
)

// Evaluate scores one coin from its indicators and market metadata.
// The result depends only on its inputs.
func Evaluate(ind *model.IndicatorSet, coin *model.CoinSnapshot, p Params) *model.TradeSignal {
	factors := []model.FactorScore{
		scoreTrend(ind, p),
		scoreRSI(ind, p),
		scoreMACD(ind, p),
		scoreVolatility(ind, p),
		scoreVolume(coin, p),
		scoreMarketCap(coin, p),
		scoreMomentum(ind, coin, p),
	}

	score := p.BaseScore
	for _, f := range factors {
		score += f.Adjustment
	}
	score = clamp(score, 0, 1)

	signal := &model.TradeSignal{
		Type:                 direction(ind, p),
		Score:                score,
		PotentialGainPercent: PotentialGain(score),
		Factors:              factors,
	}
	signal.Description = describe(ind, coin, signal, p)
	return signal
}

// PotentialGain maps a score in [0,1] linearly onto 5%..25%, rounded to one decimal.
func PotentialGain(score float64) float64 {
	return math.Round((clamp(score, 0, 1)*20+5)*10) / 10
}

// direction picks the label from the RSI extremes first, then the trend.
func direction(ind *model.IndicatorSet, p Params) model.SignalType {
	if ind.RSI != nil {
		switch {
		case *ind.RSI < p.RSIOversold:
			return model.SignalLong
		case *ind.RSI > p.RSIOverbought:
			return model.SignalShort
		}
	}
	switch classifyTrend(ind) {
	case trendBullish:
		return model.SignalLong
	case trendBearish:
		return model.SignalShort
	}
	return model.SignalNeutral
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

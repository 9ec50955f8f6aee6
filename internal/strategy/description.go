package strategy

import (
	"fmt"
	"math"
	"strings"

	"CryptoPulse/internal/model"
)

func describe(ind *model.IndicatorSet, coin *model.CoinSnapshot, sig *model.TradeSignal, p Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Technical analysis %s:\n", coin.Symbol)

	switch classifyTrend(ind) {
	case trendBullish:
		b.WriteString("• Trend: bullish (price above moving averages)\n")
	case trendBearish:
		b.WriteString("• Trend: bearish (price below moving averages)\n")
	case trendMixed:
		b.WriteString("• Trend: sideways (price between moving averages)\n")
	default:
		b.WriteString("• Trend: n/a (insufficient history)\n")
	}

	if ind.RSI == nil {
		b.WriteString("• RSI: n/a\n")
	} else {
		rsi := *ind.RSI
		band := "neutral"
		switch {
		case rsi < p.RSIOversold:
			band = "oversold, buying opportunity"
		case rsi > p.RSIOverbought:
			band = "overbought, selling opportunity"
		}
		fmt.Fprintf(&b, "• RSI: %.1f (%s)\n", rsi, band)
	}

	switch {
	case ind.MACD.MACD > ind.MACD.Signal:
		b.WriteString("• MACD: bullish\n")
	case ind.MACD.MACD < ind.MACD.Signal:
		b.WriteString("• MACD: bearish\n")
	default:
		b.WriteString("• MACD: flat\n")
	}

	fmt.Fprintf(&b, "• Volatility: %.1f%%\n", ind.Volatility*100)

	switch {
	case coin.Volume24h >= p.VolumeHigh:
		b.WriteString("• Volume: high (confirms trend)\n")
	case coin.Volume24h >= p.VolumeMid:
		b.WriteString("• Volume: moderate\n")
	default:
		b.WriteString("• Volume: low (weak trend)\n")
	}

	if coin.MarketCap >= p.MarketCapThreshold {
		b.WriteString("• Market cap: established\n")
	} else {
		b.WriteString("• Market cap: emerging\n")
	}

	if ind.MetadataOnly {
		b.WriteString("• Note: based on market metadata only\n")
	}

	fmt.Fprintf(&b, "\nStrategy: %s with target +%d%%", action(sig.Type), int(math.Round(sig.Score*20+5)))
	fmt.Fprintf(&b, "\nConfidence: %d%%", sig.Confidence())
	return b.String()
}

func action(t model.SignalType) string {
	switch t {
	case model.SignalLong:
		return "Buy"
	case model.SignalShort:
		return "Sell"
	default:
		return "Wait"
	}
}

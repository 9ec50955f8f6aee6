package strategy

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"CryptoPulse/internal/model"
)

func bullishSetup() (*model.IndicatorSet, *model.CoinSnapshot) {
	ind := &model.IndicatorSet{
		SMA20:         model.Float(50),
		SMA50:         model.Float(50),
		RSI:           model.Float(20),
		MACD:          model.MACD{MACD: 2, Signal: 1, Histogram: 1},
		Volatility:    0.1,
		CurrentPrice:  100,
		PreviousPrice: model.Float(90),
	}
	coin := &model.CoinSnapshot{
		ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin",
		CurrentPrice: 100, MarketCap: 2e10, Volume24h: 2e9,
	}
	return ind, coin
}

func bearishSetup() (*model.IndicatorSet, *model.CoinSnapshot) {
	ind := &model.IndicatorSet{
		SMA20:         model.Float(120),
		SMA50:         model.Float(130),
		RSI:           model.Float(80),
		MACD:          model.MACD{MACD: -2, Signal: -1, Histogram: -1},
		Volatility:    0.01,
		CurrentPrice:  100,
		PreviousPrice: model.Float(100),
	}
	coin := &model.CoinSnapshot{ID: "tiny", Symbol: "TNY", Name: "Tiny", CurrentPrice: 100, MarketCap: 1e6, Volume24h: 1e3}
	return ind, coin
}

func factorByName(sig *model.TradeSignal, name string) model.FactorScore {
	for _, f := range sig.Factors {
		if f.Name == name {
			return f
		}
	}
	return model.FactorScore{}
}

func TestEvaluate_ClampsHigh(t *testing.T) {
	ind, coin := bullishSetup()
	sig := Evaluate(ind, coin, DefaultParams())
	if sig == nil {
		t.Fatal("expected non-nil signal")
	}
	if len(sig.Factors) != 7 {
		t.Fatalf("expected 7 factors, got %d", len(sig.Factors))
	}
	if sig.Score != 1 {
		t.Errorf("expected score clamped to 1, got %.3f", sig.Score)
	}
	if sig.PotentialGainPercent != 25 {
		t.Errorf("expected potential gain 25, got %.1f", sig.PotentialGainPercent)
	}
	if sig.Type != model.SignalLong {
		t.Errorf("expected LONG, got %s", sig.Type)
	}
}

func TestEvaluate_ClampsLow(t *testing.T) {
	ind, coin := bearishSetup()
	sig := Evaluate(ind, coin, DefaultParams())
	if sig.Score != 0 {
		t.Errorf("expected score clamped to 0, got %.3f", sig.Score)
	}
	if sig.PotentialGainPercent != 5 {
		t.Errorf("expected potential gain 5, got %.1f", sig.PotentialGainPercent)
	}
	if sig.Type != model.SignalShort {
		t.Errorf("expected SHORT, got %s", sig.Type)
	}
}

func TestEvaluate_BoundsOverGrid(t *testing.T) {
	p := DefaultParams()
	for _, rsi := range []float64{5, 35, 50, 65, 95} {
		for _, price := range []float64{50, 100, 150} {
			for _, vol := range []float64{0, 5e8, 5e9} {
				ind := &model.IndicatorSet{
					SMA20: model.Float(100), SMA50: model.Float(110), RSI: model.Float(rsi),
					MACD: model.MACD{MACD: 1, Signal: 0.5, Histogram: 0.5}, Volatility: 0.2, CurrentPrice: price,
				}
				coin := &model.CoinSnapshot{Symbol: "X", CurrentPrice: price, Volume24h: vol, MarketCap: 5e10, PriceChangePercentage24h: -4}
				sig := Evaluate(ind, coin, p)
				if sig.Score < 0 || sig.Score > 1 {
					t.Errorf("score out of range: %.3f", sig.Score)
				}
				if sig.PotentialGainPercent < 5 || sig.PotentialGainPercent > 25 {
					t.Errorf("gain out of range: %.1f", sig.PotentialGainPercent)
				}
			}
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	ind, coin := bullishSetup()
	ind.RSI = model.Float(45)
	a := Evaluate(ind, coin, DefaultParams())
	b := Evaluate(ind, coin, DefaultParams())
	assert.Equal(t, a, b)
}

// Constant prices: SMA20 == SMA50 == price, RSI 100, zero volatility, flat MACD.
func TestEvaluate_ConstantSeries(t *testing.T) {
	ind := &model.IndicatorSet{
		SMA20: model.Float(100), SMA50: model.Float(100), RSI: model.Float(100),
		CurrentPrice: 100, PreviousPrice: model.Float(100),
	}
	coin := &model.CoinSnapshot{Symbol: "BTC", CurrentPrice: 100, Volume24h: 2e9, MarketCap: 5e10}
	sig := Evaluate(ind, coin, DefaultParams())

	assertion := assert.New(t)
	assertion.Zero(factorByName(sig, "trend").Adjustment)
	assertion.Equal(-0.20, factorByName(sig, "rsi").Adjustment)
	assertion.Zero(factorByName(sig, "macd").Adjustment)
	assertion.Zero(factorByName(sig, "volatility").Adjustment)
	assertion.Zero(factorByName(sig, "momentum").Adjustment)
	assertion.InDelta(0.1, sig.Score, 1e-9)
	assertion.Equal(7.0, sig.PotentialGainPercent)
	assertion.Equal(model.SignalShort, sig.Type)
}

func TestTrend_SMA50Absent(t *testing.T) {
	p := DefaultParams()
	ind := &model.IndicatorSet{SMA20: model.Float(90), CurrentPrice: 100}
	coin := &model.CoinSnapshot{Symbol: "ETH"}
	if got := factorByName(Evaluate(ind, coin, p), "trend").Adjustment; got != p.TrendBullish {
		t.Errorf("expected bullish trend from SMA20 alone, got %.2f", got)
	}

	ind = &model.IndicatorSet{CurrentPrice: 100}
	if got := factorByName(Evaluate(ind, coin, p), "trend").Adjustment; got != 0 {
		t.Errorf("expected no trend adjustment without SMA20, got %.2f", got)
	}
}

func TestRSIBands(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		rsi  float64
		want float64
	}{
		{29.9, 0.25},
		{30, 0},
		{39.9, 0},
		{40, 0.05},
		{60, 0.05},
		{60.1, 0},
		{70, 0},
		{70.1, -0.20},
	}
	for _, tt := range tests {
		ind := &model.IndicatorSet{RSI: model.Float(tt.rsi), CurrentPrice: 1}
		got := scoreRSI(ind, p).Adjustment
		if got != tt.want {
			t.Errorf("rsi %.1f: expected %.2f, got %.2f", tt.rsi, tt.want, got)
		}
	}
}

func TestVolumeTiers(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		volume float64
		want   float64
	}{
		{2e9, 0.20},
		{1e9, 0.20},
		{5e8, 0.10},
		{1e8, 0.10},
		{9e7, 0},
	}
	for _, tt := range tests {
		got := scoreVolume(&model.CoinSnapshot{Volume24h: tt.volume}, p).Adjustment
		if got != tt.want {
			t.Errorf("volume %.0f: expected %.2f, got %.2f", tt.volume, tt.want, got)
		}
	}
}

func TestMomentum_FallsBackTo24hChange(t *testing.T) {
	p := DefaultParams()
	ind := &model.IndicatorSet{CurrentPrice: 100}
	coin := &model.CoinSnapshot{PriceChangePercentage24h: -3.5}
	assert.Equal(t, p.MomentumBonus, scoreMomentum(ind, coin, p).Adjustment)

	ind.PreviousPrice = model.Float(99.5)
	assert.Zero(t, scoreMomentum(ind, coin, p).Adjustment)
}

func TestEvaluate_MetadataOnly(t *testing.T) {
	ind := &model.IndicatorSet{CurrentPrice: 50, MetadataOnly: true}
	coin := &model.CoinSnapshot{Symbol: "SOL", CurrentPrice: 50, Volume24h: 3e9, MarketCap: 8e10, PriceChangePercentage24h: 4}
	sig := Evaluate(ind, coin, DefaultParams())

	assert.InDelta(t, 0.35, sig.Score, 1e-9)
	assert.Equal(t, model.SignalNeutral, sig.Type)
	assert.Contains(t, sig.Description, "market metadata only")
}

func TestEvaluate_BaseScore(t *testing.T) {
	p := DefaultParams()
	p.BaseScore = 0.5
	ind := &model.IndicatorSet{CurrentPrice: 1}
	sig := Evaluate(ind, &model.CoinSnapshot{Symbol: "X"}, p)
	assert.InDelta(t, 0.5, sig.Score, 1e-9)
	assert.Equal(t, 15.0, sig.PotentialGainPercent)
}

func TestDescription(t *testing.T) {
	ind, coin := bullishSetup()
	sig := Evaluate(ind, coin, DefaultParams())
	for _, want := range []string{
		"Technical analysis BTC",
		"Trend: bullish",
		"RSI: 20.0 (oversold",
		"MACD: bullish",
		"Volatility: 10.0%",
		"Volume: high",
		"Market cap: established",
		"Strategy: Buy with target +25%",
		"Confidence: 100%",
	} {
		if !strings.Contains(sig.Description, want) {
			t.Errorf("description missing %q:\n%s", want, sig.Description)
		}
	}
}

func TestPotentialGain(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{0, 5},
		{0.33, 11.6},
		{0.5, 15},
		{1, 25},
		{1.7, 25},
		{-1, 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.score), func(t *testing.T) {
			assert.InDelta(t, tt.want, PotentialGain(tt.score), 1e-9)
		})
	}
}

package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"CryptoPulse/internal/model"
)

func btc() model.RankedResult {
	return model.RankedResult{
		Symbol:         "BTC",
		Name:           "Bitcoin",
		CurrentPrice:   64250.7,
		PriceChange24h: 2.5,
		Type:           model.SignalLong,
		PotentialGain:  20,
		Score:          0.75,
		Signal:         "Technical analysis BTC:",
	}
}

func TestCard(t *testing.T) {
	out := Card(1, btc(), 60)

	for _, want := range []string{"#1", "BTC", "/USDT", "LONG", "Bitcoin", "$64251", "+2.50%", "Potential: +20.0%", "Confidence: 75%", "Technical analysis BTC:"} {
		assert.Contains(t, out, want)
	}
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 62, "card stays within its width plus border")
	}
}

func TestCard_Levels(t *testing.T) {
	r := btc()
	assert.NotContains(t, Card(1, r, 80), "Entry")

	r.Levels = &model.TradeLevels{
		Entry:        64000,
		TakeProfit:   [4]float64{64500, 65000, 66000, 67000},
		StopLoss:     63000,
		SafeStopLoss: 62500,
		Leverage:     3,
	}
	out := Card(1, r, 80)
	for _, want := range []string{"Entry $64000", "SL $63000", "safe $62500", "3x", "TP $64500 / $65000 / $66000 / $67000"} {
		assert.Contains(t, out, want)
	}
}

func TestCard_DefaultWidthAndNoDescription(t *testing.T) {
	r := btc()
	r.Signal = ""
	r.Type = model.SignalShort
	out := Card(3, r, 0)
	assert.Contains(t, out, "#3")
	assert.Contains(t, out, "SHORT")
	assert.NotContains(t, out, "Technical analysis")
}

func TestCards(t *testing.T) {
	eth := btc()
	eth.Symbol = "ETH"
	eth.Type = model.SignalNeutral
	out := Cards([]model.RankedResult{btc(), eth}, 60)

	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "#2")
	assert.Contains(t, out, "NEUTRAL")
	assert.Less(t, strings.Index(out, "BTC"), strings.Index(out, "ETH"))
	assert.Empty(t, Cards(nil, 60))
}

func TestSummary(t *testing.T) {
	live := Summary(16, 4, "coingecko", "2024-05-01T08:00:00Z")
	assert.Contains(t, live, "Analyzed: 16 coins · Top 4 selected")
	assert.Contains(t, live, "Source: coingecko · 2024-05-01T08:00:00Z")
	assert.NotContains(t, live, "fallback dataset")

	assert.Contains(t, Summary(16, 0, "fallback", ""), "static fallback dataset")
}

func TestLoadingAndError(t *testing.T) {
	assert.Contains(t, Loading(0), "Analyzing the market")
	assert.Equal(t, Loading(3), Loading(13))
	assert.NotPanics(t, func() { Loading(-4) })
	assert.Contains(t, Error("Rate limit exceeded"), "Error: Rate limit exceeded")
}

func TestPriceAndChange(t *testing.T) {
	assert.Equal(t, "64251", Price(64250.7))
	assert.Equal(t, "3.14", Price(3.14159))
	assert.Equal(t, "0.1235", Price(0.12346))
	assert.Contains(t, Change(-1.25), "-1.25%")
	assert.Contains(t, Change(0), "+0.00%")
}

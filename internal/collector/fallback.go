package collector

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"CryptoPulse/internal/model"
)

// FallbackSource is the data_source reported when the static dataset is served.
const FallbackSource = "fallback"

type catalogEntry struct {
	Symbol    string
	Name      string
	Price     float64
	MarketCap float64
	Volume    float64
	ChangePct float64
	Trend     float64 // relative drift over the synthetic window
	Amplitude float64 // relative size of the synthetic oscillation
}

// catalog is the static dataset used when every live provider fails.
// The figures are indicative only.
var catalog = map[string]catalogEntry{
	"bitcoin":     {"BTC", "Bitcoin", 67000, 1.32e12, 2.8e10, 1.8, 0.12, 0.02},
	"ethereum":    {"ETH", "Ethereum", 3400, 4.1e11, 1.5e10, 2.4, 0.10, 0.025},
	"ripple":      {"XRP", "XRP", 0.55, 3.0e10, 1.2e9, -1.1, -0.05, 0.03},
	"tether":      {"USDT", "Tether", 1.0, 1.1e11, 4.5e10, 0.01, 0, 0.001},
	"binancecoin": {"BNB", "BNB", 580, 8.5e10, 1.6e9, 0.9, 0.06, 0.02},
	"solana":      {"SOL", "Solana", 150, 6.8e10, 2.9e9, 3.6, 0.15, 0.04},
	"usd-coin":    {"USDC", "USDC", 1.0, 3.3e10, 5.2e9, 0, 0, 0.001},
	"dogecoin":    {"DOGE", "Dogecoin", 0.14, 2.0e10, 9.0e8, -2.7, -0.08, 0.05},
	"tron":        {"TRX", "TRON", 0.12, 1.05e10, 3.1e8, 0.4, 0.03, 0.015},
	"cardano":     {"ADA", "Cardano", 0.45, 1.6e10, 3.8e8, -0.6, -0.04, 0.03},
	"chainlink":   {"LINK", "Chainlink", 14.5, 8.5e9, 4.2e8, 2.1, 0.07, 0.035},
	"sui":         {"SUI", "Sui", 1.1, 2.9e9, 2.6e8, 5.2, 0.20, 0.06},
	"stellar":     {"XLM", "Stellar", 0.11, 3.2e9, 9.0e7, -0.3, -0.02, 0.02},
	"uniswap":     {"UNI", "Uniswap", 7.8, 4.7e9, 1.5e8, 1.2, 0.05, 0.04},
	"polkadot":    {"DOT", "Polkadot", 6.9, 9.8e9, 2.1e8, -1.5, -0.06, 0.03},
	"dai":         {"DAI", "Dai", 1.0, 5.3e9, 2.0e8, 0, 0, 0.001},
}

// FallbackProvider serves the static dataset with deterministic synthetic
// history. It never performs I/O.
type FallbackProvider struct {
	now func() time.Time
}

// NewFallbackProvider creates a new FallbackProvider.
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{now: time.Now}
}

func (p *FallbackProvider) Name() string { return FallbackSource }

func (p *FallbackProvider) FetchSnapshots(_ context.Context, ids []string) ([]model.CoinSnapshot, error) {
	snapshots := make([]model.CoinSnapshot, 0, len(ids))
	for _, id := range ids {
		e, ok := catalog[id]
		if !ok {
			continue
		}
		prev := e.Price / (1 + e.ChangePct/100)
		snapshots = append(snapshots, model.CoinSnapshot{
			ID:                       id,
			Symbol:                   e.Symbol,
			Name:                     e.Name,
			CurrentPrice:             e.Price,
			MarketCap:                e.MarketCap,
			PriceChange24h:           e.Price - prev,
			PriceChangePercentage24h: e.ChangePct,
			Volume24h:                e.Volume,
		})
	}
	if len(snapshots) == 0 {
		return nil, emptyError(p.Name(), "catalog entries")
	}
	return snapshots, nil
}

// FetchHistory returns days+1 daily points ending at the catalog price. The
// series drifts by Trend and oscillates with a per-coin phase; both fade out
// toward the last point.
func (p *FallbackProvider) FetchHistory(_ context.Context, id string, days int) ([]model.PricePoint, error) {
	e, ok := catalog[id]
	if !ok || days <= 0 {
		return nil, emptyError(p.Name(), "history for "+id)
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	phase := float64(h.Sum32()%628) / 100

	n := days + 1
	end := p.now().UTC().Truncate(24 * time.Hour)
	points := make([]model.PricePoint, n)
	for i := 0; i < n; i++ {
		remaining := 1 - float64(i)/float64(n-1)
		price := e.Price * (1 - e.Trend*remaining) * (1 + e.Amplitude*math.Sin(float64(i)*0.9+phase)*remaining)
		points[i] = model.PricePoint{
			Timestamp: end.AddDate(0, 0, i-(n-1)).UnixMilli(),
			Price:     price,
		}
	}
	return points, nil
}

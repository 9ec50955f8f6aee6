package strategy

import (
	"sort"

	"CryptoPulse/internal/model"
)

// NewResult assembles the client-facing entry for a scored coin.
// price_change_24h carries the 24h percentage change.
func NewResult(coin *model.CoinSnapshot, ind *model.IndicatorSet, sig *model.TradeSignal) model.RankedResult {
	return model.RankedResult{
		Symbol:         coin.Symbol,
		Name:           coin.Name,
		CurrentPrice:   coin.CurrentPrice,
		PriceChange24h: coin.PriceChangePercentage24h,
		Type:           sig.Type,
		PotentialGain:  sig.PotentialGainPercent,
		Signal:         sig.Description,
		Score:          sig.Score,
		Indicators:     ind,
		Levels:         Levels(sig.Type, ind),
	}
}

// Rank keeps results scoring above opts.MinScore, drops repeated symbols
// (first one wins), orders by score descending and truncates to opts.Limit.
// The input slice is not modified.
func Rank(results []model.RankedResult, opts RankOptions) []model.RankedResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]model.RankedResult, 0, len(results))
	for _, r := range results {
		if r.Score <= opts.MinScore {
			continue
		}
		if _, dup := seen[r.Symbol]; dup {
			continue
		}
		seen[r.Symbol] = struct{}{}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

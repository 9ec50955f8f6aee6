package collector

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"CryptoPulse/internal/model"
)

const coinCapBaseURL = "https://api.coincap.io/v2"

// coinCapAliases maps CoinGecko ids to CoinCap ids where they differ.
var coinCapAliases = map[string]string{
	"ripple":      "xrp",
	"binancecoin": "binance-coin",
}

// CoinCapProvider reads assets and daily history from the CoinCap REST API.
// All numeric fields arrive as strings.
type CoinCapProvider struct {
	client *resty.Client
	now    func() time.Time
}

// NewCoinCapProvider creates a new CoinCapProvider.
func NewCoinCapProvider(baseURL, apiKey, proxyURL string, timeout time.Duration) *CoinCapProvider {
	if baseURL == "" {
		baseURL = coinCapBaseURL
	}
	client := newRestClient(baseURL, proxyURL, timeout)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &CoinCapProvider{client: client, now: time.Now}
}

func (p *CoinCapProvider) Name() string { return "coincap" }

func coinCapID(id string) string {
	if alias, ok := coinCapAliases[id]; ok {
		return alias
	}
	return id
}

type capAsset struct {
	ID                string `json:"id"`
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	PriceUsd          string `json:"priceUsd"`
	MarketCapUsd      string `json:"marketCapUsd"`
	VolumeUsd24Hr     string `json:"volumeUsd24Hr"`
	ChangePercent24Hr string `json:"changePercent24Hr"`
}

type capAssets struct {
	Data []capAsset `json:"data"`
}

func (p *CoinCapProvider) FetchSnapshots(ctx context.Context, ids []string) ([]model.CoinSnapshot, error) {
	capIDs := make([]string, len(ids))
	back := make(map[string]string, len(ids))
	for i, id := range ids {
		capIDs[i] = coinCapID(id)
		back[capIDs[i]] = id
	}

	var assets capAssets
	err := getJSON(ctx, p.client, p.Name(), "/assets", map[string]string{
		"ids": strings.Join(capIDs, ","),
	}, &assets)
	if err != nil {
		return nil, err
	}

	snapshots := make([]model.CoinSnapshot, 0, len(assets.Data))
	for _, a := range assets.Data {
		s, err := a.snapshot()
		if err != nil {
			return nil, malformedError(p.Name(), fmt.Errorf("asset %s: %w", a.ID, err))
		}
		if orig, ok := back[a.ID]; ok {
			s.ID = orig
		}
		snapshots = append(snapshots, s)
	}
	if len(snapshots) == 0 {
		return nil, emptyError(p.Name(), "assets")
	}
	return snapshots, nil
}

func (a capAsset) snapshot() (model.CoinSnapshot, error) {
	price, err := parseDecimal(a.PriceUsd)
	if err != nil {
		return model.CoinSnapshot{}, fmt.Errorf("priceUsd: %w", err)
	}
	mcap, err := parseDecimal(a.MarketCapUsd)
	if err != nil {
		return model.CoinSnapshot{}, fmt.Errorf("marketCapUsd: %w", err)
	}
	volume, err := parseDecimal(a.VolumeUsd24Hr)
	if err != nil {
		return model.CoinSnapshot{}, fmt.Errorf("volumeUsd24Hr: %w", err)
	}
	pct, err := parseDecimal(a.ChangePercent24Hr)
	if err != nil {
		return model.CoinSnapshot{}, fmt.Errorf("changePercent24Hr: %w", err)
	}

	return model.CoinSnapshot{
		ID:                       a.ID,
		Symbol:                   strings.ToUpper(a.Symbol),
		Name:                     a.Name,
		CurrentPrice:             price.InexactFloat64(),
		MarketCap:                mcap.InexactFloat64(),
		PriceChange24h:           absoluteChange(price, pct).InexactFloat64(),
		PriceChangePercentage24h: pct.InexactFloat64(),
		Volume24h:                volume.InexactFloat64(),
	}, nil
}

// absoluteChange recovers the 24h price delta from the current price and the percentage change.
func absoluteChange(price, pct decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	base := hundred.Add(pct)
	if base.IsZero() {
		return decimal.Zero
	}
	prev := price.Mul(hundred).Div(base)
	return price.Sub(prev)
}

// parseDecimal treats an empty (null) field as zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

type capHistory struct {
	Data []struct {
		PriceUsd string `json:"priceUsd"`
		Time     int64  `json:"time"`
	} `json:"data"`
}

func (p *CoinCapProvider) FetchHistory(ctx context.Context, id string, days int) ([]model.PricePoint, error) {
	end := p.now()
	start := end.AddDate(0, 0, -days)

	var hist capHistory
	path := fmt.Sprintf("/assets/%s/history", url.PathEscape(coinCapID(id)))
	err := getJSON(ctx, p.client, p.Name(), path, map[string]string{
		"interval": "d1",
		"start":    strconv.FormatInt(start.UnixMilli(), 10),
		"end":      strconv.FormatInt(end.UnixMilli(), 10),
	}, &hist)
	if err != nil {
		return nil, err
	}

	points := make([]model.PricePoint, 0, len(hist.Data))
	for _, h := range hist.Data {
		price, err := parseDecimal(h.PriceUsd)
		if err != nil {
			return nil, malformedError(p.Name(), fmt.Errorf("history %s: %w", id, err))
		}
		if !price.IsPositive() {
			continue
		}
		points = append(points, model.PricePoint{Timestamp: h.Time, Price: price.InexactFloat64()})
	}
	if len(points) == 0 {
		return nil, emptyError(p.Name(), "history for "+id)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	return points, nil
}

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

	"CryptoPulse/internal/model"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider reads markets and daily history from the CoinGecko public API.
type CoinGeckoProvider struct {
	client *resty.Client
}

// NewCoinGeckoProvider creates the provider. apiKey is optional (demo plan key).
func NewCoinGeckoProvider(baseURL, apiKey, proxyURL string, timeout time.Duration) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = coinGeckoBaseURL
	}
	client := newRestClient(baseURL, proxyURL, timeout)
	if apiKey != "" {
		client.SetHeader("x-cg-demo-api-key", apiKey)
	}
	return &CoinGeckoProvider{client: client}
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

type geckoMarket struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                float64  `json:"market_cap"`
	TotalVolume              float64  `json:"total_volume"`
	PriceChange24h           float64  `json:"price_change_24h"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
}

func (p *CoinGeckoProvider) FetchSnapshots(ctx context.Context, ids []string) ([]model.CoinSnapshot, error) {
	var markets []geckoMarket
	err := getJSON(ctx, p.client, p.Name(), "/coins/markets", map[string]string{
		"vs_currency":             "usd",
		"ids":                     strings.Join(ids, ","),
		"order":                   "market_cap_desc",
		"per_page":                "100",
		"page":                    "1",
		"sparkline":               "false",
		"price_change_percentage": "24h",
	}, &markets)
	if err != nil {
		return nil, err
	}

	snapshots := make([]model.CoinSnapshot, 0, len(markets))
	for _, m := range markets {
		if m.CurrentPrice == nil {
			continue
		}
		snapshots = append(snapshots, model.CoinSnapshot{
			ID:                       m.ID,
			Symbol:                   strings.ToUpper(m.Symbol),
			Name:                     m.Name,
			CurrentPrice:             *m.CurrentPrice,
			MarketCap:                m.MarketCap,
			PriceChange24h:           m.PriceChange24h,
			PriceChangePercentage24h: m.PriceChangePercentage24h,
			Volume24h:                m.TotalVolume,
		})
	}
	if len(snapshots) == 0 {
		return nil, emptyError(p.Name(), "markets")
	}
	return snapshots, nil
}

type geckoChart struct {
	Prices [][2]float64 `json:"prices"`
}

func (p *CoinGeckoProvider) FetchHistory(ctx context.Context, id string, days int) ([]model.PricePoint, error) {
	var chart geckoChart
	path := fmt.Sprintf("/coins/%s/market_chart", url.PathEscape(id))
	err := getJSON(ctx, p.client, p.Name(), path, map[string]string{
		"vs_currency": "usd",
		"days":        strconv.Itoa(days),
		"interval":    "daily",
	}, &chart)
	if err != nil {
		return nil, err
	}
	if len(chart.Prices) == 0 {
		return nil, emptyError(p.Name(), "prices for "+id)
	}

	points := make([]model.PricePoint, 0, len(chart.Prices))
	for _, pair := range chart.Prices {
		if pair[1] <= 0 {
			continue
		}
		points = append(points, model.PricePoint{Timestamp: int64(pair[0]), Price: pair[1]})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	return points, nil
}

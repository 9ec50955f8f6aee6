package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"

	"CryptoPulse/internal/model"
)

// DefaultBinancePairs maps target ids to USDT spot pairs. Stablecoins quoted
// against themselves are left out.
func DefaultBinancePairs() map[string]string {
	pairs := make(map[string]string, len(catalog))
	for id, e := range catalog {
		if e.Symbol == "USDT" || e.Symbol == "DAI" {
			continue
		}
		pairs[id] = e.Symbol + "USDT"
	}
	return pairs
}

// BinanceProvider reads 24h tickers and daily klines from Binance spot.
// Market cap is not available from the exchange and is reported as zero.
type BinanceProvider struct {
	client *binance.Client
	pairs  map[string]string
}

// NewBinanceProvider creates a new BinanceProvider. pairs maps coin ids to
// USDT trading pairs; an empty map uses DefaultBinancePairs.
func NewBinanceProvider(baseURL, proxyURL string, timeout time.Duration, pairs map[string]string) *BinanceProvider {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}

	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client.HTTPClient = &http.Client{Timeout: timeout, Transport: transport}

	if len(pairs) == 0 {
		pairs = DefaultBinancePairs()
	}
	return &BinanceProvider{client: client, pairs: pairs}
}

func (p *BinanceProvider) Name() string { return "binance" }

func (p *BinanceProvider) FetchSnapshots(ctx context.Context, ids []string) ([]model.CoinSnapshot, error) {
	bySymbol := make(map[string]string, len(ids))
	symbols := make([]string, 0, len(ids))
	for _, id := range ids {
		if pair, ok := p.pairs[id]; ok {
			bySymbol[pair] = id
			symbols = append(symbols, pair)
		}
	}
	if len(symbols) == 0 {
		return nil, emptyError(p.Name(), "tradable pairs")
	}

	stats, err := p.client.NewListPriceChangeStatsService().Symbols(symbols).Do(ctx)
	if err != nil {
		return nil, p.classify(err)
	}

	snapshots := make([]model.CoinSnapshot, 0, len(stats))
	for _, st := range stats {
		id, ok := bySymbol[st.Symbol]
		if !ok {
			continue
		}
		s, err := tickerSnapshot(id, st.Symbol, st)
		if err != nil {
			return nil, malformedError(p.Name(), err)
		}
		snapshots = append(snapshots, s)
	}
	if len(snapshots) == 0 {
		return nil, emptyError(p.Name(), "tickers")
	}
	return snapshots, nil
}

func tickerSnapshot(id, pair string, st *binance.PriceChangeStats) (model.CoinSnapshot, error) {
	last, err := decimal.NewFromString(st.LastPrice)
	if err != nil {
		return model.CoinSnapshot{}, fmt.Errorf("%s lastPrice: %w", pair, err)
	}
	change, err := parseDecimal(st.PriceChange)
	if err != nil {
		return model.CoinSnapshot{}, fmt.Errorf("%s priceChange: %w", pair, err)
	}
	pct, err := parseDecimal(st.PriceChangePercent)
	if err != nil {
		return model.CoinSnapshot{}, fmt.Errorf("%s priceChangePercent: %w", pair, err)
	}
	quoteVolume, err := parseDecimal(st.QuoteVolume)
	if err != nil {
		return model.CoinSnapshot{}, fmt.Errorf("%s quoteVolume: %w", pair, err)
	}

	symbol, name := strings.TrimSuffix(pair, "USDT"), strings.TrimSuffix(pair, "USDT")
	if e, ok := catalog[id]; ok {
		symbol, name = e.Symbol, e.Name
	}
	return model.CoinSnapshot{
		ID:                       id,
		Symbol:                   symbol,
		Name:                     name,
		CurrentPrice:             last.InexactFloat64(),
		PriceChange24h:           change.InexactFloat64(),
		PriceChangePercentage24h: pct.InexactFloat64(),
		Volume24h:                quoteVolume.InexactFloat64(),
	}, nil
}

func (p *BinanceProvider) FetchHistory(ctx context.Context, id string, days int) ([]model.PricePoint, error) {
	pair, ok := p.pairs[id]
	if !ok {
		return nil, emptyError(p.Name(), "pair for "+id)
	}
	klines, err := p.client.NewKlinesService().
		Symbol(pair).
		Interval("1d").
		Limit(days + 1).
		Do(ctx)
	if err != nil {
		return nil, p.classify(err)
	}

	points := make([]model.PricePoint, 0, len(klines))
	for _, k := range klines {
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, malformedError(p.Name(), fmt.Errorf("%s close: %w", pair, err))
		}
		points = append(points, model.PricePoint{Timestamp: k.OpenTime, Price: closePrice.InexactFloat64()})
	}
	if len(points) == 0 {
		return nil, emptyError(p.Name(), "klines for "+pair)
	}
	return points, nil
}

func (p *BinanceProvider) classify(err error) *ProviderError {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		// the SDK drops the HTTP status; only Binance's own code survives
		return &ProviderError{Provider: p.Name(), Kind: KindStatus, Err: fmt.Errorf("api code %d: %w", apiErr.Code, apiErr)}
	}
	return transportError(p.Name(), err)
}

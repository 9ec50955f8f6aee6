package collector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"CryptoPulse/internal/calculator"
	"CryptoPulse/internal/logger"
	"CryptoPulse/internal/model"
)

// HistorySource supplies price history for a coin.
type HistorySource interface {
	History(ctx context.Context, id string, days int, source string) ([]model.PricePoint, string, error)
}

// Settings selects the lookback window and indicator periods.
type Settings struct {
	HistoryDays int
	SMAShort    int
	SMALong     int
	RSIPeriod   int
	MACDFast    int
	MACDSlow    int
	MACDSignal  int
	MACDMode    calculator.MACDMode

	BollingerPeriod int
	BollingerK      float64
	LevelsLookback  int // closes scanned for support and resistance
}

// DefaultSettings returns SMA20/SMA50, RSI14, MACD(12,26,9) and BB(20,2)
// over 30 days.
func DefaultSettings() Settings {
	return Settings{
		HistoryDays: 30,
		SMAShort:    20,
		SMALong:     50,
		RSIPeriod:   14,
		MACDFast:    12,
		MACDSlow:    26,
		MACDSignal:  9,
		MACDMode:    calculator.MACDSimple,

		BollingerPeriod: 20,
		BollingerK:      2,
		LevelsLookback:  50,
	}
}

// Collector turns a coin's price history into an indicator set.
type Collector struct {
	History  HistorySource
	Settings Settings
}

// NewCollector creates a new Collector.
func NewCollector(history HistorySource, settings Settings) *Collector {
	return &Collector{History: history, Settings: settings}
}

// Collect fetches history for coin and computes all indicators. source is the
// provider that served the snapshot.
func (c *Collector) Collect(ctx context.Context, coin model.CoinSnapshot, source string) (*model.IndicatorSet, error) {
	points, from, err := c.History.History(ctx, coin.ID, c.Settings.HistoryDays, source)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", coin.ID, err)
	}
	prices := calculator.ExtractPrices(points)
	if len(prices) == 0 {
		return nil, fmt.Errorf("history for %s: %w", coin.ID, calculator.ErrInsufficientData)
	}
	logger.Debug("history loaded", zap.String("coin", coin.ID), zap.String("provider", from), zap.Int("points", len(prices)))

	return c.Compute(coin.ID, prices), nil
}

// Compute builds the indicator set from prices ordered oldest first.
// Indicators without enough data are left nil.
func (c *Collector) Compute(id string, prices []float64) *model.IndicatorSet {
	s := c.Settings
	ind := &model.IndicatorSet{
		CurrentPrice: prices[len(prices)-1],
		MACD:         calculator.CalculateMACD(prices, s.MACDFast, s.MACDSlow, s.MACDSignal, s.MACDMode),
		Volatility:   calculator.CalculateVolatility(prices),
	}
	if len(prices) >= 2 {
		ind.PreviousPrice = model.Float(prices[len(prices)-2])
	}

	ind.SMA20 = optional(id, "sma_short", func() (float64, error) { return calculator.CalculateSMA(prices, s.SMAShort) })
	ind.SMA50 = optional(id, "sma_long", func() (float64, error) { return calculator.CalculateSMA(prices, s.SMALong) })
	ind.RSI = optional(id, "rsi", func() (float64, error) { return calculator.CalculateRSI(prices, s.RSIPeriod) })

	if s.BollingerPeriod > 0 {
		if bands, err := calculator.CalculateBollinger(prices, s.BollingerPeriod, s.BollingerK); err == nil {
			ind.Bollinger = &bands
		} else if !errors.Is(err, calculator.ErrInsufficientData) {
			logger.Warn("indicator calculation failed", zap.String("coin", id), zap.String("indicator", "bollinger"), zap.Error(err))
		}
	}
	if s.LevelsLookback > 0 {
		if support, resistance, err := calculator.SupportResistance(prices, s.LevelsLookback); err == nil {
			ind.Support, ind.Resistance = model.Float(support), model.Float(resistance)
		}
	}
	return ind
}

func optional(id, name string, calc func() (float64, error)) *float64 {
	v, err := calc()
	if err != nil {
		if !errors.Is(err, calculator.ErrInsufficientData) {
			logger.Warn("indicator calculation failed", zap.String("coin", id), zap.String("indicator", name), zap.Error(err))
		}
		return nil
	}
	return model.Float(v)
}

// MetadataOnly builds the degraded indicator set used when history is unavailable.
func MetadataOnly(coin model.CoinSnapshot) *model.IndicatorSet {
	return &model.IndicatorSet{
		CurrentPrice: coin.CurrentPrice,
		MetadataOnly: true,
	}
}

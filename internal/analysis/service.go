package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"CryptoPulse/internal/collector"
	"CryptoPulse/internal/logger"
	"CryptoPulse/internal/model"
	"CryptoPulse/internal/strategy"
)

// ErrNoMarketData is returned when no source produced any coin snapshot.
var ErrNoMarketData = errors.New("no market data available from any source")

// SnapshotSource returns snapshots and the name of the provider that served them.
type SnapshotSource interface {
	Snapshots(ctx context.Context, ids []string) ([]model.CoinSnapshot, string, error)
}

// IndicatorSource builds indicators for one coin.
type IndicatorSource interface {
	Collect(ctx context.Context, coin model.CoinSnapshot, source string) (*model.IndicatorSet, error)
}

// Options configures one analysis pass.
type Options struct {
	Targets []string
	Params  strategy.Params
	Rank    strategy.RankOptions
	// DegradeOnHistoryError scores a coin from metadata alone when its
	// history fails; otherwise the coin is skipped.
	DegradeOnHistoryError bool
}

// Report is the outcome of one analysis pass.
type Report struct {
	Results       []model.RankedResult
	TotalAnalyzed int
	DataSource    string
	Degraded      []string // ids scored from metadata only
	Skipped       []string // ids left out after a failure
	GeneratedAt   time.Time
}

// Service runs the snapshot, indicator, scoring and ranking pipeline.
type Service struct {
	snapshots  SnapshotSource
	indicators IndicatorSource
	opts       Options
	now        func() time.Time
}

// NewService creates a new Service.
func NewService(snapshots SnapshotSource, indicators IndicatorSource, opts Options) *Service {
	return &Service{snapshots: snapshots, indicators: indicators, opts: opts, now: time.Now}
}

// Run performs one full analysis. Coins are processed one after another.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	coins, source, err := s.snapshots.Snapshots(ctx, s.opts.Targets)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch snapshots: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w", ErrNoMarketData, err)
	}
	if len(coins) == 0 {
		return nil, ErrNoMarketData
	}
	logger.Info("snapshots loaded", zap.String("provider", source), zap.Int("coins", len(coins)))

	report := &Report{TotalAnalyzed: len(coins), DataSource: source}
	scored := make([]model.RankedResult, 0, len(coins))

	for _, coin := range coins {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis aborted: %w", err)
		}

		ind, err := s.indicators.Collect(ctx, coin, source)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("analysis aborted: %w", ctx.Err())
			}
			if !s.opts.DegradeOnHistoryError {
				logger.Warn("skipping coin", zap.String("coin", coin.ID), zap.Error(err))
				report.Skipped = append(report.Skipped, coin.ID)
				continue
			}
			logger.Warn("scoring coin from metadata only", zap.String("coin", coin.ID), zap.Error(err))
			report.Degraded = append(report.Degraded, coin.ID)
			ind = collector.MetadataOnly(coin)
		}

		sig := strategy.Evaluate(ind, &coin, s.opts.Params)
		scored = append(scored, strategy.NewResult(&coin, ind, sig))
	}

	report.Results = strategy.Rank(scored, s.opts.Rank)
	report.GeneratedAt = s.now().UTC()
	return report, nil
}

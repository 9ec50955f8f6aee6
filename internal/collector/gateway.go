package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"CryptoPulse/internal/logger"
	"CryptoPulse/internal/model"
)

// GatewayConfig bounds provider calls.
type GatewayConfig struct {
	AttemptTimeout time.Duration // per provider call; zero disables
	RetryAttempts  int           // attempts against the primary provider
	RetryDelay     time.Duration // fixed pause between primary attempts
	Quality        QualityFilter
}

// Gateway tries live providers in order and falls back to a static dataset.
// Providers are never raced.
type Gateway struct {
	providers []Provider
	fallback  Provider
	cfg       GatewayConfig
}

// NewGateway creates a gateway. providers[0] is the primary. fallback may be nil.
func NewGateway(cfg GatewayConfig, fallback Provider, providers ...Provider) *Gateway {
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	return &Gateway{providers: providers, fallback: fallback, cfg: cfg}
}

// Providers returns the names of the live providers followed by the fallback.
func (g *Gateway) Providers() []string {
	names := make([]string, 0, len(g.providers)+1)
	for _, p := range g.providers {
		names = append(names, p.Name())
	}
	if g.fallback != nil {
		names = append(names, g.fallback.Name())
	}
	return names
}

// Snapshots returns market snapshots for ids and the name of the provider that served them.
func (g *Gateway) Snapshots(ctx context.Context, ids []string) ([]model.CoinSnapshot, string, error) {
	var errs []error
	for i, p := range g.providers {
		attempts := 1
		if i == 0 {
			attempts = g.cfg.RetryAttempts
		}
		for a := 1; a <= attempts; a++ {
			snaps, err := g.snapshotsOnce(ctx, p, ids)
			if err == nil {
				return snaps, p.Name(), nil
			}
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			errs = append(errs, err)
			logger.Warn("snapshot fetch failed",
				zap.String("provider", p.Name()),
				zap.Int("attempt", a),
				zap.Int("max_attempts", attempts),
				zap.Error(err))
			if a < attempts {
				if err := sleep(ctx, g.cfg.RetryDelay); err != nil {
					return nil, "", err
				}
			}
		}
	}

	if g.fallback != nil {
		snaps, err := g.snapshotsOnce(ctx, g.fallback, ids)
		if err == nil {
			logger.Warn("serving static fallback dataset", zap.Int("coins", len(snaps)))
			return snaps, g.fallback.Name(), nil
		}
		errs = append(errs, err)
	}
	return nil, "", fmt.Errorf("%w: %w", ErrAllProvidersFailed, errors.Join(errs...))
}

func (g *Gateway) snapshotsOnce(ctx context.Context, p Provider, ids []string) ([]model.CoinSnapshot, error) {
	actx, cancel := g.attemptContext(ctx)
	defer cancel()

	snaps, err := p.FetchSnapshots(actx, ids)
	if err != nil {
		return nil, wrapAttemptError(p.Name(), actx, err)
	}
	snaps = g.cfg.Quality.apply(snaps)
	if len(snaps) == 0 {
		return nil, emptyError(p.Name(), "priced snapshots")
	}
	return snaps, nil
}

// History returns the price history of one coin. source is the provider that
// served the snapshot and is tried first: a provider that already failed the
// snapshot stage is only asked afterwards. Synthetic history is only used
// alongside synthetic snapshots.
func (g *Gateway) History(ctx context.Context, id string, days int, source string) ([]model.PricePoint, string, error) {
	candidates := g.historyOrder(source)

	var errs []error
	for _, p := range candidates {
		actx, cancel := g.attemptContext(ctx)
		points, err := p.FetchHistory(actx, id, days)
		if err == nil && len(points) == 0 {
			err = emptyError(p.Name(), "history for "+id)
		}
		if err != nil {
			err = wrapAttemptError(p.Name(), actx, err)
		}
		cancel()
		if err == nil {
			return points, p.Name(), nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		errs = append(errs, err)
		logger.Debug("history fetch failed",
			zap.String("provider", p.Name()),
			zap.String("coin", id),
			zap.Error(err))
	}
	if len(errs) == 0 {
		return nil, "", fmt.Errorf("history for %s: %w", id, ErrAllProvidersFailed)
	}
	return nil, "", fmt.Errorf("history for %s: %w: %w", id, ErrAllProvidersFailed, errors.Join(errs...))
}

// historyOrder puts the provider named source first and keeps the rest in
// configured order.
func (g *Gateway) historyOrder(source string) []Provider {
	if g.fallback != nil && source == g.fallback.Name() {
		return []Provider{g.fallback}
	}
	order := make([]Provider, 0, len(g.providers))
	for _, p := range g.providers {
		if p.Name() == source {
			order = append(order, p)
		}
	}
	for _, p := range g.providers {
		if p.Name() != source {
			order = append(order, p)
		}
	}
	return order
}

func (g *Gateway) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.AttemptTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.cfg.AttemptTimeout)
}

// wrapAttemptError makes sure every failure surfaces as a ProviderError and
// that an expired attempt is reported as a timeout.
func wrapAttemptError(provider string, actx context.Context, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Kind == KindConnection && errors.Is(actx.Err(), context.DeadlineExceeded) {
			pe.Kind = KindTimeout
		}
		return err
	}
	if errors.Is(actx.Err(), context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Kind: KindTimeout, Err: err}
	}
	return &ProviderError{Provider: provider, Kind: KindConnection, Err: err}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

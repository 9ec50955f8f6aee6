package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"CryptoPulse/internal/logger"
	"CryptoPulse/internal/model"
)

// Provider is a source of market snapshots and price history.
type Provider interface {
	Name() string
	FetchSnapshots(ctx context.Context, ids []string) ([]model.CoinSnapshot, error)
	FetchHistory(ctx context.Context, id string, days int) ([]model.PricePoint, error)
}

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindStatus     ErrorKind = "status"
	KindConnection ErrorKind = "connection"
	KindTimeout    ErrorKind = "timeout"
	KindMalformed  ErrorKind = "malformed"
	KindEmpty      ErrorKind = "empty"
)

// ErrAllProvidersFailed is returned when no provider, including the fallback, produced data.
var ErrAllProvidersFailed = errors.New("all market data providers failed")

// ProviderError describes why a provider call failed.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Status   int // HTTP status for KindStatus, 0 when unknown
	Err      error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Kind == KindStatus && e.Status != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is matches a target ProviderError on Kind, and on Provider when the target names one.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Provider == "" || t.Provider == e.Provider)
}

// IsKind reports whether err, or any error joined into it, is a ProviderError
// of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return errors.Is(err, &ProviderError{Kind: kind})
}

func statusError(provider string, status int, body []byte) *ProviderError {
	msg := string(body)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return &ProviderError{Provider: provider, Kind: KindStatus, Status: status, Err: fmt.Errorf("%s %s", http.StatusText(status), msg)}
}

func malformedError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindMalformed, Err: err}
}

func emptyError(provider, what string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindEmpty, Err: fmt.Errorf("no %s returned", what)}
}

// transportError classifies a failed round trip as timeout or connection.
func transportError(provider string, err error) *ProviderError {
	if isTimeout(err) {
		return &ProviderError{Provider: provider, Kind: KindTimeout, Err: err}
	}
	return &ProviderError{Provider: provider, Kind: KindConnection, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}

// QualityFilter drops illiquid or unpriced coins from a snapshot list.
// Zero thresholds disable the matching check. A market cap of zero means the
// provider does not report one (binance) and is not held against the coin.
type QualityFilter struct {
	MinVolume    float64
	MinMarketCap float64
}

// DefaultQualityFilter requires $1M of 24h volume and a $10M market cap.
func DefaultQualityFilter() QualityFilter {
	return QualityFilter{MinVolume: 1e6, MinMarketCap: 1e7}
}

// Accept reports whether s passes the filter. A positive price is always required.
func (q QualityFilter) Accept(s model.CoinSnapshot) bool {
	if s.CurrentPrice <= 0 {
		return false
	}
	if q.MinVolume > 0 && s.Volume24h <= q.MinVolume {
		return false
	}
	if q.MinMarketCap > 0 && s.MarketCap != 0 && s.MarketCap <= q.MinMarketCap {
		return false
	}
	return true
}

func (q QualityFilter) apply(snapshots []model.CoinSnapshot) []model.CoinSnapshot {
	out := make([]model.CoinSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if q.Accept(s) {
			out = append(out, s)
		} else {
			logger.Debug("snapshot dropped by quality filter",
				zap.String("coin", s.ID),
				zap.Float64("volume", s.Volume24h),
				zap.Float64("market_cap", s.MarketCap))
		}
	}
	return out
}

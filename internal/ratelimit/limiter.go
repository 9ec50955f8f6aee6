package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration // zero when allowed
}

// Limiter decides whether a client may run another analysis.
type Limiter interface {
	Check(ctx context.Context, clientID string) (Decision, error)
}

// Policy is a fixed-window limit: at most MaxRequests per Window per client.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// window is the per-client state shared by the in-process and sqlite stores.
type window struct {
	Start       time.Time
	LastRequest time.Time
	Count       int
}

// advance applies one request at now to w. A missing or expired window starts fresh.
func (p Policy) advance(w *window, now time.Time) (window, Decision) {
	if w == nil || now.Sub(w.Start) >= p.Window || now.Before(w.Start) {
		return window{Start: now, LastRequest: now, Count: 1}, Decision{Allowed: true}
	}
	next := *w
	next.LastRequest = now
	if next.Count < p.MaxRequests {
		next.Count++
		return next, Decision{Allowed: true}
	}
	return next, Decision{RetryAfter: w.Start.Add(p.Window).Sub(now)}
}

// NoopLimiter allows every request. It is used when rate limiting is disabled.
type NoopLimiter struct{}

func (NoopLimiter) Check(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}

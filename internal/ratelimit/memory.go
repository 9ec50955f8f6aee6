package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps windows in process memory. Each instance has its own
// state, so limits are best-effort when several instances serve traffic.
type MemoryLimiter struct {
	policy       Policy
	idleHorizon  time.Duration
	cleanupEvery int

	mu       sync.Mutex
	clients  map[string]*window
	requests int
	now      func() time.Time
}

// NewMemoryLimiter creates an in-process limiter. Entries idle for longer
// than idleHorizon are evicted every cleanupEvery checks and by Sweep.
func NewMemoryLimiter(policy Policy, idleHorizon time.Duration, cleanupEvery int) *MemoryLimiter {
	return &MemoryLimiter{
		policy:       policy,
		idleHorizon:  idleHorizon,
		cleanupEvery: cleanupEvery,
		clients:      make(map[string]*window),
		now:          time.Now,
	}
}

func (m *MemoryLimiter) Check(_ context.Context, clientID string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	next, d := m.policy.advance(m.clients[clientID], now)
	m.clients[clientID] = &next

	m.requests++
	if m.cleanupEvery > 0 && m.requests%m.cleanupEvery == 0 {
		m.sweepLocked(now)
	}
	return d, nil
}

// Sweep evicts idle entries and returns how many were removed.
func (m *MemoryLimiter) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.now()), nil
}

func (m *MemoryLimiter) sweepLocked(now time.Time) int {
	if m.idleHorizon <= 0 {
		return 0
	}
	removed := 0
	for id, w := range m.clients {
		if now.Sub(w.LastRequest) > m.idleHorizon {
			delete(m.clients, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

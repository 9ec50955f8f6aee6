package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *clock                   { return &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)} }

func TestPolicyAdvance(t *testing.T) {
	p := Policy{MaxRequests: 2, Window: time.Minute}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	w, d := p.advance(nil, now)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, w.Count)

	w, d = p.advance(&w, now.Add(10*time.Second))
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, w.Count)

	w, d = p.advance(&w, now.Add(20*time.Second))
	assert.False(t, d.Allowed)
	assert.Equal(t, 40*time.Second, d.RetryAfter)
	assert.Equal(t, 2, w.Count)
	assert.Equal(t, now.Add(20*time.Second), w.LastRequest)

	w, d = p.advance(&w, now.Add(time.Minute))
	assert.True(t, d.Allowed, "window expired")
	assert.Equal(t, 1, w.Count)
}

// Two requests from one client inside the window: the second is refused.
func TestMemoryLimiter_SecondRequestLimited(t *testing.T) {
	c := newClock()
	l := NewMemoryLimiter(Policy{MaxRequests: 1, Window: 5 * time.Minute}, 24*time.Hour, 100)
	l.now = c.now
	ctx := context.Background()

	d, err := l.Check(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	c.advance(30 * time.Second)
	d, err = l.Check(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 4*time.Minute+30*time.Second, d.RetryAfter)

	d, _ = l.Check(ctx, "198.51.100.1")
	assert.True(t, d.Allowed, "other clients are independent")

	c.advance(5 * time.Minute)
	d, _ = l.Check(ctx, "203.0.113.7")
	assert.True(t, d.Allowed)
}

func TestMemoryLimiter_PeriodicEviction(t *testing.T) {
	c := newClock()
	l := NewMemoryLimiter(Policy{MaxRequests: 5, Window: time.Minute}, time.Hour, 3)
	l.now = c.now
	ctx := context.Background()

	_, _ = l.Check(ctx, "a")
	_, _ = l.Check(ctx, "b")
	assert.Equal(t, 2, l.Len())

	c.advance(2 * time.Hour)
	_, _ = l.Check(ctx, "c") // third request triggers cleanup
	assert.Equal(t, 1, l.Len())
}

func TestMemoryLimiter_Sweep(t *testing.T) {
	c := newClock()
	l := NewMemoryLimiter(Policy{MaxRequests: 5, Window: time.Minute}, 24*time.Hour, 0)
	l.now = c.now
	ctx := context.Background()

	_, _ = l.Check(ctx, "old")
	c.advance(23 * time.Hour)
	_, _ = l.Check(ctx, "recent")
	c.advance(2 * time.Hour)

	n, err := l.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, l.Len())
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	l := NewMemoryLimiter(Policy{MaxRequests: 10, Window: time.Hour}, time.Hour, 7)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, _ := l.Check(ctx, "shared")
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}

func TestNoopLimiter(t *testing.T) {
	var l Limiter = NoopLimiter{}
	for i := 0; i < 3; i++ {
		d, err := l.Check(context.Background(), "x")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
}

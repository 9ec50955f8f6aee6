package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoPulse/internal/analysis"
	"CryptoPulse/internal/model"
)

type stubAnalyzer struct {
	report *analysis.Report
	err    error
	calls  int
}

func (s *stubAnalyzer) Run(context.Context) (*analysis.Report, error) {
	s.calls++
	return s.report, s.err
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) SendWithRetry(_ context.Context, text string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return nil
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSweeper) Sweep(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 2, nil
}

func (c *countingSweeper) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func report() *analysis.Report {
	return &analysis.Report{
		Results: []model.RankedResult{
			{Symbol: "BTC", Name: "Bitcoin", Type: model.SignalLong, Score: 0.8, Signal: "Technical analysis BTC:"},
			{Symbol: "SOL", Name: "Solana", Type: model.SignalNeutral, Score: 0.45, Signal: "Technical analysis SOL:"},
		},
		TotalAnalyzed: 16,
		DataSource:    "coincap",
		GeneratedAt:   time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &stubAnalyzer{}, &recordingSender{}, &countingSweeper{}, Options{})
	require.NoError(t, s.RegisterAll("0 0 8 * * *", "0 */10 * * * *"))
	assert.Len(t, s.Cron.Entries(), 2)

	s = NewScheduler(context.Background(), &stubAnalyzer{}, nil, nil, Options{})
	require.NoError(t, s.RegisterAll("0 0 8 * * *", "0 */10 * * * *"))
	assert.Empty(t, s.Cron.Entries(), "jobs without a notifier or sweeper are skipped")

	s = NewScheduler(context.Background(), &stubAnalyzer{}, &recordingSender{}, nil, Options{})
	assert.Error(t, s.RegisterAll("not a cron", ""))
}

func TestDigestTask(t *testing.T) {
	sender := &recordingSender{}
	a := &stubAnalyzer{report: report()}
	s := NewScheduler(context.Background(), a, sender, nil, Options{DigestTop: 1})

	s.RunDigestNow()

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "<b>BTC</b>")
	assert.NotContains(t, sender.sent[0], "<b>SOL</b>")
	assert.Same(t, a.report, s.LastReport())
}

func TestDigestTask_Failure(t *testing.T) {
	sender := &recordingSender{}
	s := NewScheduler(context.Background(), &stubAnalyzer{err: errors.New("no data")}, sender, nil, Options{})

	s.RunDigestNow()

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Digest analysis failed: no data")
	assert.Nil(t, s.LastReport())
}

func TestSweepJobRuns(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(context.Background(), &stubAnalyzer{}, nil, sweeper, Options{})
	require.NoError(t, s.RegisterAll("", "* * * * * *"))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return sweeper.count() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestHandleCommand(t *testing.T) {
	a := &stubAnalyzer{report: report()}
	s := NewScheduler(context.Background(), a, &recordingSender{}, nil, Options{
		Providers:   []string{"coingecko", "coincap", "fallback"},
		LimiterName: "memory",
		DigestTop:   5,
	})
	require.NoError(t, s.RegisterAll("0 0 8 * * *", ""))

	status := s.HandleCommand("/status")
	assert.Contains(t, status, "Last analysis: never")
	assert.Contains(t, status, "Rate limiter: memory")

	assert.Equal(t, "No analysis has run yet. Try /signals first.", s.HandleCommand("/signal btc"))

	digest := s.HandleCommand("/signals")
	assert.Contains(t, digest, "<b>BTC</b>")
	assert.Contains(t, digest, "<b>SOL</b>")
	assert.Equal(t, 1, a.calls)

	status = s.HandleCommand("/status")
	assert.Contains(t, status, "Last analysis: 2024-05-01 08:00 (coincap, 2 signals)")

	assert.True(t, strings.HasPrefix(s.HandleCommand("/signal btc"), "🟢 <b>BTC</b> (Bitcoin)"))
	assert.Equal(t, "DOGE is not among the last ranked signals.", s.HandleCommand("/signal doge"))
	assert.Equal(t, "Usage: /signal SYMBOL", s.HandleCommand("/signal"))
	assert.Contains(t, s.HandleCommand("/help"), "Available commands")
}

func TestHandleCommand_SignalsFailure(t *testing.T) {
	s := NewScheduler(context.Background(), &stubAnalyzer{err: errors.New("timeout")}, nil, nil, Options{})
	assert.Equal(t, "❌ Analysis failed: timeout", s.HandleCommand("/signals"))
}

func TestStatus_NextDigest(t *testing.T) {
	s := NewScheduler(context.Background(), &stubAnalyzer{}, &recordingSender{}, nil, Options{})
	require.NoError(t, s.RegisterAll("0 0 8 * * *", ""))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return !s.Status().NextDigest.IsZero() }, time.Second, 10*time.Millisecond)
}

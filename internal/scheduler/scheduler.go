package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"CryptoPulse/internal/analysis"
	"CryptoPulse/internal/logger"
	"CryptoPulse/internal/notifier"
)

// Analyzer runs one analysis pass.
type Analyzer interface {
	Run(ctx context.Context) (*analysis.Report, error)
}

// Sender delivers chat messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Sweeper evicts idle rate-limit entries.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Options describe the service for the /status command and the digest.
type Options struct {
	Providers     []string
	LimiterName   string
	DigestTop     int
	RunTimeout    time.Duration
	NotifyRetries int
}

// Scheduler manages cron tasks and answers chat commands. It also wraps the
// analyzer so every run, scheduled or served over HTTP, is reflected in /status.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer Analyzer
	Notifier Sender  // nil disables the digest
	Sweeper  Sweeper // nil disables the sweep job
	Ctx      context.Context
	opts     Options

	mu       sync.Mutex
	last     *analysis.Report
	digestID cron.EntryID
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a Analyzer, sender Sender, sweeper Sweeper, opts Options) *Scheduler {
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 2 * time.Minute
	}
	if opts.NotifyRetries <= 0 {
		opts.NotifyRetries = 3
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: a,
		Notifier: sender,
		Sweeper:  sweeper,
		Ctx:      ctx,
		opts:     opts,
	}
}

// RegisterAll registers the digest and limiter sweep jobs. Empty specs, or a
// missing notifier or sweeper, leave the matching job out.
func (s *Scheduler) RegisterAll(digestCron, sweepCron string) error {
	if digestCron != "" && s.Notifier != nil {
		id, err := s.Cron.AddFunc(digestCron, s.digestTask)
		if err != nil {
			return fmt.Errorf("register digest task: %w", err)
		}
		s.digestID = id
	}
	if sweepCron != "" && s.Sweeper != nil {
		if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
			return fmt.Errorf("register sweep task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// Run runs an analysis through the wrapped analyzer and remembers the report.
func (s *Scheduler) Run(ctx context.Context) (*analysis.Report, error) {
	report, err := s.Analyzer.Run(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
	return report, nil
}

// LastReport returns the most recent successful report, or nil.
func (s *Scheduler) LastReport() *analysis.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RunDigestNow executes the digest immediately (for RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) digestTask() {
	logger.Info("running digest task")
	report, err := s.analyze()
	if err != nil {
		logger.Error("digest analysis failed", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ Digest analysis failed: %v", err))
		return
	}
	s.trySend(notifier.FormatDigest(report, s.opts.DigestTop))
}

func (s *Scheduler) sweepTask() {
	ctx, cancel := context.WithTimeout(s.Ctx, 30*time.Second)
	defer cancel()
	removed, err := s.Sweeper.Sweep(ctx)
	if err != nil {
		logger.Error("rate limit sweep failed", zap.Error(err))
		return
	}
	logger.Debug("rate limit sweep finished", zap.Int("removed", removed))
}

func (s *Scheduler) analyze() (*analysis.Report, error) {
	ctx, cancel := context.WithTimeout(s.Ctx, s.opts.RunTimeout)
	defer cancel()
	return s.Run(ctx)
}

// Status reports the service state shown by /status.
func (s *Scheduler) Status() notifier.Status {
	st := notifier.Status{Providers: s.opts.Providers, Limiter: s.opts.LimiterName}
	if last := s.LastReport(); last != nil {
		st.LastRun = last.GeneratedAt
		st.LastSource = last.DataSource
		st.LastCount = len(last.Results)
	}
	if s.digestID != 0 {
		st.NextDigest = s.Cron.Entry(s.digestID).Next
	}
	return st
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	name, arg, _ := strings.Cut(strings.TrimSpace(command), " ")
	switch strings.ToLower(name) {
	case "/signals":
		report, err := s.analyze()
		if err != nil {
			return fmt.Sprintf("❌ Analysis failed: %v", err)
		}
		return notifier.FormatDigest(report, s.opts.DigestTop)
	case "/signal":
		return s.signalReply(strings.ToUpper(strings.TrimSpace(arg)))
	case "/status":
		return notifier.FormatStatus(s.Status())
	default:
		return "Available commands:\n• /signals - run an analysis now\n• /signal SYMBOL - details from the last analysis\n• /status - service status"
	}
}

func (s *Scheduler) signalReply(symbol string) string {
	if symbol == "" {
		return "Usage: /signal SYMBOL"
	}
	last := s.LastReport()
	if last == nil {
		return "No analysis has run yet. Try /signals first."
	}
	for _, r := range last.Results {
		if strings.EqualFold(r.Symbol, symbol) {
			return notifier.FormatSignal(r)
		}
	}
	return fmt.Sprintf("%s is not among the last ranked signals.", symbol)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, s.opts.NotifyRetries); err != nil {
		logger.Error("send notification failed", zap.Error(err))
	}
}

package ratelimit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"CryptoPulse/internal/logger"
)

// SQLiteLimiter persists windows in a SQLite database so that processes on
// one host share the limit and survive restarts.
type SQLiteLimiter struct {
	db          *sql.DB
	policy      Policy
	idleHorizon time.Duration
	mu          sync.Mutex
	now         func() time.Time
}

// NewSQLiteLimiter opens (or creates) the database and runs migrations.
func NewSQLiteLimiter(dbPath string, policy Policy, idleHorizon time.Duration) (*SQLiteLimiter, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	l := &SQLiteLimiter{db: db, policy: policy, idleHorizon: idleHorizon, now: time.Now}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite rate limiter opened", zap.String("path", dbPath))
	return l, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS rate_limits (
		client_id    TEXT PRIMARY KEY,
		window_start INTEGER NOT NULL,
		last_request INTEGER NOT NULL,
		count        INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rate_limits_last ON rate_limits(last_request)`,
}

func (l *SQLiteLimiter) migrate() error {
	return execAll(l.db, schema)
}

func execAll(db *sql.DB, stmts []string) error {
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:min(len(s), 40)], err)
		}
	}
	return nil
}

func (l *SQLiteLimiter) Check(ctx context.Context, clientID string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return Decision{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var current *window
	var start, last int64
	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT window_start, last_request, count FROM rate_limits WHERE client_id = ?`, clientID,
	).Scan(&start, &last, &count)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Decision{}, fmt.Errorf("load window: %w", err)
	default:
		current = &window{Start: time.UnixMilli(start), LastRequest: time.UnixMilli(last), Count: count}
	}

	next, d := l.policy.advance(current, l.now())
	_, err = tx.ExecContext(ctx, `INSERT INTO rate_limits (client_id, window_start, last_request, count)
		VALUES (?,?,?,?)
		ON CONFLICT(client_id) DO UPDATE SET
			window_start = excluded.window_start,
			last_request = excluded.last_request,
			count        = excluded.count`,
		clientID, next.Start.UnixMilli(), next.LastRequest.UnixMilli(), next.Count,
	)
	if err != nil {
		return Decision{}, fmt.Errorf("store window: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Decision{}, fmt.Errorf("commit: %w", err)
	}
	return d, nil
}

// Sweep deletes entries idle for longer than the idle horizon.
func (l *SQLiteLimiter) Sweep(ctx context.Context) (int, error) {
	if l.idleHorizon <= 0 {
		return 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleHorizon).UnixMilli()
	res, err := l.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE last_request < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep rows: %w", err)
	}
	return int(n), nil
}

func (l *SQLiteLimiter) Close() error {
	logger.Info("closing sqlite rate limiter")
	return l.db.Close()
}

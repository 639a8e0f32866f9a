package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/velmie/statementq"
)

const (
	defaultPurgeLimit      = 10000
	defaultPurgeEvery      = time.Hour
	defaultPurgeLockPrefix = "statementq:purge:"
)

// PurgeOptions selects rows that ran out of budget.
type PurgeOptions struct {
	// MaxAttempts removes rows with attempts >= MaxAttempts when positive.
	MaxAttempts int
	// Before removes rows whose last attempt is at or before this time when non-zero.
	Before time.Time
	// Limit caps the number of rows deleted per call (0 uses the default).
	Limit int
}

// PurgeResult reports how many rows were removed per reason.
type PurgeResult struct {
	Exhausted int64
	Expired   int64
}

// PurgeMaintainerConfig controls periodic purging of out-of-budget rows.
type PurgeMaintainerConfig struct {
	// Table is the records table name. Use schema.table for non-default schema.
	Table string
	// Namespace limits the purge to one controller's rows.
	Namespace string
	// MaxAttempts and MaxAge mirror the Controller retry policy.
	MaxAttempts int
	MaxAge      time.Duration
	// CheckEvery is the interval between purge runs.
	CheckEvery time.Duration
	// Limit caps the number of rows deleted per run (0 uses the default).
	Limit int
	// LockName is the advisory lock name. Defaults to statementq:purge:<table>:<namespace>.
	LockName string
	// Clock overrides time source (useful for tests).
	Clock statementq.Clock
	// Logger receives purge results and failures.
	Logger statementq.Logger
}

// PurgeMaintainer removes rows left behind by controllers that no longer run, such as
// clients that never came back online.
type PurgeMaintainer struct {
	store *Store
	cfg   PurgeMaintainerConfig
}

// Purge removes rows that exhausted their attempts or whose last attempt is too old.
func (s *Store) Purge(ctx context.Context, opts PurgeOptions) (PurgeResult, error) {
	if opts.MaxAttempts <= 0 && opts.Before.IsZero() {
		return PurgeResult{}, ErrPurgeCriteriaRequired
	}
	limit := opts.Limit
	if limit == 0 {
		limit = defaultPurgeLimit
	}
	if limit < 0 {
		return PurgeResult{}, ErrPurgeLimitInvalid
	}

	var result PurgeResult
	if opts.MaxAttempts > 0 {
		n, err := s.purgeWhere(ctx, "attempts >= ?", opts.MaxAttempts, limit)
		if err != nil {
			return PurgeResult{}, err
		}
		result.Exhausted = n
		limit -= int(n)
	}
	if !opts.Before.IsZero() && limit > 0 {
		n, err := s.purgeWhere(ctx, "last_attempt_at <= ?", opts.Before.UTC(), limit)
		if err != nil {
			return result, err
		}
		result.Expired = n
	}

	return result, nil
}

func (s *Store) purgeWhere(ctx context.Context, cond string, arg any, limit int) (int64, error) {
	// #nosec G201 -- table identifier is validated and quoted and the condition is internal.
	query := fmt.Sprintf("DELETE FROM %s WHERE namespace = ? AND %s ORDER BY last_attempt_at, id LIMIT ?", s.ident, cond)
	res, err := s.db.ExecContext(ctx, query, s.cfg.Namespace, arg, limit)
	if err != nil {
		return 0, fmt.Errorf("statementq mysql: purge delete failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("statementq mysql: purge rows failed: %w", err)
	}

	return affected, nil
}

// NewPurgeMaintainer creates a purge maintainer with defaults applied.
func NewPurgeMaintainer(db *sql.DB, cfg PurgeMaintainerConfig) (*PurgeMaintainer, error) {
	if db == nil {
		return nil, ErrDBRequired
	}
	if cfg.MaxAttempts <= 0 && cfg.MaxAge <= 0 {
		return nil, ErrPurgeCriteriaRequired
	}
	if cfg.Clock == nil {
		cfg.Clock = statementq.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = statementq.NopLogger{}
	}
	if cfg.CheckEvery <= 0 {
		cfg.CheckEvery = defaultPurgeEvery
	}
	if cfg.Limit == 0 {
		cfg.Limit = defaultPurgeLimit
	}
	if cfg.Limit < 0 {
		return nil, ErrPurgeLimitInvalid
	}

	store, err := NewStore(db, WithTable(cfg.Table), WithNamespace(cfg.Namespace), WithClock(cfg.Clock))
	if err != nil {
		return nil, err
	}
	cfg.Table = store.table
	cfg.Namespace = store.cfg.Namespace
	if cfg.LockName == "" {
		cfg.LockName = defaultPurgeLockPrefix + cfg.Table + ":" + cfg.Namespace
	}

	return &PurgeMaintainer{store: store, cfg: cfg}, nil
}

// Run purges periodically until the context is canceled.
func (m *PurgeMaintainer) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.CheckEvery)
	defer ticker.Stop()

	m.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.runOnce(ctx)
		}
	}
}

func (m *PurgeMaintainer) runOnce(ctx context.Context) {
	res, err := m.Ensure(ctx)
	if err != nil {
		m.cfg.Logger.Warn("statementq purge failed", "err", err)
		return
	}
	if res.Exhausted > 0 || res.Expired > 0 {
		m.cfg.Logger.Warn("statementq purged undeliverable records", "namespace", m.cfg.Namespace,
			"exhausted", res.Exhausted, "expired", res.Expired)
	}
}

// Ensure executes a single purge pass under the advisory lock.
func (m *PurgeMaintainer) Ensure(ctx context.Context) (PurgeResult, error) {
	conn, err := m.store.db.Conn(ctx)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("statementq mysql: purge conn failed: %w", err)
	}
	defer conn.Close()

	locked, err := m.tryLock(ctx, conn)
	if err != nil {
		return PurgeResult{}, err
	}
	if !locked {
		m.cfg.Logger.Debug("statementq purge lock held by another session")

		return PurgeResult{}, nil
	}
	defer m.releaseLock(ctx, conn)

	return m.store.Purge(ctx, m.options())
}

func (m *PurgeMaintainer) options() PurgeOptions {
	opts := PurgeOptions{MaxAttempts: m.cfg.MaxAttempts, Limit: m.cfg.Limit}
	if m.cfg.MaxAge > 0 {
		opts.Before = m.cfg.Clock.Now().Add(-m.cfg.MaxAge)
	}

	return opts
}

func (m *PurgeMaintainer) tryLock(ctx context.Context, conn *sql.Conn) (bool, error) {
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 0)", m.cfg.LockName).Scan(&got); err != nil {
		return false, fmt.Errorf("statementq mysql: acquire purge lock failed: %w", err)
	}

	return got.Valid && got.Int64 == 1, nil
}

func (m *PurgeMaintainer) releaseLock(ctx context.Context, conn *sql.Conn) {
	var released sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", m.cfg.LockName).Scan(&released); err != nil {
		m.cfg.Logger.Warn("statementq purge release lock failed", "err", err)
	}
}

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/velmie/statementq"
)

// Executor allows writing a record within an existing transaction.
type Executor interface {
	// ExecContext executes a statement with the provided context.
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store implements statementq.Store on a MySQL table.
type Store struct {
	db      *sql.DB
	cfg     Config
	queries queries
	table   string
	ident   string
}

var _ statementq.Store = (*Store)(nil)

// NewStore constructs a MySQL store with validated configuration.
func NewStore(db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrDBRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	table, err := parseTableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	if err := checkNamespace(cfg.Namespace); err != nil {
		return nil, err
	}

	return &Store{
		db:      db,
		cfg:     cfg,
		queries: newQueries(table.ident),
		table:   table.name,
		ident:   table.ident,
	}, nil
}

// MustNewStore constructs a MySQL store or panics on error.
func MustNewStore(db *sql.DB, opts ...Option) *Store {
	store, err := NewStore(db, opts...)
	if err != nil {
		panic(err)
	}

	return store
}

// Namespace returns the namespace the store reads and writes.
func (s *Store) Namespace() string {
	return s.cfg.Namespace
}

// Put implements statementq.Store.
func (s *Store) Put(ctx context.Context, record statementq.Record) error {
	return s.PutTx(ctx, s.db, record)
}

// PutTx upserts the record using the provided executor (a transaction, typically).
func (s *Store) PutTx(ctx context.Context, exec Executor, record statementq.Record) error {
	if exec == nil {
		return ErrExecutorRequired
	}
	if record.ID == "" {
		return ErrRecordIDRequired
	}

	lastAttempt := record.LastAttemptAt
	if lastAttempt.IsZero() {
		lastAttempt = s.cfg.Clock.Now()
	}

	_, err := exec.ExecContext(
		ctx,
		s.queries.upsert,
		s.cfg.Namespace,
		record.ID,
		record.Kind,
		record.Payload,
		record.Attempts,
		lastAttempt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("statementq mysql: upsert failed: %w", err)
	}

	return nil
}

// Get implements statementq.Store.
func (s *Store) Get(ctx context.Context, id string) (statementq.Record, error) {
	row := s.db.QueryRowContext(ctx, s.queries.get, s.cfg.Namespace, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return statementq.Record{}, statementq.ErrRecordNotFound
	}
	if err != nil {
		return statementq.Record{}, fmt.Errorf("statementq mysql: get failed: %w", err)
	}

	return record, nil
}

// Remove implements statementq.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.queries.remove, s.cfg.Namespace, id); err != nil {
		return fmt.Errorf("statementq mysql: delete failed: %w", err)
	}

	return nil
}

// List implements statementq.Store.
func (s *Store) List(ctx context.Context) ([]statementq.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.list, s.cfg.Namespace)
	if err != nil {
		return nil, fmt.Errorf("statementq mysql: select failed: %w", err)
	}
	defer rows.Close()

	var records []statementq.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("statementq mysql: scan failed: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("statementq mysql: rows failed: %w", err)
	}

	return records, nil
}

// Count returns the number of rows in the namespace.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, s.queries.count, s.cfg.Namespace).Scan(&count); err != nil {
		return 0, fmt.Errorf("statementq mysql: count failed: %w", err)
	}

	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (statementq.Record, error) {
	var (
		record      statementq.Record
		payload     []byte
		lastAttempt time.Time
	)
	if err := row.Scan(&record.ID, &record.Kind, &payload, &record.Attempts, &lastAttempt); err != nil {
		return statementq.Record{}, err
	}
	record.Payload = payload
	record.LastAttemptAt = lastAttempt.UTC()

	return record, nil
}

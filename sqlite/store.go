// Package sqlite provides an embedded SQLite durable store for statementq, suited to
// game clients and the CLI where no database server is available.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/velmie/statementq"
)

const (
	defaultTable     = "statementq_records"
	defaultNamespace = "default"
)

var (
	// ErrPathRequired is returned when Open is called without a path.
	ErrPathRequired = errors.New("statementq sqlite: path is required")
	// ErrDBRequired is returned when New is called with a nil *sql.DB.
	ErrDBRequired = errors.New("statementq sqlite: db is required")
	// ErrInvalidTableName is returned when the table name has disallowed characters.
	ErrInvalidTableName = errors.New("statementq sqlite: invalid table name")
)

const schemaTemplate = `CREATE TABLE IF NOT EXISTS %[1]s (
	namespace TEXT NOT NULL,
	id TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT '',
	payload BLOB NOT NULL,
	attempts INTEGER NOT NULL DEFAULT 0,
	last_attempt_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, id)
);
CREATE INDEX IF NOT EXISTS %[1]s_last_attempt ON %[1]s (namespace, last_attempt_at);`

// Config defines SQLite store behavior.
type Config struct {
	Table     string
	Namespace string
}

// Option configures the SQLite store.
type Option func(*Config)

// WithTable sets the records table name.
func WithTable(name string) Option {
	return func(c *Config) {
		c.Table = name
	}
}

// WithNamespace sets the partition of the table owned by this store.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// Store implements statementq.Store on SQLite.
type Store struct {
	db    *sql.DB
	owned bool
	cfg   Config
	q     queries
}

var _ statementq.Store = (*Store)(nil)

type queries struct {
	upsert, get, remove, list string
}

// Open opens (or creates) the database file at path and ensures the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("statementq sqlite: open: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY under WAL.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("statementq sqlite: ping: %w", err)
	}

	store, err := New(context.Background(), db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.owned = true

	return store, nil
}

// New wraps an existing database handle and ensures the schema.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrDBRequired
	}
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Table == "" {
		cfg.Table = defaultTable
	}
	if cfg.Namespace == "" {
		cfg.Namespace = defaultNamespace
	}
	if !validIdent(cfg.Table) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTableName, cfg.Table)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(schemaTemplate, cfg.Table)); err != nil {
		return nil, fmt.Errorf("statementq sqlite: create schema: %w", err)
	}

	return &Store{db: db, cfg: cfg, q: newQueries(cfg.Table)}, nil
}

func newQueries(table string) queries {
	cols := "id, kind, payload, attempts, last_attempt_at"

	return queries{
		upsert: fmt.Sprintf(
			"INSERT INTO %s (namespace, id, kind, payload, attempts, last_attempt_at) VALUES (?, ?, ?, ?, ?, ?) "+
				"ON CONFLICT (namespace, id) DO UPDATE SET kind = excluded.kind, payload = excluded.payload, "+
				"attempts = excluded.attempts, last_attempt_at = excluded.last_attempt_at",
			table,
		),
		get:    fmt.Sprintf("SELECT %s FROM %s WHERE namespace = ? AND id = ?", cols, table),
		remove: fmt.Sprintf("DELETE FROM %s WHERE namespace = ? AND id = ?", table),
		list:   fmt.Sprintf("SELECT %s FROM %s WHERE namespace = ? ORDER BY last_attempt_at, id", cols, table),
	}
}

func validIdent(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return false
	}

	return true
}

// Close releases the database when the store opened it.
func (s *Store) Close() error {
	if s == nil || !s.owned {
		return nil
	}

	return s.db.Close()
}

// Put implements statementq.Store.
func (s *Store) Put(ctx context.Context, record statementq.Record) error {
	lastAttempt := record.LastAttemptAt
	if lastAttempt.IsZero() {
		lastAttempt = time.Now()
	}
	payload := record.Payload
	if payload == nil {
		payload = []byte{}
	}
	_, err := s.db.ExecContext(ctx, s.q.upsert,
		s.cfg.Namespace, record.ID, record.Kind, payload, record.Attempts, lastAttempt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("statementq sqlite: upsert %s: %w", record.ID, err)
	}

	return nil
}

// Get implements statementq.Store.
func (s *Store) Get(ctx context.Context, id string) (statementq.Record, error) {
	record, err := scanRecord(s.db.QueryRowContext(ctx, s.q.get, s.cfg.Namespace, id))
	if errors.Is(err, sql.ErrNoRows) {
		return statementq.Record{}, statementq.ErrRecordNotFound
	}
	if err != nil {
		return statementq.Record{}, fmt.Errorf("statementq sqlite: get %s: %w", id, err)
	}

	return record, nil
}

// Remove implements statementq.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.q.remove, s.cfg.Namespace, id); err != nil {
		return fmt.Errorf("statementq sqlite: delete %s: %w", id, err)
	}

	return nil
}

// List implements statementq.Store.
func (s *Store) List(ctx context.Context) ([]statementq.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.q.list, s.cfg.Namespace)
	if err != nil {
		return nil, fmt.Errorf("statementq sqlite: list: %w", err)
	}
	defer rows.Close()

	var records []statementq.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("statementq sqlite: scan: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("statementq sqlite: rows: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (statementq.Record, error) {
	var (
		record      statementq.Record
		lastAttempt int64
	)
	if err := row.Scan(&record.ID, &record.Kind, &record.Payload, &record.Attempts, &lastAttempt); err != nil {
		return statementq.Record{}, err
	}
	record.LastAttemptAt = time.Unix(0, lastAttempt).UTC()

	return record, nil
}

// Package pebblestore provides a durable statementq store on an embedded Pebble LSM.
//
// Records live under keys "statementq/<namespace>/<id>" with the JSON StoredRecord
// encoding as value.
package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"

	"github.com/velmie/statementq"
)

const (
	keyRoot          = "statementq/"
	defaultNamespace = "default"
)

var (
	// ErrDataDirRequired is returned when Open is called without a directory.
	ErrDataDirRequired = errors.New("statementq pebble: data dir is required")
	// ErrInvalidNamespace is returned for namespaces containing the key separator.
	ErrInvalidNamespace = errors.New("statementq pebble: namespace must not contain '/'")
)

// Options configures the Pebble store.
type Options struct {
	// DataDir is the path to the Pebble database directory.
	DataDir string
	// Namespace partitions the key space among controllers.
	Namespace string
	// NoSync skips the WAL fsync on each write. Records may then be lost on power failure.
	NoSync bool
	// PebbleOptions allows advanced tuning of Pebble. If nil, defaults are used.
	PebbleOptions *pebble.Options
}

// Store implements statementq.Store on Pebble.
type Store struct {
	db     *pebble.DB
	owned  bool
	prefix []byte
	write  *pebble.WriteOptions
}

var _ statementq.Store = (*Store)(nil)

// Open creates or opens a Pebble database.
func Open(opts Options) (*Store, error) {
	if opts.DataDir == "" {
		return nil, ErrDataDirRequired
	}
	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	if strings.Contains(opts.Namespace, "/") {
		return nil, ErrInvalidNamespace
	}
	db, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, fmt.Errorf("statementq pebble: open %s: %w", opts.DataDir, err)
	}

	store, err := New(db, opts.Namespace, !opts.NoSync)
	if err != nil {
		_ = db.Close()

		return nil, err
	}
	store.owned = true

	return store, nil
}

// New wraps an already open database. sync selects fsync-on-write.
func New(db *pebble.DB, namespace string, sync bool) (*Store, error) {
	if strings.Contains(namespace, "/") {
		return nil, ErrInvalidNamespace
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	write := pebble.NoSync
	if sync {
		write = pebble.Sync
	}

	return &Store{
		db:     db,
		prefix: []byte(keyRoot + namespace + "/"),
		write:  write,
	}, nil
}

// Close closes the database when the store opened it.
func (s *Store) Close() error {
	if s == nil || !s.owned {
		return nil
	}

	return s.db.Close()
}

func (s *Store) key(id string) []byte {
	key := make([]byte, 0, len(s.prefix)+len(id))
	key = append(key, s.prefix...)

	return append(key, id...)
}

// Put implements statementq.Store.
func (s *Store) Put(ctx context.Context, record statementq.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := statementq.EncodeRecord(record)
	if err != nil {
		return err
	}
	if err := s.db.Set(s.key(record.ID), value, s.write); err != nil {
		return fmt.Errorf("statementq pebble: set %s: %w", record.ID, err)
	}

	return nil
}

// Get implements statementq.Store.
func (s *Store) Get(ctx context.Context, id string) (statementq.Record, error) {
	if err := ctx.Err(); err != nil {
		return statementq.Record{}, err
	}
	value, closer, err := s.db.Get(s.key(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return statementq.Record{}, statementq.ErrRecordNotFound
	}
	if err != nil {
		return statementq.Record{}, fmt.Errorf("statementq pebble: get %s: %w", id, err)
	}
	defer closer.Close()

	return statementq.DecodeRecord(id, value)
}

// Remove implements statementq.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Delete(s.key(id), s.write); err != nil {
		return fmt.Errorf("statementq pebble: delete %s: %w", id, err)
	}

	return nil
}

// List implements statementq.Store. Undecodable values are reported through a
// statementq.InvalidRecordsError returned with the decoded records.
func (s *Store) List(ctx context.Context) ([]statementq.Record, error) {
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: s.prefix, UpperBound: upperBound(s.prefix)})
	if err != nil {
		return nil, fmt.Errorf("statementq pebble: iterator: %w", err)
	}
	defer it.Close()

	var (
		records []statementq.Record
		invalid statementq.InvalidRecordsError
	)
	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := string(it.Key()[len(s.prefix):])
		record, err := statementq.DecodeRecord(id, it.Value())
		if err != nil {
			invalid.Add(id, err)
			continue
		}
		records = append(records, record)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("statementq pebble: iterate: %w", err)
	}
	statementq.SortRecords(records)

	return records, invalid.Err()
}

// upperBound returns the smallest key greater than every key with the given prefix.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}

	return nil
}

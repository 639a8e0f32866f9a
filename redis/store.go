// Package redisstore provides a durable statementq store on Redis.
//
// Each record is a string key holding the JSON StoredRecord encoding; a set per
// namespace indexes the ids so List does not need SCAN.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/velmie/statementq"
)

const (
	defaultPrefix    = "statementq"
	defaultNamespace = "default"
	listChunk        = 256
)

// ErrClientRequired is returned when New is called with a nil client.
var ErrClientRequired = errors.New("statementq redis: client is required")

// Config defines Redis store behavior.
type Config struct {
	// Prefix is the first segment of every key.
	Prefix    string
	Namespace string
	// TTL expires record keys when positive. Use a value above the Controller's MaxAge
	// so Redis only reclaims records the Controller would drop anyway.
	TTL time.Duration
}

// Option configures the Redis store.
type Option func(*Config)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *Config) {
		c.Prefix = prefix
	}
}

// WithNamespace sets the namespace segment of every key.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithTTL sets an expiry on record keys.
func WithTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.TTL = ttl
	}
}

// Store implements statementq.Store on Redis.
type Store struct {
	client redis.UniversalClient
	cfg    Config
	index  string
}

var _ statementq.Store = (*Store)(nil)

// New constructs a Redis store.
func New(client redis.UniversalClient, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	if cfg.Namespace == "" {
		cfg.Namespace = defaultNamespace
	}

	return &Store{
		client: client,
		cfg:    cfg,
		index:  cfg.Prefix + ":" + cfg.Namespace + ":ids",
	}, nil
}

func (s *Store) key(id string) string {
	return s.cfg.Prefix + ":" + s.cfg.Namespace + ":record:" + id
}

// Put implements statementq.Store.
func (s *Store) Put(ctx context.Context, record statementq.Record) error {
	value, err := statementq.EncodeRecord(record)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(record.ID), value, s.cfg.TTL)
		pipe.SAdd(ctx, s.index, record.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("statementq redis: put %s: %w", record.ID, err)
	}

	return nil
}

// Get implements statementq.Store.
func (s *Store) Get(ctx context.Context, id string) (statementq.Record, error) {
	value, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return statementq.Record{}, statementq.ErrRecordNotFound
	}
	if err != nil {
		return statementq.Record{}, fmt.Errorf("statementq redis: get %s: %w", id, err)
	}

	return statementq.DecodeRecord(id, value)
}

// Remove implements statementq.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.index, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("statementq redis: remove %s: %w", id, err)
	}

	return nil
}

// List implements statementq.Store. Index entries whose key expired are pruned.
// Undecodable values are reported through a statementq.InvalidRecordsError returned with
// the decoded records.
func (s *Store) List(ctx context.Context) ([]statementq.Record, error) {
	ids, err := s.client.SMembers(ctx, s.index).Result()
	if err != nil {
		return nil, fmt.Errorf("statementq redis: members: %w", err)
	}

	records := make([]statementq.Record, 0, len(ids))
	var (
		stale   []any
		invalid statementq.InvalidRecordsError
	)
	for start := 0; start < len(ids); start += listChunk {
		chunk := ids[start:min(start+listChunk, len(ids))]
		keys := make([]string, len(chunk))
		for i, id := range chunk {
			keys[i] = s.key(id)
		}

		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("statementq redis: mget: %w", err)
		}
		for i, value := range values {
			str, ok := value.(string)
			if !ok {
				stale = append(stale, chunk[i])
				continue
			}
			record, err := statementq.DecodeRecord(chunk[i], []byte(str))
			if err != nil {
				invalid.Add(chunk[i], err)
				continue
			}
			records = append(records, record)
		}
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.index, stale...).Err(); err != nil {
			return nil, fmt.Errorf("statementq redis: prune index: %w", err)
		}
	}
	statementq.SortRecords(records)

	return records, invalid.Err()
}

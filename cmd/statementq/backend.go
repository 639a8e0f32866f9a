package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	goredis "github.com/redis/go-redis/v9"

	"github.com/velmie/statementq"
	dynamostore "github.com/velmie/statementq/dynamodb"
	"github.com/velmie/statementq/mysql"
	pebblestore "github.com/velmie/statementq/pebble"
	redisstore "github.com/velmie/statementq/redis"
	"github.com/velmie/statementq/sqlite"
)

// backend is an opened durable store. db is set only for mysql.
type backend struct {
	store statementq.Store
	db    *sql.DB
	close func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}

	return b.close()
}

func openBackend(ctx context.Context, cfg config) (*backend, error) {
	switch strings.ToLower(cfg.Store) {
	case "sqlite":
		store, err := sqlite.Open(cfg.SQLitePath, sqlite.WithNamespace(cfg.Namespace))
		if err != nil {
			return nil, err
		}

		return &backend{store: store, close: store.Close}, nil
	case "mysql":
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("mysql store requires STATEMENTQ_MYSQL_DSN or --mysql-dsn")
		}
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		store, err := mysql.NewStore(db, mysql.WithTable(cfg.MySQLTable), mysql.WithNamespace(cfg.Namespace))
		if err != nil {
			_ = db.Close()

			return nil, err
		}

		return &backend{store: store, db: db, close: db.Close}, nil
	case "pebble":
		store, err := pebblestore.Open(pebblestore.Options{DataDir: cfg.PebbleDir, Namespace: cfg.Namespace})
		if err != nil {
			return nil, err
		}

		return &backend{store: store, close: store.Close}, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("ping redis: %w", err)
		}
		store, err := redisstore.New(client, redisstore.WithNamespace(cfg.Namespace), redisstore.WithTTL(cfg.RedisTTL))
		if err != nil {
			_ = client.Close()

			return nil, err
		}

		return &backend{store: store, close: client.Close}, nil
	case "dynamodb":
		client, err := dynamostore.NewClient(ctx, cfg.DynamoRegion, cfg.DynamoEndpoint)
		if err != nil {
			return nil, err
		}
		store, err := dynamostore.New(client, cfg.DynamoTable, dynamostore.WithNamespace(cfg.Namespace))
		if err != nil {
			return nil, err
		}

		return &backend{store: store}, nil
	case "memory":
		return &backend{store: statementq.NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("unknown store %q; use sqlite|mysql|pebble|redis|dynamodb|memory", cfg.Store)
	}
}

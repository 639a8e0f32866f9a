package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// config holds every setting of the CLI. Values come from the environment (optionally
// seeded from a .env file) and are overridden by command-line flags.
type config struct {
	Endpoint    string `env:"STATEMENTQ_ENDPOINT"`
	Token       string `env:"STATEMENTQ_TOKEN"`
	TokenHeader string `env:"STATEMENTQ_TOKEN_HEADER" envDefault:"x-authentication"`
	KeyEndpoint string `env:"STATEMENTQ_KEY_ENDPOINT"`

	Store     string `env:"STATEMENTQ_STORE" envDefault:"sqlite"`
	Namespace string `env:"STATEMENTQ_NAMESPACE" envDefault:"default"`

	SQLitePath string `env:"STATEMENTQ_SQLITE_PATH" envDefault:"statementq.db"`
	MySQLDSN   string `env:"STATEMENTQ_MYSQL_DSN"`
	MySQLTable string `env:"STATEMENTQ_MYSQL_TABLE" envDefault:"statementq_records"`
	PebbleDir  string `env:"STATEMENTQ_PEBBLE_DIR" envDefault:"statementq-data"`

	RedisAddr     string        `env:"STATEMENTQ_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"STATEMENTQ_REDIS_PASSWORD"`
	RedisDB       int           `env:"STATEMENTQ_REDIS_DB" envDefault:"0"`
	RedisTTL      time.Duration `env:"STATEMENTQ_REDIS_TTL" envDefault:"0s"`

	DynamoTable    string `env:"STATEMENTQ_DYNAMODB_TABLE" envDefault:"statementq_records"`
	DynamoRegion   string `env:"STATEMENTQ_DYNAMODB_REGION"`
	DynamoEndpoint string `env:"STATEMENTQ_DYNAMODB_ENDPOINT"`

	MaxQueueLength  int           `env:"STATEMENTQ_MAX_QUEUE_LENGTH" envDefault:"5"`
	MaxAttempts     int           `env:"STATEMENTQ_MAX_ATTEMPTS" envDefault:"5"`
	MaxAge          time.Duration `env:"STATEMENTQ_MAX_AGE" envDefault:"24h"`
	SendTimeout     time.Duration `env:"STATEMENTQ_SEND_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"STATEMENTQ_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	BreakerFailures uint32        `env:"STATEMENTQ_BREAKER_FAILURES" envDefault:"0"`
	BreakerTimeout  time.Duration `env:"STATEMENTQ_BREAKER_TIMEOUT" envDefault:"30s"`

	PlayerName string `env:"STATEMENTQ_PLAYER_NAME"`
	PlayerMail string `env:"STATEMENTQ_PLAYER_MAIL"`
	SessionKey string `env:"STATEMENTQ_SESSION_KEY"`

	LogLevel  string `env:"STATEMENTQ_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"STATEMENTQ_LOG_FORMAT" envDefault:"console"`
}

// loadConfig reads envFile when it exists and parses the environment. Variables already
// set in the environment win over the file.
func loadConfig(envFile string) (config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/velmie/statementq"
	"github.com/velmie/statementq/httpsender"
	"github.com/velmie/statementq/otelmetrics"
	"github.com/velmie/statementq/zaplog"
)

type app struct {
	cfg    config
	logger *zap.Logger
}

func newRootCmd(envFile string) (*cobra.Command, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:          "statementq",
		Short:        "Durable delivery queue for gameplay statements",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			logger, err := zaplog.Build(zaplog.Config{Level: a.cfg.LogLevel, Format: a.cfg.LogFormat})
			if err != nil {
				return err
			}
			a.logger = logger.Named("statementq")

			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Store, "store", cfg.Store, "durable store: sqlite|mysql|pebble|redis|dynamodb|memory")
	flags.StringVar(&a.cfg.Namespace, "namespace", cfg.Namespace, "store namespace owned by this client")
	flags.StringVar(&a.cfg.Endpoint, "endpoint", cfg.Endpoint, "collection endpoint URL")
	flags.StringVar(&a.cfg.Token, "token", cfg.Token, "authentication token")
	flags.StringVar(&a.cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")
	flags.StringVar(&a.cfg.MySQLDSN, "mysql-dsn", cfg.MySQLDSN, "MySQL DSN, e.g. user:pass@tcp(host:3306)/db?parseTime=true")
	flags.StringVar(&a.cfg.MySQLTable, "mysql-table", cfg.MySQLTable, "MySQL records table")
	flags.StringVar(&a.cfg.PebbleDir, "pebble-dir", cfg.PebbleDir, "Pebble data directory")
	flags.StringVar(&a.cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address")
	flags.StringVar(&a.cfg.DynamoTable, "dynamodb-table", cfg.DynamoTable, "DynamoDB table")
	flags.StringVar(&a.cfg.DynamoRegion, "dynamodb-region", cfg.DynamoRegion, "DynamoDB region")
	flags.StringVar(&a.cfg.DynamoEndpoint, "dynamodb-endpoint", cfg.DynamoEndpoint, "DynamoDB endpoint override")
	flags.IntVar(&a.cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "delivery attempts before a record is dropped")
	flags.DurationVar(&a.cfg.MaxAge, "max-age", cfg.MaxAge, "age of the last attempt after which a record is dropped")
	flags.StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	flags.StringVar(&a.cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console|json")

	root.AddCommand(
		a.sendCmd(),
		a.flushCmd(),
		a.inspectCmd(),
		a.purgeCmd(),
		a.checkKeyCmd(),
	)

	return root, nil
}

func (a *app) openBackend(ctx context.Context) (*backend, error) {
	b, err := openBackend(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Store, err)
	}

	return b, nil
}

func (a *app) newSender() (*httpsender.Sender, error) {
	opts := []httpsender.Option{
		httpsender.WithTimeout(a.cfg.SendTimeout),
		httpsender.WithUserAgent("statementq-cli"),
	}
	if a.cfg.Token != "" {
		opts = append(opts, httpsender.WithToken(a.cfg.Token), httpsender.WithTokenHeader(a.cfg.TokenHeader))
	}
	if a.cfg.BreakerFailures > 0 {
		opts = append(opts, httpsender.WithCircuitBreaker(
			httpsender.DefaultBreakerSettings("statementq-"+a.cfg.Namespace, a.cfg.BreakerFailures, a.cfg.BreakerTimeout)))
	}

	return httpsender.New(a.cfg.Endpoint, opts...)
}

func (a *app) newController(store statementq.Store, errOut io.Writer) (*statementq.Controller, error) {
	sender, err := a.newSender()
	if err != nil {
		return nil, err
	}
	metrics, err := otelmetrics.New(nil, a.cfg.Namespace)
	if err != nil {
		return nil, err
	}

	return statementq.New(store, sender,
		statementq.WithMaxQueueLength(a.cfg.MaxQueueLength),
		statementq.WithRetryPolicy(a.cfg.MaxAttempts, a.cfg.MaxAge),
		statementq.WithSendTimeout(a.cfg.SendTimeout),
		statementq.WithShutdownTimeout(a.cfg.ShutdownTimeout),
		statementq.WithFailureReporting(true),
		statementq.WithFailureClassifier(httpsender.Classify),
		statementq.WithLogger(zaplog.New(a.logger)),
		statementq.WithMetrics(metrics),
		statementq.WithDropHandler(func(_ context.Context, record statementq.Record, reason statementq.DropReason, _ error) {
			fmt.Fprintf(errOut, "dropped %s (%s) after %d attempts: %s\n", record.ID, record.Kind, record.Attempts, reason)
		}),
	)
}

// withController runs a controller for the duration of fn and drains it afterwards.
func (a *app) withController(ctx context.Context, store statementq.Store, errOut io.Writer,
	fn func(context.Context, *statementq.Controller) error,
) error {
	controller, err := a.newController(store, errOut)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- controller.Run(runCtx)
	}()

	fnErr := fn(ctx, controller)
	cancel()
	runErr := <-done

	return errors.Join(fnErr, runErr)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.UTC().Format(time.RFC3339)
}

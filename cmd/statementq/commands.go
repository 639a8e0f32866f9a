package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/velmie/statementq"
	"github.com/velmie/statementq/httpsender"
	"github.com/velmie/statementq/mysql"
	"github.com/velmie/statementq/statement"
	"github.com/velmie/statementq/zaplog"
)

type sendOptions struct {
	verb        string
	object      string
	name        string
	description string
	extensions  []string
	kind        string
	payload     string
	file        string
	noFlush     bool
}

func (a *app) sendCmd() *cobra.Command {
	var opts sendOptions
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Enqueue one statement and flush the queue",
		Long: "Builds a statement from --verb/--object (catalog keys or custom names) or takes a raw\n" +
			"JSON payload from --payload or --file, stores it durably and flushes every pending record.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, payload, err := a.buildPayload(opts, cmd.InOrStdin())
			if err != nil {
				return err
			}

			b, err := a.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			if opts.noFlush {
				controller, err := statementq.New(b.store, undelivered, statementq.WithLogger(zaplog.New(a.logger)))
				if err != nil {
					return err
				}
				id, err := controller.Enqueue(cmd.Context(), kind, payload)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "queued %s %s\n", id, kind)

				return nil
			}

			return a.withController(cmd.Context(), b.store, cmd.ErrOrStderr(),
				func(ctx context.Context, c *statementq.Controller) error {
					id, err := c.Enqueue(ctx, kind, payload)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "queued %s %s\n", id, kind)

					return a.reportFlush(ctx, cmd.OutOrStdout(), b.store, c)
				})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.verb, "verb", "", "catalog verb key, or a custom verb name")
	f.StringVar(&opts.object, "object", "", "catalog object key, or a custom object name")
	f.StringVar(&opts.name, "name", "", "object name (en-US)")
	f.StringVar(&opts.description, "description", "", "object description (en-US)")
	f.StringArrayVar(&opts.extensions, "ext", nil, "object extension key=value; JSON values are decoded")
	f.StringVar(&a.cfg.PlayerName, "player-name", a.cfg.PlayerName, "player name")
	f.StringVar(&a.cfg.PlayerMail, "player-mail", a.cfg.PlayerMail, "player mail")
	f.StringVar(&a.cfg.SessionKey, "session-key", a.cfg.SessionKey, "session key stored in the statement context")
	f.StringVar(&opts.kind, "kind", "custom", "record kind for raw payloads")
	f.StringVar(&opts.payload, "payload", "", "raw JSON payload")
	f.StringVar(&opts.file, "file", "", "read the raw JSON payload from a file (- for stdin)")
	f.BoolVar(&opts.noFlush, "no-flush", false, "only store the record; a later flush delivers it")
	cmd.MarkFlagsMutuallyExclusive("verb", "payload", "file")

	return cmd
}

// undelivered backs controllers that only store records and never run.
var undelivered = statementq.SenderFunc(func(context.Context, statementq.Record) error {
	return errors.New("statementq cli: record stored without delivery")
})

func (a *app) buildPayload(opts sendOptions, stdin io.Reader) (string, []byte, error) {
	switch {
	case opts.payload != "":
		return opts.kind, []byte(opts.payload), nil
	case opts.file == "-":
		payload, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}

		return opts.kind, payload, nil
	case opts.file != "":
		payload, err := os.ReadFile(opts.file)
		if err != nil {
			return "", nil, fmt.Errorf("read payload: %w", err)
		}

		return opts.kind, payload, nil
	case opts.verb == "" || opts.object == "":
		return "", nil, errors.New("send requires --verb and --object, --payload or --file")
	}

	builder, err := statement.NewBuilder(
		statement.Player{Name: a.cfg.PlayerName, Mail: a.cfg.PlayerMail},
		statement.WithSessionKey(a.cfg.SessionKey),
	)
	if err != nil {
		return "", nil, err
	}

	verb, ok := statement.LookupVerb(opts.verb)
	if !ok {
		verb = statement.CustomVerb(opts.verb)
	}
	object, ok := statement.LookupObject(opts.object)
	if !ok {
		object = statement.CustomObject(opts.object)
	}

	buildOpts := []statement.BuildOption{statement.Describe(opts.name, opts.description)}
	for _, ext := range opts.extensions {
		key, value, ok := strings.Cut(ext, "=")
		if !ok || key == "" {
			return "", nil, fmt.Errorf("invalid --ext %q; use key=value", ext)
		}
		buildOpts = append(buildOpts, statement.Extension(key, extensionValue(value)))
	}

	st, err := builder.Build(verb, object, buildOpts...)
	if err != nil {
		return "", nil, err
	}
	payload, err := st.Marshal()
	if err != nil {
		return "", nil, err
	}

	return st.Kind(), payload, nil
}

func extensionValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}

	return raw
}

func (a *app) flushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Deliver every stored record once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			return a.withController(cmd.Context(), b.store, cmd.ErrOrStderr(),
				func(ctx context.Context, c *statementq.Controller) error {
					return a.reportFlush(ctx, cmd.OutOrStdout(), b.store, c)
				})
		},
	}
}

func (a *app) reportFlush(ctx context.Context, out io.Writer, store statementq.Store, c *statementq.Controller) error {
	flushErr := c.Flush(ctx)

	remaining, err := a.listRecords(ctx, store)
	if err != nil {
		return errors.Join(flushErr, err)
	}
	if flushErr != nil {
		fmt.Fprintf(out, "delivery failed, %d records kept for retry\n", len(remaining))

		return flushErr
	}
	fmt.Fprintf(out, "flushed, %d records pending\n", len(remaining))

	return nil
}

// listRecords lists the store, logging undecodable entries instead of failing on them.
func (a *app) listRecords(ctx context.Context, store statementq.Store) ([]statementq.Record, error) {
	records, err := store.List(ctx)
	var invalid *statementq.InvalidRecordsError
	if errors.As(err, &invalid) {
		a.logger.Warn("stored entries are invalid", zap.Strings("ids", invalid.IDs), zap.Error(err))

		return records, nil
	}

	return records, err
}

func (a *app) inspectCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			records, err := a.listRecords(cmd.Context(), b.store)
			if err != nil {
				return err
			}

			return writeRecords(cmd.OutOrStdout(), records, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per record")

	return cmd
}

type inspectedRecord struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Attempts    int             `json:"attempts"`
	LastAttempt string          `json:"lastAttempt"`
	Record      json.RawMessage `json:"record"`
}

func writeRecords(out io.Writer, records []statementq.Record, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		for _, r := range records {
			body := json.RawMessage(r.Payload)
			if !json.Valid(body) {
				quoted, _ := json.Marshal(string(r.Payload))
				body = quoted
			}
			if err := enc.Encode(inspectedRecord{
				ID: r.ID, Kind: r.Kind, Attempts: r.Attempts,
				LastAttempt: formatTime(r.LastAttemptAt), Record: body,
			}); err != nil {
				return err
			}
		}

		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tATTEMPTS\tLAST ATTEMPT")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.Kind, r.Attempts, formatTime(r.LastAttemptAt))
	}

	return w.Flush()
}

func (a *app) purgeCmd() *cobra.Command {
	var (
		watch      bool
		checkEvery time.Duration
	)
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove records that ran out of attempts or age",
		Long: "Removes stored records whose attempts reached --max-attempts or whose last attempt is\n" +
			"older than --max-age. On mysql the purge runs under an advisory lock and --watch keeps\n" +
			"it running every --check-every.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			if b.db != nil {
				return a.purgeMySQL(cmd.Context(), cmd.OutOrStdout(), b, watch, checkEvery)
			}
			if watch {
				return fmt.Errorf("--watch is only supported by the mysql store")
			}

			res, err := purgeStore(cmd.Context(), b.store, a.cfg.MaxAttempts, a.cfg.MaxAge, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged exhausted=%d expired=%d\n", res.Exhausted, res.Expired)

			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep purging periodically (mysql only)")
	cmd.Flags().DurationVar(&checkEvery, "check-every", time.Hour, "interval between purge runs with --watch")

	return cmd
}

func (a *app) purgeMySQL(ctx context.Context, out io.Writer, b *backend, watch bool, checkEvery time.Duration) error {
	maintainer, err := mysql.NewPurgeMaintainer(b.db, mysql.PurgeMaintainerConfig{
		Table:       a.cfg.MySQLTable,
		Namespace:   a.cfg.Namespace,
		MaxAttempts: a.cfg.MaxAttempts,
		MaxAge:      a.cfg.MaxAge,
		CheckEvery:  checkEvery,
		Logger:      zaplog.New(a.logger),
	})
	if err != nil {
		return fmt.Errorf("init purge maintainer: %w", err)
	}

	if watch {
		if err := maintainer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("run purge maintainer: %w", err)
		}

		return nil
	}

	res, err := maintainer.Ensure(ctx)
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	fmt.Fprintf(out, "purged exhausted=%d expired=%d\n", res.Exhausted, res.Expired)

	return nil
}

// purgeStore applies the purge criteria through the generic Store contract. Entries
// that no longer decode are removed as well.
func purgeStore(ctx context.Context, store statementq.Store, maxAttempts int, maxAge time.Duration, now time.Time) (mysql.PurgeResult, error) {
	records, err := store.List(ctx)
	var invalid *statementq.InvalidRecordsError
	if err != nil && !errors.As(err, &invalid) {
		return mysql.PurgeResult{}, err
	}
	if invalid != nil {
		for _, id := range invalid.IDs {
			if id == "" {
				continue
			}
			if err := store.Remove(ctx, id); err != nil {
				return mysql.PurgeResult{}, err
			}
		}
	}

	var res mysql.PurgeResult
	for _, r := range records {
		switch {
		case maxAttempts > 0 && r.Attempts >= maxAttempts:
			res.Exhausted++
		case maxAge > 0 && !r.LastAttemptAt.IsZero() && !r.LastAttemptAt.After(now.Add(-maxAge)):
			res.Expired++
		default:
			continue
		}
		if err := store.Remove(ctx, r.ID); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (a *app) checkKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-key <session-key>",
		Short: "Ask the key endpoint whether a session key is valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := httpsender.NewKeyValidator(a.cfg.KeyEndpoint, nil)
			if err != nil {
				return err
			}
			ok, err := validator.Validate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")

				return fmt.Errorf("session key %q rejected", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")

			return nil
		},
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/velmie/statementq"
	"github.com/velmie/statementq/sqlite"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root, err := newRootCmd("")
	if err != nil {
		t.Fatalf("new root: %v", err)
	}
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err = root.ExecuteContext(context.Background())

	return out.String(), err
}

type collector struct {
	status int
	calls  atomic.Int32

	mu     sync.Mutex
	bodies [][]byte
	tokens []string
}

func newCollector(t *testing.T, status int) (*collector, *httptest.Server) {
	t.Helper()

	c := &collector{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, body)
		c.tokens = append(c.tokens, r.Header.Get("x-authentication"))
		c.mu.Unlock()
		w.WriteHeader(c.status)
		if c.status >= 400 {
			_, _ = w.Write([]byte(`{"message":"collector down"}`))
		}
	}))
	t.Cleanup(srv.Close)

	return c, srv
}

func sqliteArgs(t *testing.T) []string {
	t.Helper()

	return []string{"--store", "sqlite", "--sqlite-path", filepath.Join(t.TempDir(), "queue.db")}
}

func TestSendDeliversCatalogStatement(t *testing.T) {
	c, srv := newCollector(t, http.StatusOK)
	args := append([]string{"send",
		"--endpoint", srv.URL, "--token", "T0K",
		"--verb", "completed", "--object", "level", "--name", "mines-3",
		"--player-name", "gimli", "--player-mail", "gimli@example.com", "--session-key", "A1B2C3",
		"--ext", "score=500",
	}, sqliteArgs(t)...)

	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("send: %v\n%s", err, out)
	}
	if !strings.Contains(out, "completed/level") || !strings.Contains(out, "flushed, 0 records pending") {
		t.Fatalf("unexpected output: %s", out)
	}
	if got := c.calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokens[0] != "T0K" {
		t.Fatalf("token header = %q", c.tokens[0])
	}
	var doc struct {
		Actor struct {
			Mbox string `json:"mbox"`
		} `json:"actor"`
		Object struct {
			Definition struct {
				Name       map[string]string `json:"name"`
				Extensions map[string]any    `json:"extensions"`
			} `json:"definition"`
		} `json:"object"`
		Context struct {
			Extensions map[string]any `json:"extensions"`
		} `json:"context"`
	}
	if err := json.Unmarshal(c.bodies[0], &doc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if doc.Actor.Mbox != "mailto:gimli@example.com" {
		t.Fatalf("mbox = %q", doc.Actor.Mbox)
	}
	if doc.Object.Definition.Name["en-US"] != "mines-3" {
		t.Fatalf("name = %v", doc.Object.Definition.Name)
	}
	if doc.Object.Definition.Extensions["https://github.com/UCM-FDI-JaXpi/score"] != float64(500) {
		t.Fatalf("extensions = %v", doc.Object.Definition.Extensions)
	}
	if doc.Context.Extensions["https://www.jaxpi.com/sessionKey"] != "A1B2C3" {
		t.Fatalf("context extensions = %v", doc.Context.Extensions)
	}
}

func TestSendFailureKeepsRecord(t *testing.T) {
	_, srv := newCollector(t, http.StatusServiceUnavailable)
	store := sqliteArgs(t)

	out, err := execute(t, append([]string{"send", "--endpoint", srv.URL, "--payload", `{"a":1}`, "--kind", "raw/test"}, store...)...)
	if err == nil {
		t.Fatalf("expected delivery error, output: %s", out)
	}
	if !strings.Contains(out, "delivery failed, 1 records kept for retry") {
		t.Fatalf("unexpected output: %s", out)
	}

	out, err = execute(t, append([]string{"inspect", "--json"}, store...)...)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var rec inspectedRecord
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &rec); err != nil {
		t.Fatalf("decode inspect output %q: %v", out, err)
	}
	if rec.Kind != "raw/test" || rec.Attempts < 1 || string(rec.Record) != `{"a":1}` {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestSendRejectedRecordIsDropped(t *testing.T) {
	_, srv := newCollector(t, http.StatusBadRequest)
	store := sqliteArgs(t)

	out, err := execute(t, append([]string{"send", "--endpoint", srv.URL, "--payload", `{}`}, store...)...)
	if err == nil {
		t.Fatalf("expected delivery error, output: %s", out)
	}
	if !strings.Contains(out, "dropped") || !strings.Contains(out, "0 records kept") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestNoFlushThenFlush(t *testing.T) {
	c, srv := newCollector(t, http.StatusCreated)
	store := sqliteArgs(t)

	for i := 0; i < 2; i++ {
		out, err := execute(t, append([]string{"send", "--no-flush", "--payload", `{"n":1}`}, store...)...)
		if err != nil {
			t.Fatalf("send --no-flush: %v\n%s", err, out)
		}
	}
	if c.calls.Load() != 0 {
		t.Fatal("no-flush must not deliver")
	}

	out, err := execute(t, append([]string{"inspect"}, store...)...)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if lines := strings.Count(strings.TrimSpace(out), "\n"); lines != 2 {
		t.Fatalf("inspect lines = %d, output: %s", lines, out)
	}

	out, err = execute(t, append([]string{"flush", "--endpoint", srv.URL}, store...)...)
	if err != nil {
		t.Fatalf("flush: %v\n%s", err, out)
	}
	if !strings.Contains(out, "flushed, 0 records pending") {
		t.Fatalf("unexpected output: %s", out)
	}
	if got := c.calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestPurgeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")
	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	now := time.Now().UTC()
	seed := []statementq.Record{
		{ID: "exhausted", Kind: "k", Payload: []byte(`{}`), Attempts: 5, LastAttemptAt: now},
		{ID: "expired", Kind: "k", Payload: []byte(`{}`), Attempts: 1, LastAttemptAt: now.Add(-48 * time.Hour)},
		{ID: "fresh", Kind: "k", Payload: []byte(`{}`), Attempts: 1, LastAttemptAt: now},
	}
	for _, r := range seed {
		if err := store.Put(ctx, r); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out, err := execute(t, "purge", "--store", "sqlite", "--sqlite-path", path, "--max-attempts", "5", "--max-age", "24h")
	if err != nil {
		t.Fatalf("purge: %v\n%s", err, out)
	}
	if !strings.Contains(out, "purged exhausted=1 expired=1") {
		t.Fatalf("unexpected output: %s", out)
	}

	if _, err := execute(t, "purge", "--store", "sqlite", "--sqlite-path", path, "--watch"); err == nil {
		t.Fatal("expected --watch to be rejected outside mysql")
	}
}

func TestPurgeStore(t *testing.T) {
	ctx := context.Background()
	store := statementq.NewMemoryStore()
	now := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)
	for _, r := range []statementq.Record{
		{ID: "a", Payload: []byte(`{}`), Attempts: 7, LastAttemptAt: now},
		{ID: "b", Payload: []byte(`{}`), Attempts: 0, LastAttemptAt: now.Add(-24 * time.Hour)},
		{ID: "c", Payload: []byte(`{}`), Attempts: 0, LastAttemptAt: now.Add(-time.Hour)},
		{ID: "d", Payload: []byte(`{}`), Attempts: 0},
	} {
		if err := store.Put(ctx, r); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	res, err := purgeStore(ctx, store, 5, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if res.Exhausted != 1 || res.Expired != 1 {
		t.Fatalf("result = %+v", res)
	}
	if store.Len() != 2 {
		t.Fatalf("remaining = %d, want 2", store.Len())
	}
}

// undecodableStore reports one unreadable entry until it is removed.
type undecodableStore struct {
	*statementq.MemoryStore
	bad string
}

func (s *undecodableStore) List(ctx context.Context) ([]statementq.Record, error) {
	records, err := s.MemoryStore.List(ctx)
	if err != nil || s.bad == "" {
		return records, err
	}
	var invalid statementq.InvalidRecordsError
	invalid.Add(s.bad, statementq.ErrInvalidRecord)
	return records, invalid.Err()
}

func (s *undecodableStore) Remove(ctx context.Context, id string) error {
	if id == s.bad {
		s.bad = ""
	}
	return s.MemoryStore.Remove(ctx, id)
}

func TestPurgeStoreRemovesUndecodable(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)
	store := &undecodableStore{MemoryStore: statementq.NewMemoryStore(), bad: "bad"}
	if err := store.Put(ctx, statementq.Record{ID: "ok", Payload: []byte(`{}`), LastAttemptAt: now}); err != nil {
		t.Fatalf("put: %v", err)
	}

	res, err := purgeStore(ctx, store, 5, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if res.Exhausted != 0 || res.Expired != 0 || store.bad != "" || store.Len() != 1 {
		t.Fatalf("result = %+v, bad = %q, remaining = %d", res, store.bad, store.Len())
	}
}

func TestListRecordsToleratesUndecodable(t *testing.T) {
	ctx := context.Background()
	store := &undecodableStore{MemoryStore: statementq.NewMemoryStore(), bad: "bad"}
	if err := store.Put(ctx, statementq.Record{ID: "ok", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("put: %v", err)
	}

	a := &app{logger: zap.NewNop()}
	records, err := a.listRecords(ctx, store)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].ID != "ok" {
		t.Fatalf("records = %+v", records)
	}
}

func TestBuildPayload(t *testing.T) {
	a := &app{cfg: config{PlayerMail: "ori@example.com"}}
	file := filepath.Join(t.TempDir(), "payload.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name     string
		opts     sendOptions
		stdin    string
		wantKind string
		wantErr  bool
	}{
		{name: "raw payload", opts: sendOptions{kind: "raw", payload: `{}`}, wantKind: "raw"},
		{name: "file", opts: sendOptions{kind: "file", file: file}, wantKind: "file"},
		{name: "stdin", opts: sendOptions{kind: "stdin", file: "-"}, stdin: `{"x":1}`, wantKind: "stdin"},
		{name: "catalog", opts: sendOptions{verb: "opened", object: "chest"}, wantKind: "opened/chest"},
		{name: "custom", opts: sendOptions{verb: "forged", object: "axe", extensions: []string{"hits=3", "metal=iron"}}, wantKind: "forged/axe"},
		{name: "missing object", opts: sendOptions{verb: "opened"}, wantErr: true},
		{name: "bad extension", opts: sendOptions{verb: "opened", object: "chest", extensions: []string{"novalue"}}, wantErr: true},
		{name: "object not allowed", opts: sendOptions{verb: "defeated", object: "chest"}, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			kind, payload, err := a.buildPayload(test.opts, strings.NewReader(test.stdin))
			if test.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}

				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if kind != test.wantKind {
				t.Fatalf("kind = %q, want %q", kind, test.wantKind)
			}
			if !json.Valid(payload) {
				t.Fatalf("payload is not JSON: %s", payload)
			}
		})
	}
}

func TestCheckKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/key/ABC123" {
			w.WriteHeader(http.StatusOK)

			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("STATEMENTQ_KEY_ENDPOINT", srv.URL+"/key")

	out, err := execute(t, "check-key", "ABC123")
	if err != nil || !strings.Contains(out, "valid") {
		t.Fatalf("check-key: %v %s", err, out)
	}
	out, err = execute(t, "check-key", "NOPE")
	if err == nil || !strings.Contains(out, "invalid") {
		t.Fatalf("expected rejection, got %v %s", err, out)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("STATEMENTQ_STORE=memory\nSTATEMENTQ_MAX_ATTEMPTS=7\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Register restores for the variables the file sets, then clear them.
	for _, key := range []string{"STATEMENTQ_STORE", "STATEMENTQ_MAX_ATTEMPTS"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
	t.Setenv("STATEMENTQ_NAMESPACE", "dwarfs")
	t.Setenv("STATEMENTQ_MAX_AGE", "2h")

	cfg, err := loadConfig(envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != "memory" || cfg.MaxAttempts != 7 {
		t.Fatalf("env file not applied: %+v", cfg)
	}
	if cfg.Namespace != "dwarfs" || cfg.MaxAge != 2*time.Hour {
		t.Fatalf("environment not applied: %+v", cfg)
	}
	if cfg.TokenHeader != "x-authentication" || cfg.MaxQueueLength != 5 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing env file must be ignored: %v", err)
	}

	t.Setenv("STATEMENTQ_MAX_ATTEMPTS", "many")
	if _, err := loadConfig(""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("STATEMENTQ_STORE", "nosuchstore")

	if _, err := execute(t, "inspect"); err == nil {
		t.Fatal("expected unknown store from environment")
	}
	out, err := execute(t, "inspect", "--store", "memory")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.HasPrefix(out, "ID") {
		t.Fatalf("unexpected output: %s", out)
	}
}

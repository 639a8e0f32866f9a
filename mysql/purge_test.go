package mysql

import (
	"database/sql"
	"testing"
	"time"

	"github.com/velmie/statementq"
)

func TestNewPurgeMaintainerDefaults(t *testing.T) {
	db := &sql.DB{}
	maintainer, err := NewPurgeMaintainer(db, PurgeMaintainerConfig{
		Table:       "statements",
		MaxAttempts: 5,
		MaxAge:      24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("expected maintainer, got %v", err)
	}
	if maintainer.cfg.CheckEvery != defaultPurgeEvery {
		t.Fatalf("expected default check interval")
	}
	if maintainer.cfg.Limit != defaultPurgeLimit {
		t.Fatalf("expected default limit")
	}
	if maintainer.cfg.LockName != "statementq:purge:statements:default" {
		t.Fatalf("unexpected lock name %q", maintainer.cfg.LockName)
	}
}

func TestNewPurgeMaintainerValidation(t *testing.T) {
	db := &sql.DB{}
	if _, err := NewPurgeMaintainer(nil, PurgeMaintainerConfig{MaxAttempts: 5}); err != ErrDBRequired {
		t.Fatalf("expected ErrDBRequired, got %v", err)
	}
	if _, err := NewPurgeMaintainer(db, PurgeMaintainerConfig{}); err != ErrPurgeCriteriaRequired {
		t.Fatalf("expected ErrPurgeCriteriaRequired, got %v", err)
	}
	if _, err := NewPurgeMaintainer(db, PurgeMaintainerConfig{MaxAttempts: 5, Limit: -1}); err != ErrPurgeLimitInvalid {
		t.Fatalf("expected ErrPurgeLimitInvalid, got %v", err)
	}
}

func TestPurgeMaintainerOptions(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	maintainer, err := NewPurgeMaintainer(&sql.DB{}, PurgeMaintainerConfig{
		MaxAttempts: 5,
		MaxAge:      24 * time.Hour,
		Clock:       statementq.ClockFunc(func() time.Time { return now }),
	})
	if err != nil {
		t.Fatalf("new maintainer: %v", err)
	}

	opts := maintainer.options()
	if opts.MaxAttempts != 5 || !opts.Before.Equal(now.Add(-24*time.Hour)) {
		t.Fatalf("unexpected options %+v", opts)
	}

	maintainer.cfg.MaxAge = 0
	if opts := maintainer.options(); !opts.Before.IsZero() {
		t.Fatalf("expected no age cutoff, got %v", opts.Before)
	}
}

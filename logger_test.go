package statementq

import (
	"testing"
	"time"
)

func TestRecordFields(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	fields := recordFields(Record{ID: "stat1", Kind: "completed/level", Attempts: 2, LastAttemptAt: at}, "err", "boom")

	want := []any{"record", "stat1", "kind", "completed/level", "attempts", 2, "last_attempt", "2024-05-06T07:08:09Z", "err", "boom"}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %v", len(want), fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("field %d: expected %v, got %v", i, want[i], fields[i])
		}
	}
}

func TestRecordFieldsOmitsZeroLastAttempt(t *testing.T) {
	fields := recordFields(Record{ID: "stat1"})
	if len(fields) != 6 {
		t.Fatalf("expected 6 fields, got %v", fields)
	}
}

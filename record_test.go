package statementq

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeRecord(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	record := Record{
		ID:            "stat1",
		Kind:          "completed/level",
		Payload:       []byte(`{"verb":{"id":"http://adlnet.gov/expapi/verbs/completed"}}`),
		Attempts:      2,
		LastAttemptAt: at,
	}

	data, err := EncodeRecord(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["lastAttempt"] != "2024-03-01T10:30:00Z" {
		t.Fatalf("expected ISO-8601 lastAttempt, got %v", raw["lastAttempt"])
	}
	if raw["record"] != string(record.Payload) {
		t.Fatalf("expected payload stored as string, got %v", raw["record"])
	}

	decoded, err := DecodeRecord("stat1", data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != record.ID || decoded.Kind != record.Kind || decoded.Attempts != 2 {
		t.Fatalf("unexpected record %+v", decoded)
	}
	if !decoded.LastAttemptAt.Equal(at) {
		t.Fatalf("expected %v, got %v", at, decoded.LastAttemptAt)
	}
	if string(decoded.Payload) != string(record.Payload) {
		t.Fatalf("payload mismatch: %s", decoded.Payload)
	}
}

func TestDecodeRecordInvalid(t *testing.T) {
	cases := map[string]string{
		"malformed":         `{`,
		"negative attempts": `{"record":"{}","attempts":-1,"lastAttempt":"2024-03-01T10:30:00Z"}`,
		"bad timestamp":     `{"record":"{}","attempts":0,"lastAttempt":"yesterday"}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeRecord("x", []byte(data)); !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestRecordClone(t *testing.T) {
	record := Record{ID: "a", Payload: []byte(`{}`)}
	clone := record.Clone()
	clone.Payload[0] = '['
	if string(record.Payload) != `{}` {
		t.Fatalf("clone shares payload")
	}
}

func TestSortRecords(t *testing.T) {
	base := time.Unix(100, 0)
	records := []Record{
		{ID: "c", LastAttemptAt: base.Add(time.Second)},
		{ID: "b", LastAttemptAt: base},
		{ID: "a", LastAttemptAt: base},
	}
	SortRecords(records)
	if records[0].ID != "a" || records[1].ID != "b" || records[2].ID != "c" {
		t.Fatalf("unexpected order %s %s %s", records[0].ID, records[1].ID, records[2].ID)
	}
}

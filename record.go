package statementq

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is one queued statement awaiting delivery.
type Record struct {
	ID string
	// Kind is a routing/diagnostic label such as "completed/level".
	Kind          string
	Payload       []byte
	Attempts      int
	LastAttemptAt time.Time
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.Payload != nil {
		out.Payload = append([]byte(nil), r.Payload...)
	}

	return out
}

// StoredRecord is the durable representation used by key-value stores.
type StoredRecord struct {
	Record      string    `json:"record"`
	Kind        string    `json:"kind,omitempty"`
	Attempts    int       `json:"attempts"`
	LastAttempt time.Time `json:"lastAttempt"`
}

// EncodeRecord serializes a record into the durable JSON format.
func EncodeRecord(record Record) ([]byte, error) {
	data, err := json.Marshal(StoredRecord{
		Record:      string(record.Payload),
		Kind:        record.Kind,
		Attempts:    record.Attempts,
		LastAttempt: record.LastAttemptAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("statementq: encode record %s: %w", record.ID, err)
	}

	return data, nil
}

// DecodeRecord parses the durable JSON format into a record with the given id.
func DecodeRecord(id string, data []byte) (Record, error) {
	var stored StoredRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, id, err)
	}
	if stored.Attempts < 0 {
		return Record{}, fmt.Errorf("%w: %s: negative attempts", ErrInvalidRecord, id)
	}

	return Record{
		ID:            id,
		Kind:          stored.Kind,
		Payload:       []byte(stored.Record),
		Attempts:      stored.Attempts,
		LastAttemptAt: stored.LastAttempt.UTC(),
	}, nil
}

package statementq

import (
	"context"
	"sort"
)

// Store is the durable mirror of records awaiting delivery.
//
// The Controller is the only writer. Implementations must give read-after-write
// visibility to the same Controller and must tolerate List running concurrently
// with Put and Remove.
type Store interface {
	// Put inserts or replaces the record with the same id.
	Put(ctx context.Context, record Record) error
	// Get returns the record with the given id or ErrRecordNotFound.
	Get(ctx context.Context, id string) (Record, error)
	// Remove deletes the record; removing a missing id is not an error.
	Remove(ctx context.Context, id string) error
	// List returns every record in the store's namespace.
	List(ctx context.Context) ([]Record, error)
}

// SortRecords orders records by last attempt and then id, the order reconcile
// re-admits them in.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].LastAttemptAt.Equal(records[j].LastAttemptAt) {
			return records[i].LastAttemptAt.Before(records[j].LastAttemptAt)
		}

		return records[i].ID < records[j].ID
	})
}

package statementq

import (
	"context"
	"errors"
	"time"
)

// ReconcileResult reports what a Reconcile pass did.
type ReconcileResult struct {
	// Admitted is the number of stored records put back on the queue.
	Admitted int
	// Dropped is the number of stored records purged for exceeding their budget.
	Dropped int
	// Invalid is the number of undecodable stored entries purged.
	Invalid int
}

type expiredRecord struct {
	record Record
	reason DropReason
}

// Reconcile re-admits stored records that this Controller does not currently hold,
// typically leftovers of a previous process. Records out of attempts or older than the
// maximum age are purged and reported through the drop diagnostic instead, as are
// stored entries that no longer decode.
func (c *Controller) Reconcile(ctx context.Context) (ReconcileResult, error) {
	stored, err := c.store.List(ctx)
	var invalid *InvalidRecordsError
	if err != nil && !errors.As(err, &invalid) {
		return ReconcileResult{}, &StoreError{Op: "list", Err: err}
	}

	now := c.cfg.Clock.Now()
	var (
		admitted []Record
		expired  []expiredRecord
	)

	c.mu.Lock()
	maxAttempts, maxAge := c.maxAttempts, c.maxAge
	for _, record := range stored {
		if _, ok := c.live[record.ID]; ok {
			continue
		}
		if reason, ok := expiryReason(record, now, maxAttempts, maxAge); ok {
			expired = append(expired, expiredRecord{record: record, reason: reason})

			continue
		}
		c.live[record.ID] = struct{}{}
		admitted = append(admitted, record)
	}
	c.mu.Unlock()

	if len(admitted) > 0 {
		length := c.queue.Push(admitted...)
		c.cfg.Metrics.SetQueueLength(length)
		c.cfg.Logger.Info("statementq records re-admitted", "count", len(admitted))
	}
	for _, e := range expired {
		c.drop(ctx, e.record, e.reason, nil)
	}
	purged := c.dropInvalid(ctx, invalid)

	return ReconcileResult{Admitted: len(admitted), Dropped: len(expired), Invalid: purged}, nil
}

// dropInvalid purges undecodable entries, skipping ids this Controller still holds: their
// next outcome rewrites the entry from memory.
func (c *Controller) dropInvalid(ctx context.Context, invalid *InvalidRecordsError) int {
	if invalid == nil {
		return 0
	}

	purged := 0
	for i, id := range invalid.IDs {
		c.mu.Lock()
		_, live := c.live[id]
		c.mu.Unlock()
		if live {
			continue
		}
		c.drop(ctx, Record{ID: id}, DropInvalid, invalid.Errs[i])
		purged++
	}

	return purged
}

// expiryReason treats the attempt and age budgets as independently sufficient.
func expiryReason(record Record, now time.Time, maxAttempts int, maxAge time.Duration) (DropReason, bool) {
	if record.Attempts >= maxAttempts {
		return DropAttemptsExhausted, true
	}
	if !record.LastAttemptAt.IsZero() && now.Sub(record.LastAttemptAt) >= maxAge {
		return DropExpired, true
	}

	return 0, false
}

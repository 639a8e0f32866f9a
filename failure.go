package statementq

import "context"

// FailureAction defines how a failed record should be handled.
type FailureAction int

const (
	// FailureRetry keeps the record for the next cycle while it has budget left.
	FailureRetry FailureAction = iota
	// FailureDrop purges the record immediately.
	FailureDrop
)

// FailureClassifier decides whether a delivery failure is retryable.
type FailureClassifier func(ctx context.Context, record Record, err error) FailureAction

func defaultFailureClassifier(context.Context, Record, error) FailureAction {
	return FailureRetry
}

// DropHandler receives a diagnostic for every record purged without delivery.
// The error matches ErrRecordExpired.
type DropHandler func(ctx context.Context, record Record, reason DropReason, err error)

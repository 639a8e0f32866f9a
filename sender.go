package statementq

import "context"

// Sender delivers a single record to the collection endpoint.
type Sender interface {
	// Send delivers the record and returns an error on any non-success outcome.
	Send(ctx context.Context, record Record) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, record Record) error

// Send implements Sender.
func (fn SenderFunc) Send(ctx context.Context, record Record) error {
	return fn(ctx, record)
}

package statementq

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const outcomeBuffer = 64

// Batch is a group of records submitted to the Dispatcher in one flush cycle.
type Batch struct {
	ID      string
	Records []Record
}

// OutcomeKind tags the messages emitted by the Dispatcher.
type OutcomeKind int

const (
	// OutcomeAcked reports that a record was delivered.
	OutcomeAcked OutcomeKind = iota + 1
	// OutcomeFailed reports that a record could not be delivered; Err is a *DeliveryError.
	OutcomeFailed
	// OutcomeBatchComplete is the terminal message of a batch.
	OutcomeBatchComplete
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAcked:
		return "acked"
	case OutcomeFailed:
		return "failed"
	case OutcomeBatchComplete:
		return "batch_complete"
	default:
		return "unknown"
	}
}

// Outcome is one message from the Dispatcher to the Controller.
type Outcome struct {
	Kind    OutcomeKind
	BatchID string
	// Record is a copy of the record the message refers to; empty for OutcomeBatchComplete.
	Record Record
	Err    error
}

// Dispatcher delivers batches on its own goroutine and reports results as Outcome
// messages. It shares no mutable state with the Controller.
type Dispatcher struct {
	sender   Sender
	cfg      Config
	jobs     chan Batch
	outcomes chan Outcome
}

// NewDispatcher constructs a Dispatcher. Only the logger, tracer and send timeout
// options are relevant to it.
func NewDispatcher(sender Sender, opts ...Option) *Dispatcher {
	if sender == nil {
		panic("statementq: nil Sender")
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	return newDispatcher(sender, cfg.withDefaults())
}

func newDispatcher(sender Sender, cfg Config) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		cfg:      cfg,
		jobs:     make(chan Batch, 1),
		outcomes: make(chan Outcome, outcomeBuffer),
	}
}

// Submit hands a batch to the Dispatcher. It does not wait for delivery.
func (d *Dispatcher) Submit(ctx context.Context, batch Batch) error {
	records := make([]Record, len(batch.Records))
	for i := range batch.Records {
		records[i] = batch.Records[i].Clone()
	}
	batch.Records = records

	select {
	case d.jobs <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Outcomes returns the channel of delivery results.
func (d *Dispatcher) Outcomes() <-chan Outcome {
	return d.outcomes
}

// Run delivers submitted batches until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch := <-d.jobs:
			d.deliver(ctx, batch)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, batch Batch) {
	ctx, span := d.cfg.Tracer.Start(ctx, "statementq.dispatch", trace.WithAttributes(
		attribute.String("statementq.batch_id", batch.ID),
		attribute.Int("statementq.batch_size", len(batch.Records)),
	))
	defer span.End()

	var failed int
	for i := range batch.Records {
		record := batch.Records[i]
		err := d.send(ctx, record)
		if err != nil && ctx.Err() != nil {
			d.cfg.Logger.Warn("statementq dispatch interrupted", "batch", batch.ID, "err", ctx.Err())
			span.SetStatus(codes.Error, "interrupted")

			return
		}

		outcome := Outcome{Kind: OutcomeAcked, BatchID: batch.ID, Record: record}
		if err != nil {
			failed++
			d.cfg.Logger.Warn("statementq record delivery failed", recordFields(record, "batch", batch.ID, "err", err)...)
			outcome.Kind = OutcomeFailed
			outcome.Err = newDeliveryError(record.ID, err)
		}
		if !d.emit(ctx, outcome) {
			return
		}
	}

	span.SetAttributes(attribute.Int("statementq.failed", failed))
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d records failed", failed))
	}
	d.emit(ctx, Outcome{Kind: OutcomeBatchComplete, BatchID: batch.ID})
}

func (d *Dispatcher) send(ctx context.Context, record Record) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.cfg.Logger.Error("statementq sender panic", "record", record.ID, "panic", rec)
			err = fmt.Errorf("%w: %v", ErrSenderPanic, rec)
		}
	}()

	sendCtx, span := d.cfg.Tracer.Start(ctx, "statementq.send", trace.WithAttributes(
		attribute.String("statementq.record_id", record.ID),
		attribute.String("statementq.kind", record.Kind),
	))
	defer span.End()

	cancel := func() {}
	if d.cfg.SendTimeout > 0 {
		sendCtx, cancel = context.WithTimeout(sendCtx, d.cfg.SendTimeout)
	}
	defer cancel()

	start := time.Now()
	err = d.sender.Send(sendCtx, record)
	span.SetAttributes(attribute.Int64("statementq.send_ms", time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

func (d *Dispatcher) emit(ctx context.Context, outcome Outcome) bool {
	select {
	case d.outcomes <- outcome:
		return true
	case <-ctx.Done():
		return false
	}
}

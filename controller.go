package statementq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Controller buffers records, mirrors them into a Store and flushes them to a Sender
// through its Dispatcher, one batch at a time.
type Controller struct {
	store      Store
	queue      *Queue
	registry   *Registry
	dispatcher *Dispatcher
	cfg        Config

	mu             sync.Mutex
	maxQueueLength int
	maxAttempts    int
	maxAge         time.Duration
	live           map[string]struct{}
	batches        map[string]*batchState
	phase          Phase

	// cycle holds one token from the start of a flush until its batch terminal message.
	cycle   chan struct{}
	trigger chan struct{}

	timerMu   sync.Mutex
	timerStop chan struct{}

	runMu   sync.Mutex
	running bool
}

type batchState struct {
	started time.Time
	size    int
	lastErr error
}

// New constructs a Controller with defaults and optional settings.
func New(store Store, sender Sender, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if sender == nil {
		return nil, ErrNilSender
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return &Controller{
		store:          store,
		queue:          NewQueue(),
		registry:       NewRegistry(),
		dispatcher:     newDispatcher(sender, cfg),
		cfg:            cfg,
		maxQueueLength: cfg.MaxQueueLength,
		maxAttempts:    cfg.MaxAttempts,
		maxAge:         cfg.MaxAge,
		live:           make(map[string]struct{}),
		batches:        make(map[string]*batchState),
		cycle:          make(chan struct{}, 1),
		trigger:        make(chan struct{}, 1),
	}, nil
}

// Enqueue persists a new record and appends it to the queue. It never waits on the
// network; reaching the maximum queue length schedules a flush on the Run loop.
// A store failure is logged and does not prevent delivery from memory.
func (c *Controller) Enqueue(ctx context.Context, kind string, payload []byte) (string, error) {
	if err := ValidateEntry(Entry{Kind: kind, Payload: payload}, c.cfg.ValidateJSON); err != nil {
		return "", err
	}

	id, err := c.cfg.IDs.New()
	if err != nil {
		return "", err
	}
	record := Record{
		ID:            id,
		Kind:          kind,
		Payload:       append([]byte(nil), payload...),
		LastAttemptAt: c.cfg.Clock.Now(),
	}

	c.mu.Lock()
	if _, ok := c.live[id]; ok {
		c.mu.Unlock()

		return "", fmt.Errorf("%w: %s", ErrDuplicateRecord, id)
	}
	c.live[id] = struct{}{}
	maxLen := c.maxQueueLength
	c.mu.Unlock()

	if err := c.store.Put(ctx, record); err != nil {
		c.cfg.Logger.Warn("statementq record will not survive a crash",
			recordFields(record, "err", &StoreError{Op: "put", ID: id, Err: err})...)
	}

	length := c.queue.Push(record)
	c.cfg.Metrics.AddEnqueued(1)
	c.cfg.Metrics.SetQueueLength(length)
	c.cfg.Logger.Debug("statementq record enqueued", recordFields(record, "queued", length)...)
	if length >= maxLen {
		c.requestFlush()
	}

	return id, nil
}

// Flush reconciles the store, drains the queue and waits until the resulting batch has
// been fully reported by the Dispatcher. Only one batch is in flight at a time; a Flush
// issued meanwhile waits and delivers whatever is queued once the slot frees up.
//
// Delivery failures are logged and retried on later cycles. Flush returns them only when
// the Controller was built with WithFailureReporting(true).
func (c *Controller) Flush(ctx context.Context) error {
	select {
	case c.cycle <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	handle, err := c.startCycle(ctx)
	if handle == nil {
		c.releaseCycle()

		return err
	}

	select {
	case <-handle.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if c.cfg.ReportFailures {
		return handle.Err()
	}

	return nil
}

func (c *Controller) startCycle(ctx context.Context) (*Handle, error) {
	c.setPhase(PhaseReconciling)
	if _, err := c.Reconcile(ctx); err != nil {
		c.cfg.Logger.Warn("statementq reconcile failed", "err", err)
	}

	records := c.queue.Drain()
	c.cfg.Metrics.SetQueueLength(c.queue.Len())
	if len(records) == 0 {
		c.setPhase(PhaseIdle)

		return nil, nil
	}

	c.setPhase(PhaseDispatching)
	handle, batchID, err := c.register(len(records))
	if err != nil {
		c.abortCycle(records)

		return nil, err
	}

	if err := c.dispatcher.Submit(ctx, Batch{ID: batchID, Records: records}); err != nil {
		c.mu.Lock()
		delete(c.batches, batchID)
		c.mu.Unlock()
		c.registry.Resolve(batchID, err)
		c.abortCycle(records)

		return nil, err
	}

	c.setPhase(PhaseAwaitingAck)
	c.cfg.Logger.Debug("statementq batch dispatched", "batch", batchID, "records", len(records))

	return handle, nil
}

func (c *Controller) register(size int) (*Handle, string, error) {
	batchID, err := c.cfg.IDs.New()
	if err != nil {
		return nil, "", err
	}
	handle, err := c.registry.Register(batchID)
	if err != nil {
		return nil, "", err
	}

	c.mu.Lock()
	c.batches[batchID] = &batchState{started: time.Now(), size: size}
	c.mu.Unlock()

	return handle, batchID, nil
}

func (c *Controller) abortCycle(records []Record) {
	length := c.queue.PushFront(records...)
	c.cfg.Metrics.SetQueueLength(length)
	c.setPhase(PhaseIdle)
}

func (c *Controller) releaseCycle() {
	select {
	case <-c.cycle:
	default:
	}
}

func (c *Controller) handleOutcome(ctx context.Context, outcome Outcome) {
	switch outcome.Kind {
	case OutcomeAcked:
		c.handleAck(ctx, outcome.Record)
	case OutcomeFailed:
		c.handleFailure(ctx, outcome)
	case OutcomeBatchComplete:
		c.completeBatch(outcome.BatchID)
	default:
		c.cfg.Logger.Warn("statementq unknown outcome", "kind", outcome.Kind, "batch", outcome.BatchID)
	}
}

func (c *Controller) handleAck(ctx context.Context, record Record) {
	if err := c.store.Remove(ctx, record.ID); err != nil {
		c.cfg.Logger.Warn("statementq acknowledged record may be delivered again",
			recordFields(record, "err", &StoreError{Op: "remove", ID: record.ID, Err: err})...)
	}
	c.forget(record.ID)
	c.cfg.Metrics.AddDelivered(1)
}

func (c *Controller) handleFailure(ctx context.Context, outcome Outcome) {
	c.cfg.Metrics.AddFailed(1)

	c.mu.Lock()
	if state, ok := c.batches[outcome.BatchID]; ok {
		state.lastErr = outcome.Err
	}
	maxAttempts := c.maxAttempts
	c.mu.Unlock()

	record, err := c.store.Get(ctx, outcome.Record.ID)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			c.cfg.Logger.Warn("statementq stored attempts unavailable", "record", outcome.Record.ID,
				"err", &StoreError{Op: "get", ID: outcome.Record.ID, Err: err})
		}
		record = outcome.Record
	}
	record.Attempts++
	record.LastAttemptAt = c.cfg.Clock.Now()

	switch {
	case c.cfg.FailureClassifier(ctx, record, outcome.Err) == FailureDrop:
		c.drop(ctx, record, DropRejected, nil)
	case record.Attempts >= maxAttempts:
		c.drop(ctx, record, DropAttemptsExhausted, nil)
	default:
		if err := c.store.Put(ctx, record); err != nil {
			c.cfg.Logger.Error("statementq failed record lost",
				recordFields(record, "err", &StoreError{Op: "put", ID: record.ID, Err: err})...)
		}
	}
	// Forget only after the store holds the new attempt count so a concurrent
	// Reconcile never re-admits the record with the old one.
	c.forget(record.ID)
}

func (c *Controller) completeBatch(batchID string) {
	c.mu.Lock()
	state, ok := c.batches[batchID]
	delete(c.batches, batchID)
	if ok {
		c.phase = PhaseIdle
	}
	c.mu.Unlock()
	if !ok {
		c.cfg.Logger.Warn("statementq terminal message for unknown batch", "batch", batchID)

		return
	}

	c.cfg.Metrics.ObserveBatchDuration(time.Since(state.started))
	c.cfg.Logger.Debug("statementq batch complete", "batch", batchID, "records", state.size, "failed", state.lastErr != nil)
	c.registry.Resolve(batchID, state.lastErr)
	c.releaseCycle()
}

// drop purges record and emits the drop diagnostic once. cause, when set, is wrapped
// into the error handed to the DropHandler.
func (c *Controller) drop(ctx context.Context, record Record, reason DropReason, cause error) {
	if record.ID != "" {
		if err := c.store.Remove(ctx, record.ID); err != nil {
			c.cfg.Logger.Warn("statementq dropped record still stored",
				recordFields(record, "err", &StoreError{Op: "remove", ID: record.ID, Err: err})...)
		}
	}

	err := fmt.Errorf("%w: %s (%s after %d attempts)", ErrRecordExpired, record.ID, reason, record.Attempts)
	if cause != nil {
		err = fmt.Errorf("%w: %w", err, cause)
	}
	c.cfg.Logger.Warn("statementq record dropped", recordFields(record, "reason", reason.String())...)
	c.cfg.Metrics.AddDropped(1)
	if c.cfg.DropHandler != nil {
		c.cfg.DropHandler(ctx, record, reason, err)
	}
}

func (c *Controller) forget(id string) {
	c.mu.Lock()
	delete(c.live, id)
	c.mu.Unlock()
}

func (c *Controller) requestFlush() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

func (c *Controller) setPhase(phase Phase) {
	c.mu.Lock()
	c.phase = phase
	c.mu.Unlock()
}

// Phase returns the current state of the flush cycle.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.phase
}

// QueueLength returns the number of records waiting for the next flush.
func (c *Controller) QueueLength() int {
	return c.queue.Len()
}

// InFlight returns the number of batches awaiting their terminal message.
func (c *Controller) InFlight() int {
	return c.registry.Len()
}

// SetMaxQueueLength changes the automatic flush threshold.
func (c *Controller) SetMaxQueueLength(n int) {
	if n <= 0 {
		n = defaultMaxQueueLength
	}
	c.mu.Lock()
	c.maxQueueLength = n
	c.mu.Unlock()

	if c.queue.Len() >= n {
		c.requestFlush()
	}
}

// SetRetryPolicy changes the attempt and age budget used from the next outcome on.
// Non-positive values restore the defaults.
func (c *Controller) SetRetryPolicy(maxAttempts int, maxAge time.Duration) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	c.mu.Lock()
	c.maxAttempts = maxAttempts
	c.maxAge = maxAge
	c.mu.Unlock()
}

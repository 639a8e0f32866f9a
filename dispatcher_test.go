package statementq

import (
	"context"
	"errors"
	"testing"
	"time"
)

func collectOutcomes(t *testing.T, d *Dispatcher, n int) []Outcome {
	t.Helper()
	out := make([]Outcome, 0, n)
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case o := <-d.Outcomes():
			out = append(out, o)
		case <-timeout:
			t.Fatalf("expected %d outcomes, got %d", n, len(out))
		}
	}

	return out
}

func runDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestDispatcherReportsEachRecordThenComplete(t *testing.T) {
	boom := errors.New("503 service unavailable")
	d := NewDispatcher(SenderFunc(func(_ context.Context, record Record) error {
		if record.ID == "2" {
			return boom
		}
		return nil
	}))
	runDispatcher(t, d)

	batch := Batch{ID: "b1", Records: []Record{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	if err := d.Submit(context.Background(), batch); err != nil {
		t.Fatalf("submit: %v", err)
	}

	outcomes := collectOutcomes(t, d, 4)
	kinds := []OutcomeKind{OutcomeAcked, OutcomeFailed, OutcomeAcked, OutcomeBatchComplete}
	for i, o := range outcomes {
		if o.Kind != kinds[i] {
			t.Fatalf("outcome %d: expected %s, got %s", i, kinds[i], o.Kind)
		}
		if o.BatchID != "b1" {
			t.Fatalf("outcome %d: expected batch b1, got %q", i, o.BatchID)
		}
	}

	var deliveryErr *DeliveryError
	if !errors.As(outcomes[1].Err, &deliveryErr) {
		t.Fatalf("expected DeliveryError, got %T", outcomes[1].Err)
	}
	if deliveryErr.RecordID != "2" || deliveryErr.Message != boom.Error() {
		t.Fatalf("unexpected delivery error %+v", deliveryErr)
	}
	if !errors.Is(outcomes[1].Err, ErrDeliveryFailed) || !errors.Is(outcomes[1].Err, boom) {
		t.Fatalf("expected delivery error to match sentinel and cause")
	}
}

func TestDispatcherRecoversSenderPanic(t *testing.T) {
	d := NewDispatcher(SenderFunc(func(context.Context, Record) error {
		panic("nil map")
	}))
	runDispatcher(t, d)

	if err := d.Submit(context.Background(), Batch{ID: "b1", Records: []Record{{ID: "1"}, {ID: "2"}}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	outcomes := collectOutcomes(t, d, 3)
	for _, o := range outcomes[:2] {
		if o.Kind != OutcomeFailed || !errors.Is(o.Err, ErrSenderPanic) {
			t.Fatalf("expected panic failure, got %s %v", o.Kind, o.Err)
		}
	}
	if outcomes[2].Kind != OutcomeBatchComplete {
		t.Fatalf("expected terminal message, got %s", outcomes[2].Kind)
	}
}

func TestDispatcherSendTimeout(t *testing.T) {
	d := NewDispatcher(SenderFunc(func(ctx context.Context, _ Record) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		<-ctx.Done()
		return ctx.Err()
	}), WithSendTimeout(5*time.Millisecond))
	runDispatcher(t, d)

	if err := d.Submit(context.Background(), Batch{ID: "b1", Records: []Record{{ID: "1"}}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	outcomes := collectOutcomes(t, d, 2)
	if outcomes[0].Kind != OutcomeFailed || !errors.Is(outcomes[0].Err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout failure, got %s %v", outcomes[0].Kind, outcomes[0].Err)
	}
	if outcomes[1].Kind != OutcomeBatchComplete {
		t.Fatalf("expected terminal message, got %s", outcomes[1].Kind)
	}
}

func TestDispatcherSubmitCopiesRecords(t *testing.T) {
	got := make(chan string, 1)
	d := NewDispatcher(SenderFunc(func(_ context.Context, record Record) error {
		got <- string(record.Payload)
		return nil
	}))

	records := []Record{{ID: "1", Payload: []byte(`{"a":1}`)}}
	if err := d.Submit(context.Background(), Batch{ID: "b1", Records: records}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	records[0].Payload[2] = 'b'
	runDispatcher(t, d)

	select {
	case payload := <-got:
		if payload != `{"a":1}` {
			t.Fatalf("dispatcher observed caller mutation: %s", payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected send")
	}
}

func TestDispatcherStopsWithoutTerminalOnCancel(t *testing.T) {
	started := make(chan struct{})
	d := NewDispatcher(SenderFunc(func(ctx context.Context, _ Record) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	if err := d.Submit(context.Background(), Batch{ID: "b1", Records: []Record{{ID: "1"}}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-started
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	select {
	case o := <-d.Outcomes():
		t.Fatalf("unexpected outcome %s after cancel", o.Kind)
	default:
	}
}

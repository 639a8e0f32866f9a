// Package otelmetrics records statementq controller metrics with OpenTelemetry.
package otelmetrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/velmie/statementq"
)

const meterName = "github.com/velmie/statementq"

// Metrics implements statementq.Metrics with OpenTelemetry instruments.
type Metrics struct {
	enqueued      metric.Int64Counter
	delivered     metric.Int64Counter
	failed        metric.Int64Counter
	dropped       metric.Int64Counter
	batchDuration metric.Float64Histogram
	queueLength   metric.Int64Gauge

	attrs metric.MeasurementOption
}

var _ statementq.Metrics = (*Metrics)(nil)

// New creates the instruments on provider's meter. A nil provider uses the global one.
// Namespace, when set, is attached to every measurement.
func New(provider metric.MeterProvider, namespace string) (*Metrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	var (
		m   Metrics
		err error
	)

	m.enqueued, err = meter.Int64Counter(
		"statementq.records.enqueued",
		metric.WithDescription("Number of records accepted by the controller"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create statementq.records.enqueued counter: %w", err)
	}

	m.delivered, err = meter.Int64Counter(
		"statementq.records.delivered",
		metric.WithDescription("Number of records acknowledged by the endpoint"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create statementq.records.delivered counter: %w", err)
	}

	m.failed, err = meter.Int64Counter(
		"statementq.records.failed",
		metric.WithDescription("Number of failed delivery attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create statementq.records.failed counter: %w", err)
	}

	m.dropped, err = meter.Int64Counter(
		"statementq.records.dropped",
		metric.WithDescription("Number of records purged without delivery"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create statementq.records.dropped counter: %w", err)
	}

	m.batchDuration, err = meter.Float64Histogram(
		"statementq.batch.duration",
		metric.WithDescription("Time from batch dispatch to its terminal message"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create statementq.batch.duration histogram: %w", err)
	}

	m.queueLength, err = meter.Int64Gauge(
		"statementq.queue.length",
		metric.WithDescription("Number of records waiting for the next flush"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create statementq.queue.length gauge: %w", err)
	}

	var attrs []attribute.KeyValue
	if namespace != "" {
		attrs = append(attrs, attribute.String("statementq.namespace", namespace))
	}
	m.attrs = metric.WithAttributes(attrs...)

	return &m, nil
}

// ObserveBatchDuration implements statementq.Metrics.
func (m *Metrics) ObserveBatchDuration(duration time.Duration) {
	m.batchDuration.Record(context.Background(), duration.Seconds(), m.attrs)
}

// AddEnqueued implements statementq.Metrics.
func (m *Metrics) AddEnqueued(count int) {
	m.enqueued.Add(context.Background(), int64(count), m.attrs)
}

// AddDelivered implements statementq.Metrics.
func (m *Metrics) AddDelivered(count int) {
	m.delivered.Add(context.Background(), int64(count), m.attrs)
}

// AddFailed implements statementq.Metrics.
func (m *Metrics) AddFailed(count int) {
	m.failed.Add(context.Background(), int64(count), m.attrs)
}

// AddDropped implements statementq.Metrics.
func (m *Metrics) AddDropped(count int) {
	m.dropped.Add(context.Background(), int64(count), m.attrs)
}

// SetQueueLength implements statementq.Metrics.
func (m *Metrics) SetQueueLength(length int) {
	m.queueLength.Record(context.Background(), int64(length), m.attrs)
}

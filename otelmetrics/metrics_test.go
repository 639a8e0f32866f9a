package otelmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/velmie/statementq"
)

func newTestMetrics(t *testing.T, namespace string) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := New(provider, namespace)
	require.NoError(t, err)

	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestMetricsRecordsInstruments(t *testing.T) {
	m, reader := newTestMetrics(t, "dwarfs")

	m.AddEnqueued(5)
	m.AddDelivered(3)
	m.AddFailed(2)
	m.AddFailed(1)
	m.AddDropped(1)
	m.SetQueueLength(7)
	m.SetQueueLength(2)
	m.ObserveBatchDuration(250 * time.Millisecond)

	got := collect(t, reader)
	assert.EqualValues(t, 5, sumValue(t, got["statementq.records.enqueued"]))
	assert.EqualValues(t, 3, sumValue(t, got["statementq.records.delivered"]))
	assert.EqualValues(t, 3, sumValue(t, got["statementq.records.failed"]))
	assert.EqualValues(t, 1, sumValue(t, got["statementq.records.dropped"]))

	gauge, ok := got["statementq.queue.length"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.EqualValues(t, 2, gauge.DataPoints[0].Value)
	ns, ok := gauge.DataPoints[0].Attributes.Value(attribute.Key("statementq.namespace"))
	require.True(t, ok)
	assert.Equal(t, "dwarfs", ns.AsString())

	hist, ok := got["statementq.batch.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.EqualValues(t, 1, hist.DataPoints[0].Count)
	assert.InDelta(t, 0.25, hist.DataPoints[0].Sum, 1e-9)
}

func TestMetricsWithController(t *testing.T) {
	m, reader := newTestMetrics(t, "")
	ctx := context.Background()

	sender := statementq.SenderFunc(func(context.Context, statementq.Record) error { return nil })
	controller, err := statementq.New(statementq.NewMemoryStore(), sender,
		statementq.WithMetrics(m), statementq.WithMaxQueueLength(10))
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- controller.Run(runCtx) }()

	for i := 0; i < 3; i++ {
		_, err := controller.Enqueue(ctx, "completed/level", []byte(`{}`))
		require.NoError(t, err)
	}
	require.NoError(t, controller.Flush(ctx))
	cancel()
	require.NoError(t, <-done)

	got := collect(t, reader)
	assert.EqualValues(t, 3, sumValue(t, got["statementq.records.enqueued"]))
	assert.EqualValues(t, 3, sumValue(t, got["statementq.records.delivered"]))
}

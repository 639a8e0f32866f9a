package statementq

import "time"

// Metrics captures controller-level telemetry.
type Metrics interface {
	// ObserveBatchDuration records the time from dispatch to the terminal message.
	ObserveBatchDuration(duration time.Duration)
	// AddEnqueued increments the count of accepted records.
	AddEnqueued(count int)
	// AddDelivered increments the count of acknowledged records.
	AddDelivered(count int)
	// AddFailed increments the count of failed delivery attempts.
	AddFailed(count int)
	// AddDropped increments the count of records purged without delivery.
	AddDropped(count int)
	// SetQueueLength updates the current volatile queue length.
	SetQueueLength(length int)
}

// NopMetrics is a no-op metrics recorder.
type NopMetrics struct{}

// ObserveBatchDuration implements Metrics.
func (NopMetrics) ObserveBatchDuration(time.Duration) {}

// AddEnqueued implements Metrics.
func (NopMetrics) AddEnqueued(int) {}

// AddDelivered implements Metrics.
func (NopMetrics) AddDelivered(int) {}

// AddFailed implements Metrics.
func (NopMetrics) AddFailed(int) {}

// AddDropped implements Metrics.
func (NopMetrics) AddDropped(int) {}

// SetQueueLength implements Metrics.
func (NopMetrics) SetQueueLength(int) {}

package statementq

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	defaultMaxQueueLength  = 5
	defaultMaxAttempts     = 5
	defaultMaxAge          = 24 * time.Hour
	defaultShutdownTimeout = 5 * time.Second
)

// Config defines how the Controller buffers, retries and delivers records.
type Config struct {
	// MaxQueueLength is the queue length that triggers an automatic flush.
	MaxQueueLength int
	// FlushInterval enables the periodic flush timer when positive.
	FlushInterval time.Duration
	// MaxAttempts is the number of failed deliveries after which a record is dropped.
	MaxAttempts int
	// MaxAge drops records whose last attempt is at least this old.
	MaxAge time.Duration
	// SendTimeout bounds each Sender call when positive.
	SendTimeout time.Duration
	// ShutdownTimeout bounds the drain performed when Run's context ends.
	ShutdownTimeout time.Duration
	// ReportFailures makes Flush return the last delivery error of its batch.
	ReportFailures bool
	// ValidateJSON rejects entries whose payload is not valid JSON.
	ValidateJSON    bool
	validateJSONSet bool

	Clock             Clock
	IDs               IDGenerator
	Logger            Logger
	Metrics           Metrics
	Tracer            trace.Tracer
	FailureClassifier FailureClassifier
	DropHandler       DropHandler
}

func (c Config) withDefaults() Config {
	if c.MaxQueueLength <= 0 {
		c.MaxQueueLength = defaultMaxQueueLength
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.MaxAge <= 0 {
		c.MaxAge = defaultMaxAge
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if !c.validateJSONSet {
		c.ValidateJSON = true
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.IDs == nil {
		c.IDs = UUIDv7Generator{}
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}
	if c.Tracer == nil {
		c.Tracer = noop.NewTracerProvider().Tracer("statementq")
	}
	if c.FailureClassifier == nil {
		c.FailureClassifier = defaultFailureClassifier
	}

	return c
}

// Option configures Controller behavior.
type Option func(*Config)

// WithMaxQueueLength sets the queue length that triggers an automatic flush.
func WithMaxQueueLength(n int) Option {
	return func(c *Config) {
		c.MaxQueueLength = n
	}
}

// WithFlushInterval starts the periodic flush timer when the Controller runs.
func WithFlushInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.FlushInterval = interval
	}
}

// WithRetryPolicy sets the attempt and age budget of each record.
func WithRetryPolicy(maxAttempts int, maxAge time.Duration) Option {
	return func(c *Config) {
		c.MaxAttempts = maxAttempts
		c.MaxAge = maxAge
	}
}

// WithSendTimeout sets a per-record delivery timeout.
func WithSendTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.SendTimeout = timeout
	}
}

// WithShutdownTimeout bounds the final drain performed by Run.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ShutdownTimeout = timeout
	}
}

// WithFailureReporting makes Flush return delivery failures instead of only logging them.
func WithFailureReporting(enabled bool) Option {
	return func(c *Config) {
		c.ReportFailures = enabled
	}
}

// WithValidateJSON enables or disables JSON validation of payloads. Enabled by default.
func WithValidateJSON(enabled bool) Option {
	return func(c *Config) {
		c.ValidateJSON = enabled
		c.validateJSONSet = true
	}
}

// WithClock sets the Controller clock.
func WithClock(clock Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithIDGenerator sets the generator used for record and batch ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *Config) {
		c.IDs = gen
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics Metrics) Option {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = tracer
	}
}

// WithFailureClassifier sets the retry/drop decision for delivery failures.
func WithFailureClassifier(classifier FailureClassifier) Option {
	return func(c *Config) {
		c.FailureClassifier = classifier
	}
}

// WithDropHandler registers a callback for records purged without delivery.
func WithDropHandler(handler DropHandler) Option {
	return func(c *Config) {
		c.DropHandler = handler
	}
}

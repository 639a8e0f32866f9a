package statementq

import "time"

// Logger receives controller diagnostics as a message plus key/value pairs.
// A *slog.Logger satisfies it; see the zaplog package for zap.
//
// Warn is used for conditions that put a record at risk (a store write that failed, a
// record dropped without delivery); Error for records that are lost.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, ...any) {}

// recordFields returns the standard key/value pairs describing a record, followed by extra.
func recordFields(r Record, extra ...any) []any {
	fields := make([]any, 0, 8+len(extra))
	fields = append(fields, "record", r.ID, "kind", r.Kind, "attempts", r.Attempts)
	if !r.LastAttemptAt.IsZero() {
		fields = append(fields, "last_attempt", r.LastAttemptAt.Format(time.RFC3339))
	}

	return append(fields, extra...)
}

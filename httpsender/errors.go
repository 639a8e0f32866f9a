package httpsender

import (
	"errors"
	"fmt"
)

var (
	// ErrEndpointRequired is returned when the sender has no endpoint URL.
	ErrEndpointRequired = errors.New("statementq http: endpoint is required")
	// ErrInvalidEndpoint is returned when the endpoint is not an absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("statementq http: endpoint must be an absolute http or https URL")
	// ErrCircuitOpen is returned while the circuit breaker rejects requests.
	ErrCircuitOpen = errors.New("statementq http: endpoint unavailable (circuit open)")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("statementq http: status %d", e.StatusCode)
	}

	return fmt.Sprintf("statementq http: status %d - %s", e.StatusCode, e.Message)
}

// Temporary reports whether a retry may succeed. Client errors other than 408 and 429
// will fail the same way again.
func (e *StatusError) Temporary() bool {
	if e.StatusCode == 408 || e.StatusCode == 429 {
		return true
	}

	return e.StatusCode < 400 || e.StatusCode >= 500
}

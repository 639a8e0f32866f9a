package httpsender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/velmie/statementq"
)

// Sender posts records to the collection endpoint.
type Sender struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker
}

var _ statementq.Sender = (*Sender)(nil)

// New constructs a Sender for endpoint.
func New(endpoint string, opts ...Option) (*Sender, error) {
	cfg := Config{Endpoint: endpoint}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()
	if err := validateEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}

	s := &Sender{cfg: cfg}
	if cfg.Breaker != nil {
		settings := *cfg.Breaker
		if settings.IsSuccessful == nil {
			settings.IsSuccessful = endpointHealthy
		}
		s.breaker = gobreaker.NewCircuitBreaker(settings)
	}

	return s, nil
}

// endpointHealthy counts permanent client errors as breaker successes.
func endpointHealthy(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return !statusErr.Temporary()
	}

	return err == nil
}

func validateEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return ErrEndpointRequired
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}

	return nil
}

// Send implements statementq.Sender.
func (s *Sender) Send(ctx context.Context, record statementq.Record) error {
	if s.breaker == nil {
		return s.post(ctx, record)
	}

	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.post(ctx, record)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}

	return err
}

// State returns the circuit breaker state, or StateClosed when none is configured.
func (s *Sender) State() gobreaker.State {
	if s.breaker == nil {
		return gobreaker.StateClosed
	}

	return s.breaker.State()
}

func (s *Sender) post(ctx context.Context, record statementq.Record) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(record.Payload))
	if err != nil {
		return fmt.Errorf("statementq http: build request: %w", err)
	}
	s.decorate(req)

	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("statementq http: post %s: %w", record.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
}

func (s *Sender) decorate(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set(s.cfg.TokenHeader, s.cfg.Token)
	}
	if s.cfg.BasicUser != "" {
		req.SetBasicAuth(s.cfg.BasicUser, s.cfg.BasicPassword)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}
	for name, value := range s.cfg.Headers {
		req.Header.Set(name, value)
	}
}

// errorMessage extracts {"message": "..."} from an error body, falling back to the
// trimmed body text.
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
		return payload.Message
	}

	return strings.TrimSpace(string(data))
}

// Classify maps delivery failures to a FailureAction: permanent client errors are
// dropped, everything else is retried. Use it with statementq.WithFailureClassifier.
func Classify(_ context.Context, _ statementq.Record, err error) statementq.FailureAction {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && !statusErr.Temporary() {
		return statementq.FailureDrop
	}

	return statementq.FailureRetry
}

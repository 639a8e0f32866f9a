package httpsender

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// KeyValidator checks player session keys against the public key endpoint.
type KeyValidator struct {
	base   string
	client *http.Client
}

// NewKeyValidator returns a validator that issues GET <base>/<key>.
func NewKeyValidator(base string, client *http.Client) (*KeyValidator, error) {
	if err := validateEndpoint(base); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &KeyValidator{base: strings.TrimRight(base, "/"), client: client}, nil
}

// Validate reports whether the endpoint accepts the session key. A non-2xx response is
// a negative answer; transport failures are returned as errors.
func (v *KeyValidator) Validate(ctx context.Context, sessionKey string) (bool, error) {
	if strings.TrimSpace(sessionKey) == "" {
		return false, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.base+"/"+url.PathEscape(sessionKey), nil)
	if err != nil {
		return false, fmt.Errorf("statementq http: build key request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("statementq http: validate key: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

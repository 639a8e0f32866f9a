package httpsender

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const (
	defaultTokenHeader = "x-authentication"
	defaultTimeout     = 10 * time.Second
	maxErrorBody       = 64 << 10
)

// Config defines how records are posted.
type Config struct {
	Endpoint    string
	Token       string
	TokenHeader string
	// BasicAuth is sent as "user:password" when non-empty.
	BasicUser     string
	BasicPassword string
	Headers       map[string]string
	UserAgent     string
	Client        *http.Client
	Timeout       time.Duration
	// Breaker enables a circuit breaker around every request when non-nil.
	Breaker *gobreaker.Settings
}

func (c Config) withDefaults() Config {
	if c.TokenHeader == "" {
		c.TokenHeader = defaultTokenHeader
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}

	return c
}

// Option configures the sender.
type Option func(*Config)

// WithToken sets the session token sent with every request.
func WithToken(token string) Option {
	return func(c *Config) {
		c.Token = token
	}
}

// WithTokenHeader overrides the header carrying the token.
func WithTokenHeader(name string) Option {
	return func(c *Config) {
		c.TokenHeader = name
	}
}

// WithBasicAuth adds HTTP basic credentials.
func WithBasicAuth(user, password string) Option {
	return func(c *Config) {
		c.BasicUser = user
		c.BasicPassword = password
	}
}

// WithHeader adds a static request header.
func WithHeader(name, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[name] = value
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.Client = client
	}
}

// WithTimeout sets the timeout of the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithCircuitBreaker guards the endpoint with a circuit breaker. Unless settings carries
// its own IsSuccessful, only server-side failures count against it and 4xx responses
// other than 408/429 are treated as successes.
func WithCircuitBreaker(settings gobreaker.Settings) Option {
	return func(c *Config) {
		c.Breaker = &settings
	}
}

// DefaultBreakerSettings trips after consecutiveFailures failures in a row and probes
// again after timeout.
func DefaultBreakerSettings(name string, consecutiveFailures uint32, timeout time.Duration) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
	}
}

package mysql

import "github.com/velmie/statementq"

const (
	defaultTable     = "statementq_records"
	defaultNamespace = "default"
	maxNamespaceLen  = 64
)

// Config defines MySQL store behavior.
type Config struct {
	Table     string
	Namespace string
	Clock     statementq.Clock
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = defaultTable
	}
	if c.Namespace == "" {
		c.Namespace = defaultNamespace
	}
	if c.Clock == nil {
		c.Clock = statementq.SystemClock{}
	}

	return c
}

// Option configures the MySQL store.
type Option func(*Config)

// WithTable sets the records table name.
func WithTable(name string) Option {
	return func(c *Config) {
		c.Table = name
	}
}

// WithNamespace sets the partition of the table owned by this store.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithClock sets the time source used for rows written without a last attempt time.
func WithClock(clock statementq.Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

package statement

import (
	"context"
	"fmt"
	"sync"

	"github.com/velmie/statementq"
)

// Player is the actor of every statement built by a Builder.
type Player struct {
	Name string
	Mail string
}

// Option configures a Builder.
type Option func(*Builder)

// WithSessionKey sets the session key written to every statement's context.
func WithSessionKey(key string) Option {
	return func(b *Builder) {
		b.sessionKey = key
	}
}

// WithContext sets the default statement context.
func WithContext(c Context) Option {
	return func(b *Builder) {
		b.context = &c
	}
}

// WithClock overrides the clock used for timestamps.
func WithClock(clock statementq.Clock) Option {
	return func(b *Builder) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// Builder assembles statements for one player.
type Builder struct {
	actor Agent
	clock statementq.Clock

	mu         sync.RWMutex
	sessionKey string
	context    *Context
}

// NewBuilder constructs a Builder for player.
func NewBuilder(player Player, opts ...Option) (*Builder, error) {
	if player.Mail == "" {
		return nil, ErrPlayerMailRequired
	}
	b := &Builder{
		actor: NewAgent(player.Name, player.Mail),
		clock: statementq.SystemClock{},
	}
	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// SetSessionKey replaces the session key used by later statements.
func (b *Builder) SetSessionKey(key string) {
	b.mu.Lock()
	b.sessionKey = key
	b.mu.Unlock()
}

// SetContext replaces the default context used by later statements.
func (b *Builder) SetContext(c Context) {
	b.mu.Lock()
	b.context = &c
	b.mu.Unlock()
}

type buildConfig struct {
	name        string
	description string
	extensions  map[string]any
	result      *Result
	context     *Context
	authority   *Agent
}

// BuildOption customizes a single statement.
type BuildOption func(*buildConfig)

// Describe overrides the en-US name and description of the object.
func Describe(name, description string) BuildOption {
	return func(c *buildConfig) {
		c.name = name
		c.description = description
	}
}

// Extension adds an object extension. Catalog statements root the key at the library
// URI; custom verbs root it at http://example.com/<verb>_.
func Extension(key string, value any) BuildOption {
	return func(c *buildConfig) {
		if c.extensions == nil {
			c.extensions = make(map[string]any)
		}
		c.extensions[key] = value
	}
}

// WithResult attaches a result.
func WithResult(result Result) BuildOption {
	return func(c *buildConfig) {
		c.result = &result
	}
}

// WithStatementContext replaces the builder's default context for one statement.
func WithStatementContext(ctx Context) BuildOption {
	return func(c *buildConfig) {
		c.context = &ctx
	}
}

// WithAuthority attaches an authority.
func WithAuthority(authority Agent) BuildOption {
	return func(c *buildConfig) {
		c.authority = &authority
	}
}

// Build assembles a statement from a verb and an object.
func (b *Builder) Build(verb Verb, object Object, opts ...BuildOption) (Statement, error) {
	if err := ValidateVerb(verb); err != nil {
		return Statement{}, err
	}
	if err := ValidateObject(object); err != nil {
		return Statement{}, err
	}
	if !verb.Accepts(object) {
		return Statement{}, fmt.Errorf("%w: %s/%s", ErrObjectNotAllowed, verb.Key, object.Key)
	}

	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	object = object.Named(cfg.name, cfg.description)
	if len(cfg.extensions) > 0 && object.Definition.Extensions == nil {
		object.Definition.Extensions = make(map[string]any, len(cfg.extensions))
	}
	for k, v := range cfg.extensions {
		object.Definition.Extensions[extensionKey(verb, k)] = v
	}

	b.mu.RLock()
	sessionKey := b.sessionKey
	stmtContext := b.context
	b.mu.RUnlock()
	if cfg.context != nil {
		stmtContext = cfg.context
	}

	var c Context
	if stmtContext != nil {
		c = stmtContext.clone()
	} else {
		c = Context{Extensions: make(map[string]any, 1)}
	}
	if sessionKey != "" {
		c.Extensions[SessionKeyExtension] = sessionKey
	}

	return Statement{
		Actor:     b.actor,
		Verb:      verb,
		Object:    object,
		Result:    cfg.result,
		Context:   &c,
		Timestamp: b.clock.Now().UTC().Format(timestampLayout),
		Authority: cfg.authority,
	}, nil
}

func extensionKey(verb Verb, key string) string {
	if verb.custom {
		return customRoot + verb.Key + "_" + key
	}

	return extensionRoot + key
}

// Enqueuer accepts records; *statementq.Controller satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind string, payload []byte) (string, error)
}

// Enqueue marshals the statement and enqueues it under its "verb/object" kind.
func Enqueue(ctx context.Context, q Enqueuer, s Statement) (string, error) {
	if q == nil {
		return "", ErrEnqueuerRequired
	}
	if err := s.Validate(); err != nil {
		return "", err
	}
	payload, err := s.Marshal()
	if err != nil {
		return "", err
	}

	return q.Enqueue(ctx, s.Kind(), payload)
}

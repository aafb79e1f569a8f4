package temple

import (
	"time"

	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	startMark string
	endMark   string
	maxDepth  int
	logger    *zap.Logger
	source    TemplateSource
	formats   Formats
	metrics   *Metrics
	clock     func() time.Time
	resolvers []ContextResolver
	modifiers []modifierRegistration
}

type modifierRegistration struct {
	family Family
	name   string
	fn     ModifierFunc
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		startMark: DefaultStartMark,
		endMark:   DefaultEndMark,
		maxDepth:  DefaultMaxDepth,
		formats:   DefaultFormats(),
		clock:     time.Now,
	}
}

// WithMarks sets the tag marks used by Render, RenderRepeated and forwarded
// templates. Empty values keep the default.
// Default: "{{" and "}}"
func WithMarks(start, end string) Option {
	return func(c *engineConfig) {
		if start != "" {
			c.startMark = start
		}
		if end != "" {
			c.endMark = end
		}
	}
}

// WithMaxDepth sets the maximum sub-template forwarding depth.
// Default: 16
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		c.maxDepth = depth
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithSource sets the template source used for forwarding and RenderTemplate.
// Default: nil (forwards render empty)
func WithSource(source TemplateSource) Option {
	return func(c *engineConfig) {
		c.source = source
	}
}

// WithFormats sets the default display formats for date modifiers.
// Sessions may still override them per request.
func WithFormats(formats Formats) Option {
	return func(c *engineConfig) {
		c.formats = formats.Merge(DefaultFormats())
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(metrics *Metrics) Option {
	return func(c *engineConfig) {
		c.metrics = metrics
	}
}

// WithResolver registers a custom context resolver at construction.
func WithResolver(r ContextResolver) Option {
	return func(c *engineConfig) {
		c.resolvers = append(c.resolvers, r)
	}
}

// WithModifier adds a modifier to a family at construction. Built-in
// names cannot be replaced.
func WithModifier(family Family, name string, fn ModifierFunc) Option {
	return func(c *engineConfig) {
		c.modifiers = append(c.modifiers, modifierRegistration{family: family, name: name, fn: fn})
	}
}

// WithClock sets the clock used by "now" based modifiers.
// Default: time.Now
func WithClock(clock func() time.Time) Option {
	return func(c *engineConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

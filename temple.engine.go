package temple

import (
	"context"
	"errors"
	"time"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-temple/internal"
	"go.uber.org/zap"
)

// Engine is the main entry point for the temple templating system.
// It owns the modifier catalog, the custom context registry and the
// optional template source used by forwarding. An Engine is safe for
// concurrent renders; every render gets its own state.
type Engine struct {
	registry *internal.Registry
	catalog  *internal.Catalog
	config   *engineConfig
	source   TemplateSource
	metrics  *Metrics
	logger   *zap.Logger
}

// New creates a new temple Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	if err := validateMarks(config.startMark, config.endMark); err != nil {
		return nil, err
	}
	if config.maxDepth <= 0 {
		return nil, NewInvalidDepthError(config.maxDepth)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := internal.NewRegistry(logger)
	registry.MustRegister(&resolverAdapter{resolver: templateResolver{}})

	e := &Engine{
		registry: registry,
		catalog:  internal.NewCatalog(logger),
		config:   config,
		source:   config.source,
		metrics:  config.metrics,
		logger:   logger,
	}

	for _, r := range config.resolvers {
		if err := e.Register(r); err != nil {
			return nil, err
		}
	}
	for _, m := range config.modifiers {
		if err := e.RegisterModifier(m.family, m.name, m.fn); err != nil {
			return nil, err
		}
	}

	logger.Debug(LogMsgEngineCreated,
		zap.Int(LogFieldMaxDepth, config.maxDepth),
		zap.Bool(LogFieldSource, config.source != nil))
	return e, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

func validateMarks(start, end string) error {
	if start == "" || end == "" || start == end {
		return NewInvalidMarksError(start, end)
	}
	return nil
}

// Render substitutes every {{context:path|modifiers}} tag of text.
// The only errors are a cancelled ctx and an exceeded forward depth;
// missing data and malformed tags render empty.
func (e *Engine) Render(ctx context.Context, text string, params map[string]any) (string, error) {
	started := time.Now()
	env := e.newEnv(ctx, params, e.config.startMark, e.config.endMark)
	return e.finish(env, started, internal.RenderText(env, text))
}

// RenderVariation renders text with custom tag marks.
func (e *Engine) RenderVariation(ctx context.Context, text, startMark, endMark string, params map[string]any) (string, error) {
	if err := validateMarks(startMark, endMark); err != nil {
		return "", err
	}
	started := time.Now()
	env := e.newEnv(ctx, params, startMark, endMark)
	return e.finish(env, started, internal.RenderText(env, text))
}

// RenderRepeated renders text once per row, each row serving as the
// params, and concatenates the results in row order.
func (e *Engine) RenderRepeated(ctx context.Context, text string, rows []map[string]any) (string, error) {
	started := time.Now()
	env := e.newEnv(ctx, nil, e.config.startMark, e.config.endMark)
	e.logger.Debug(LogMsgRenderStarted, zap.Int(LogFieldRows, len(rows)))
	return e.finish(env, started, internal.RenderRepeated(env, text, rows))
}

// RenderTemplate loads name from the configured source and renders it.
func (e *Engine) RenderTemplate(ctx context.Context, name string, params map[string]any) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.source == nil {
		return "", NewTemplateNotFoundError(name)
	}
	rec, err := e.source.Get(ctx, name)
	if err != nil {
		if IsNotFound(err) {
			return "", NewTemplateNotFoundError(name)
		}
		return "", err
	}
	return e.Render(ctx, rec.Body, params)
}

// ResolveTag produces the output of a single tag body.
func (e *Engine) ResolveTag(ctx context.Context, keyword, pathWithModifiers string, params map[string]any) string {
	env := e.newEnv(ctx, params, e.config.startMark, e.config.endMark)
	return internal.ResolveTag(env, keyword, pathWithModifiers)
}

// ApplyModifiers runs a modifier chain on value. Each segment is
// dispatched to the family of the value it receives.
func (e *Engine) ApplyModifiers(ctx context.Context, value any, chain []string, params map[string]any) any {
	env := e.newEnv(ctx, params, e.config.startMark, e.config.endMark)
	return e.catalog.Run(env, value, chain)
}

// Register adds a custom context resolver.
// Returns an error if the keyword is built in or already registered.
func (e *Engine) Register(r ContextResolver) error {
	if r == nil {
		return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgNilResolver)
	}
	err := e.registry.Register(&resolverAdapter{resolver: r})
	if err == nil {
		e.logger.Debug(LogMsgResolverRegistered, zap.String(LogFieldKeyword, r.Keyword()))
		return nil
	}
	var regErr *internal.RegistryError
	if errors.As(err, &regErr) && regErr.Message == internal.ErrMsgResolverAlreadyExists {
		return NewResolverExistsError(r.Keyword())
	}
	return NewRegistryError(r.Keyword(), err)
}

// MustRegister adds a custom context resolver and panics on failure.
func (e *Engine) MustRegister(r ContextResolver) {
	if err := e.Register(r); err != nil {
		panic(err)
	}
}

// RegisterModifier adds a host modifier to a family.
// Existing names, built-in or not, are kept and an error is returned.
func (e *Engine) RegisterModifier(family Family, name string, fn ModifierFunc) error {
	if fn == nil {
		return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgNilModifier).
			WithMetadata(MetaKeyKeyword, name)
	}
	op := func(env *internal.Env, value any, args internal.Args) (any, bool) {
		return fn(env.Ctx, value, args)
	}
	if !e.catalog.Register(family, name, op) {
		e.logger.Warn(LogMsgModifierRejected,
			zap.String(LogFieldFamily, family.String()),
			zap.String(LogFieldModifier, name))
		return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgModifierExists).
			WithMetadata(MetaKeyKeyword, name)
	}
	return nil
}

// HasModifier reports whether a family knows the named modifier.
func (e *Engine) HasModifier(family Family, name string) bool {
	return e.catalog.Has(family, name)
}

// Keywords returns the registered custom context keywords in sorted order.
func (e *Engine) Keywords() []string {
	return e.registry.List()
}

// Source returns the configured template source, or nil.
func (e *Engine) Source() TemplateSource {
	return e.source
}

// Forward implements internal.Host. It renders the named template from
// the source one level deeper, failing the whole render past MaxDepth.
func (e *Engine) Forward(env *internal.Env, name string, params map[string]any) string {
	depth := env.Depth + 1
	if depth > e.config.maxDepth {
		e.logger.Warn(LogMsgDepthExceeded,
			zap.String(LogFieldTemplate, name),
			zap.Int(LogFieldDepth, depth),
			zap.Int(LogFieldMaxDepth, e.config.maxDepth))
		e.metrics.observeDepthExceeded()
		env.Fail(NewDepthExceededError(name, depth, e.config.maxDepth))
		return ""
	}
	if e.source == nil {
		e.logger.Warn(LogMsgForwardNoSource, zap.String(LogFieldTemplate, name))
		return ""
	}

	rec, err := e.source.Get(env.Ctx, name)
	if err != nil {
		e.logger.Warn(LogMsgForwardMissing,
			zap.String(LogFieldTemplate, name),
			zap.Int(LogFieldDepth, depth),
			zap.Error(err))
		return ""
	}

	e.logger.Debug(LogMsgForward, zap.String(LogFieldTemplate, name), zap.Int(LogFieldDepth, depth))
	return internal.RenderText(env.Child(params), rec.Body)
}

// ResolveCustom implements internal.Host for non built-in context keywords.
func (e *Engine) ResolveCustom(env *internal.Env, keyword, pathWithModifiers string) string {
	handler, ok := e.registry.Get(keyword)
	if !ok {
		e.logger.Warn(LogMsgUnknownContext, zap.String(LogFieldKeyword, keyword))
		return ""
	}
	out, err := handler.Handle(env, pathWithModifiers)
	if err != nil {
		e.logger.Warn(LogMsgResolverFailed,
			zap.String(LogFieldKeyword, keyword),
			zap.Error(NewResolverError(keyword, err)))
		return ""
	}
	return out
}

func (e *Engine) newEnv(ctx context.Context, params map[string]any, start, end string) *internal.Env {
	if ctx == nil {
		ctx = context.Background()
	}
	ambient, _ := AmbientFrom(ctx)
	env := &internal.Env{
		Ctx:       ctx,
		Params:    params,
		Ambient:   ambient.internal(),
		StartMark: start,
		EndMark:   end,
		Formats:   e.config.formats,
		Now:       e.config.clock,
		Logger:    e.logger,
		Host:      e,
		Catalog:   e.catalog,
	}
	if e.metrics != nil {
		env.OnTag = func(keyword string) {
			e.metrics.observeTag(e.tagLabel(keyword))
		}
	}
	return env
}

// tagLabel bounds the metric label set to known keywords
func (e *Engine) tagLabel(keyword string) string {
	if internal.IsBuiltinContext(keyword) || e.registry.Has(keyword) {
		return keyword
	}
	return MetricLabelOther
}

func (e *Engine) finish(env *internal.Env, started time.Time, out string) (string, error) {
	err := env.Err()
	e.metrics.observeRender(started, err)
	if err != nil {
		e.logger.Debug(LogMsgRenderFailed, zap.Error(err))
		return "", err
	}
	e.logger.Debug(LogMsgRenderFinished,
		zap.Int(LogFieldLength, len(out)),
		zap.Duration(LogFieldDuration, time.Since(started)))
	return out, nil
}

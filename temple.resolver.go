package temple

import (
	"context"
	"strings"

	"github.com/itsatony/go-temple/internal"
)

// ContextResolver is the interface custom tag contexts must implement.
// A resolver owns one context keyword, e.g. "lang" in {{lang:title}}.
type ContextResolver interface {
	// Keyword returns the context keyword this resolver handles.
	// Built-in keywords (v, _, pass, srv, req, sess, cookie, ...) are rejected.
	Keyword() string

	// Resolve produces the tag output. A returned error is logged and the
	// tag renders empty; it never aborts the render.
	Resolve(ctx context.Context, tag *Tag, params map[string]any) (string, error)
}

// Tag is the parsed body of a custom-context tag.
type Tag struct {
	// Keyword is the context keyword before the first ':'.
	Keyword string

	// Path is the part before the first '|'.
	Path string

	// Modifiers are the raw modifier segments after the path.
	Modifiers []string

	// Raw is the full body after the context keyword.
	Raw string

	env *internal.Env
}

func newTag(env *internal.Env, keyword, pathWithModifiers string) *Tag {
	segments := strings.Split(pathWithModifiers, internal.ModifierSeparator)
	return &Tag{
		Keyword:   keyword,
		Path:      segments[0],
		Modifiers: segments[1:],
		Raw:       pathWithModifiers,
		env:       env,
	}
}

// Apply runs the tag's modifier chain on value and returns the tag output.
func (t *Tag) Apply(value any) string {
	if len(t.Modifiers) > 0 && t.env != nil {
		value = t.env.Catalog.Run(t.env, value, t.Modifiers)
	}
	return internal.Stringify(value)
}

// Forward renders the named template one level deeper with params.
func (t *Tag) Forward(name string, params map[string]any) string {
	if t.env == nil {
		return ""
	}
	return t.env.Forward(name, params)
}

// Ambient returns the request-scoped contexts of the render.
func (t *Tag) Ambient() Ambient {
	if t.env == nil {
		return Ambient{}
	}
	return ambientOf(t.env.Ambient)
}

// Depth returns the forwarding depth of the render the tag belongs to.
func (t *Tag) Depth() int {
	if t.env == nil {
		return 0
	}
	return t.env.Depth
}

// ContextResolverFunc adapts a function to ContextResolver.
type ContextResolverFunc struct {
	keyword string
	fn      func(ctx context.Context, tag *Tag, params map[string]any) (string, error)
}

// NewContextResolverFunc creates a function-based resolver.
func NewContextResolverFunc(
	keyword string,
	fn func(ctx context.Context, tag *Tag, params map[string]any) (string, error),
) *ContextResolverFunc {
	return &ContextResolverFunc{keyword: keyword, fn: fn}
}

// Keyword returns the resolver's context keyword.
func (r *ContextResolverFunc) Keyword() string {
	return r.keyword
}

// Resolve executes the resolver function.
func (r *ContextResolverFunc) Resolve(ctx context.Context, tag *Tag, params map[string]any) (string, error) {
	return r.fn(ctx, tag, params)
}

// resolverAdapter bridges ContextResolver to internal.ContextHandler
type resolverAdapter struct {
	resolver ContextResolver
}

func (a *resolverAdapter) Keyword() string {
	return a.resolver.Keyword()
}

func (a *resolverAdapter) Handle(env *internal.Env, pathWithModifiers string) (string, error) {
	tag := newTag(env, a.resolver.Keyword(), pathWithModifiers)
	return a.resolver.Resolve(env.Ctx, tag, env.Params)
}

// templateResolver implements {{tpl:module.name|mods}}: the named template
// is rendered with the current params and the modifiers apply to its output.
type templateResolver struct{}

func (templateResolver) Keyword() string {
	return ContextTemplate
}

func (templateResolver) Resolve(_ context.Context, tag *Tag, params map[string]any) (string, error) {
	return tag.Apply(tag.Forward(tag.Path, params)), nil
}

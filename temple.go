// Package temple provides a lightweight text templating engine with
// modifier pipelines.
//
// Tags are delimited by {{ and }} and name a context, a path and an
// optional chain of modifiers:
//
//	Hello {{v:user.name|trim|uppercase}}!
//
// # Basic Usage
//
//	engine := temple.MustNew()
//	out, err := engine.Render(ctx, "Hello {{v:name}}!", map[string]any{
//	    "name": "Alice",
//	})
//	// out: "Hello Alice!"
//
// # Contexts
//
// v (or no context at all) reads the params passed to Render. srv/server,
// req/request, sess/session and cookie read the ambient contexts attached
// with WithAmbient. _ starts from an empty value, pass re-emits the tag
// verbatim for a later render, and tpl renders a named template from the
// configured TemplateSource.
//
// # Modifiers
//
// Every modifier segment is "name" or "name?key=value&key2=value2". The
// value's runtime type picks one of four families (scalar, numeric,
// array, object) before each step, so a modifier that changes the type
// hands the rest of the chain to another family:
//
//	{{v:csv|split?delimiter=comma|length}}
//	{{v:missing|ifempty?default=n/a}}
//	{{v:users|fwdtemplate?name=mail.row}}
//
// Unknown modifiers are skipped. Missing data and malformed tags render
// empty; the only errors a render returns are a cancelled context and an
// exceeded forward depth (see IsDepthExceeded).
//
// # Custom Contexts
//
// Implement ContextResolver to add a context keyword:
//
//	engine.MustRegister(temple.NewContextResolverFunc("lang",
//	    func(ctx context.Context, tag *temple.Tag, params map[string]any) (string, error) {
//	        return tag.Apply(translations[tag.Path]), nil
//	    }))
//
// # Configuration
//
//	engine, _ := temple.New(
//	    temple.WithMarks("[[", "]]"),
//	    temple.WithMaxDepth(8),
//	    temple.WithSource(temple.NewMemorySourceFrom(templates)),
//	    temple.WithLogger(logger),
//	)
package temple

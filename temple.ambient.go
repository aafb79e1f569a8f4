package temple

import (
	"context"

	"github.com/itsatony/go-temple/internal"
)

// Ambient holds the read-only request-scoped contexts reachable from tags
// as srv/server, req/request, sess/session and cookie.
type Ambient struct {
	Server  map[string]any
	Request map[string]any
	Session map[string]any
	Cookie  map[string]any
}

type ambientKey struct{}

// WithAmbient attaches ambient contexts to ctx for the renders that use it.
func WithAmbient(ctx context.Context, ambient Ambient) context.Context {
	return context.WithValue(ctx, ambientKey{}, ambient)
}

// AmbientFrom returns the ambient contexts attached to ctx, if any.
func AmbientFrom(ctx context.Context) (Ambient, bool) {
	if ctx == nil {
		return Ambient{}, false
	}
	ambient, ok := ctx.Value(ambientKey{}).(Ambient)
	return ambient, ok
}

func (a Ambient) internal() internal.Ambient {
	return internal.Ambient{
		Server:  a.Server,
		Request: a.Request,
		Session: a.Session,
		Cookie:  a.Cookie,
	}
}

func ambientOf(a internal.Ambient) Ambient {
	return Ambient{
		Server:  a.Server,
		Request: a.Request,
		Session: a.Session,
		Cookie:  a.Cookie,
	}
}

package internal

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Host is implemented by the engine to plug sub-template forwarding and
// custom tag contexts into the core.
type Host interface {
	// Forward renders the named template with params at env.Depth+1
	Forward(env *Env, name string, params map[string]any) string
	// ResolveCustom handles tags whose context keyword is not built in
	ResolveCustom(env *Env, keyword, pathWithModifiers string) string
}

// Ambient holds the read-only request-scoped contexts
type Ambient struct {
	Server  map[string]any
	Request map[string]any
	Session map[string]any
	Cookie  map[string]any
}

// Env carries everything one render needs. An Env is created per render
// call and never shared between renders.
type Env struct {
	Ctx       context.Context
	Params    map[string]any
	Ambient   Ambient
	StartMark string
	EndMark   string
	Formats   Formats
	Now       func() time.Time
	Logger    *zap.Logger
	Host      Host
	Catalog   *Catalog
	Depth     int
	OnTag     func(keyword string)

	fatal *fatalState

	formatsOnce sync.Once
	effective   Formats
}

type fatalState struct {
	mu  sync.Mutex
	err error
}

// Fail records the first fatal error of the render. Later calls are ignored.
func (e *Env) Fail(err error) {
	if err == nil {
		return
	}
	if e.fatal == nil {
		e.fatal = &fatalState{}
	}
	e.fatal.mu.Lock()
	defer e.fatal.mu.Unlock()
	if e.fatal.err == nil {
		e.fatal.err = err
	}
}

// Err returns the fatal error or the context error, if any
func (e *Env) Err() error {
	if e.fatal != nil {
		e.fatal.mu.Lock()
		err := e.fatal.err
		e.fatal.mu.Unlock()
		if err != nil {
			return err
		}
	}
	if e.Ctx != nil {
		return e.Ctx.Err()
	}
	return nil
}

// Child returns an Env for a nested render one level deeper. The child
// shares the fatal error slot with its parent.
func (e *Env) Child(params map[string]any) *Env {
	if e.fatal == nil {
		e.fatal = &fatalState{}
	}
	return &Env{
		Ctx:       e.Ctx,
		Params:    params,
		Ambient:   e.Ambient,
		StartMark: e.StartMark,
		EndMark:   e.EndMark,
		Formats:   e.Formats,
		Now:       e.Now,
		Logger:    e.Logger,
		Host:      e.Host,
		Catalog:   e.Catalog,
		Depth:     e.Depth + 1,
		OnTag:     e.OnTag,
		fatal:     e.fatal,
	}
}

// Log returns the env logger, never nil
func (e *Env) Log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Clock returns the current time from the injected clock
func (e *Env) Clock() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Marks returns the active tag marks, falling back to the defaults
func (e *Env) Marks() (string, string) {
	start, end := e.StartMark, e.EndMark
	if start == "" {
		start = DefaultStartMark
	}
	if end == "" {
		end = DefaultEndMark
	}
	return start, end
}

// Forward delegates to the host, "" without one
func (e *Env) Forward(name string, params map[string]any) string {
	if e.Host == nil || name == "" {
		return StringValueEmpty
	}
	return e.Host.Forward(e, name, params)
}

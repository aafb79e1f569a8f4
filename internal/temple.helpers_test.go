package internal

import (
	"context"
	"time"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

// fakeHost records forwards and serves templates from a map
type fakeHost struct {
	templates map[string]string
	maxDepth  int
	forwards  []string
	custom    func(env *Env, keyword, pathWithModifiers string) string
}

func (h *fakeHost) Forward(env *Env, name string, params map[string]any) string {
	h.forwards = append(h.forwards, name)
	if h.maxDepth > 0 && env.Depth+1 > h.maxDepth {
		env.Fail(errDepth)
		return ""
	}
	body, ok := h.templates[name]
	if !ok {
		return ""
	}
	return RenderText(env.Child(params), body)
}

func (h *fakeHost) ResolveCustom(env *Env, keyword, pathWithModifiers string) string {
	if h.custom != nil {
		return h.custom(env, keyword, pathWithModifiers)
	}
	return ""
}

type depthError struct{}

func (depthError) Error() string { return "depth exceeded" }

var errDepth error = depthError{}

func newTestEnv(params map[string]any) *Env {
	return &Env{
		Ctx:     context.Background(),
		Params:  params,
		Now:     func() time.Time { return fixedNow },
		Catalog: NewCatalog(nil),
	}
}

func render(text string, params map[string]any) string {
	return RenderText(newTestEnv(params), text)
}

// run applies a chain through the pipeline with fresh env
func run(value any, chain ...string) any {
	env := newTestEnv(nil)
	return env.Catalog.Run(env, value, chain)
}

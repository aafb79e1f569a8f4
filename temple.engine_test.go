package temple

import (
	"context"
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Validation(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		engine, err := New()
		require.NoError(t, err)
		assert.Equal(t, DefaultStartMark, engine.config.startMark)
		assert.Equal(t, DefaultEndMark, engine.config.endMark)
		assert.Equal(t, DefaultMaxDepth, engine.config.maxDepth)
		assert.Nil(t, engine.Source())
		assert.Equal(t, []string{ContextTemplate}, engine.Keywords())
	})

	t.Run("equal marks rejected", func(t *testing.T) {
		_, err := New(WithMarks("%%", "%%"))
		require.Error(t, err)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		start, ok := customErr.GetMetadata(MetaKeyStartMark)
		assert.True(t, ok)
		assert.Equal(t, "%%", start)
	})

	t.Run("non positive depth rejected", func(t *testing.T) {
		_, err := New(WithMaxDepth(0))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgInvalidDepth)
	})

	t.Run("resolver collision at construction", func(t *testing.T) {
		r := NewContextResolverFunc("x", func(context.Context, *Tag, map[string]any) (string, error) {
			return "", nil
		})
		_, err := New(WithResolver(r), WithResolver(r))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgResolverExists)
	})

	t.Run("MustNew panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNew(WithMaxDepth(-1)) })
	})
}

func TestEngine_Register(t *testing.T) {
	engine := MustNew()
	noop := func(context.Context, *Tag, map[string]any) (string, error) { return "", nil }

	t.Run("nil resolver", func(t *testing.T) {
		require.Error(t, engine.Register(nil))
	})

	t.Run("built in keyword", func(t *testing.T) {
		err := engine.Register(NewContextResolverFunc(ContextSession, noop))
		require.Error(t, err)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		keyword, ok := customErr.GetMetadata(MetaKeyKeyword)
		assert.True(t, ok)
		assert.Equal(t, ContextSession, keyword)
	})

	t.Run("duplicate keeps the first", func(t *testing.T) {
		require.NoError(t, engine.Register(NewContextResolverFunc("dup", func(context.Context, *Tag, map[string]any) (string, error) {
			return "first", nil
		})))
		err := engine.Register(NewContextResolverFunc("dup", func(context.Context, *Tag, map[string]any) (string, error) {
			return "second", nil
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgResolverExists)

		out, err := engine.Render(context.Background(), "{{dup:x}}", nil)
		require.NoError(t, err)
		assert.Equal(t, "first", out)
	})

	t.Run("tpl is taken", func(t *testing.T) {
		assert.Error(t, engine.Register(NewContextResolverFunc(ContextTemplate, noop)))
	})

	t.Run("MustRegister panics on collision", func(t *testing.T) {
		assert.Panics(t, func() { engine.MustRegister(NewContextResolverFunc("dup", noop)) })
	})

	t.Run("nil modifier", func(t *testing.T) {
		require.Error(t, engine.RegisterModifier(FamilyScalar, "nilmod", nil))
		assert.False(t, engine.HasModifier(FamilyScalar, "nilmod"))
	})
}

func TestEngine_TagHelpers(t *testing.T) {
	source := NewMemorySourceFrom(map[string]string{"inner": "[{{v:x}}]"})
	engine := MustNew(WithSource(source))

	var seen *Tag
	var ambient Ambient
	var depth int
	engine.MustRegister(NewContextResolverFunc("probe", func(_ context.Context, tag *Tag, params map[string]any) (string, error) {
		seen = tag
		ambient = tag.Ambient()
		depth = tag.Depth()
		return tag.Forward("inner", params) + tag.Apply(tag.Path), nil
	}))

	ctx := WithAmbient(context.Background(), Ambient{Cookie: map[string]any{"c": "1"}})
	out, err := engine.Render(ctx, "{{probe:abc|uppercase|trim}}", map[string]any{"x": "y"})
	require.NoError(t, err)
	assert.Equal(t, "[y]ABC", out)

	require.NotNil(t, seen)
	assert.Equal(t, "probe", seen.Keyword)
	assert.Equal(t, "abc", seen.Path)
	assert.Equal(t, []string{"uppercase", "trim"}, seen.Modifiers)
	assert.Equal(t, "abc|uppercase|trim", seen.Raw)
	assert.Equal(t, "1", ambient.Cookie["c"])
	assert.Equal(t, 0, depth)

	var detached Tag
	assert.Equal(t, "", detached.Forward("inner", nil))
	assert.Equal(t, "x", detached.Apply("x"))
	assert.Equal(t, 0, detached.Depth())
}

func TestEngine_DepthError(t *testing.T) {
	source := NewMemorySourceFrom(map[string]string{
		"a": "{{tpl:b}}",
		"b": "{{tpl:a}}",
	})
	core, logs := observer.New(zap.WarnLevel)
	engine := MustNew(WithSource(source), WithMaxDepth(3), WithLogger(zap.New(core)))

	_, err := engine.Render(context.Background(), "{{tpl:a}}", nil)
	require.Error(t, err)

	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	depth, ok := customErr.GetMetadata(MetaKeyCurrentDepth)
	assert.True(t, ok)
	assert.Equal(t, "4", depth)
	maxDepth, ok := customErr.GetMetadata(MetaKeyMaxDepth)
	assert.True(t, ok)
	assert.Equal(t, "3", maxDepth)
	name, ok := customErr.GetMetadata(MetaKeyTemplateName)
	assert.True(t, ok)
	assert.Equal(t, "b", name)

	assert.Equal(t, 1, logs.FilterMessage(LogMsgDepthExceeded).Len())
}

func TestEngine_ForwardWarnings(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	t.Run("no source", func(t *testing.T) {
		engine := MustNew(WithLogger(logger))
		out, err := engine.Render(context.Background(), "[{{tpl:x}}]", nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", out)
		assert.Equal(t, 1, logs.FilterMessage(LogMsgForwardNoSource).Len())
	})

	t.Run("missing template", func(t *testing.T) {
		engine := MustNew(WithLogger(logger), WithSource(NewMemorySource()))
		out, err := engine.Render(context.Background(), "[{{_:|fwdt?name=gone}}]", nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", out)
		assert.Equal(t, 1, logs.FilterMessage(LogMsgForwardMissing).Len())
	})

	t.Run("unknown context", func(t *testing.T) {
		engine := MustNew(WithLogger(logger))
		_, err := engine.Render(context.Background(), "{{nope:x}}", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage(LogMsgUnknownContext).Len())
	})
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	source := NewMemorySourceFrom(map[string]string{"loop": "{{tpl:loop}}"})
	engine := MustNew(WithMetrics(metrics), WithSource(source), WithMaxDepth(2))
	ctx := context.Background()

	_, err = engine.Render(ctx, "{{v:a}} {{b}} {{sess:c}} {{whatever:d}}", nil)
	require.NoError(t, err)
	_, err = engine.Render(ctx, "{{tpl:loop}}", nil)
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.tags.WithLabelValues(ContextValue)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.tags.WithLabelValues(ContextSess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.tags.WithLabelValues(MetricLabelOther)))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.tags.WithLabelValues(ContextTemplate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.renders.WithLabelValues(MetricResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.renders.WithLabelValues(MetricResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.depthExceeded))

	_, err = NewMetrics(reg)
	assert.Error(t, err)

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.observeTag(ContextValue)
		nilMetrics.observeDepthExceeded()
	})
}

package temple

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource counts Get calls on the wrapped source
type countingSource struct {
	TemplateSource
	gets int
}

func (s *countingSource) Get(ctx context.Context, name string) (*SourceRecord, error) {
	s.gets++
	return s.TemplateSource.Get(ctx, name)
}

func newTestCache(config CacheConfig) (*CachedSource, *countingSource, *time.Time) {
	inner := &countingSource{TemplateSource: NewMemorySource()}
	cached := NewCachedSource(inner, config)
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }
	return cached, inner, &now
}

func TestCachedSource_Get(t *testing.T) {
	cached, inner, now := newTestCache(CacheConfig{TTL: time.Minute, MaxEntries: 10, NegativeCacheTTL: time.Second})
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, &SourceRecord{Name: "a", Body: "A"}))

	t.Run("hit after first get", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			rec, err := cached.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "A", rec.Body)
		}
		assert.Equal(t, 1, inner.gets)
		assert.Equal(t, 1, cached.Stats().ValidEntries)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		rec, err := cached.Get(ctx, "a")
		require.NoError(t, err)
		rec.Body = "mutated"
		again, err := cached.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "A", again.Body)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		*now = now.Add(2 * time.Minute)
		_, err := cached.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 2, inner.gets)
	})

	t.Run("negative caching", func(t *testing.T) {
		before := inner.gets
		_, err := cached.Get(ctx, "missing")
		assert.True(t, IsNotFound(err))
		_, err = cached.Get(ctx, "missing")
		assert.True(t, IsNotFound(err))
		assert.Equal(t, before+1, inner.gets)
		assert.Equal(t, 1, cached.Stats().NegativeEntries)

		*now = now.Add(2 * time.Second)
		_, _ = cached.Get(ctx, "missing")
		assert.Equal(t, before+2, inner.gets)
	})
}

func TestCachedSource_Invalidation(t *testing.T) {
	cached, inner, _ := newTestCache(DefaultCacheConfig())
	ctx := context.Background()

	require.NoError(t, cached.Save(ctx, &SourceRecord{Name: "a", Body: "v1"}))
	rec, err := cached.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "v1", rec.Body)

	require.NoError(t, cached.Save(ctx, &SourceRecord{Name: "a", Body: "v2"}))
	rec, err = cached.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "v2", rec.Body)

	require.NoError(t, cached.Delete(ctx, "a"))
	_, err = cached.Get(ctx, "a")
	assert.True(t, IsNotFound(err))

	require.NoError(t, inner.Save(ctx, &SourceRecord{Name: "b", Body: "B"}))
	_, _ = cached.Get(ctx, "b")
	cached.InvalidateAll()
	assert.Equal(t, 0, cached.Stats().Entries)

	names, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestCachedSource_Eviction(t *testing.T) {
	cached, inner, now := newTestCache(CacheConfig{TTL: time.Hour, MaxEntries: 2})
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, inner.Save(ctx, &SourceRecord{Name: name, Body: name}))
	}

	_, _ = cached.Get(ctx, "a")
	*now = now.Add(time.Second)
	_, _ = cached.Get(ctx, "b")
	*now = now.Add(time.Second)
	_, _ = cached.Get(ctx, "a")
	*now = now.Add(time.Second)
	_, _ = cached.Get(ctx, "c")

	assert.Equal(t, 2, cached.Stats().Entries)
	gets := inner.gets
	_, _ = cached.Get(ctx, "a")
	assert.Equal(t, gets, inner.gets)
	_, _ = cached.Get(ctx, "b")
	assert.Equal(t, gets+1, inner.gets)
}

func TestCachedSource_Close(t *testing.T) {
	cached, _, _ := newTestCache(DefaultCacheConfig())
	require.NoError(t, cached.Close())

	_, err := cached.Get(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgSourceClosed)
}

func TestCachedSource_WithEngine(t *testing.T) {
	inner := &countingSource{TemplateSource: NewMemorySourceFrom(map[string]string{"row": "<{{v:value}}>"})}
	engine := MustNew(WithSource(NewCachedSource(inner, DefaultCacheConfig())))

	out, err := engine.Render(context.Background(), "{{v:list|split?delimiter=comma|fwdt?name=row}}", map[string]any{"list": "a,b,c"})
	require.NoError(t, err)
	assert.Equal(t, "<a><b><c>", out)
	assert.Equal(t, 1, inner.gets)
}

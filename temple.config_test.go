package temple

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
marks:
  start: "[["
  end: "]]"
max_depth: 8
formats:
  date: "2006-01-02"
  timezoneOffset: 60
source:
  driver: memory
cache:
  ttl: 2m
  max_entries: 50
  negative_ttl: 10s
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, "[[", cfg.Marks.Start)
	assert.Equal(t, "]]", cfg.Marks.End)
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Equal(t, "2006-01-02", cfg.Formats.Date)
	assert.Equal(t, 60, cfg.Formats.OffsetMinutes)
	assert.Equal(t, SourceDriverMemory, cfg.Source.Driver)
	require.NotNil(t, cfg.Cache)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 50, cfg.Cache.MaxEntries)
	assert.Equal(t, 10*time.Second, cfg.Cache.NegativeCacheTTL)

	_, err = ParseConfig([]byte("marks: [unclosed"))
	assert.Error(t, err)
}

func TestConfig_Engine(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
marks: {start: "<%", end: "%>"}
max_depth: 2
formats: {date: "2006-01-02"}
`))
	require.NoError(t, err)

	engine, err := New(cfg.Options()...)
	require.NoError(t, err)
	assert.Equal(t, "<%", engine.config.startMark)
	assert.Equal(t, 2, engine.config.maxDepth)
	assert.Equal(t, "2006-01-02", engine.config.formats.Date)
	assert.Equal(t, DefaultFormats().Time, engine.config.formats.Time)

	out, err := engine.Render(context.Background(), "<%v:at|date%> {{v:at}}", map[string]any{"at": "2024-03-15 10:30:00"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 {{v:at}}", out)

	assert.Empty(t, (&Config{}).Options())
}

func TestConfig_OpenSource(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	t.Run("no driver", func(t *testing.T) {
		source, err := (&Config{}).OpenSource(logger)
		require.NoError(t, err)
		assert.Nil(t, source)
	})

	t.Run("plain", func(t *testing.T) {
		cfg := &Config{Source: SourceConfig{Driver: SourceDriverFilesystem, DSN: t.TempDir()}}
		source, err := cfg.OpenSource(logger)
		require.NoError(t, err)
		assert.IsType(t, &FilesystemSource{}, source)
	})

	t.Run("cached", func(t *testing.T) {
		cache := DefaultCacheConfig()
		cfg := &Config{Source: SourceConfig{Driver: SourceDriverMemory}, Cache: &cache}
		source, err := cfg.OpenSource(logger)
		require.NoError(t, err)
		assert.IsType(t, &CachedSource{}, source)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := (&Config{Source: SourceConfig{Driver: "tape"}}).OpenSource(nil)
		assert.Error(t, err)
	})

	assert.Equal(t, 2, logs.FilterMessage(LogMsgSourceOpened).Len())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "temple.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_depth: 5\n"), 0o644))
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.MaxDepth)
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "absent.yaml")
		_, err := LoadConfig(path)
		require.Error(t, err)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		got, ok := customErr.GetMetadata(MetaKeyConfigPath)
		assert.True(t, ok)
		assert.Equal(t, path, got)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_depth: [1"), 0o644))
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgConfigParse)
	})
}

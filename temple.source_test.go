package temple

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runSourceContract exercises the behavior every TemplateSource shares
func runSourceContract(t *testing.T, source TemplateSource) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing template", func(t *testing.T) {
		_, err := source.Get(ctx, "absent")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("save and get", func(t *testing.T) {
		rec := &SourceRecord{Name: "mail.greeting", Body: "Hi {{v:name}}"}
		require.NoError(t, source.Save(ctx, rec))
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.UpdatedAt.IsZero())

		got, err := source.Get(ctx, "mail.greeting")
		require.NoError(t, err)
		assert.Equal(t, "Hi {{v:name}}", got.Body)
		assert.Equal(t, "mail.greeting", got.Name)
		assert.Equal(t, rec.ID, got.ID)
	})

	t.Run("save replaces and keeps the id", func(t *testing.T) {
		first := &SourceRecord{Name: "footer", Body: "v1"}
		require.NoError(t, source.Save(ctx, first))
		second := &SourceRecord{Name: "footer", Body: "v2"}
		require.NoError(t, source.Save(ctx, second))
		assert.Equal(t, first.ID, second.ID)

		got, err := source.Get(ctx, "footer")
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Body)
	})

	t.Run("invalid names rejected", func(t *testing.T) {
		for _, name := range []string{"", "a..b", "../x", "a/b", ".hidden"} {
			assert.Error(t, source.Save(ctx, &SourceRecord{Name: name, Body: "x"}), name)
		}
	})

	t.Run("list is sorted", func(t *testing.T) {
		names, err := source.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"footer", "mail.greeting"}, names)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, source.Delete(ctx, "footer"))
		_, err := source.Get(ctx, "footer")
		assert.True(t, IsNotFound(err))
		assert.True(t, IsNotFound(source.Delete(ctx, "footer")))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := source.Get(cancelled, "mail.greeting")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("closed", func(t *testing.T) {
		require.NoError(t, source.Close())
		_, err := source.Get(ctx, "mail.greeting")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgSourceClosed)
	})
}

func TestMemorySource(t *testing.T) {
	runSourceContract(t, NewMemorySource())
}

func TestMemorySource_From(t *testing.T) {
	source := NewMemorySourceFrom(map[string]string{"a": "A", "b.c": "BC"})
	names, err := source.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b.c"}, names)
}

func TestFilesystemSource(t *testing.T) {
	root := t.TempDir()
	source, err := NewFilesystemSource(root)
	require.NoError(t, err)
	assert.Equal(t, root, source.Root())

	t.Run("dotted names map to directories", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "pages"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "pages", "home.tpl"), []byte("home"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("skip"), 0o644))

		got, err := source.Get(context.Background(), "pages.home")
		require.NoError(t, err)
		assert.Equal(t, "home", got.Body)
		require.NoError(t, source.Delete(context.Background(), "pages.home"))
	})

	t.Run("save writes the file", func(t *testing.T) {
		require.NoError(t, source.Save(context.Background(), &SourceRecord{Name: "x.y", Body: "xy"}))
		data, err := os.ReadFile(filepath.Join(root, "x", "y.tpl"))
		require.NoError(t, err)
		assert.Equal(t, "xy", string(data))
		require.NoError(t, source.Delete(context.Background(), "x.y"))
	})

	runSourceContract(t, source)

	_, err = NewFilesystemSource("")
	assert.Error(t, err)
}

func TestSQLiteSource(t *testing.T) {
	source, err := NewSQLiteSource(":memory:")
	require.NoError(t, err)
	runSourceContract(t, source)

	_, err = NewSQLSource(SQLConfig{Driver: sqliteDriverName})
	assert.Error(t, err)
}

func TestSourceDrivers(t *testing.T) {
	assert.Equal(t, []string{
		SourceDriverFilesystem,
		SourceDriverMemory,
		SourceDriverPostgres,
		SourceDriverRedis,
		SourceDriverSQLite,
	}, ListSourceDrivers())

	t.Run("open memory", func(t *testing.T) {
		source, err := OpenSource(SourceDriverMemory, "")
		require.NoError(t, err)
		assert.IsType(t, &MemorySource{}, source)
	})

	t.Run("open filesystem", func(t *testing.T) {
		source, err := OpenSource(SourceDriverFilesystem, t.TempDir())
		require.NoError(t, err)
		assert.IsType(t, &FilesystemSource{}, source)
	})

	t.Run("open sqlite", func(t *testing.T) {
		source, err := OpenSource(SourceDriverSQLite, ":memory:")
		require.NoError(t, err)
		assert.IsType(t, &SQLSource{}, source)
		require.NoError(t, source.Close())
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenSource("nosql", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgSourceDriverNotFound)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		assert.Panics(t, func() { RegisterSourceDriver(SourceDriverMemory, &MemorySourceDriver{}) })
		assert.Panics(t, func() { RegisterSourceDriver("nil", nil) })
	})
}

func TestSourceError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewSourceError(ErrMsgSourceWriteFailed, "a.b", cause)

	assert.Equal(t, ErrMsgSourceWriteFailed+": a.b: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsNotFound(err))
	assert.True(t, IsNotFound(NewSourceNotFoundError("x")))
	assert.False(t, IsNotFound(nil))
}

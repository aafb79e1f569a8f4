//go:build integration

package temple

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer starts an ephemeral PostgreSQL and returns its DSN.
func setupPostgresContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("temple_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")
	return dsn
}

func TestPostgresSource_E2E(t *testing.T) {
	dsn := setupPostgresContainer(t)

	t.Run("contract", func(t *testing.T) {
		source, err := OpenSource(SourceDriverPostgres, dsn)
		require.NoError(t, err)
		runSourceContract(t, source)
	})

	t.Run("custom table and concurrent saves", func(t *testing.T) {
		source, err := NewSQLSource(SQLConfig{
			Driver:       SQLDriverPostgres,
			DSN:          dsn,
			Table:        "custom_templates",
			QueryTimeout: 10 * time.Second,
		})
		require.NoError(t, err)
		defer source.Close()

		ctx := context.Background()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, source.Save(ctx, &SourceRecord{
					Name: fmt.Sprintf("row.n%02d", i),
					Body: fmt.Sprintf("{{v:x}}-%d", i),
				}))
			}(i)
		}
		wg.Wait()

		names, err := source.List(ctx)
		require.NoError(t, err)
		assert.Len(t, names, 10)
		assert.Equal(t, "row.n00", names[0])

		engine := MustNew(WithSource(source))
		out, err := engine.RenderTemplate(ctx, "row.n07", map[string]any{"x": "a"})
		require.NoError(t, err)
		assert.Equal(t, "a-7", out)
	})

	t.Run("from existing db", func(t *testing.T) {
		db, err := sql.Open(SQLDriverPostgres, dsn)
		require.NoError(t, err)
		defer db.Close()

		source, err := NewSQLSourceFromDB(context.Background(), db, SQLDriverPostgres)
		require.NoError(t, err)

		ctx := context.Background()
		rec := &SourceRecord{Name: "shared", Body: "x"}
		require.NoError(t, source.Save(ctx, rec))
		got, err := source.Get(ctx, "shared")
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.WithinDuration(t, rec.UpdatedAt, got.UpdatedAt, time.Millisecond)
	})
}

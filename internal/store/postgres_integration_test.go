//go:build integration

package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sarcascoder/Netflix-clone/internal/domain"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "catalog",
			"POSTGRES_PASSWORD": "catalog",
			"POSTGRES_DB":       "catalog",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://catalog:catalog@%s:%s/catalog?sslmode=disable", host, port.Port())
	db, err := Connect(ctx, dsn, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPostgresStores(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	catalog, err := NewPostgresCatalogStore(db, testLogger())
	require.NoError(t, err)
	watchlist, err := NewPostgresWatchlistStore(db, testLogger())
	require.NoError(t, err)

	empty, err := catalog.ListTitles(ctx, domain.TitleFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	n, err := SeedCatalog(ctx, catalog, testLogger())
	require.NoError(t, err)
	require.Equal(t, 5, n)

	t.Run("filters", func(t *testing.T) {
		got, err := catalog.ListTitles(ctx, domain.TitleFilter{Genre: ptr("Sci-Fi"), Search: "stellar"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Interstellar"}, titleNames(got))

		got, err = catalog.ListTitles(ctx, domain.TitleFilter{Type: ptr(domain.TypeSeries), Featured: ptr(false)})
		require.NoError(t, err)
		assert.Equal(t, []string{"The Crown", "The Office"}, titleNames(got))
	})

	t.Run("get and exists", func(t *testing.T) {
		all, err := catalog.ListTitles(ctx, domain.TitleFilter{})
		require.NoError(t, err)
		first := all[0]

		got, err := catalog.GetTitle(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Title, got.Title)

		_, err = catalog.GetTitle(ctx, first.ID+1000)
		assert.ErrorIs(t, err, ErrTitleNotFound)

		ok, err := catalog.TitleExists(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("create then get returns same title", func(t *testing.T) {
		want := fullTitle()
		created, err := catalog.CreateTitle(ctx, want)
		require.NoError(t, err)

		first, err := catalog.GetTitle(ctx, created.ID)
		require.NoError(t, err)
		second, err := catalog.GetTitle(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		want.ID = created.ID
		assert.Equal(t, want, *created)
		assert.Equal(t, want, *first)
		assert.Equal(t, want, *second)
		require.NoError(t, catalog.DeleteTitle(ctx, created.ID))
	})

	t.Run("watchlist idempotence and race", func(t *testing.T) {
		all, err := catalog.ListTitles(ctx, domain.TitleFilter{})
		require.NoError(t, err)
		titleID := all[1].ID

		var wg sync.WaitGroup
		entries := make([]*domain.WatchlistEntry, 16)
		for i := range entries {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				entries[i], _ = watchlist.Add(ctx, 42, titleID)
			}(i)
		}
		wg.Wait()
		for _, e := range entries {
			require.NotNil(t, e)
			assert.Equal(t, entries[0].ID, e.ID)
		}

		got, err := watchlist.ListForViewer(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, []string{"The Crown"}, titleNames(got))

		require.NoError(t, watchlist.Remove(ctx, 42, titleID))
		require.NoError(t, watchlist.Remove(ctx, 42, titleID))
		got, err = watchlist.ListForViewer(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("deleted title is skipped", func(t *testing.T) {
		created, err := catalog.CreateTitle(ctx, domain.Title{Title: "Short Lived", Genre: "Drama", Type: domain.TypeMovie})
		require.NoError(t, err)
		_, err = watchlist.Add(ctx, 43, created.ID)
		require.NoError(t, err)
		require.NoError(t, catalog.DeleteTitle(ctx, created.ID))

		got, err := watchlist.ListForViewer(ctx, 43)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

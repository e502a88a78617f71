package clients

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/sarcascoder/Netflix-clone/internal/api"
	lookup "github.com/sarcascoder/Netflix-clone/internal/grpc"
	"github.com/sarcascoder/Netflix-clone/internal/store"
	"github.com/sarcascoder/Netflix-clone/pkg/auth"
)

func newLookupClient(t *testing.T) *CatalogLookupClient {
	t.Helper()
	logger := testLogger()

	catalog := store.NewMemoryCatalogStore(logger)
	_, err := store.SeedCatalog(context.Background(), catalog, logger)
	require.NoError(t, err)

	listener := bufconn.Listen(1 << 20)
	srv := lookup.NewGRPCServer(catalog, logger)
	go func() { _ = srv.Serve(listener) }()
	t.Cleanup(srv.Stop)

	client, err := NewCatalogLookupClient("passthrough:///bufnet", logger,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCatalogLookupClient(t *testing.T) {
	client := newLookupClient(t)
	ctx := context.Background()

	exists, err := client.TitleExists(ctx, 2)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.TitleExists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = client.TitleExists(ctx, 0)
	assert.Error(t, err)

	title, err := client.GetTitleInfo(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, title)
	assert.Equal(t, "Interstellar", title.Title)

	missing, err := client.GetTitleInfo(ctx, 999)
	assert.Nil(t, missing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))

	_, err = client.GetTitleInfo(ctx, -1)
	require.Error(t, err)
	assert.False(t, IsNotFound(err), "invalid id is not a missing title")
}

func TestWatchlistAddUsesRemoteLookup(t *testing.T) {
	remote := newLookupClient(t)
	logger := testLogger()

	// the local catalog is empty; only the remote lookup knows the titles
	local := store.NewMemoryCatalogStore(logger)
	tokens, err := auth.NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	handler := api.NewCatalogHandler(local, store.NewMemoryWatchlistStore(local, logger), remote, auth.NewBearerAuthenticator(tokens, logger), logger)
	server := httptest.NewServer(api.NewRouter(handler, logger))
	t.Cleanup(server.Close)

	token, err := tokens.Generate(3)
	require.NoError(t, err)
	c := NewClient(server.URL, WithLogger(logger), WithToken(token))

	entry, err := c.AddToWatchlist(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), entry.TitleID)

	_, err = c.AddToWatchlist(context.Background(), 999)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarcascoder/Netflix-clone/internal/contract"
	"github.com/sarcascoder/Netflix-clone/internal/domain"
	"github.com/sarcascoder/Netflix-clone/internal/store"
	"github.com/sarcascoder/Netflix-clone/pkg/auth"
)

const testSecret = "handler-test-secret-key-with-enough-bytes"

type testEnv struct {
	server    *httptest.Server
	tokens    auth.TokenManager
	catalog   *store.MemoryCatalogStore
	watchlist *countingWatchlist
}

// countingWatchlist records store access so tests can assert it never happened.
type countingWatchlist struct {
	store.WatchlistStore
	calls atomic.Int64
	err   error
}

func (c *countingWatchlist) ListForViewer(ctx context.Context, viewerID int64) ([]*domain.Title, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.WatchlistStore.ListForViewer(ctx, viewerID)
}

func (c *countingWatchlist) Add(ctx context.Context, viewerID, titleID int64) (*domain.WatchlistEntry, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.WatchlistStore.Add(ctx, viewerID, titleID)
}

func (c *countingWatchlist) Remove(ctx context.Context, viewerID, titleID int64) error {
	c.calls.Add(1)
	if c.err != nil {
		return c.err
	}
	return c.WatchlistStore.Remove(ctx, viewerID, titleID)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog := store.NewMemoryCatalogStore(logger)
	_, err := store.SeedCatalog(context.Background(), catalog, logger)
	require.NoError(t, err)
	watchlist := &countingWatchlist{WatchlistStore: store.NewMemoryWatchlistStore(catalog, logger)}

	tokens, err := auth.NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	handler := NewCatalogHandler(catalog, watchlist, nil, auth.NewBearerAuthenticator(tokens, logger), logger)
	server := httptest.NewServer(NewRouter(handler, logger))
	t.Cleanup(server.Close)

	return &testEnv{server: server, tokens: tokens, catalog: catalog, watchlist: watchlist}
}

func (e *testEnv) token(t *testing.T, viewerID int64) string {
	t.Helper()
	tok, err := e.tokens.Generate(viewerID)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func names(titles []domain.Title) []string {
	out := make([]string, len(titles))
	for i, title := range titles {
		out[i] = title.Title
	}
	return out
}

func TestEndToEndWatchlistScenario(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/movies?genre=Drama", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drama := decode[[]domain.Title](t, resp)
	require.Len(t, drama, 1)
	assert.Equal(t, "The Crown", drama[0].Title)
	dramaID := drama[0].ID

	tok := env.token(t, 11)
	resp = env.do(t, http.MethodPost, "/api/mylist", tok, `{"titleId":`+strconv.FormatInt(dramaID, 10)+`}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entry := decode[domain.WatchlistEntry](t, resp)
	assert.Equal(t, int64(11), entry.ViewerID)
	assert.Equal(t, dramaID, entry.TitleID)

	resp = env.do(t, http.MethodGet, "/api/mylist", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"The Crown"}, names(decode[[]domain.Title](t, resp)))

	resp = env.do(t, http.MethodDelete, contract.RemoveFromWatchlist.URL(map[string]string{"titleId": strconv.FormatInt(dramaID, 10)}), tok, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/mylist", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]domain.Title](t, resp))
}

func TestListTitlesQuery(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		query  string
		status int
		want   []string
		field  string
	}{
		{"", http.StatusOK, []string{"Stranger Things", "The Crown", "Inception", "The Office", "Interstellar"}, ""},
		{"?featured=true", http.StatusOK, []string{"Stranger Things"}, ""},
		{"?type=movie&search=IN", http.StatusOK, []string{"Inception", "Interstellar"}, ""},
		{"?genre=Sci-Fi&search=stranger", http.StatusOK, []string{"Stranger Things"}, ""},
		{"?genre=Western", http.StatusOK, []string{}, ""},
		{"?featured=sometimes", http.StatusBadRequest, nil, "featured"},
		{"?type=podcast", http.StatusBadRequest, nil, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, "/api/movies"+tt.query, "", "")
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.want, names(decode[[]domain.Title](t, resp)))
				return
			}
			body := decode[contract.ErrorBody](t, resp)
			assert.Equal(t, tt.field, body.Field)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestGetTitle(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/movies/3", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Inception", decode[domain.Title](t, resp).Title)

	for _, path := range []string{"/api/movies/999", "/api/movies/abc", "/api/movies/99999999999999999999"} {
		resp = env.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.NotEmpty(t, decode[contract.ErrorBody](t, resp).Message)
	}
}

func TestAuthRequiredOperationsRejectAnonymous(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct{ method, path, body string }{
		{http.MethodGet, "/api/mylist", ""},
		{http.MethodPost, "/api/mylist", `{"titleId":1}`},
		{http.MethodDelete, "/api/mylist/1", ""},
	}
	for _, c := range cases {
		for _, tok := range []string{"", "not-a-valid-token"} {
			resp := env.do(t, c.method, c.path, tok, c.body)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, c.method+" "+c.path)
		}
	}
	assert.Zero(t, env.watchlist.calls.Load())
}

func TestAddToWatchlistValidation(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, 4)

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"missing titleId", `{}`, http.StatusBadRequest, "titleId"},
		{"zero titleId", `{"titleId":0}`, http.StatusBadRequest, "titleId"},
		{"string titleId", `{"titleId":"1"}`, http.StatusBadRequest, "titleId"},
		{"malformed json", `{"titleId":`, http.StatusBadRequest, ""},
		{"unknown title", `{"titleId":404}`, http.StatusNotFound, "titleId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/mylist", tok, tt.body)
			require.Equal(t, tt.status, resp.StatusCode)
			body := decode[contract.ErrorBody](t, resp)
			assert.Equal(t, tt.field, body.Field)
		})
	}
	assert.Zero(t, env.watchlist.calls.Load())
}

func TestAddToWatchlistIdempotent(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, 8)

	first := env.do(t, http.MethodPost, "/api/mylist", tok, `{"titleId":2}`)
	require.Equal(t, http.StatusCreated, first.StatusCode)
	second := env.do(t, http.MethodPost, "/api/mylist", tok, `{"titleId":2}`)
	require.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, decode[domain.WatchlistEntry](t, first).ID, decode[domain.WatchlistEntry](t, second).ID)

	resp := env.do(t, http.MethodGet, "/api/mylist", tok, "")
	assert.Len(t, decode[[]domain.Title](t, resp), 1)
}

func TestRemoveFromWatchlist(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, 8)

	resp := env.do(t, http.MethodDelete, "/api/mylist/5", tok, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/mylist/five", tok, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStoreFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.watchlist.err = errors.New("connection refused: secret-host:5432")

	resp := env.do(t, http.MethodGet, "/api/mylist", env.token(t, 1), "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[contract.ErrorBody](t, resp)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestMiddleware(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/movies", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "upstream-id")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "upstream-id", resp.Header.Get("X-Request-ID"))

	resp = env.do(t, http.MethodOptions, "/api/mylist", "", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		kind contract.ErrorKind
	}{
		{errUnauthorized, contract.KindUnauthorized},
		{&contract.SchemaViolation{Field: "titleId"}, contract.KindInvalidInput},
		{store.ErrTitleNotFound, contract.KindNotFound},
		{errors.Join(errors.New("wrapped"), store.ErrUnknownTitle), contract.KindNotFound},
		{errors.New("boom"), contract.KindStoreFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, classify(tt.err).kind, tt.err.Error())
	}
}

// internal/clients/catalog_client.go
package clients

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sarcascoder/Netflix-clone/internal/contract"
	"github.com/sarcascoder/Netflix-clone/internal/domain"
	"github.com/sarcascoder/Netflix-clone/internal/logging"
)

const (
	maxResponseBytes = 4 << 20
	anonymousViewer  = "anonymous"
)

// Client is the typed data-access layer over the catalog HTTP contract. Reads go through
// a QueryCache; successful mutations invalidate the read families they declare.
type Client struct {
	baseURL    string
	httpClient *http.Client
	backend    CacheBackend
	cache      *QueryCache
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the initial bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the logger used by the client and its cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithCacheBackend swaps the in-memory cache backend, e.g. for a RedisBackend.
func WithCacheBackend(backend CacheBackend) Option {
	return func(c *Client) { c.backend = backend }
}

// NewClient creates a client for the catalog API at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = NewQueryCache(c.backend, c.logger)
	return c
}

// Cache exposes the query cache so views can Subscribe to a family.
func (c *Client) Cache() *QueryCache { return c.cache }

// SetToken changes the bearer credential. The watchlist belongs to the previous
// viewer, so its family is invalidated when the token actually changes.
func (c *Client) SetToken(ctx context.Context, token string) {
	c.mu.Lock()
	changed := c.token != token
	c.token = token
	c.mu.Unlock()

	if changed {
		c.cache.Invalidate(ctx, contract.ListWatchlist.Name)
	}
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// viewerParams identifies whose data a per-viewer read returns. The token is hashed so
// a shared cache backend never holds credentials.
func viewerParams(token string) map[string]string {
	if token == "" {
		return map[string]string{"viewer": anonymousViewer}
	}
	sum := sha256.Sum256([]byte(token))
	return map[string]string{"viewer": hex.EncodeToString(sum[:16])}
}

// ListTitles fetches /api/movies with the given filter.
func (c *Client) ListTitles(ctx context.Context, filter domain.TitleFilter) ([]domain.Title, error) {
	op := contract.ListTitles
	query, err := contract.Validate(filter.Query())
	if err != nil {
		return nil, localInvalid(op, err)
	}

	values := url.Values{}
	setIf := func(name, v string) {
		if v != "" {
			values.Set(name, v)
		}
	}
	setIf("search", query.Search)
	setIf("genre", query.Genre)
	setIf("featured", query.Featured)
	setIf("type", query.Type)

	data, err := c.cache.Read(ctx, op.Name, query, func(ctx context.Context) ([]byte, error) {
		return c.fetchList(ctx, op, c.currentToken(), values)
	})
	if err != nil {
		return nil, err
	}
	return contract.DecodeList[domain.Title](data)
}

// GetTitle fetches a single title. A missing title is an *APIError with Kind NotFound.
func (c *Client) GetTitle(ctx context.Context, id int64) (*domain.Title, error) {
	op := contract.GetTitle
	params := map[string]string{"id": strconv.FormatInt(id, 10)}

	data, err := c.cache.Read(ctx, op.Name, params, func(ctx context.Context) ([]byte, error) {
		body, err := c.call(ctx, op, c.currentToken(), params, nil, nil, http.StatusOK)
		if err != nil {
			return nil, err
		}
		if _, err := contract.Decode[domain.Title](body); err != nil {
			return nil, c.badResponse(ctx, op, err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	title, err := contract.Decode[domain.Title](data)
	if err != nil {
		return nil, err
	}
	return &title, nil
}

// ListWatchlist fetches the signed-in viewer's list. An anonymous caller gets an error
// for which IsUnauthorized is true, never an empty list. Entries are cached per viewer,
// and the request is sent with the same token the cache key was built from.
func (c *Client) ListWatchlist(ctx context.Context) ([]domain.Title, error) {
	op := contract.ListWatchlist
	token := c.currentToken()
	data, err := c.cache.Read(ctx, op.Name, viewerParams(token), func(ctx context.Context) ([]byte, error) {
		return c.fetchList(ctx, op, token, nil)
	})
	if err != nil {
		return nil, err
	}
	return contract.DecodeList[domain.Title](data)
}

// AddToWatchlist adds a title and, on success, invalidates cached watchlist reads.
func (c *Client) AddToWatchlist(ctx context.Context, titleID int64) (*domain.WatchlistEntry, error) {
	op := contract.AddToWatchlist
	req, err := contract.Validate(domain.AddToWatchlistRequest{TitleID: &titleID})
	if err != nil {
		return nil, localInvalid(op, err)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", op.Name, err)
	}

	body, err := c.mutate(ctx, op, nil, payload, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	entry, err := contract.Decode[domain.WatchlistEntry](body)
	if err != nil {
		return nil, c.badResponse(ctx, op, err)
	}
	return &entry, nil
}

// RemoveFromWatchlist removes a title and, on success, invalidates cached watchlist reads.
func (c *Client) RemoveFromWatchlist(ctx context.Context, titleID int64) error {
	op := contract.RemoveFromWatchlist
	_, err := c.mutate(ctx, op, map[string]string{"titleId": strconv.FormatInt(titleID, 10)}, nil, http.StatusNoContent)
	return err
}

// mutate performs a mutation and invalidates op.Invalidates unless the server gave a
// definite failure. A transport error leaves the outcome unknown, so the cache is
// invalidated then too and the next read asks the server.
func (c *Client) mutate(ctx context.Context, op contract.Operation, params map[string]string, payload []byte, want int) ([]byte, error) {
	body, err := c.call(ctx, op, c.currentToken(), params, nil, payload, want)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return nil, err
	}
	for _, family := range op.Invalidates {
		c.cache.Invalidate(context.WithoutCancel(ctx), family)
	}
	return body, err
}

func (c *Client) fetchList(ctx context.Context, op contract.Operation, token string, query url.Values) ([]byte, error) {
	body, err := c.call(ctx, op, token, nil, query, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if _, err := contract.DecodeList[domain.Title](body); err != nil {
		return nil, c.badResponse(ctx, op, err)
	}
	return body, nil
}

// call sends one contract request and returns the body of a `want` response. Any other
// declared or undeclared status becomes an *APIError.
func (c *Client) call(ctx context.Context, op contract.Operation, token string, params map[string]string, query url.Values, payload []byte, want int) ([]byte, error) {
	target := c.baseURL + op.URL(params)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, op.Method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op.Name, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Catalog request failed", slog.String("operation", op.Name), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s request: %w", op.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op.Name, err)
	}
	if resp.StatusCode == want {
		return body, nil
	}

	apiErr := &APIError{
		Operation: op.Name,
		Kind:      contract.KindForStatus(resp.StatusCode),
		Status:    resp.StatusCode,
		Message:   http.StatusText(resp.StatusCode),
	}
	if eb, err := contract.Decode[contract.ErrorBody](body); err == nil {
		apiErr.Message = eb.Message
		apiErr.Field = eb.Field
	}
	if !op.Declares(resp.StatusCode) {
		c.logger.WarnContext(ctx, "Undeclared response status", slog.String("operation", op.Name), slog.Int("status", resp.StatusCode))
	}
	return nil, apiErr
}

func (c *Client) badResponse(ctx context.Context, op contract.Operation, err error) error {
	c.logger.ErrorContext(ctx, "Response failed contract validation", slog.String("operation", op.Name), slog.String("error", err.Error()))
	return fmt.Errorf("%s response: %w", op.Name, err)
}

func localInvalid(op contract.Operation, err error) *APIError {
	apiErr := &APIError{Operation: op.Name, Kind: contract.KindInvalidInput, Message: err.Error()}
	if v, ok := err.(*contract.SchemaViolation); ok {
		apiErr.Field = v.Field
		apiErr.Message = v.Message
	}
	return apiErr
}

// internal/clients/query_cache.go
package clients

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/sarcascoder/Netflix-clone/internal/metrics"
)

// FetchFunc performs the network read for a cache miss and returns the validated body.
type FetchFunc func(ctx context.Context) ([]byte, error)

// QueryCache caches successful reads keyed by (family, params) where family is the
// contract operation name.
//
// A fetch remembers the family generation it started in and the backend only stores its
// result if that generation is still current, so a read that was in flight during an
// invalidation can never put pre-mutation data back.
type QueryCache struct {
	backend CacheBackend
	logger  *slog.Logger
	group   singleflight.Group

	mu      sync.Mutex
	subs    map[string]map[uint64]func()
	nextSub uint64
}

func NewQueryCache(backend CacheBackend, logger *slog.Logger) *QueryCache {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	return &QueryCache{
		backend: backend,
		logger:  logger,
		subs:    make(map[string]map[uint64]func()),
	}
}

// Key builds the cache key: the family, then a hash of the JSON-encoded params.
// json.Marshal sorts map keys, so equal params always hash equally.
func Key(family string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", family, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", family, hash[:16])
}

func familyPrefix(family string) string { return family + ":" }

// Read returns the cached bytes for (family, params) or calls fetch. Concurrent identical
// reads in the same generation share one fetch.
//
// The fetch runs detached from ctx: if the caller gives up, Read returns ctx.Err() but the
// fetch still completes and populates the cache.
func (c *QueryCache) Read(ctx context.Context, family string, params interface{}, fetch FetchFunc) ([]byte, error) {
	key := Key(family, params)

	cached, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "Cache backend read failed, fetching", slog.String("key", key), slog.String("error", err.Error()))
	}
	if ok {
		metrics.RecordCacheLookup(family, true)
		return cached, nil
	}
	metrics.RecordCacheLookup(family, false)

	detached := context.WithoutCancel(ctx)
	gen, err := c.backend.Generation(ctx, family)
	if err != nil {
		// without a generation nothing can be stored safely; read through
		c.logger.WarnContext(ctx, "Cache generation unavailable, reading through", slog.String("family", family), slog.String("error", err.Error()))
		return fetch(ctx)
	}
	ch := c.group.DoChan(key+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		data, err := fetch(detached)
		if err != nil {
			return nil, err
		}
		c.store(detached, family, key, gen, data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// shared between callers; hand each one its own copy
		return append([]byte(nil), res.Val.([]byte)...), nil
	}
}

// Peek returns the cached bytes without fetching.
func (c *QueryCache) Peek(ctx context.Context, family string, params interface{}) ([]byte, bool) {
	v, ok, err := c.backend.Get(ctx, Key(family, params))
	if err != nil {
		return nil, false
	}
	return v, ok
}

// Invalidate drops every entry of family regardless of params and notifies its subscribers.
func (c *QueryCache) Invalidate(ctx context.Context, family string) error {
	err := c.backend.Invalidate(ctx, family)

	c.mu.Lock()
	subs := make([]func(), 0, len(c.subs[family]))
	for _, fn := range c.subs[family] {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	metrics.RecordCacheInvalidation(family)
	if err != nil {
		c.logger.ErrorContext(ctx, "Cache invalidation failed", slog.String("family", family), slog.String("error", err.Error()))
	} else {
		c.logger.DebugContext(ctx, "Cache family invalidated", slog.String("family", family))
	}

	for _, fn := range subs {
		fn()
	}
	return err
}

// Subscribe registers fn to run after each invalidation of family. The returned func
// unsubscribes; no notification starts after it returns.
func (c *QueryCache) Subscribe(family string, fn func()) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	if c.subs[family] == nil {
		c.subs[family] = make(map[uint64]func())
	}

	var (
		once   sync.Once
		active atomic.Bool
	)
	active.Store(true)
	c.subs[family][id] = func() {
		if active.Load() {
			fn()
		}
	}
	return func() {
		once.Do(func() {
			active.Store(false)
			c.mu.Lock()
			delete(c.subs[family], id)
			c.mu.Unlock()
		})
	}
}

// store writes data unless family was invalidated after gen was read.
func (c *QueryCache) store(ctx context.Context, family, key string, gen uint64, data []byte) {
	stored, err := c.backend.SetIfGeneration(ctx, family, gen, key, data)
	if err != nil {
		c.logger.WarnContext(ctx, "Cache backend write failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if !stored {
		c.logger.DebugContext(ctx, "Discarding stale read", slog.String("key", key))
	}
}

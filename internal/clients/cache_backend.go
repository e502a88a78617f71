// internal/clients/cache_backend.go
package clients

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheBackend stores raw response bytes by key. Keys of one family share the prefix
// family + ":". Each family carries a generation that Invalidate bumps; a write made
// with an older generation is refused, so a slow read can't restore invalidated data
// even when the invalidation came from another process.
type CacheBackend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Generation returns the family's current generation.
	Generation(ctx context.Context, family string) (uint64, error)
	// SetIfGeneration stores value only while family is still at gen.
	SetIfGeneration(ctx context.Context, family string, gen uint64, key string, value []byte) (bool, error)
	// Invalidate bumps the family's generation and removes its keys.
	Invalidate(ctx context.Context, family string) error
}

// MemoryBackend is the default in-process backend. Values are copied on the way in and out.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string][]byte
	gens  map[string]uint64
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string][]byte), gens: make(map[string]uint64)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBackend) Generation(_ context.Context, family string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gens[family], nil
}

func (m *MemoryBackend) SetIfGeneration(_ context.Context, family string, gen uint64, key string, value []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[family] != gen {
		return false, nil
	}
	m.items[key] = append([]byte(nil), value...)
	return true, nil
}

func (m *MemoryBackend) Invalidate(_ context.Context, family string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[family]++
	prefix := familyPrefix(family)
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

// Len reports the number of cached entries.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// RedisBackend shares the cache between client processes. Keys are namespaced so
// several clients can use one Redis database; generations live under <ns>gen:<family>.
type RedisBackend struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// setIfGeneration compares the family generation and writes the value in one step.
// KEYS[1] generation key, KEYS[2] value key; ARGV gen, value, ttl in ms (0 = none).
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// NewRedisBackend wraps client. A zero ttl keeps entries until invalidated.
func NewRedisBackend(client *redis.Client, namespace string, ttl time.Duration) *RedisBackend {
	if namespace != "" && !strings.HasSuffix(namespace, ":") {
		namespace += ":"
	}
	return &RedisBackend{client: client, namespace: namespace, ttl: ttl}
}

// ConnectRedis opens a client and checks it with PING.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (r *RedisBackend) genKey(family string) string { return r.namespace + "gen:" + family }

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisBackend) Generation(ctx context.Context, family string) (uint64, error) {
	gen, err := r.client.Get(ctx, r.genKey(family)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis generation %s: %w", family, err)
	}
	return gen, nil
}

func (r *RedisBackend) SetIfGeneration(ctx context.Context, family string, gen uint64, key string, value []byte) (bool, error) {
	keys := []string{r.genKey(family), r.namespace + key}
	stored, err := setIfGeneration.Run(ctx, r.client, keys, strconv.FormatUint(gen, 10), value, r.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis set %s: %w", key, err)
	}
	return stored == 1, nil
}

// Invalidate bumps the generation first, so writers that read the old one are refused,
// then deletes the family's keys.
func (r *RedisBackend) Invalidate(ctx context.Context, family string) error {
	if err := r.client.Incr(ctx, r.genKey(family)).Err(); err != nil {
		return fmt.Errorf("redis incr %s: %w", family, err)
	}

	iter := r.client.Scan(ctx, 0, r.namespace+familyPrefix(family)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", family, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", family, err)
	}
	return nil
}

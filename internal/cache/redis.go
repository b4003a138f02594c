package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SCAN batch size for pattern invalidation.
const scanBatchSize = 100

// Redis is a shared cache backend for replicated deployments, where the
// per-process Memory cache would let each instance observe different
// staleness windows. TTL enforcement is delegated to server-side key expiry.
type Redis struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

// NewRedis creates a Redis cache backend.
func NewRedis(addr, password string, db int, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "clientsync:cache:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{
		client: goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: prefix,
		ttl:    ttl,
		timers: make(map[*time.Timer]struct{}),
	}
}

// NewRedisFromClient creates a Redis cache from an existing client (useful
// for testing).
func NewRedisFromClient(client *goredis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "clientsync:cache:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, timers: make(map[*time.Timer]struct{})}
}

// Ping verifies the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns the payload for key if it has not expired. Errors degrade to
// misses; the cache never fails a read path.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Set stores payload with the configured TTL as server-side expiry.
func (r *Redis) Set(ctx context.Context, key string, payload []byte) {
	_ = r.client.Set(ctx, r.prefix+key, payload, r.ttl).Err()
}

// Invalidate deletes every key whose unprefixed name contains pattern; an
// empty pattern clears the whole prefix.
func (r *Redis) Invalidate(ctx context.Context, pattern string) {
	match := r.prefix + "*"
	if pattern != "" {
		match = r.prefix + "*" + pattern + "*"
	}
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, scanBatchSize).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			// SCAN's glob match is approximate for our substring contract;
			// re-check before deleting.
			targets := keys[:0]
			for _, k := range keys {
				if pattern == "" || strings.Contains(strings.TrimPrefix(k, r.prefix), pattern) {
					targets = append(targets, k)
				}
			}
			if len(targets) > 0 {
				_ = r.client.Del(ctx, targets...).Err()
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// InvalidateAfter schedules a deferred Invalidate. A non-positive delay falls
// back to DefaultInvalidateDelay.
func (r *Redis) InvalidateAfter(pattern string, delay time.Duration) {
	if delay <= 0 {
		delay = DefaultInvalidateDelay
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.Invalidate(ctx, pattern)
		r.mu.Lock()
		delete(r.timers, timer)
		r.mu.Unlock()
	})
	r.timers[timer] = struct{}{}
}

// Close cancels pending deferred invalidations and closes the client.
func (r *Redis) Close() error {
	r.mu.Lock()
	r.closed = true
	for timer := range r.timers {
		timer.Stop()
	}
	r.timers = make(map[*time.Timer]struct{})
	r.mu.Unlock()
	return r.client.Close()
}

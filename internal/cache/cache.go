// Package cache provides the time-bounded read cache with pattern and
// deferred invalidation.
//
// The cache bounds read latency against the external export while keeping
// staleness observable: entries expire after a TTL, and writes invalidate by
// key pattern. Invalidation of spreadsheet-mirrored views is deferred by a
// short delay after a write, because the mirror may not reflect the write
// yet; invalidating immediately would repopulate the cache with a stale
// re-read and clobber just-written data.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Defaults for TTL and deferred invalidation.
const (
	DefaultTTL             = 30 * time.Second
	DefaultInvalidateDelay = 2 * time.Second
)

// Cache is the read-cache contract shared by the memory and Redis backends.
type Cache interface {
	// Get returns the payload for key if it is younger than the TTL.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores payload under key with the current timestamp.
	Set(ctx context.Context, key string, payload []byte)
	// Invalidate removes every tracked key containing pattern as a
	// substring; an empty pattern clears everything.
	Invalidate(ctx context.Context, pattern string)
	// InvalidateAfter schedules Invalidate(pattern) after delay. Used for
	// mirror-backed views, where immediate invalidation would race the
	// mirror's propagation lag.
	InvalidateAfter(pattern string, delay time.Duration)
	// Close releases resources and cancels pending deferred invalidations.
	Close() error
}

// Compile-time interface satisfaction checks.
var (
	_ Cache = (*Memory)(nil)
	_ Cache = (*Redis)(nil)
)

type memoryEntry struct {
	payload []byte
	at      time.Time
}

// Memory is the in-process cache backend. It is process-wide, shared,
// mutable state with no cross-process coordination: a multi-instance
// deployment has an independent cache per instance (accepted weakening; use
// the Redis backend to close the gap).
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
	timers  map[*time.Timer]struct{}
	closed  bool
}

// NewMemory creates a memory cache. A non-positive ttl falls back to
// DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
		timers:  make(map[*time.Timer]struct{}),
	}
}

// Get returns the cached payload if present and younger than the TTL.
// Expired entries are treated as misses and removed.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(entry.at) >= m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return entry.payload, true
}

// Set stores payload with the current timestamp.
func (m *Memory) Set(_ context.Context, key string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.entries[key] = memoryEntry{payload: payload, at: m.now()}
}

// Invalidate removes every key containing pattern; empty pattern clears all.
func (m *Memory) Invalidate(_ context.Context, pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pattern == "" {
		m.entries = make(map[string]memoryEntry)
		return
	}
	for key := range m.entries {
		if strings.Contains(key, pattern) {
			delete(m.entries, key)
		}
	}
}

// InvalidateAfter schedules a deferred Invalidate. A non-positive delay falls
// back to DefaultInvalidateDelay.
func (m *Memory) InvalidateAfter(pattern string, delay time.Duration) {
	if delay <= 0 {
		delay = DefaultInvalidateDelay
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		m.Invalidate(context.Background(), pattern)
		m.mu.Lock()
		delete(m.timers, timer)
		m.mu.Unlock()
	})
	m.timers[timer] = struct{}{}
}

// Close cancels pending deferred invalidations and drops all entries.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for timer := range m.timers {
		timer.Stop()
	}
	m.timers = make(map[*time.Timer]struct{})
	m.entries = make(map[string]memoryEntry)
	return nil
}

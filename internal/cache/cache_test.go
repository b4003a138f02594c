package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory(30 * time.Second)
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	c.Set(ctx, "clients:spreadsheet", []byte("payload"))

	got, ok := c.Get(ctx, "clients:spreadsheet")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestMemory_TTLBoundary(t *testing.T) {
	c := NewMemory(30 * time.Second)
	defer func() { _ = c.Close() }()

	base := time.Now()
	c.now = func() time.Time { return base }

	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"))

	// One millisecond before expiry: still a hit.
	c.now = func() time.Time { return base.Add(30*time.Second - time.Millisecond) }
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	// One millisecond after expiry: a miss.
	c.now = func() time.Time { return base.Add(30*time.Second + time.Millisecond) }
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_InvalidatePattern(t *testing.T) {
	c := NewMemory(time.Minute)
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	c.Set(ctx, "clients:spreadsheet:all", []byte("a"))
	c.Set(ctx, "clients:spreadsheet:recent", []byte("b"))
	c.Set(ctx, "stats:summary", []byte("c"))

	c.Invalidate(ctx, "spreadsheet")

	_, ok := c.Get(ctx, "clients:spreadsheet:all")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "clients:spreadsheet:recent")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "stats:summary")
	assert.True(t, ok)
}

func TestMemory_InvalidateAll(t *testing.T) {
	c := NewMemory(time.Minute)
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))

	c.Invalidate(ctx, "")

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)
}

func TestMemory_InvalidateAfterDefers(t *testing.T) {
	c := NewMemory(time.Minute)
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	c.Set(ctx, "clients:spreadsheet:all", []byte("v"))

	c.InvalidateAfter("spreadsheet", 20*time.Millisecond)

	// Still cached before the delay elapses.
	_, ok := c.Get(ctx, "clients:spreadsheet:all")
	assert.True(t, ok)

	require.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "clients:spreadsheet:all")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestMemory_CloseCancelsPendingInvalidations(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"))
	c.InvalidateAfter("k", 50*time.Millisecond)
	require.NoError(t, c.Close())

	// Close drops entries and stops timers; no panic, no late fires.
	time.Sleep(80 * time.Millisecond)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_SetAfterCloseIgnored(t *testing.T) {
	c := NewMemory(time.Minute)
	require.NoError(t, c.Close())
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/apexfield/clientsync/internal/cache"
	"github.com/apexfield/clientsync/pkg/types"
)

func TestNewCache_DefaultsToMemory(t *testing.T) {
	c := newCache(nil)
	t.Cleanup(func() { _ = c.Close() })
	_, ok := c.(*cache.Memory)
	assert.True(t, ok)
}

func TestNewCache_RedisBackend(t *testing.T) {
	c := newCache(&types.CacheConfig{Backend: "redis", RedisAddr: "localhost:6379"})
	t.Cleanup(func() { _ = c.Close() })
	_, ok := c.(*cache.Redis)
	assert.True(t, ok)
}

func TestInvalidateDelay(t *testing.T) {
	assert.Equal(t, cache.DefaultInvalidateDelay, invalidateDelay(nil))
	assert.Equal(t, 500*time.Millisecond, invalidateDelay(&types.CacheConfig{InvalidateDelayMillis: 500}))
}

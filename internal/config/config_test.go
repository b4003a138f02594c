package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clientsync.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoad_Minimal(t *testing.T) {
	dir := writeConfig(t, `
postgres:
  dsn: postgres://localhost/clientsync
`)
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, DefaultCacheTTLSeconds, cfg.Cache.TTLSeconds)
	assert.Equal(t, DefaultInvalidateDelayMillis, cfg.Cache.InvalidateDelayMillis)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
}

func TestLoad_MirrorDefaultsRowIndexBase(t *testing.T) {
	dir := writeConfig(t, `
postgres:
  dsn: postgres://localhost/clientsync
mirror:
  enabled: true
  baseUrl: https://sheets.example.com
`)
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultRowIndexBase, cfg.Mirror.RowIndexBase)
}

func TestLoad_MissingDSN(t *testing.T) {
	dir := writeConfig(t, `
cache:
  backend: memory
`)
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres.dsn")
}

func TestLoad_RedisRequiresAddr(t *testing.T) {
	dir := writeConfig(t, `
postgres:
  dsn: postgres://localhost/clientsync
cache:
  backend: redis
`)
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redisAddr")
}

func TestLoad_RejectsLowRowIndexBase(t *testing.T) {
	dir := writeConfig(t, `
postgres:
  dsn: postgres://localhost/clientsync
mirror:
  enabled: true
  baseUrl: https://sheets.example.com
  rowIndexBase: 2
`)
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rowIndexBase")
}

func TestLoad_UnknownCacheBackend(t *testing.T) {
	dir := writeConfig(t, `
postgres:
  dsn: postgres://localhost/clientsync
cache:
  backend: memcached
`)
	_, err := Load(dir)
	require.Error(t, err)
}

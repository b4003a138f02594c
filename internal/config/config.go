// Package config handles loading and validation of clientsync.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/apexfield/clientsync/pkg/types"
)

// Defaults applied when the config omits optional settings.
const (
	DefaultCacheTTLSeconds       = 30
	DefaultInvalidateDelayMillis = 2000
	DefaultRowIndexBase          = 4
	DefaultServerAddr            = ":3000"
)

// Load reads and parses clientsync.yaml from the given directory.
func Load(dir string) (*types.ProjectConfig, error) {
	path := filepath.Join(dir, "clientsync.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg types.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *types.ProjectConfig) {
	if cfg.Cache == nil {
		cfg.Cache = &types.CacheConfig{}
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = DefaultCacheTTLSeconds
	}
	if cfg.Cache.InvalidateDelayMillis <= 0 {
		cfg.Cache.InvalidateDelayMillis = DefaultInvalidateDelayMillis
	}
	if cfg.Mirror != nil && cfg.Mirror.RowIndexBase == 0 {
		cfg.Mirror.RowIndexBase = DefaultRowIndexBase
	}
	if cfg.Server == nil {
		cfg.Server = &types.ServerConfig{}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
}

func validate(cfg *types.ProjectConfig) error {
	if cfg.Postgres == nil || strings.TrimSpace(cfg.Postgres.DSN) == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redisAddr is required when cache.backend is redis")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	if cfg.Mirror != nil && cfg.Mirror.Enabled {
		if cfg.Mirror.BaseURL == "" {
			return fmt.Errorf("mirror.baseUrl is required when mirror is enabled")
		}
		// Floor: one header row, one template row, 1-based indexing.
		if cfg.Mirror.RowIndexBase < 3 {
			return fmt.Errorf("mirror.rowIndexBase must be at least 3, got %d", cfg.Mirror.RowIndexBase)
		}
	}
	if cfg.Webhook != nil && cfg.Webhook.Enabled && cfg.Webhook.URL == "" {
		return fmt.Errorf("webhook.url is required when webhook is enabled")
	}
	return nil
}

// Package commands implements the CLI subcommands for the clientsync binary.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/apexfield/clientsync/internal/cache"
	"github.com/apexfield/clientsync/internal/mirror"
	"github.com/apexfield/clientsync/internal/reconcile"
	"github.com/apexfield/clientsync/internal/secrets"
	"github.com/apexfield/clientsync/internal/service"
	"github.com/apexfield/clientsync/internal/store/postgres"
	"github.com/apexfield/clientsync/internal/webhook"
	"github.com/apexfield/clientsync/pkg/types"
)

// resolveSecret expands a secretsmanager:// reference, constructing the
// resolver only when one is actually needed.
func resolveSecret(ctx context.Context, resolver **secrets.Resolver, value string) (string, error) {
	if !secrets.IsRef(value) {
		return value, nil
	}
	if *resolver == nil {
		r, err := secrets.NewResolver()
		if err != nil {
			return "", err
		}
		*resolver = r
	}
	return (*resolver).Resolve(ctx, value)
}

// newCache builds the configured cache backend.
func newCache(cfg *types.CacheConfig) cache.Cache {
	ttl := cache.DefaultTTL
	if cfg != nil && cfg.TTLSeconds > 0 {
		ttl = time.Duration(cfg.TTLSeconds) * time.Second
	}
	if cfg != nil && cfg.Backend == "redis" {
		return cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix, ttl)
	}
	return cache.NewMemory(ttl)
}

// invalidateDelay returns the configured deferred-invalidation delay.
func invalidateDelay(cfg *types.CacheConfig) time.Duration {
	if cfg != nil && cfg.InvalidateDelayMillis > 0 {
		return time.Duration(cfg.InvalidateDelayMillis) * time.Millisecond
	}
	return cache.DefaultInvalidateDelay
}

// buildService wires the full coordinator from config: postgres store,
// cache backend, mirror client, and CRM notifier.
func buildService(ctx context.Context, cfg *types.ProjectConfig) (*service.Service, *postgres.Store, cache.Cache, error) {
	var resolver *secrets.Resolver

	dsn, err := resolveSecret(ctx, &resolver, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolving postgres dsn: %w", err)
	}

	st, err := postgres.New(ctx, dsn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to Postgres: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, nil, fmt.Errorf("migrating Postgres: %w", err)
	}

	c := newCache(cfg.Cache)

	var mir service.Mirror
	rowIndexBase := 0
	if cfg.Mirror != nil && cfg.Mirror.Enabled {
		apiKey, err := resolveSecret(ctx, &resolver, cfg.Mirror.APIKey)
		if err != nil {
			st.Close()
			_ = c.Close()
			return nil, nil, nil, fmt.Errorf("resolving mirror api key: %w", err)
		}
		mir = mirror.NewClient(mirror.Options{
			BaseURL: cfg.Mirror.BaseURL,
			APIKey:  apiKey,
			Sheet:   cfg.Mirror.Sheet,
		})
		rowIndexBase = cfg.Mirror.RowIndexBase
	}

	var notify service.NotifyFunc
	if cfg.Webhook != nil && cfg.Webhook.Enabled {
		notify = webhook.NewCRMNotifier(cfg.Webhook.URL).Notify
	}

	svc := service.New(service.Options{
		Store:           st,
		Cache:           c,
		Mirror:          mir,
		Notify:          notify,
		Reconciler:      reconcile.New(rowIndexBase),
		InvalidateDelay: invalidateDelay(cfg.Cache),
	})
	return svc, st, c, nil
}

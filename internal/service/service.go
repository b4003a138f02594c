// Package service implements the dual-write client coordinator.
//
// The relational store is authoritative: its failures surface to callers.
// The spreadsheet mirror and the CRM webhook are advisory; their failures
// are logged and counted but never fail an operation.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/apexfield/clientsync/internal/cache"
	"github.com/apexfield/clientsync/internal/reconcile"
	"github.com/apexfield/clientsync/internal/store"
	"github.com/apexfield/clientsync/pkg/types"
)

// Cache key prefixes. Relational views invalidate immediately after a write;
// sheet views invalidate after the configured delay, because the mirror may
// not reflect the write yet.
const (
	sheetKeyPrefix = "sheet:"
	dbKeyPrefix    = "db:"

	keySheetClients = sheetKeyPrefix + "clients"
	keyClientStats  = dbKeyPrefix + "stats"
)

// system_config toggle keys. Absent keys fall back to whether the component
// was wired at construction.
const (
	toggleMirrorEnabled        = "mirror_enabled"
	toggleNotificationsEnabled = "notifications_enabled"
)

// Mirror is the advisory spreadsheet surface the coordinator writes through.
type Mirror interface {
	FetchExport(ctx context.Context) (string, error)
	AppendRow(ctx context.Context, rec types.ClientRecord) error
	UpdateCells(ctx context.Context, rowIndex int, fields map[string]string) error
	Ping(ctx context.Context) error
}

// NotifyFunc posts a created record to the downstream CRM.
type NotifyFunc func(ctx context.Context, rec types.ClientRecord) error

// Options configures a Service.
type Options struct {
	Store      store.Store
	Cache      cache.Cache
	Mirror     Mirror     // nil disables mirror writes and sheet ingestion
	Notify     NotifyFunc // nil disables CRM notifications
	Reconciler *reconcile.Reconciler

	// InvalidateDelay is how long sheet-view invalidation is deferred after
	// a write. Zero means cache.DefaultInvalidateDelay.
	InvalidateDelay time.Duration

	Logger *slog.Logger
}

// Service coordinates dual writes across the relational store and the
// spreadsheet mirror, and serves the cached ingestion read path.
type Service struct {
	store      store.Store
	cache      cache.Cache
	mirror     Mirror
	notify     NotifyFunc
	reconciler *reconcile.Reconciler
	delay      time.Duration
	logger     *slog.Logger

	sf singleflight.Group
	wg sync.WaitGroup // in-flight notification goroutines

	mu  sync.Mutex // guards rnd
	rnd *rand.Rand
}

// New creates a Service. Options.Store is required.
func New(opts Options) *Service {
	c := opts.Cache
	if c == nil {
		c = cache.NewMemory(cache.DefaultTTL)
	}
	rec := opts.Reconciler
	if rec == nil {
		rec = reconcile.New(0)
	}
	delay := opts.InvalidateDelay
	if delay <= 0 {
		delay = cache.DefaultInvalidateDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      opts.Store,
		cache:      c,
		mirror:     opts.Mirror,
		notify:     opts.Notify,
		reconciler: rec,
		delay:      delay,
		logger:     logger,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetLogger overrides the default logger.
func (s *Service) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Close waits for in-flight notification goroutines to finish. It does not
// close the injected store or cache; their owner does.
func (s *Service) Close() {
	s.wg.Wait()
}

// HealthCheck reports relational-store reachability only. Mirror
// reachability is a separate diagnostic; an unreachable mirror must not make
// the service unhealthy.
func (s *Service) HealthCheck(ctx context.Context) types.Result {
	if err := s.store.Ping(ctx); err != nil {
		return types.Fail("store unreachable", fmt.Errorf("%w: %v", types.ErrUpstream, err))
	}
	return types.OK("healthy", nil)
}

// MirrorStatus reports spreadsheet-mirror reachability.
func (s *Service) MirrorStatus(ctx context.Context) types.Result {
	if s.mirror == nil {
		return types.OK("mirror not configured", nil)
	}
	if err := s.mirror.Ping(ctx); err != nil {
		return types.Fail("mirror unreachable", err)
	}
	return types.OK("mirror reachable", nil)
}

// clientIDAlphabet is the pool for the generated-ID suffix.
const clientIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateClientID produces an ID of the form CLI<6 digits><3 uppercase
// alphanumerics>. The digits come from the current unix-millisecond clock,
// the suffix is random; collisions are caught by the store's unique
// constraint.
func (s *Service) generateClientID() string {
	millis := time.Now().UnixMilli() % 1_000_000
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "CLI%06d", millis)
	for i := 0; i < 3; i++ {
		b.WriteByte(clientIDAlphabet[s.rnd.Intn(len(clientIDAlphabet))])
	}
	return b.String()
}

// mirrorEnabled consults the runtime toggle, falling back to whether a
// mirror was wired at all.
func (s *Service) mirrorEnabled(ctx context.Context) bool {
	if s.mirror == nil {
		return false
	}
	return s.toggle(ctx, toggleMirrorEnabled)
}

func (s *Service) notificationsEnabled(ctx context.Context) bool {
	if s.notify == nil {
		return false
	}
	return s.toggle(ctx, toggleNotificationsEnabled)
}

func (s *Service) toggle(ctx context.Context, key string) bool {
	value, ok, err := s.store.GetConfigValue(ctx, key)
	if err != nil {
		s.logger.Warn("config toggle read failed", "key", key, "error", err)
		return true
	}
	if !ok {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(value), "false")
}

// invalidateAfterWrite drops the relational views immediately and schedules
// the sheet views for deferred invalidation, so a cached re-read cannot
// clobber a just-written row with the mirror's pre-write state.
func (s *Service) invalidateAfterWrite(ctx context.Context) {
	s.cache.Invalidate(ctx, dbKeyPrefix)
	s.cache.InvalidateAfter(sheetKeyPrefix, s.delay)
}

// upstream classifies a store error: taxonomy sentinels pass through,
// anything else is wrapped as an upstream failure.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrUpstream, err)
}

// snapshotValues flattens a record into the audit log's JSON column shape.
func snapshotValues(rec types.ClientRecord) map[string]any {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

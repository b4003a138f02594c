package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apexfield/clientsync/internal/metrics"
	"github.com/apexfield/clientsync/internal/store"
	"github.com/apexfield/clientsync/internal/tabular"
	"github.com/apexfield/clientsync/pkg/types"
)

// Canonical queries are served from the relational store exclusively. The
// cached spreadsheet path exists only for the legacy ingestion view.

// GetClientByID fetches one client.
func (s *Service) GetClientByID(ctx context.Context, clientID string) types.Result {
	rec, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		err = upstream(err)
		if errors.Is(err, types.ErrNotFound) {
			return types.Fail("client not found", err)
		}
		return types.Fail("lookup failed", err)
	}
	return types.OK("ok", rec)
}

// ClientPage is a paginated listing.
type ClientPage struct {
	Clients []types.ClientRecord `json:"clients"`
	Total   int                  `json:"total"`
	Page    int                  `json:"page"`
	Limit   int                  `json:"limit"`
}

// ListClients returns one page of clients, newest first.
func (s *Service) ListClients(ctx context.Context, page, limit int) types.Result {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	recs, total, err := s.store.ListClients(ctx, store.ListQuery{Page: page, Limit: limit})
	if err != nil {
		return types.Fail("list failed", upstream(err))
	}
	return types.OK("ok", ClientPage{Clients: recs, Total: total, Page: page, Limit: limit})
}

// SearchClients runs a free-text search with optional status and channel
// filters.
func (s *Service) SearchClients(ctx context.Context, q store.SearchQuery) types.Result {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	recs, err := s.store.SearchClients(ctx, q)
	if err != nil {
		return types.Fail("search failed", upstream(err))
	}
	return types.OK("ok", recs)
}

// GetRecentClients returns clients created within the window.
func (s *Service) GetRecentClients(ctx context.Context, window time.Duration, limit int) types.Result {
	if window <= 0 {
		window = 24 * time.Hour
	}
	recs, err := s.store.RecentClients(ctx, time.Now().Add(-window), limit)
	if err != nil {
		return types.Fail("recent lookup failed", upstream(err))
	}
	return types.OK("ok", recs)
}

// GetNewLeads returns clients still in the New Lead status.
func (s *Service) GetNewLeads(ctx context.Context, limit int) types.Result {
	recs, err := s.store.NewLeads(ctx, limit)
	if err != nil {
		return types.Fail("leads lookup failed", upstream(err))
	}
	return types.OK("ok", recs)
}

// GetClientStats returns aggregate counts, cached under the relational view
// prefix so mutations drop it immediately.
func (s *Service) GetClientStats(ctx context.Context) types.Result {
	if payload, ok := s.cache.Get(ctx, keyClientStats); ok {
		metrics.CacheHits.Add(1)
		var stats types.ClientStats
		if err := json.Unmarshal(payload, &stats); err == nil {
			return types.OK("ok", &stats)
		}
		// Unreadable entry; fall through to a fresh read.
	}
	metrics.CacheMisses.Add(1)

	stats, err := s.store.ClientStats(ctx)
	if err != nil {
		return types.Fail("stats failed", upstream(err))
	}
	if payload, err := json.Marshal(stats); err == nil {
		s.cache.Set(ctx, keyClientStats, payload)
	}
	return types.OK("ok", stats)
}

// ExportAll returns every client in the canonical store.
func (s *Service) ExportAll(ctx context.Context) types.Result {
	recs, err := s.store.AllClients(ctx)
	if err != nil {
		return types.Fail("export failed", upstream(err))
	}
	return types.OK(fmt.Sprintf("%d clients", len(recs)), recs)
}

// IngestedClients serves the legacy spreadsheet view: cached records
// reconciled from the sheet export. On a miss the fetch-parse-reconcile
// pass runs once per key regardless of concurrent callers.
func (s *Service) IngestedClients(ctx context.Context) types.Result {
	if s.mirror == nil {
		return types.Fail("mirror not configured", types.ErrMirror)
	}

	if payload, ok := s.cache.Get(ctx, keySheetClients); ok {
		metrics.CacheHits.Add(1)
		var recs []types.ClientRecord
		if err := json.Unmarshal(payload, &recs); err == nil {
			return types.OK("ok", recs)
		}
	}
	metrics.CacheMisses.Add(1)

	v, err, _ := s.sf.Do(keySheetClients, func() (any, error) {
		return s.ingest(ctx)
	})
	if err != nil {
		return types.Fail("ingestion failed", err)
	}
	return types.OK("ok", v.([]types.ClientRecord))
}

// ingest runs one fetch-parse-reconcile pass and repopulates the cache. A
// malformed export yields an empty pass, not an error; the empty result is
// not cached, so the next read retries.
func (s *Service) ingest(ctx context.Context) ([]types.ClientRecord, error) {
	metrics.IngestionsTotal.Add(1)

	raw, err := s.mirror.FetchExport(ctx)
	if err != nil {
		metrics.IngestionErrors.Add(1)
		return nil, err
	}

	rows, err := tabular.Parse(raw)
	if err != nil {
		metrics.IngestionErrors.Add(1)
		s.logger.Warn("export unparsable, empty ingestion pass", "error", err)
		return []types.ClientRecord{}, nil
	}

	recs := s.reconciler.Reconcile(rows)
	if payload, err := json.Marshal(recs); err == nil {
		s.cache.Set(ctx, keySheetClients, payload)
	}
	return recs, nil
}

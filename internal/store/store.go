// Package store defines the relational storage interface for clientsync.
package store

import (
	"context"
	"time"

	"github.com/apexfield/clientsync/pkg/types"
)

// ListQuery bounds a paginated client listing.
type ListQuery struct {
	Page  int
	Limit int
}

// SearchQuery selects clients by free-text and optional filters.
type SearchQuery struct {
	Term    string
	Status  types.ClientStatus
	Channel types.Channel
	Limit   int
}

// Store is the relational backend. The canonical ClientRecord lives here;
// everything written through it is the source of truth.
type Store interface {
	// Clients
	InsertClient(ctx context.Context, rec types.ClientRecord) error
	GetClient(ctx context.Context, clientID string) (*types.ClientRecord, error)
	UpdateClient(ctx context.Context, rec types.ClientRecord) error
	UpdateRowIndex(ctx context.Context, clientID string, rowIndex int) error
	DeleteClient(ctx context.Context, clientID string) error
	ListClients(ctx context.Context, q ListQuery) ([]types.ClientRecord, int, error)
	SearchClients(ctx context.Context, q SearchQuery) ([]types.ClientRecord, error)
	RecentClients(ctx context.Context, since time.Time, limit int) ([]types.ClientRecord, error)
	NewLeads(ctx context.Context, limit int) ([]types.ClientRecord, error)
	ClientStats(ctx context.Context) (*types.ClientStats, error)
	AllClients(ctx context.Context) ([]types.ClientRecord, error)

	// Audit log, append-only
	AppendAudit(ctx context.Context, entry types.AuditEntry) error
	ListAudit(ctx context.Context, recordID string, limit int) ([]types.AuditEntry, error)

	// System config key/value feature toggles
	GetConfigValue(ctx context.Context, key string) (string, bool, error)
	SetConfigValue(ctx context.Context, key, value string) error

	// Reports, a related entity with a minimal surface
	InsertReport(ctx context.Context, report types.Report) error
	ListReports(ctx context.Context, clientID string) ([]types.Report, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close()
}

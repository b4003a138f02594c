// Package testutil provides shared test utilities for clientsync.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apexfield/clientsync/internal/store"
	"github.com/apexfield/clientsync/pkg/types"
)

// Compile-time interface satisfaction check.
var _ store.Store = (*MockStore)(nil)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu      sync.Mutex
	clients map[string]types.ClientRecord
	order   []string // insertion order of client IDs
	audits  []types.AuditEntry
	config  map[string]string
	reports map[string][]types.Report

	// FailWith, when set, is returned by every store method. Tests use it to
	// simulate an unreachable backend.
	FailWith error
}

// NewMockStore creates a new in-memory mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		clients: make(map[string]types.ClientRecord),
		config:  make(map[string]string),
		reports: make(map[string][]types.Report),
	}
}

func (m *MockStore) InsertClient(_ context.Context, rec types.ClientRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if _, exists := m.clients[rec.ClientID]; exists {
		return types.ErrConflict
	}
	m.clients[rec.ClientID] = rec
	m.order = append(m.order, rec.ClientID)
	return nil
}

func (m *MockStore) GetClient(_ context.Context, clientID string) (*types.ClientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	rec, ok := m.clients[clientID]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &rec, nil
}

func (m *MockStore) UpdateClient(_ context.Context, rec types.ClientRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if _, ok := m.clients[rec.ClientID]; !ok {
		return types.ErrNotFound
	}
	m.clients[rec.ClientID] = rec
	return nil
}

func (m *MockStore) UpdateRowIndex(_ context.Context, clientID string, rowIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	rec, ok := m.clients[clientID]
	if !ok {
		return types.ErrNotFound
	}
	rec.RowIndex = rowIndex
	m.clients[clientID] = rec
	return nil
}

func (m *MockStore) DeleteClient(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if _, ok := m.clients[clientID]; !ok {
		return types.ErrNotFound
	}
	delete(m.clients, clientID)
	for i, id := range m.order {
		if id == clientID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockStore) ListClients(_ context.Context, q store.ListQuery) ([]types.ClientRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, 0, m.FailWith
	}
	all := m.snapshot()
	total := len(all)
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *MockStore) SearchClients(_ context.Context, q store.SearchQuery) ([]types.ClientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	term := strings.ToLower(q.Term)
	var out []types.ClientRecord
	for _, rec := range m.snapshot() {
		if q.Status != "" && rec.Status != q.Status {
			continue
		}
		if q.Channel != "" && rec.Channel != q.Channel {
			continue
		}
		if term != "" {
			hay := strings.ToLower(rec.FullName + " " + rec.Email + " " + rec.Phone + " " + rec.CompanyName)
			if !strings.Contains(hay, term) {
				continue
			}
		}
		out = append(out, rec)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (m *MockStore) RecentClients(_ context.Context, since time.Time, limit int) ([]types.ClientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []types.ClientRecord
	for _, rec := range m.snapshot() {
		if rec.CreatedAt.Before(since) {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockStore) NewLeads(_ context.Context, limit int) ([]types.ClientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []types.ClientRecord
	for _, rec := range m.snapshot() {
		if rec.Status != types.StatusNewLead {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockStore) ClientStats(_ context.Context) (*types.ClientStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	stats := &types.ClientStats{
		ByStatus:  make(map[types.ClientStatus]int),
		ByChannel: make(map[types.Channel]int),
	}
	weekAgo := time.Now().AddDate(0, 0, -7)
	for _, rec := range m.clients {
		stats.Total++
		stats.ByStatus[rec.Status]++
		stats.ByChannel[rec.Channel]++
		if rec.CreatedAt.After(weekAgo) {
			stats.ThisWeek++
		}
	}
	stats.NewLeads = stats.ByStatus[types.StatusNewLead]
	return stats, nil
}

func (m *MockStore) AllClients(_ context.Context) ([]types.ClientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return m.snapshot(), nil
}

func (m *MockStore) AppendAudit(_ context.Context, entry types.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.audits = append(m.audits, entry)
	return nil
}

func (m *MockStore) ListAudit(_ context.Context, recordID string, limit int) ([]types.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []types.AuditEntry
	for i := len(m.audits) - 1; i >= 0; i-- {
		if recordID != "" && m.audits[i].RecordID != recordID {
			continue
		}
		out = append(out, m.audits[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockStore) GetConfigValue(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return "", false, m.FailWith
	}
	v, ok := m.config[key]
	return v, ok, nil
}

func (m *MockStore) SetConfigValue(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.config[key] = value
	return nil
}

func (m *MockStore) InsertReport(_ context.Context, report types.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.reports[report.ClientID] = append(m.reports[report.ClientID], report)
	return nil
}

func (m *MockStore) ListReports(_ context.Context, clientID string) ([]types.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := make([]types.Report, len(m.reports[clientID]))
	copy(out, m.reports[clientID])
	return out, nil
}

func (m *MockStore) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FailWith
}

func (m *MockStore) Close() {}

// snapshot returns clients newest-first by creation time, matching the
// postgres ordering. Caller must hold mu.
func (m *MockStore) snapshot() []types.ClientRecord {
	out := make([]types.ClientRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.clients[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Audits returns a copy of all stored audit entries (test helper).
func (m *MockStore) Audits() []types.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.AuditEntry, len(m.audits))
	copy(out, m.audits)
	return out
}

// Seed inserts a record directly, bypassing conflict checks (test helper).
func (m *MockStore) Seed(rec types.ClientRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.clients[rec.ClientID]; !exists {
		m.order = append(m.order, rec.ClientID)
	}
	m.clients[rec.ClientID] = rec
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/apexfield/clientsync/internal/store"
	"github.com/apexfield/clientsync/pkg/types"
)

const clientColumns = `client_id, row_index, company_name, service_type, urgency_level,
	full_name, email, phone, customer_type, project_address, technical_description,
	budget_range, expected_timeline, contact_method, notes, special_requirements,
	channel, assigned_to, status, invoice_status, estimate_status, notification_status,
	submitted_at, created_at, updated_at`

// GetClient returns the canonical record for clientID, or types.ErrNotFound.
func (s *Store) GetClient(ctx context.Context, clientID string) (*types.ClientRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE client_id = $1`, clientID)
	rec, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("client %q: %w", clientID, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return rec, nil
}

// ListClients returns one page of clients ordered by creation time descending,
// plus the total row count.
func (s *Store) ListClients(ctx context.Context, q store.ListQuery) ([]types.ClientRecord, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	recs, err := collectClients(rows)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// SearchClients matches the term against name, email, phone, and company,
// with optional status and channel filters.
func (s *Store) SearchClients(ctx context.Context, q store.SearchQuery) ([]types.ClientRecord, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE 1=1`
	args := []any{}
	if q.Term != "" {
		args = append(args, "%"+q.Term+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (full_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR company_name ILIKE $%d)`,
			n, n, n, n)
	}
	if q.Status != "" {
		args = append(args, string(q.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if q.Channel != "" {
		args = append(args, string(q.Channel))
		query += fmt.Sprintf(` AND channel = $%d`, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return collectClients(rows)
}

// RecentClients returns clients created since the given time, newest first.
func (s *Store) RecentClients(ctx context.Context, since time.Time, limit int) ([]types.ClientRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE created_at >= $1 ORDER BY created_at DESC LIMIT $2`,
		since, limit)
	if err != nil {
		return nil, fmt.Errorf("recent clients: %w", err)
	}
	return collectClients(rows)
}

// NewLeads returns clients still in the New Lead status, newest first.
func (s *Store) NewLeads(ctx context.Context, limit int) ([]types.ClientRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE status = $1 ORDER BY created_at DESC LIMIT $2`,
		string(types.StatusNewLead), limit)
	if err != nil {
		return nil, fmt.Errorf("new leads: %w", err)
	}
	return collectClients(rows)
}

// AllClients returns every canonical record, newest first, for export.
func (s *Store) AllClients(ctx context.Context) ([]types.ClientRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("all clients: %w", err)
	}
	return collectClients(rows)
}

// ClientStats aggregates counts by status and channel.
func (s *Store) ClientStats(ctx context.Context) (*types.ClientStats, error) {
	stats := &types.ClientStats{
		ByStatus:  make(map[types.ClientStatus]int),
		ByChannel: make(map[types.Channel]int),
	}

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("stats total: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM clients GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("stats by status: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByStatus[types.ClientStatus(status)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `SELECT channel, COUNT(*) FROM clients GROUP BY channel`)
	if err != nil {
		return nil, fmt.Errorf("stats by channel: %w", err)
	}
	for rows.Next() {
		var channel string
		var count int
		if err := rows.Scan(&channel, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByChannel[types.Channel(channel)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.NewLeads = stats.ByStatus[types.StatusNewLead]

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM clients WHERE created_at >= $1`, weekAgo).Scan(&stats.ThisWeek); err != nil {
		return nil, fmt.Errorf("stats this week: %w", err)
	}
	return stats, nil
}

// ListAudit returns audit entries for a record, newest first. An empty
// recordID returns entries across all records.
func (s *Store) ListAudit(ctx context.Context, recordID string, limit int) ([]types.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, action, table_name, record_id, old_values, new_values,
		COALESCE(actor_email, ''), COALESCE(origin_ip, ''), created_at
		FROM audit_log`
	args := []any{}
	if recordID != "" {
		args = append(args, recordID)
		query += ` WHERE record_id = $1`
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var entries []types.AuditEntry
	for rows.Next() {
		var e types.AuditEntry
		var oldJSON, newJSON []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.TableName, &e.RecordID,
			&oldJSON, &newJSON, &e.ActorEmail, &e.OriginIP, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(oldJSON) > 0 {
			if err := json.Unmarshal(oldJSON, &e.OldValues); err != nil {
				return nil, fmt.Errorf("unmarshal audit old values: %w", err)
			}
		}
		if len(newJSON) > 0 {
			if err := json.Unmarshal(newJSON, &e.NewValues); err != nil {
				return nil, fmt.Errorf("unmarshal audit new values: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetConfigValue reads a system_config key. The second return reports
// whether the key exists.
func (s *Store) GetConfigValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM system_config WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

// ListReports returns reports for a client, newest first.
func (s *Store) ListReports(ctx context.Context, clientID string) ([]types.Report, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, client_id, title, body, created_at FROM reports
		 WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []types.Report
	for rows.Next() {
		var r types.Report
		if err := rows.Scan(&r.ID, &r.ClientID, &r.Title, &r.Body, &r.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*types.ClientRecord, error) {
	var rec types.ClientRecord
	var urgency, customerType, contactMethod, channel, status, invoice, estimate, notification string
	var submittedAt *time.Time
	err := row.Scan(&rec.ClientID, &rec.RowIndex, &rec.CompanyName, &rec.ServiceType, &urgency,
		&rec.FullName, &rec.Email, &rec.Phone, &customerType, &rec.ProjectAddress,
		&rec.TechnicalDescription, &rec.BudgetRange, &rec.ExpectedTimeline, &contactMethod,
		&rec.Notes, &rec.SpecialRequirements, &channel, &rec.AssignedTo, &status,
		&invoice, &estimate, &notification, &submittedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.UrgencyLevel = types.UrgencyLevel(urgency)
	rec.CustomerType = types.CustomerType(customerType)
	rec.ContactMethod = types.ContactMethod(contactMethod)
	rec.Channel = types.Channel(channel)
	rec.Status = types.ClientStatus(status)
	rec.InvoiceStatus = types.InvoiceStatus(invoice)
	rec.EstimateStatus = types.EstimateStatus(estimate)
	rec.NotificationStatus = types.NotificationStatus(notification)
	if submittedAt != nil {
		rec.SubmittedAt = *submittedAt
	}
	return &rec, nil
}

func collectClients(rows pgx.Rows) ([]types.ClientRecord, error) {
	defer rows.Close()
	var recs []types.ClientRecord
	for rows.Next() {
		rec, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/apexfield/clientsync/pkg/types"
)

// Postgres error code for unique constraint violation.
const pgUniqueViolation = "23505"

// InsertClient inserts a new canonical client row. A duplicate client_id
// maps to types.ErrConflict.
func (s *Store) InsertClient(ctx context.Context, rec types.ClientRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO clients (client_id, row_index, company_name, service_type, urgency_level,
			full_name, email, phone, customer_type, project_address, technical_description,
			budget_range, expected_timeline, contact_method, notes, special_requirements,
			channel, assigned_to, status, invoice_status, estimate_status, notification_status,
			submitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25)
	`, rec.ClientID, rec.RowIndex, rec.CompanyName, rec.ServiceType, string(rec.UrgencyLevel),
		rec.FullName, rec.Email, rec.Phone, string(rec.CustomerType), rec.ProjectAddress,
		rec.TechnicalDescription, rec.BudgetRange, rec.ExpectedTimeline, string(rec.ContactMethod),
		rec.Notes, rec.SpecialRequirements, string(rec.Channel), rec.AssignedTo,
		string(rec.Status), string(rec.InvoiceStatus), string(rec.EstimateStatus),
		string(rec.NotificationStatus), nullableTime(rec.SubmittedAt), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("client %q: %w", rec.ClientID, types.ErrConflict)
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// UpdateClient replaces the row for rec.ClientID. An unknown ID maps to
// types.ErrNotFound.
func (s *Store) UpdateClient(ctx context.Context, rec types.ClientRecord) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE clients SET
			row_index = $2, company_name = $3, service_type = $4, urgency_level = $5,
			full_name = $6, email = $7, phone = $8, customer_type = $9, project_address = $10,
			technical_description = $11, budget_range = $12, expected_timeline = $13,
			contact_method = $14, notes = $15, special_requirements = $16, channel = $17,
			assigned_to = $18, status = $19, invoice_status = $20, estimate_status = $21,
			notification_status = $22, submitted_at = $23, updated_at = $24
		WHERE client_id = $1
	`, rec.ClientID, rec.RowIndex, rec.CompanyName, rec.ServiceType, string(rec.UrgencyLevel),
		rec.FullName, rec.Email, rec.Phone, string(rec.CustomerType), rec.ProjectAddress,
		rec.TechnicalDescription, rec.BudgetRange, rec.ExpectedTimeline, string(rec.ContactMethod),
		rec.Notes, rec.SpecialRequirements, string(rec.Channel), rec.AssignedTo,
		string(rec.Status), string(rec.InvoiceStatus), string(rec.EstimateStatus),
		string(rec.NotificationStatus), nullableTime(rec.SubmittedAt), rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %q: %w", rec.ClientID, types.ErrNotFound)
	}
	return nil
}

// UpdateRowIndex refreshes the record's external sheet position after an
// ingestion pass recomputes it. Sheet edits shift rows, so a position from
// an earlier pass must never address a mirror cell update.
func (s *Store) UpdateRowIndex(ctx context.Context, clientID string, rowIndex int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE clients SET row_index = $2, updated_at = NOW() WHERE client_id = $1`,
		clientID, rowIndex)
	if err != nil {
		return fmt.Errorf("update row index: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %q: %w", clientID, types.ErrNotFound)
	}
	return nil
}

// DeleteClient removes the row for clientID. An unknown ID maps to
// types.ErrNotFound.
func (s *Store) DeleteClient(ctx context.Context, clientID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE client_id = $1`, clientID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %q: %w", clientID, types.ErrNotFound)
	}
	return nil
}

// AppendAudit appends an audit entry. Entries are never updated or deleted.
func (s *Store) AppendAudit(ctx context.Context, entry types.AuditEntry) error {
	oldJSON, err := marshalValues(entry.OldValues)
	if err != nil {
		return fmt.Errorf("marshal audit old values: %w", err)
	}
	newJSON, err := marshalValues(entry.NewValues)
	if err != nil {
		return fmt.Errorf("marshal audit new values: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_log (id, action, table_name, record_id, old_values, new_values,
			actor_email, origin_ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.Action, entry.TableName, entry.RecordID, oldJSON, newJSON,
		nullableString(entry.ActorEmail), nullableString(entry.OriginIP), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// SetConfigValue upserts a system_config key.
func (s *Store) SetConfigValue(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO system_config (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

// InsertReport inserts a report row for a client.
func (s *Store) InsertReport(ctx context.Context, report types.Report) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reports (id, client_id, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, report.ID, report.ClientID, report.Title, report.Body, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func marshalValues(values map[string]any) ([]byte, error) {
	if values == nil {
		return nil, nil
	}
	return json.Marshal(values)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/apexfield/clientsync/internal/metrics"
	"github.com/apexfield/clientsync/pkg/types"
)

// notifyTimeout bounds the detached notification goroutine, which outlives
// the request context that triggered it.
const notifyTimeout = 15 * time.Second

// CreateClient persists a new client record. The relational insert is
// authoritative; the mirror append and CRM notification are best-effort.
func (s *Service) CreateClient(ctx context.Context, rec types.ClientRecord, actor types.Actor) types.Result {
	if strings.TrimSpace(rec.FullName) == "" {
		return types.Fail("client full name is required", fmt.Errorf("%w: client_full_name empty", types.ErrValidation))
	}

	if rec.ClientID == "" {
		rec.ClientID = s.generateClientID()
	}
	applyDefaults(&rec)
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if s.notificationsEnabled(ctx) {
		rec.NotificationStatus = types.NotificationPending
	} else if rec.NotificationStatus == types.NotificationPending {
		// With notifications toggled off, a caller-supplied pending
		// status must not smuggle a webhook dispatch through.
		rec.NotificationStatus = ""
	}

	if err := s.store.InsertClient(ctx, rec); err != nil {
		err = upstream(err)
		if errors.Is(err, types.ErrConflict) {
			return types.Fail("client id already exists", err)
		}
		return types.Fail("create failed", err)
	}
	metrics.ClientsCreated.Add(1)

	s.audit(ctx, "create", rec.ClientID, nil, snapshotValues(rec), actor)
	s.mirrorAppend(ctx, rec)
	s.dispatchNotification(rec)
	s.invalidateAfterWrite(ctx)

	return types.OK("client created", rec)
}

// UpdateClient applies a partial update. The relational write is
// authoritative; the mirror cell update is keyed by the record's row index
// from the last ingestion pass and fails silently.
func (s *Service) UpdateClient(ctx context.Context, clientID string, patch types.ClientPatch, actor types.Actor) types.Result {
	current, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		err = upstream(err)
		if errors.Is(err, types.ErrNotFound) {
			return types.Fail("client not found", err)
		}
		return types.Fail("update failed", err)
	}

	before := snapshotValues(*current)
	updated := *current
	patch.Apply(&updated)
	updated.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateClient(ctx, updated); err != nil {
		return types.Fail("update failed", upstream(err))
	}
	metrics.ClientsUpdated.Add(1)

	s.audit(ctx, "update", clientID, before, snapshotValues(updated), actor)
	s.mirrorUpdate(ctx, updated.RowIndex, mirrorFields(patch))
	s.invalidateAfterWrite(ctx)

	return types.OK("client updated", updated)
}

// UpdateClientStatus moves a client to a new workflow status.
func (s *Service) UpdateClientStatus(ctx context.Context, clientID string, status types.ClientStatus, actor types.Actor) types.Result {
	normalized := types.NormalizeStatus(string(status))
	return s.UpdateClient(ctx, clientID, types.ClientPatch{Status: &normalized}, actor)
}

// DeleteClient removes a client from the relational store. The mirror keeps
// its row; sheet rows shift on deletion, so removing one remotely would
// invalidate every later row index. Divergence here is accepted.
func (s *Service) DeleteClient(ctx context.Context, clientID string, actor types.Actor) types.Result {
	current, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		err = upstream(err)
		if errors.Is(err, types.ErrNotFound) {
			return types.Fail("client not found", err)
		}
		return types.Fail("delete failed", err)
	}

	if err := s.store.DeleteClient(ctx, clientID); err != nil {
		err = upstream(err)
		if errors.Is(err, types.ErrNotFound) {
			return types.Fail("client not found", err)
		}
		return types.Fail("delete failed", err)
	}
	metrics.ClientsDeleted.Add(1)

	s.audit(ctx, "delete", clientID, snapshotValues(*current), nil, actor)
	s.invalidateAfterWrite(ctx)

	return types.OK("client deleted", nil)
}

// ImportSummary reports the outcome of a batch import.
type ImportSummary struct {
	Imported  int      `json:"imported"`
	Conflicts []string `json:"conflicts,omitempty"`
}

// ImportFromExternalSource bulk-inserts a reconciled batch. Records whose
// client_id already exists are skipped and reported as conflicts; they do
// not abort the rest of the batch.
func (s *Service) ImportFromExternalSource(ctx context.Context, batch []types.ClientRecord, actor types.Actor) types.Result {
	summary := ImportSummary{}
	now := time.Now().UTC()

	for _, rec := range batch {
		if strings.TrimSpace(rec.FullName) == "" {
			continue
		}
		if rec.ClientID == "" {
			rec.ClientID = s.generateClientID()
		}
		applyDefaults(&rec)
		rec.CreatedAt = now
		rec.UpdatedAt = now

		err := s.store.InsertClient(ctx, rec)
		switch {
		case err == nil:
			summary.Imported++
			metrics.ClientsImported.Add(1)
			s.audit(ctx, "import", rec.ClientID, nil, snapshotValues(rec), actor)
		case errors.Is(err, types.ErrConflict):
			summary.Conflicts = append(summary.Conflicts, rec.ClientID)
			// The sheet may have shifted since the record was first
			// imported. Refresh the stored row position so later cell
			// updates land on this record's current row.
			if rec.RowIndex > 0 {
				if rerr := s.store.UpdateRowIndex(ctx, rec.ClientID, rec.RowIndex); rerr != nil {
					s.logger.Warn("row index refresh failed", "client_id", rec.ClientID, "error", rerr)
				}
			}
		default:
			if summary.Imported > 0 {
				s.invalidateAfterWrite(ctx)
			}
			return types.Fail("import aborted", upstream(err))
		}
	}

	if summary.Imported > 0 {
		s.invalidateAfterWrite(ctx)
	}
	msg := fmt.Sprintf("imported %d of %d records", summary.Imported, len(batch))
	return types.OK(msg, summary)
}

// applyDefaults fills unset optional fields per the recognized-option table.
func applyDefaults(rec *types.ClientRecord) {
	if rec.UrgencyLevel == "" {
		rec.UrgencyLevel = types.DefaultUrgency
	}
	if rec.CustomerType == "" {
		rec.CustomerType = types.DefaultCustomerType
	}
	if rec.ContactMethod == "" {
		rec.ContactMethod = types.DefaultContactMethod
	}
	if rec.Channel == "" {
		rec.Channel = types.DefaultChannel
	}
	if rec.Status == "" {
		rec.Status = types.DefaultStatus
	}
}

// audit appends one entry per mutation. A failed append is logged, not
// surfaced: by this point the authoritative write has already committed.
func (s *Service) audit(ctx context.Context, action, recordID string, oldValues, newValues map[string]any, actor types.Actor) {
	entry := types.AuditEntry{
		ID:         ulid.Make().String(),
		Action:     action,
		TableName:  "clients",
		RecordID:   recordID,
		OldValues:  oldValues,
		NewValues:  newValues,
		ActorEmail: actor.Email,
		OriginIP:   actor.IP,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("audit append failed", "action", action, "record_id", recordID, "error", err)
		return
	}
	metrics.AuditEntriesWritten.Add(1)
}

func (s *Service) mirrorAppend(ctx context.Context, rec types.ClientRecord) {
	if !s.mirrorEnabled(ctx) {
		return
	}
	if err := s.mirror.AppendRow(ctx, rec); err != nil {
		metrics.MirrorFailures.Add(1)
		s.logger.Warn("mirror append failed", "client_id", rec.ClientID, "error", err)
		return
	}
	metrics.MirrorWrites.Add(1)
}

func (s *Service) mirrorUpdate(ctx context.Context, rowIndex int, fields map[string]string) {
	if !s.mirrorEnabled(ctx) || len(fields) == 0 {
		return
	}
	if rowIndex <= 0 {
		// Never ingested from the sheet, so there is no row to address.
		s.logger.Debug("mirror update skipped, no row index")
		return
	}
	if err := s.mirror.UpdateCells(ctx, rowIndex, fields); err != nil {
		metrics.MirrorFailures.Add(1)
		s.logger.Warn("mirror update failed", "row_index", rowIndex, "error", err)
		return
	}
	metrics.MirrorWrites.Add(1)
}

// dispatchNotification fires the CRM webhook in a detached goroutine and
// records the outcome on the client's notification status. The caller's
// response never waits on it.
func (s *Service) dispatchNotification(rec types.ClientRecord) {
	if s.notify == nil || rec.NotificationStatus != types.NotificationPending {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		status := types.NotificationSent
		if err := s.notify(ctx, rec); err != nil {
			status = types.NotificationFailed
			metrics.WebhookFailures.Add(1)
			s.logger.Warn("crm notification failed", "client_id", rec.ClientID, "error", err)
		} else {
			metrics.WebhooksSent.Add(1)
		}

		current, err := s.store.GetClient(ctx, rec.ClientID)
		if err != nil {
			s.logger.Warn("notification status load failed", "client_id", rec.ClientID, "error", err)
			return
		}
		current.NotificationStatus = status
		current.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdateClient(ctx, *current); err != nil {
			s.logger.Warn("notification status update failed", "client_id", rec.ClientID, "error", err)
		}
	}()
}

// mirrorFields maps a patch's set fields to the mirror's canonical column
// names for a ranged cell update.
func mirrorFields(p types.ClientPatch) map[string]string {
	fields := make(map[string]string)
	setStr := func(name string, v *string) {
		if v != nil {
			fields[name] = *v
		}
	}
	setStr("company_name", p.CompanyName)
	setStr("service_type", p.ServiceType)
	setStr("client_full_name", p.FullName)
	setStr("email", p.Email)
	setStr("phone", p.Phone)
	setStr("project_address", p.ProjectAddress)
	setStr("technical_description", p.TechnicalDescription)
	setStr("budget_range", p.BudgetRange)
	setStr("expected_timeline", p.ExpectedTimeline)
	setStr("notes", p.Notes)
	setStr("special_requirements", p.SpecialRequirements)
	setStr("assigned_to", p.AssignedTo)
	if p.UrgencyLevel != nil {
		fields["urgency_level"] = string(*p.UrgencyLevel)
	}
	if p.CustomerType != nil {
		fields["customer_type"] = string(*p.CustomerType)
	}
	if p.ContactMethod != nil {
		fields["preferred_contact_method"] = string(*p.ContactMethod)
	}
	if p.Channel != nil {
		fields["channel"] = string(*p.Channel)
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.InvoiceStatus != nil {
		fields["invoice_status"] = string(*p.InvoiceStatus)
	}
	if p.EstimateStatus != nil {
		fields["estimate_status"] = string(*p.EstimateStatus)
	}
	if p.NotificationStatus != nil {
		fields["notification_status"] = string(*p.NotificationStatus)
	}
	return fields
}

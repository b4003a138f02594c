// Package reconcile converts loosely-structured export rows into canonical
// client records.
package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/apexfield/clientsync/internal/tabular"
	"github.com/apexfield/clientsync/pkg/types"
)

// DefaultRowIndexBase is the external position of the first data row in the
// observed export layout: one header row, one template row, 1-based external
// indexing, plus one empirically observed offset. It is NOT a universal
// constant; re-derive it for any other export layout. A wrong base silently
// corrupts in-place mirror cell updates.
const DefaultRowIndexBase = 4

// Timestamp layouts seen in the export, most common first.
var submittedLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006-01-02",
}

// Reconciler maps parsed export rows to ClientRecord values.
type Reconciler struct {
	rowIndexBase int
}

// New creates a Reconciler. A non-positive rowIndexBase falls back to
// DefaultRowIndexBase.
func New(rowIndexBase int) *Reconciler {
	if rowIndexBase <= 0 {
		rowIndexBase = DefaultRowIndexBase
	}
	return &Reconciler{rowIndexBase: rowIndexBase}
}

// Reconcile transforms parsed rows into canonical records.
//
// The first row is the header row; the row after it is a template/sample row
// and is excluded. For the data row at zero-based position i, the external
// position is i + rowIndexBase, recomputed on every pass so a stale index
// from a previous ingestion never targets a write.
//
// A row whose positionally-extracted full name trims to empty contributes no
// record and no client ID, but still occupies its external position, so later
// rows keep their correct indexes.
//
// Output is ordered by RowIndex descending (most recently appended first);
// equal indexes order by SubmittedAt descending, with unparseable dates at
// the end.
func (r *Reconciler) Reconcile(rows []tabular.Row) []types.ClientRecord {
	if len(rows) < 3 {
		return nil
	}
	header := tabular.RecoverHeader(rows[0])
	data := rows[2:]

	records := make([]types.ClientRecord, 0, len(data))
	for i, row := range data {
		fullName := strings.TrimSpace(row.At(tabular.ColFullName))
		if fullName == "" {
			continue
		}

		rec := types.ClientRecord{
			RowIndex: i + r.rowIndexBase,
			FullName: fullName,
			Email:    strings.TrimSpace(row.At(tabular.ColEmail)),
			Phone:    strings.TrimSpace(row.At(tabular.ColPhone)),

			ClientID:             header.Value(row, "client_id"),
			CompanyName:          header.Value(row, "company"),
			ServiceType:          header.Value(row, "service"),
			ProjectAddress:       header.Value(row, "address"),
			TechnicalDescription: header.Value(row, "description"),
			BudgetRange:          header.Value(row, "budget"),
			ExpectedTimeline:     header.Value(row, "timeline"),
			Notes:                header.Value(row, "notes"),
			SpecialRequirements:  header.Value(row, "special"),
			AssignedTo:           header.Value(row, "assigned"),

			UrgencyLevel:       types.NormalizeUrgency(header.Value(row, "urgency")),
			CustomerType:       types.NormalizeCustomerType(header.Value(row, "customer")),
			ContactMethod:      types.NormalizeContactMethod(header.Value(row, "contact")),
			Channel:            types.NormalizeChannel(header.Value(row, "channel")),
			Status:             types.NormalizeStatus(header.Value(row, "status")),
			SubmittedAt:        parseSubmitted(header.Value(row, "timestamp")),
			InvoiceStatus:      normalizeInvoice(header.Value(row, "invoice")),
			EstimateStatus:     normalizeEstimate(header.Value(row, "estimate")),
			NotificationStatus: normalizeNotification(header.Value(row, "notification")),
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(a, b int) bool {
		if records[a].RowIndex != records[b].RowIndex {
			return records[a].RowIndex > records[b].RowIndex
		}
		return records[a].SubmittedAt.After(records[b].SubmittedAt)
	})
	return records
}

// parseSubmitted parses the intake timestamp. Unparseable input returns the
// zero time, which sorts last.
func parseSubmitted(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range submittedLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func normalizeInvoice(raw string) types.InvoiceStatus {
	for _, s := range []types.InvoiceStatus{types.InvoicePending, types.InvoiceSent, types.InvoicePaid} {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return types.InvoicePending
}

func normalizeEstimate(raw string) types.EstimateStatus {
	for _, s := range []types.EstimateStatus{types.EstimatePending, types.EstimateSent, types.EstimateAccepted, types.EstimateRejected} {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return types.EstimatePending
}

func normalizeNotification(raw string) types.NotificationStatus {
	for _, s := range []types.NotificationStatus{types.NotificationPending, types.NotificationSent, types.NotificationFailed} {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return types.NotificationPending
}

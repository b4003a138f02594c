package mirror

import (
	"strconv"
	"time"

	"github.com/apexfield/clientsync/pkg/types"
)

// fieldColumns is the fixed field-to-column mapping for the mirror sheet, in
// column order. This table drives cell addressing for in-place updates and
// value ordering for appends. It is intentionally separate from the
// name-based header lookup used on ingestion: header text in the sheet is
// unreliable, the column layout is the contract.
var fieldColumns = []string{
	"submitted_at",          // A
	"company_name",          // B
	"service_type",          // C
	"urgency_level",         // D
	"customer_type",         // E
	"project_address",       // F
	"technical_description", // G
	"budget_range",          // H
	"expected_timeline",     // I
	"preferred_contact_method", // J
	"client_full_name",      // K
	"email",                 // L
	"notes",                 // M
	"special_requirements",  // N
	"phone",                 // O
	"channel",               // P
	"assigned_to",           // Q
	"status",                // R
	"invoice_status",        // S
	"estimate_status",       // T
	"notification_status",   // U
	"client_id",             // V
}

// ColumnLetter returns the sheet column letter for a canonical field name.
func ColumnLetter(field string) (string, bool) {
	for i, name := range fieldColumns {
		if name == field {
			return columnLetter(i), true
		}
	}
	return "", false
}

// columnLetter converts a zero-based column index to its letter address
// (A, B, ..., Z, AA, AB, ...).
func columnLetter(index int) string {
	letter := ""
	for index >= 0 {
		letter = string(rune('A'+index%26)) + letter
		index = index/26 - 1
	}
	return letter
}

// CellRange addresses a single cell by canonical field name and 1-based row
// index.
func CellRange(field string, rowIndex int) (string, bool) {
	letter, ok := ColumnLetter(field)
	if !ok {
		return "", false
	}
	return letter + strconv.Itoa(rowIndex), true
}

// rowValues flattens a record into sheet-column order for appends.
func rowValues(rec types.ClientRecord) []string {
	values := map[string]string{
		"submitted_at":             formatSubmitted(rec.SubmittedAt),
		"company_name":             rec.CompanyName,
		"service_type":             rec.ServiceType,
		"urgency_level":            string(rec.UrgencyLevel),
		"customer_type":            string(rec.CustomerType),
		"project_address":          rec.ProjectAddress,
		"technical_description":    rec.TechnicalDescription,
		"budget_range":             rec.BudgetRange,
		"expected_timeline":        rec.ExpectedTimeline,
		"preferred_contact_method": string(rec.ContactMethod),
		"client_full_name":         rec.FullName,
		"email":                    rec.Email,
		"notes":                    rec.Notes,
		"special_requirements":     rec.SpecialRequirements,
		"phone":                    rec.Phone,
		"channel":                  string(rec.Channel),
		"assigned_to":              rec.AssignedTo,
		"status":                   string(rec.Status),
		"invoice_status":           string(rec.InvoiceStatus),
		"estimate_status":          string(rec.EstimateStatus),
		"notification_status":      string(rec.NotificationStatus),
		"client_id":                rec.ClientID,
	}
	row := make([]string, len(fieldColumns))
	for i, field := range fieldColumns {
		row[i] = values[field]
	}
	return row
}

func formatSubmitted(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

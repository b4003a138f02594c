package types

import "time"

// ClientRecord is the canonical client entity. The relational store owns it;
// the spreadsheet mirror is a read path and legacy intake channel only.
type ClientRecord struct {
	ClientID string `json:"client_id"`

	// RowIndex is the 1-based position of the record in the external tabular
	// source at the time of last ingestion. It shifts as rows are appended or
	// removed, so it only addresses in-place mirror cell updates and is never
	// used as identity.
	RowIndex int `json:"row_index,omitempty"`

	CompanyName          string        `json:"company_name,omitempty"`
	ServiceType          string        `json:"service_type,omitempty"`
	UrgencyLevel         UrgencyLevel  `json:"urgency_level,omitempty"`
	FullName             string        `json:"client_full_name"`
	Email                string        `json:"email,omitempty"`
	Phone                string        `json:"phone,omitempty"`
	CustomerType         CustomerType  `json:"customer_type,omitempty"`
	ProjectAddress       string        `json:"project_address,omitempty"`
	TechnicalDescription string        `json:"technical_description,omitempty"`
	BudgetRange          string        `json:"budget_range,omitempty"`
	ExpectedTimeline     string        `json:"expected_timeline,omitempty"`
	ContactMethod        ContactMethod `json:"preferred_contact_method,omitempty"`
	Notes                string        `json:"notes,omitempty"`
	SpecialRequirements  string        `json:"special_requirements,omitempty"`
	Channel              Channel       `json:"channel,omitempty"`
	AssignedTo           string        `json:"assigned_to,omitempty"`

	Status             ClientStatus       `json:"status,omitempty"`
	InvoiceStatus      InvoiceStatus      `json:"invoice_status,omitempty"`
	EstimateStatus     EstimateStatus     `json:"estimate_status,omitempty"`
	NotificationStatus NotificationStatus `json:"notification_status,omitempty"`

	// SubmittedAt is the intake timestamp parsed from the external source,
	// used only to order ties between equal row indexes.
	SubmittedAt time.Time `json:"submitted_at,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ClientPatch is a partial update to a ClientRecord. Nil fields are left
// untouched.
type ClientPatch struct {
	CompanyName          *string        `json:"company_name,omitempty"`
	ServiceType          *string        `json:"service_type,omitempty"`
	UrgencyLevel         *UrgencyLevel  `json:"urgency_level,omitempty"`
	FullName             *string        `json:"client_full_name,omitempty"`
	Email                *string        `json:"email,omitempty"`
	Phone                *string        `json:"phone,omitempty"`
	CustomerType         *CustomerType  `json:"customer_type,omitempty"`
	ProjectAddress       *string        `json:"project_address,omitempty"`
	TechnicalDescription *string        `json:"technical_description,omitempty"`
	BudgetRange          *string        `json:"budget_range,omitempty"`
	ExpectedTimeline     *string        `json:"expected_timeline,omitempty"`
	ContactMethod        *ContactMethod `json:"preferred_contact_method,omitempty"`
	Notes                *string        `json:"notes,omitempty"`
	SpecialRequirements  *string        `json:"special_requirements,omitempty"`
	Channel              *Channel       `json:"channel,omitempty"`
	AssignedTo           *string        `json:"assigned_to,omitempty"`

	Status             *ClientStatus       `json:"status,omitempty"`
	InvoiceStatus      *InvoiceStatus      `json:"invoice_status,omitempty"`
	EstimateStatus     *EstimateStatus     `json:"estimate_status,omitempty"`
	NotificationStatus *NotificationStatus `json:"notification_status,omitempty"`
}

// Apply copies the patch's set fields onto the record.
func (p ClientPatch) Apply(rec *ClientRecord) {
	if p.CompanyName != nil {
		rec.CompanyName = *p.CompanyName
	}
	if p.ServiceType != nil {
		rec.ServiceType = *p.ServiceType
	}
	if p.UrgencyLevel != nil {
		rec.UrgencyLevel = *p.UrgencyLevel
	}
	if p.FullName != nil {
		rec.FullName = *p.FullName
	}
	if p.Email != nil {
		rec.Email = *p.Email
	}
	if p.Phone != nil {
		rec.Phone = *p.Phone
	}
	if p.CustomerType != nil {
		rec.CustomerType = *p.CustomerType
	}
	if p.ProjectAddress != nil {
		rec.ProjectAddress = *p.ProjectAddress
	}
	if p.TechnicalDescription != nil {
		rec.TechnicalDescription = *p.TechnicalDescription
	}
	if p.BudgetRange != nil {
		rec.BudgetRange = *p.BudgetRange
	}
	if p.ExpectedTimeline != nil {
		rec.ExpectedTimeline = *p.ExpectedTimeline
	}
	if p.ContactMethod != nil {
		rec.ContactMethod = *p.ContactMethod
	}
	if p.Notes != nil {
		rec.Notes = *p.Notes
	}
	if p.SpecialRequirements != nil {
		rec.SpecialRequirements = *p.SpecialRequirements
	}
	if p.Channel != nil {
		rec.Channel = *p.Channel
	}
	if p.AssignedTo != nil {
		rec.AssignedTo = *p.AssignedTo
	}
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.InvoiceStatus != nil {
		rec.InvoiceStatus = *p.InvoiceStatus
	}
	if p.EstimateStatus != nil {
		rec.EstimateStatus = *p.EstimateStatus
	}
	if p.NotificationStatus != nil {
		rec.NotificationStatus = *p.NotificationStatus
	}
}

// AuditEntry records a single mutation. Entries are created exactly once per
// mutating operation and are never updated or deleted.
type AuditEntry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	TableName  string         `json:"table_name"`
	RecordID   string         `json:"record_id"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"` // nil for deletes
	ActorEmail string         `json:"actor_email,omitempty"`
	OriginIP   string         `json:"origin_ip,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Actor identifies who performed a mutation and from where. Both fields may
// be empty for system-originated operations.
type Actor struct {
	Email string `json:"email,omitempty"`
	IP    string `json:"ip,omitempty"`
}

// Report is a related entity keyed to a client. Report generation itself is
// out of scope; only the persisted surface exists.
type Report struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientStats summarizes the canonical store.
type ClientStats struct {
	Total     int                  `json:"total"`
	ByStatus  map[ClientStatus]int `json:"by_status"`
	ByChannel map[Channel]int      `json:"by_channel"`
	NewLeads  int                  `json:"new_leads"`
	ThisWeek  int                  `json:"this_week"`
}

// Result is the envelope every service operation returns to the (external)
// transport layer.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK builds a successful Result.
func OK(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

// Fail builds a failed Result from an error.
func Fail(message string, err error) Result {
	r := Result{Success: false, Message: message}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Package types defines the public domain types for the clientsync intake engine.
package types

// ClientStatus represents the workflow lifecycle state of a client record.
type ClientStatus string

// ClientStatus values follow the intake lifecycle. Transitions are not
// validated against this order; any recognized value is accepted.
const (
	StatusNewLead           ClientStatus = "New Lead"
	StatusContacted         ClientStatus = "Contacted"
	StatusQuoted            ClientStatus = "Quoted"
	StatusPendingInspection ClientStatus = "Pending Inspection"
	StatusInProgress        ClientStatus = "In Progress"
	StatusCompleted         ClientStatus = "Completed"
	StatusCancelled         ClientStatus = "Cancelled"
)

// InvoiceStatus represents the billing state of a client record.
type InvoiceStatus string

// InvoiceStatus values.
const (
	InvoicePending InvoiceStatus = "Pending"
	InvoiceSent    InvoiceStatus = "Sent"
	InvoicePaid    InvoiceStatus = "Paid"
)

// EstimateStatus represents the quoting state of a client record.
type EstimateStatus string

// EstimateStatus values.
const (
	EstimatePending  EstimateStatus = "Pending"
	EstimateSent     EstimateStatus = "Sent"
	EstimateAccepted EstimateStatus = "Accepted"
	EstimateRejected EstimateStatus = "Rejected"
)

// NotificationStatus tracks the outcome of the outbound CRM notification.
type NotificationStatus string

// NotificationStatus values.
const (
	NotificationPending NotificationStatus = "Pending"
	NotificationSent    NotificationStatus = "Sent"
	NotificationFailed  NotificationStatus = "Failed"
)

// CustomerType classifies the client.
type CustomerType string

// CustomerType values.
const (
	CustomerResidential CustomerType = "Residential"
	CustomerCommercial  CustomerType = "Commercial"
	CustomerIndustrial  CustomerType = "Industrial"
)

// ContactMethod is the client's preferred contact channel.
type ContactMethod string

// ContactMethod values.
const (
	ContactPhone ContactMethod = "Phone"
	ContactEmail ContactMethod = "Email"
	ContactText  ContactMethod = "Text"
)

// Channel is the acquisition channel the client arrived through.
type Channel string

// Channel values.
const (
	ChannelWebsite  Channel = "Website"
	ChannelPhone    Channel = "Phone"
	ChannelReferral Channel = "Referral"
	ChannelWalkIn   Channel = "Walk-in"
)

// UrgencyLevel grades how quickly the client expects a response.
type UrgencyLevel string

// UrgencyLevel values.
const (
	UrgencyLow       UrgencyLevel = "Low"
	UrgencyMedium    UrgencyLevel = "Medium"
	UrgencyHigh      UrgencyLevel = "High"
	UrgencyEmergency UrgencyLevel = "Emergency"
)

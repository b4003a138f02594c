package types

import "strings"

// Recognized option tables. The intake source is human-edited, so values are
// normalized case-insensitively against these lists; unrecognized input falls
// back to the table's default.
var (
	UrgencyLevels = []UrgencyLevel{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency}

	CustomerTypes = []CustomerType{CustomerResidential, CustomerCommercial, CustomerIndustrial}

	ContactMethods = []ContactMethod{ContactPhone, ContactEmail, ContactText}

	Channels = []Channel{ChannelWebsite, ChannelPhone, ChannelReferral, ChannelWalkIn}

	ClientStatuses = []ClientStatus{
		StatusNewLead, StatusContacted, StatusQuoted, StatusPendingInspection,
		StatusInProgress, StatusCompleted, StatusCancelled,
	}
)

// Defaults applied on create when the field is unset.
const (
	DefaultUrgency       = UrgencyMedium
	DefaultCustomerType  = CustomerResidential
	DefaultContactMethod = ContactPhone
	DefaultChannel       = ChannelWebsite
	DefaultStatus        = StatusNewLead
)

// NormalizeUrgency maps raw input to a recognized urgency, defaulting to Medium.
func NormalizeUrgency(raw string) UrgencyLevel {
	for _, u := range UrgencyLevels {
		if strings.EqualFold(raw, string(u)) {
			return u
		}
	}
	return DefaultUrgency
}

// NormalizeCustomerType maps raw input to a recognized customer type,
// defaulting to Residential.
func NormalizeCustomerType(raw string) CustomerType {
	for _, c := range CustomerTypes {
		if strings.EqualFold(raw, string(c)) {
			return c
		}
	}
	return DefaultCustomerType
}

// NormalizeContactMethod maps raw input to a recognized contact method,
// defaulting to Phone.
func NormalizeContactMethod(raw string) ContactMethod {
	for _, m := range ContactMethods {
		if strings.EqualFold(raw, string(m)) {
			return m
		}
	}
	return DefaultContactMethod
}

// NormalizeChannel maps raw input to a recognized acquisition channel,
// defaulting to Website. "Walk in" and "walk-in" both match.
func NormalizeChannel(raw string) Channel {
	cleaned := strings.ReplaceAll(raw, " ", "-")
	for _, c := range Channels {
		if strings.EqualFold(cleaned, string(c)) {
			return c
		}
	}
	return DefaultChannel
}

// NormalizeStatus maps raw input to a recognized lifecycle status, defaulting
// to New Lead. Lifecycle order is deliberately not enforced.
func NormalizeStatus(raw string) ClientStatus {
	for _, s := range ClientStatuses {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return DefaultStatus
}

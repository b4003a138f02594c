package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexfield/clientsync/internal/tabular"
	"github.com/apexfield/clientsync/pkg/types"
)

var headerRow = tabular.Row{
	"Timestamp 2024-01-01 09:00:00", "Company_Name Acme", "Service_Type Repair",
	"Urgency_Level Medium", "Customer_Type Residential", "Project_Address 1 Main St",
	"Technical_Description sample", "Budget_Range $1k", "Expected_Timeline soon",
	"Preferred_Contact Phone", "Client_Full_Name Jane Doe", "Email_Address jane@x.com",
	"Notes none", "Special_Requirements none", "Phone_Number 555-0100",
	"Channel Website", "Assigned_To Sam", "Status New", "Invoice_Status Pending",
	"Estimate_Status Pending", "Notification_Status Pending", "Client_ID CLI000000AAA",
}

var templateRow = tabular.Row{
	"2024-01-01 09:00:00", "Template Co", "Repair", "Medium", "Residential",
	"1 Example Rd", "sample", "$0", "never", "Phone", "Template Person",
	"template@x.com", "", "", "555-0000", "Website", "", "New Lead",
	"Pending", "Pending", "Pending", "",
}

func dataRow(ts, name, email, phone string) tabular.Row {
	return tabular.Row{
		ts, "Acme Plumbing", "Repair", "High", "Commercial", "12 Canal St",
		"burst pipe", "$2k-$5k", "this week", "Email", name, email,
		"call after 5", "gate code 1234", phone, "Referral", "Sam",
		"Contacted", "Sent", "Accepted", "Sent", "CLI123456XYZ",
	}
}

func TestReconcile_MapsFields(t *testing.T) {
	rows := []tabular.Row{headerRow, templateRow, dataRow("2024-03-04 10:30:00", "John Smith", "john@x.com", "555-0199")}
	recs := New(4).Reconcile(rows)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, 4, rec.RowIndex)
	assert.Equal(t, "John Smith", rec.FullName)
	assert.Equal(t, "john@x.com", rec.Email)
	assert.Equal(t, "555-0199", rec.Phone)
	assert.Equal(t, "Acme Plumbing", rec.CompanyName)
	assert.Equal(t, "Repair", rec.ServiceType)
	assert.Equal(t, types.UrgencyHigh, rec.UrgencyLevel)
	assert.Equal(t, types.CustomerCommercial, rec.CustomerType)
	assert.Equal(t, "12 Canal St", rec.ProjectAddress)
	assert.Equal(t, "burst pipe", rec.TechnicalDescription)
	assert.Equal(t, types.ContactEmail, rec.ContactMethod)
	assert.Equal(t, types.ChannelReferral, rec.Channel)
	assert.Equal(t, types.StatusContacted, rec.Status)
	assert.Equal(t, types.InvoiceSent, rec.InvoiceStatus)
	assert.Equal(t, types.EstimateAccepted, rec.EstimateStatus)
	assert.Equal(t, types.NotificationSent, rec.NotificationStatus)
	assert.Equal(t, "CLI123456XYZ", rec.ClientID)
	assert.Equal(t, time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC), rec.SubmittedAt)
}

func TestReconcile_TemplateRowExcluded(t *testing.T) {
	rows := []tabular.Row{headerRow, templateRow}
	assert.Empty(t, New(4).Reconcile(rows))
}

func TestReconcile_EmptyNameDroppedWithoutShiftingIndexes(t *testing.T) {
	rows := []tabular.Row{
		headerRow,
		templateRow,
		dataRow("2024-03-01 08:00:00", "First Person", "a@x.com", "555-0001"),
		dataRow("2024-03-02 08:00:00", "   ", "ghost@x.com", "555-0002"),
		dataRow("2024-03-03 08:00:00", "Third Person", "c@x.com", "555-0003"),
	}
	recs := New(4).Reconcile(rows)
	require.Len(t, recs, 2)

	// Descending by row index: the later row first, and the dropped row
	// still occupies position 5.
	assert.Equal(t, "Third Person", recs[0].FullName)
	assert.Equal(t, 6, recs[0].RowIndex)
	assert.Equal(t, "First Person", recs[1].FullName)
	assert.Equal(t, 4, recs[1].RowIndex)
}

func TestReconcile_OrdersByRowIndexDescending(t *testing.T) {
	rows := []tabular.Row{
		headerRow,
		templateRow,
		dataRow("2024-01-01 08:00:00", "Oldest", "o@x.com", "1"),
		dataRow("2024-06-01 08:00:00", "Middle", "m@x.com", "2"),
		dataRow("not a date", "Newest", "n@x.com", "3"),
	}
	recs := New(4).Reconcile(rows)
	require.Len(t, recs, 3)
	assert.Equal(t, []int{6, 5, 4}, []int{recs[0].RowIndex, recs[1].RowIndex, recs[2].RowIndex})
	assert.Equal(t, "Newest", recs[0].FullName)
	// Unparseable dates parse as the zero time so they lose any timestamp tie.
	assert.True(t, recs[0].SubmittedAt.IsZero())
}

func TestReconcile_FewerThanThreeRows(t *testing.T) {
	assert.Empty(t, New(4).Reconcile(nil))
	assert.Empty(t, New(4).Reconcile([]tabular.Row{headerRow}))
}

func TestReconcile_CustomRowIndexBase(t *testing.T) {
	rows := []tabular.Row{headerRow, templateRow, dataRow("2024-03-01 08:00:00", "Someone", "s@x.com", "555")}
	recs := New(6).Reconcile(rows)
	require.Len(t, recs, 1)
	assert.Equal(t, 6, recs[0].RowIndex)
}

func TestReconcile_IdempotentAcrossPasses(t *testing.T) {
	rows := []tabular.Row{
		headerRow,
		templateRow,
		dataRow("2024-03-01 08:00:00", "A", "a@x.com", "1"),
		dataRow("2024-03-02 08:00:00", "B", "b@x.com", "2"),
	}
	r := New(4)
	first := r.Reconcile(rows)
	second := r.Reconcile(rows)
	assert.Equal(t, first, second)
}

func TestReconcile_UnknownOptionValuesFallBackToDefaults(t *testing.T) {
	row := dataRow("2024-03-01 08:00:00", "Someone", "s@x.com", "555")
	row[3] = "ASAP!!!"   // urgency
	row[4] = "gov"       // customer type
	row[9] = "carrier"   // contact method
	row[15] = "billboard" // channel
	row[17] = "???"      // status

	recs := New(4).Reconcile([]tabular.Row{headerRow, templateRow, row})
	require.Len(t, recs, 1)
	assert.Equal(t, types.DefaultUrgency, recs[0].UrgencyLevel)
	assert.Equal(t, types.DefaultCustomerType, recs[0].CustomerType)
	assert.Equal(t, types.DefaultContactMethod, recs[0].ContactMethod)
	assert.Equal(t, types.DefaultChannel, recs[0].Channel)
	assert.Equal(t, types.DefaultStatus, recs[0].Status)
}

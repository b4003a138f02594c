package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverHeader_TokenBeforeWhitespace(t *testing.T) {
	h := RecoverHeader(Row{
		"Timestamp 2024-01-01",
		"Company_Name Acme Corp",
		"Service_Type Repair",
		"",
	})
	assert.Equal(t, []string{"Timestamp", "Company_Name", "Service_Type", ""}, h.Names())
}

func TestHeaderValue_CaseInsensitiveSubstring(t *testing.T) {
	h := RecoverHeader(Row{"Timestamp", "Company_Name", "Service_Type"})
	row := Row{"2024-01-01", "Acme", "Repair"}

	assert.Equal(t, "Acme", h.Value(row, "company"))
	assert.Equal(t, "Repair", h.Value(row, "SERVICE"))
	assert.Equal(t, "", h.Value(row, "missing"))
	assert.Equal(t, "", h.Value(row, ""))
}

func TestHeaderValue_FirstMatchWins(t *testing.T) {
	h := RecoverHeader(Row{"Status_Invoice", "Status_Estimate"})
	row := Row{"Paid", "Sent"}
	assert.Equal(t, "Paid", h.Value(row, "status"))
}

func TestHeaderValue_RaggedRow(t *testing.T) {
	h := RecoverHeader(Row{"A", "B", "C"})
	row := Row{"only"}
	assert.Equal(t, "", h.Value(row, "c"))
}

func TestHeaderIndex(t *testing.T) {
	h := RecoverHeader(Row{"Timestamp", "Company_Name"})
	assert.Equal(t, 1, h.Index("company"))
	assert.Equal(t, -1, h.Index("zzz"))
}

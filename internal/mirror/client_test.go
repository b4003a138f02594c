package mirror

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexfield/clientsync/pkg/types"
)

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", columnLetter(0))
	assert.Equal(t, "Z", columnLetter(25))
	assert.Equal(t, "AA", columnLetter(26))
	assert.Equal(t, "AB", columnLetter(27))
}

func TestColumnMapping_TrustedOffsetsAgree(t *testing.T) {
	// The mapping table must place the positionally-accessed fields at the
	// trusted offsets the ingestion side reads: full name 10 (K), email 11
	// (L), phone 14 (O).
	letter, ok := ColumnLetter("client_full_name")
	require.True(t, ok)
	assert.Equal(t, "K", letter)

	letter, _ = ColumnLetter("email")
	assert.Equal(t, "L", letter)

	letter, _ = ColumnLetter("phone")
	assert.Equal(t, "O", letter)
}

func TestCellRange(t *testing.T) {
	cell, ok := CellRange("status", 7)
	require.True(t, ok)
	assert.Equal(t, "R7", cell)

	_, ok = CellRange("no_such_field", 7)
	assert.False(t, ok)
}

func TestFetchExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sheets/clients/export", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, "a,b\nc,d\n")
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
	raw, err := c.FetchExport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a,b\nc,d\n", raw)
}

func TestAppendRow_SendsColumnOrderedValues(t *testing.T) {
	var got appendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sheets/clients/rows", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	rec := types.ClientRecord{
		ClientID: "CLI123456XYZ",
		FullName: "Jane Doe",
		Email:    "jane@x.com",
		Phone:    "555-0100",
		Status:   types.StatusNewLead,
	}
	require.NoError(t, c.AppendRow(context.Background(), rec))

	require.Len(t, got.Values, len(fieldColumns))
	assert.Equal(t, "Jane Doe", got.Values[10])
	assert.Equal(t, "jane@x.com", got.Values[11])
	assert.Equal(t, "555-0100", got.Values[14])
	assert.Equal(t, "CLI123456XYZ", got.Values[21])
}

func TestUpdateCells_AddressesByColumnAndRow(t *testing.T) {
	var got batchUpdateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	err := c.UpdateCells(context.Background(), 9, map[string]string{
		"status": "Contacted",
		"email":  "new@x.com",
	})
	require.NoError(t, err)

	require.Len(t, got.Updates, 2)
	// Updates follow column order: email (L) before status (R).
	assert.Equal(t, cellUpdate{Range: "L9", Value: "new@x.com"}, got.Updates[0])
	assert.Equal(t, cellUpdate{Range: "R9", Value: "Contacted"}, got.Updates[1])
}

func TestUpdateCells_RejectsNonPositiveRow(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://mirror.invalid"})
	err := c.UpdateCells(context.Background(), 0, map[string]string{"status": "x"})
	assert.ErrorIs(t, err, types.ErrMirror)
}

func TestDo_ErrorStatusIsMirrorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sheet locked", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	_, err := c.FetchExport(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMirror)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := c.FetchExport(ctx)
		require.Error(t, err)
	}
	// Breaker open: the call fails fast without reaching the server.
	srv.Close()
	_, err := c.FetchExport(ctx)
	assert.ErrorIs(t, err, types.ErrMirror)
}

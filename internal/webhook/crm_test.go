package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexfield/clientsync/pkg/types"
)

func TestNotify_PostsMappedPayload(t *testing.T) {
	var got crmPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	n := NewCRMNotifier(srv.URL)
	rec := types.ClientRecord{
		ClientID:     "CLI123456XYZ",
		FullName:     "Jane Doe",
		CompanyName:  "Acme",
		Email:        "jane@x.com",
		ServiceType:  "Repair",
		UrgencyLevel: types.UrgencyHigh,
		Channel:      types.ChannelReferral,
	}
	require.NoError(t, n.Notify(context.Background(), rec))

	assert.Equal(t, "CLI123456XYZ", got.LeadID)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "High", got.Urgency)
	assert.Equal(t, "Referral", got.Source)
	assert.NotEmpty(t, got.CorrelationID)
}

func TestNotify_CorrelationIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p crmPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.False(t, seen[p.CorrelationID])
		seen[p.CorrelationID] = true
	}))
	defer srv.Close()

	n := NewCRMNotifier(srv.URL)
	for i := 0; i < 3; i++ {
		require.NoError(t, n.Notify(context.Background(), types.ClientRecord{ClientID: "CLI000000AAA", FullName: "X"}))
	}
	assert.Len(t, seen, 3)
}

func TestNotify_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewCRMNotifier(srv.URL)
	err := n.Notify(context.Background(), types.ClientRecord{ClientID: "CLI000000AAA", FullName: "X"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMirror)
}

func TestNotify_ConnectionRefused(t *testing.T) {
	n := NewCRMNotifier("http://127.0.0.1:1")
	err := n.Notify(context.Background(), types.ClientRecord{ClientID: "CLI000000AAA", FullName: "X"})
	assert.ErrorIs(t, err, types.ErrMirror)
}

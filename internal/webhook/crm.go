// Package webhook delivers new-client notifications to the downstream CRM.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/apexfield/clientsync/pkg/types"
)

// Webhook HTTP delivery defaults.
const (
	webhookTimeout = 10 * time.Second
)

// crmPayload is the receiver's expected schema, field-mapped from the
// canonical record.
type crmPayload struct {
	CorrelationID string `json:"correlation_id"`
	LeadID        string `json:"lead_id"`
	Name          string `json:"name"`
	Company       string `json:"company,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Service       string `json:"service,omitempty"`
	Address       string `json:"address,omitempty"`
	Urgency       string `json:"urgency,omitempty"`
	Source        string `json:"source,omitempty"`
	SubmittedAt   string `json:"submitted_at,omitempty"`
}

// CRMNotifier sends one JSON POST per created client to the CRM webhook URL.
type CRMNotifier struct {
	url    string
	client *http.Client
	logger *slog.Logger

	mu      sync.Mutex // guards entropy; Notify runs from concurrent goroutines
	entropy *ulid.MonotonicEntropy
}

// NewCRMNotifier creates a new CRM webhook notifier.
func NewCRMNotifier(url string) *CRMNotifier {
	return &CRMNotifier{
		url: url,
		client: &http.Client{
			Timeout: webhookTimeout,
		},
		logger:  slog.Default(),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// SetLogger overrides the default logger.
func (n *CRMNotifier) SetLogger(l *slog.Logger) {
	if l != nil {
		n.logger = l
	}
}

// Notify posts the record to the CRM. Failures are returned for the caller
// to record against the client's notification status; they never fail the
// create that triggered them.
func (n *CRMNotifier) Notify(ctx context.Context, rec types.ClientRecord) error {
	n.mu.Lock()
	correlationID := ulid.MustNew(ulid.Timestamp(time.Now()), n.entropy).String()
	n.mu.Unlock()

	payload := crmPayload{
		CorrelationID: correlationID,
		LeadID:        rec.ClientID,
		Name:          rec.FullName,
		Company:       rec.CompanyName,
		Email:         rec.Email,
		Phone:         rec.Phone,
		Service:       rec.ServiceType,
		Address:       rec.ProjectAddress,
		Urgency:       string(rec.UrgencyLevel),
		Source:        string(rec.Channel),
	}
	if !rec.SubmittedAt.IsZero() {
		payload.SubmittedAt = rec.SubmittedAt.Format(time.RFC3339)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal crm payload: %v", types.ErrMirror, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrMirror, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: crm POST failed: %v", types.ErrMirror, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: crm returned status %d", types.ErrMirror, resp.StatusCode)
	}
	return nil
}

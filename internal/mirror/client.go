// Package mirror talks to the spreadsheet mirror of the client intake sheet.
//
// The mirror is advisory: every write through this package is best-effort,
// and callers treat failures as observability events, never as operation
// failures. Reads feed the ingestion pipeline.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/apexfield/clientsync/pkg/types"
)

// Outbound HTTP defaults. Calls are bounded so the authoritative path never
// blocks on an unavailable mirror.
const (
	requestTimeout = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Sheet      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is the HTTP client for the spreadsheet mirror gateway.
type Client struct {
	baseURL string
	apiKey  string
	sheet   string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewClient creates a mirror client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sheet := opts.Sheet
	if sheet == "" {
		sheet = "clients"
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "mirror",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("mirror breaker state change", "from", from.String(), "to", to.String())
		},
	})
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		sheet:   sheet,
		http:    httpClient,
		breaker: breaker,
		logger:  logger,
	}
}

// FetchExport downloads the sheet's raw delimited export.
func (c *Client) FetchExport(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, c.sheetPath("export"), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

type appendRequest struct {
	Values []string `json:"values"`
}

// AppendRow appends the record as a new sheet row in column order.
func (c *Client) AppendRow(ctx context.Context, rec types.ClientRecord) error {
	payload, err := json.Marshal(appendRequest{Values: rowValues(rec)})
	if err != nil {
		return fmt.Errorf("%w: marshal append: %v", types.ErrMirror, err)
	}
	_, err = c.do(ctx, http.MethodPost, c.sheetPath("rows"), payload)
	return err
}

type cellUpdate struct {
	Range string `json:"range"`
	Value string `json:"value"`
}

type batchUpdateRequest struct {
	Updates []cellUpdate `json:"updates"`
}

// UpdateCells writes the given canonical field values into the sheet row at
// rowIndex, addressing each cell through the fixed column mapping. Unknown
// fields are skipped; the sheet has no cell for them.
//
// rowIndex must come from the current ingestion pass. Row positions shift as
// the sheet is edited, so a stale index would silently overwrite someone
// else's row.
func (c *Client) UpdateCells(ctx context.Context, rowIndex int, fields map[string]string) error {
	if rowIndex <= 0 {
		return fmt.Errorf("%w: row index %d not addressable", types.ErrMirror, rowIndex)
	}
	updates := make([]cellUpdate, 0, len(fields))
	for _, field := range fieldColumns {
		value, ok := fields[field]
		if !ok {
			continue
		}
		cell, _ := CellRange(field, rowIndex)
		updates = append(updates, cellUpdate{Range: cell, Value: value})
	}
	if len(updates) == 0 {
		return nil
	}
	payload, err := json.Marshal(batchUpdateRequest{Updates: updates})
	if err != nil {
		return fmt.Errorf("%w: marshal batch update: %v", types.ErrMirror, err)
	}
	_, err = c.do(ctx, http.MethodPost, c.sheetPath("values:batchUpdate"), payload)
	return err
}

// Ping checks mirror reachability for the diagnostic path. It is not part of
// the service health check; mirror availability never gates the service.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, c.sheetPath("meta"), nil)
	return err
}

func (c *Client) sheetPath(suffix string) string {
	return "/v1/sheets/" + url.PathEscape(c.sheet) + "/" + suffix
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	body, err := c.breaker.Execute(func() (any, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("mirror returned status %d: %s", resp.StatusCode, truncate(data, 200))
		}
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", types.ErrMirror, method, path, err)
	}
	return body.([]byte), nil
}

func truncate(data []byte, n int) string {
	s := strings.TrimSpace(string(data))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

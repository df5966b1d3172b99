// Package insight talks to the managed edge functions that do the heavy
// lifting remotely: prompt classification, shipment aggregation, the
// Investigator reasoning loop, and document embedding. The client is a
// plain fire-and-await JSON round-trip; callers own fallback behavior.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/freightlens/backend/pkg/chartspec"
	apperrors "github.com/freightlens/backend/pkg/errors"
)

// SuggestRequest is the payload for the widget-builder-ai function.
type SuggestRequest struct {
	Prompt     string                  `json:"prompt"`
	CustomerID string                  `json:"customer_id"`
	Fields     []chartspec.FieldDescriptor `json:"fields"`
}

// SuggestResponse is the classification result from the AI backend.
type SuggestResponse struct {
	Success     bool                 `json:"success"`
	Suggestion  chartspec.Suggestion `json:"suggestion"`
	Summary     string               `json:"summary,omitempty"`
	Reasoning   []string             `json:"reasoning,omitempty"`
	Limitations []string             `json:"limitations,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// AggregateRequest describes one shipment aggregation call.
type AggregateRequest struct {
	CustomerID   string                  `json:"customer_id"`
	GroupField   string                  `json:"group_field"`
	MeasureField string                  `json:"measure_field"`
	Aggregation  chartspec.Aggregation   `json:"aggregation"`
	Filters      []chartspec.ValueFilter `json:"filters,omitempty"`
	Limit        int                     `json:"limit,omitempty"`
}

// AggregateResponse carries the grouped rows plus the unlimited row count.
type AggregateResponse struct {
	Rows         []map[string]any `json:"rows"`
	TotalRecords int              `json:"total_records"`
}

// InvestigateRequest is the payload for the investigate function.
type InvestigateRequest struct {
	Question   string   `json:"question"`
	CustomerID string   `json:"customer_id"`
	UserID     string   `json:"user_id"`
	History    []string `json:"history,omitempty"`
}

// InvestigateResponse is the Investigator's answer. Chart and Rows are
// present only when the backend chose to render data alongside the text.
type InvestigateResponse struct {
	Success   bool                  `json:"success"`
	Answer    string                `json:"answer"`
	Chart     *chartspec.Suggestion `json:"chart,omitempty"`
	Rows      []map[string]any      `json:"rows,omitempty"`
	Reasoning []string              `json:"reasoning,omitempty"`
	Warning   string                `json:"warning,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// EmbedRequest submits extracted document text for embedding.
type EmbedRequest struct {
	DocumentID string `json:"document_id"`
	CustomerID string `json:"customer_id"`
	Filename   string `json:"filename"`
	Text       string `json:"text"`
}

// Client is the remote edge-function surface the services depend on.
// Tests substitute a fake.
type Client interface {
	Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error)
	Aggregate(ctx context.Context, req AggregateRequest) (*AggregateResponse, error)
	Investigate(ctx context.Context, req InvestigateRequest) (*InvestigateResponse, error)
	EmbedDocument(ctx context.Context, req EmbedRequest) error
}

// HTTPClient calls the managed edge functions over HTTPS with bearer auth.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient reads INSIGHT_BASE_URL and INSIGHT_API_KEY from the
// environment. An empty base URL is allowed; every call then fails with an
// upstream error and the services run on local fallbacks.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		baseURL: os.Getenv("INSIGHT_BASE_URL"),
		apiKey:  os.Getenv("INSIGHT_API_KEY"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewHTTPClientWith builds a client against an explicit endpoint, used by
// tests running against httptest servers.
func NewHTTPClientWith(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error) {
	var resp SuggestResponse
	if err := c.post(ctx, "widget-builder-ai", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperrors.NewUpstreamError("widget-builder-ai", fmt.Errorf("classification failed: %s", resp.Error))
	}
	return &resp, nil
}

func (c *HTTPClient) Aggregate(ctx context.Context, req AggregateRequest) (*AggregateResponse, error) {
	var raw struct {
		Rows         json.RawMessage `json:"rows"`
		TotalRecords int             `json:"total_records"`
		Error        string          `json:"error,omitempty"`
	}
	if err := c.post(ctx, "shipment-aggregate", req, &raw); err != nil {
		return nil, err
	}
	if raw.Error != "" {
		return nil, apperrors.NewUpstreamError("shipment-aggregate", fmt.Errorf("aggregation failed: %s", raw.Error))
	}

	rows, err := decodeRows(raw.Rows)
	if err != nil {
		return nil, apperrors.NewUpstreamError("shipment-aggregate", fmt.Errorf("malformed rows: %w", err))
	}
	return &AggregateResponse{Rows: rows, TotalRecords: raw.TotalRecords}, nil
}

func (c *HTTPClient) Investigate(ctx context.Context, req InvestigateRequest) (*InvestigateResponse, error) {
	var resp InvestigateResponse
	if err := c.post(ctx, "investigate", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperrors.NewUpstreamError("investigate", fmt.Errorf("investigate failed: %s", resp.Error))
	}
	return &resp, nil
}

func (c *HTTPClient) EmbedDocument(ctx context.Context, req EmbedRequest) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}
	if err := c.post(ctx, "embed-document", req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return apperrors.NewUpstreamError("embed-document", fmt.Errorf("embedding failed: %s", resp.Error))
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, fn string, payload, out interface{}) error {
	if c.baseURL == "" {
		return apperrors.NewUpstreamError(fn, errors.New("insight backend not configured"))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/functions/v1/%s", c.baseURL, fn)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return apperrors.NewUpstreamError(fn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return apperrors.NewUpstreamError(fn, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewUpstreamError(fn, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// decodeRows accepts the two row encodings the aggregation function emits:
// a JSON array, or a JSON string whose content is itself an encoded array.
func decodeRows(raw json.RawMessage) ([]map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("rows are neither array nor string")
	}
	if err := json.Unmarshal([]byte(encoded), &rows); err != nil {
		return nil, fmt.Errorf("string-encoded rows are not an array: %w", err)
	}
	return rows, nil
}

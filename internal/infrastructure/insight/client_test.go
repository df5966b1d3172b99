package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightlens/backend/pkg/chartspec"
	apperrors "github.com/freightlens/backend/pkg/errors"
)

func TestSuggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/functions/v1/widget-builder-ai" {
			t.Errorf("Expected path /functions/v1/widget-builder-ai, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer auth header, got %q", got)
		}

		var req SuggestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if req.Prompt != "average retail by carrier" {
			t.Errorf("Unexpected prompt: %s", req.Prompt)
		}

		json.NewEncoder(w).Encode(SuggestResponse{
			Success: true,
			Suggestion: chartspec.Suggestion{
				ChartType:    chartspec.ChartBar,
				GroupField:   "carrier_name",
				MeasureField: "retail",
				Aggregation:  chartspec.AggAvg,
			},
			Summary: "Average retail grouped by carrier",
		})
	}))
	defer server.Close()

	client := NewHTTPClientWith(server.URL, "test-key")

	resp, err := client.Suggest(context.Background(), SuggestRequest{
		Prompt:     "average retail by carrier",
		CustomerID: "cust-1",
	})
	require.NoError(t, err)
	assert.Equal(t, chartspec.ChartBar, resp.Suggestion.ChartType)
	assert.Equal(t, "carrier_name", resp.Suggestion.GroupField)
	assert.Equal(t, chartspec.AggAvg, resp.Suggestion.Aggregation)
}

func TestSuggestFailureIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SuggestResponse{Success: false, Error: "model overloaded"})
	}))
	defer server.Close()

	client := NewHTTPClientWith(server.URL, "")

	_, err := client.Suggest(context.Background(), SuggestRequest{Prompt: "anything"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
}

func TestAggregateArrayRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/functions/v1/shipment-aggregate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"rows":[{"carrier_name":"Estes","value":1200.5,"count":3}],"total_records":3}`))
	}))
	defer server.Close()

	client := NewHTTPClientWith(server.URL, "test-key")

	resp, err := client.Aggregate(context.Background(), AggregateRequest{
		CustomerID:   "cust-1",
		GroupField:   "carrier_name",
		MeasureField: "retail",
		Aggregation:  chartspec.AggSum,
	})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "Estes", resp.Rows[0]["carrier_name"])
	assert.Equal(t, 3, resp.TotalRecords)
}

func TestAggregateStringEncodedRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Some function versions double-encode the row array as a string.
		w.Write([]byte(`{"rows":"[{\"origin_state\":\"TX\",\"value\":900}]","total_records":1}`))
	}))
	defer server.Close()

	client := NewHTTPClientWith(server.URL, "test-key")

	resp, err := client.Aggregate(context.Background(), AggregateRequest{
		CustomerID: "cust-1",
		GroupField: "origin_state",
	})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "TX", resp.Rows[0]["origin_state"])
}

func TestAggregateMalformedRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rows":42,"total_records":0}`))
	}))
	defer server.Close()

	client := NewHTTPClientWith(server.URL, "test-key")

	_, err := client.Aggregate(context.Background(), AggregateRequest{CustomerID: "cust-1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
}

func TestInvestigate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req InvestigateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Question != "why did margins drop in July" {
			t.Errorf("Unexpected question: %s", req.Question)
		}
		json.NewEncoder(w).Encode(InvestigateResponse{
			Success: true,
			Answer:  "Margins dropped because fuel surcharges rose 12%.",
			Chart: &chartspec.Suggestion{
				ChartType:  chartspec.ChartLine,
				GroupField: "pickup_month",
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClientWith(server.URL, "test-key")

	resp, err := client.Investigate(context.Background(), InvestigateRequest{
		Question:   "why did margins drop in July",
		CustomerID: "cust-1",
		UserID:     "user-1",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Answer, "fuel surcharges")
	require.NotNil(t, resp.Chart)
	assert.Equal(t, chartspec.ChartLine, resp.Chart.ChartType)
}

func TestServerErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClientWith(server.URL, "test-key")

	err := client.EmbedDocument(context.Background(), EmbedRequest{DocumentID: "doc-1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
}

func TestUnconfiguredClient(t *testing.T) {
	client := NewHTTPClientWith("", "")

	_, err := client.Suggest(context.Background(), SuggestRequest{Prompt: "total retail"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
}

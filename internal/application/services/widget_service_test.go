package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/internal/infrastructure/insight"
	"github.com/freightlens/backend/pkg/chartspec"
	apperrors "github.com/freightlens/backend/pkg/errors"
	"github.com/freightlens/backend/pkg/rowfilter"
)

// fakeInsightClient scripts the remote edge functions for service tests.
type fakeInsightClient struct {
	mu sync.Mutex

	suggestResp *insight.SuggestResponse
	suggestErr  error
	// When set, Suggest blocks until the context is cancelled. The first
	// blocking call closes suggestStarted.
	suggestBlocks  bool
	suggestStarted chan struct{}
	startedOnce    sync.Once
	suggestCalls   int

	aggregateResp  *insight.AggregateResponse
	aggregateErr   error
	aggregateCalls int
}

func (f *fakeInsightClient) Suggest(ctx context.Context, req insight.SuggestRequest) (*insight.SuggestResponse, error) {
	f.mu.Lock()
	f.suggestCalls++
	blocks := f.suggestBlocks
	f.mu.Unlock()

	if blocks {
		if f.suggestStarted != nil {
			f.startedOnce.Do(func() { close(f.suggestStarted) })
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.suggestErr != nil {
		return nil, f.suggestErr
	}
	return f.suggestResp, nil
}

func (f *fakeInsightClient) Aggregate(ctx context.Context, req insight.AggregateRequest) (*insight.AggregateResponse, error) {
	f.mu.Lock()
	f.aggregateCalls++
	f.mu.Unlock()

	if f.aggregateErr != nil {
		return nil, f.aggregateErr
	}
	return f.aggregateResp, nil
}

func (f *fakeInsightClient) Investigate(ctx context.Context, req insight.InvestigateRequest) (*insight.InvestigateResponse, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeInsightClient) EmbedDocument(ctx context.Context, req insight.EmbedRequest) error {
	return errors.New("not scripted")
}

func newTestWidgetService(client insight.Client) *WidgetService {
	return NewWidgetService(nil, client, rowfilter.NewEngine())
}

func standardSession() *models.UserSession {
	return &models.UserSession{
		ID:         "user-1",
		Name:       "Alex Freight",
		Email:      "alex@example.com",
		ProfileID:  "standard",
		CustomerID: "cust-1",
	}
}

func adminSession() *models.UserSession {
	s := standardSession()
	s.ID = "admin-1"
	s.ProfileID = "admin"
	s.IsAdmin = true
	return s
}

func TestSuggestUsesRemoteClassifier(t *testing.T) {
	client := &fakeInsightClient{
		suggestResp: &insight.SuggestResponse{
			Success: true,
			Suggestion: chartspec.Suggestion{
				ChartType:    chartspec.ChartLine,
				GroupField:   "pickup_month",
				MeasureField: "retail",
				Aggregation:  chartspec.AggSum,
			},
			Summary: "Monthly revenue trend",
		},
	}
	svc := newTestWidgetService(client)

	result, err := svc.Suggest(context.Background(), standardSession(), "revenue trend by month")
	require.NoError(t, err)
	assert.Equal(t, "ai", result.Origin)
	assert.Equal(t, chartspec.ChartLine, result.Suggestion.ChartType)
	assert.Equal(t, "Monthly revenue trend", result.Summary)
	assert.Empty(t, result.Warning)
}

func TestSuggestFallsBackOnRemoteFailure(t *testing.T) {
	client := &fakeInsightClient{suggestErr: errors.New("connection refused")}
	svc := newTestWidgetService(client)

	result, err := svc.Suggest(context.Background(), standardSession(), "average retail by carrier")
	require.NoError(t, err)
	assert.Equal(t, "local", result.Origin)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, chartspec.AggAvg, result.Suggestion.Aggregation)
	assert.Equal(t, "carrier_name", result.Suggestion.GroupField)
	assert.Equal(t, "retail", result.Suggestion.MeasureField)
}

func TestSuggestRejectsRestrictedRemoteSuggestion(t *testing.T) {
	// The classifier answering with a field outside the caller's catalog
	// must not leak through; the local heuristics take over.
	client := &fakeInsightClient{
		suggestResp: &insight.SuggestResponse{
			Success: true,
			Suggestion: chartspec.Suggestion{
				ChartType:    chartspec.ChartBar,
				GroupField:   "carrier_name",
				MeasureField: "cost",
				Aggregation:  chartspec.AggSum,
			},
		},
	}
	svc := newTestWidgetService(client)

	result, err := svc.Suggest(context.Background(), standardSession(), "spend by carrier")
	require.NoError(t, err)
	assert.Equal(t, "local", result.Origin)
	assert.NotEqual(t, "cost", result.Suggestion.MeasureField)
}

func TestSuggestEmptyPrompt(t *testing.T) {
	svc := newTestWidgetService(&fakeInsightClient{})

	_, err := svc.Suggest(context.Background(), standardSession(), "   ")
	require.Error(t, err)
	var vErr *apperrors.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestSuggestNewestRequestWins(t *testing.T) {
	client := &fakeInsightClient{
		suggestBlocks:  true,
		suggestErr:     errors.New("unreachable"),
		suggestStarted: make(chan struct{}),
	}
	svc := newTestWidgetService(client)
	session := standardSession()

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Suggest(context.Background(), session, "first question")
		firstDone <- err
	}()

	// Wait until the first request is parked inside the remote call.
	select {
	case <-client.suggestStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached the classifier")
	}

	client.mu.Lock()
	client.suggestBlocks = false
	client.mu.Unlock()

	result, err := svc.Suggest(context.Background(), session, "total retail by carrier")
	require.NoError(t, err)
	assert.Equal(t, "carrier_name", result.Suggestion.GroupField)

	select {
	case firstErr := <-firstDone:
		assert.ErrorIs(t, firstErr, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("first request did not finish after being superseded")
	}
}

func TestExecuteRejectsRestrictedField(t *testing.T) {
	client := &fakeInsightClient{}
	svc := newTestWidgetService(client)

	_, err := svc.Execute(context.Background(), standardSession(), &models.WidgetConfiguration{
		GroupField:   "carrier_name",
		MeasureField: "cost",
		Aggregation:  chartspec.AggSum,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsPermission(err))
	assert.Equal(t, 0, client.aggregateCalls, "no remote call on access denial")
}

func TestExecuteAllowsRestrictedFieldForAdmin(t *testing.T) {
	client := &fakeInsightClient{
		aggregateResp: &insight.AggregateResponse{
			Rows: []map[string]any{
				{"carrier_name": "Estes", "value": 950.0, "count": 4},
			},
			TotalRecords: 4,
		},
	}
	svc := newTestWidgetService(client)

	result, err := svc.Execute(context.Background(), adminSession(), &models.WidgetConfiguration{
		ChartType:    chartspec.ChartBar,
		GroupField:   "carrier_name",
		MeasureField: "cost",
		Aggregation:  chartspec.AggSum,
	})
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Estes", result.Data[0].Label)
	assert.Equal(t, 950.0, result.Data[0].Value)
}

func TestExecuteNormalizesAndFilters(t *testing.T) {
	client := &fakeInsightClient{
		aggregateResp: &insight.AggregateResponse{
			Rows: []map[string]any{
				{"carrier_name": "Estes", "value": 1200.5, "count": 3},
				{"carrier_name": "Saia", "value": 800.0, "count": 2},
			},
			TotalRecords: 5,
		},
	}
	svc := newTestWidgetService(client)

	result, err := svc.Execute(context.Background(), standardSession(), &models.WidgetConfiguration{
		ChartType:    chartspec.ChartBar,
		GroupField:   "carrier_name",
		MeasureField: "retail",
		Aggregation:  chartspec.AggSum,
		Filters: []chartspec.ValueFilter{
			{ID: "f1", Field: "carrier_name", Operator: chartspec.OpContains, Value: "estes"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Estes", result.Data[0].Label)
	assert.Equal(t, 1200.5, result.Data[0].Value)
	assert.Equal(t, 3, result.Data[0].Count)
	assert.Equal(t, 5, result.TotalRecords)
}

func TestExecuteReplacesDataFully(t *testing.T) {
	client := &fakeInsightClient{
		aggregateResp: &insight.AggregateResponse{
			Rows:         []map[string]any{{"origin_state": "TX", "value": 10.0}},
			TotalRecords: 1,
		},
	}
	svc := newTestWidgetService(client)

	config := &models.WidgetConfiguration{
		ChartType:   chartspec.ChartBar,
		GroupField:  "origin_state",
		Aggregation: chartspec.AggCount,
		Data: []chartspec.DataPoint{
			{Label: "stale", Value: 999},
			{Label: "older", Value: 998},
		},
	}

	result, err := svc.Execute(context.Background(), standardSession(), config)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "TX", result.Data[0].Label)
}

func TestExecuteUpstreamErrorLeavesConfigUntouched(t *testing.T) {
	client := &fakeInsightClient{aggregateErr: apperrors.NewUpstreamError("shipment-aggregate", errors.New("timeout"))}
	svc := newTestWidgetService(client)

	config := &models.WidgetConfiguration{
		ChartType:   chartspec.ChartBar,
		GroupField:  "origin_state",
		Aggregation: chartspec.AggSum,
		Data:        []chartspec.DataPoint{{Label: "kept", Value: 1}},
	}

	_, err := svc.Execute(context.Background(), standardSession(), config)
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	require.Len(t, config.Data, 1)
	assert.Equal(t, "kept", config.Data[0].Label)
}

func TestExecuteRecommendsChartWhenUnset(t *testing.T) {
	client := &fakeInsightClient{
		aggregateResp: &insight.AggregateResponse{
			Rows: []map[string]any{
				{"pickup_month": "2026-01", "value": 5.0},
				{"pickup_month": "2026-02", "value": 7.0},
			},
			TotalRecords: 2,
		},
	}
	svc := newTestWidgetService(client)

	result, err := svc.Execute(context.Background(), standardSession(), &models.WidgetConfiguration{
		GroupField:  "pickup_month",
		Aggregation: chartspec.AggSum,
	})
	require.NoError(t, err)
	assert.Equal(t, chartspec.ChartLine, result.ChartType)
}

func TestPublishRequiresName(t *testing.T) {
	svc := newTestWidgetService(&fakeInsightClient{})

	_, err := svc.Publish(context.Background(), standardSession(), PublishRequest{
		Config: models.WidgetConfiguration{
			GroupField:  "origin_state",
			Aggregation: chartspec.AggSum,
		},
	})
	require.Error(t, err)
	var vErr *apperrors.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestPublishAdminBucketNeedsPrivilege(t *testing.T) {
	svc := newTestWidgetService(&fakeInsightClient{})

	_, err := svc.Publish(context.Background(), standardSession(), PublishRequest{
		Config: models.WidgetConfiguration{
			Name:        "Margin watch",
			GroupField:  "origin_state",
			Aggregation: chartspec.AggSum,
		},
		Visibility: "admin",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsPermission(err))
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightlens/backend/internal/infrastructure/insight"
	"github.com/freightlens/backend/pkg/chartspec"
)

type investigateFake struct {
	fakeInsightClient
	investigateResp *insight.InvestigateResponse
	investigateErr  error
}

func (f *investigateFake) Investigate(ctx context.Context, req insight.InvestigateRequest) (*insight.InvestigateResponse, error) {
	if f.investigateErr != nil {
		return nil, f.investigateErr
	}
	return f.investigateResp, nil
}

func newTestInvestigatorService(client insight.Client) *InvestigatorService {
	widgets := newTestWidgetService(client)
	return NewInvestigatorService(nil, client, widgets)
}

func TestAnswerUsesRemoteInvestigator(t *testing.T) {
	client := &investigateFake{
		investigateResp: &insight.InvestigateResponse{
			Success: true,
			Answer:  "Margins dropped because fuel surcharges rose.",
			Chart: &chartspec.Suggestion{
				ChartType:   chartspec.ChartLine,
				GroupField:  "pickup_month",
				Aggregation: chartspec.AggAvg,
			},
			Rows: []map[string]any{
				{"pickup_month": "2026-06", "value": 0.18},
				{"pickup_month": "2026-07", "value": 0.12},
			},
		},
	}
	svc := newTestInvestigatorService(client)

	ans, origin, err := svc.answer(context.Background(), standardSession(), "why did margins drop", nil)
	require.NoError(t, err)
	assert.Equal(t, "ai", origin)
	assert.Contains(t, ans.Content, "fuel surcharges")
	require.NotNil(t, ans.Chart)
	assert.Equal(t, chartspec.ChartLine, ans.Chart.ChartType)
	require.Len(t, ans.Points, 2)
	assert.Equal(t, "2026-06", ans.Points[0].Label)
}

func TestAnswerFallsBackToLocalAggregation(t *testing.T) {
	client := &investigateFake{
		investigateErr: errors.New("backend unreachable"),
	}
	client.aggregateResp = &insight.AggregateResponse{
		Rows: []map[string]any{
			{"carrier_name": "Estes", "value": 4100.0, "count": 12},
			{"carrier_name": "Saia", "value": 2800.0, "count": 9},
		},
		TotalRecords: 21,
	}
	svc := newTestInvestigatorService(client)

	ans, origin, err := svc.answer(context.Background(), standardSession(), "total retail by carrier", nil)
	require.NoError(t, err)
	assert.Equal(t, "local", origin)
	assert.NotEmpty(t, ans.Warning)
	require.NotNil(t, ans.Chart)
	assert.Equal(t, "carrier_name", ans.Chart.GroupField)
	require.Len(t, ans.Points, 2)
}

func TestAnswerDegradesWhenEverythingFails(t *testing.T) {
	client := &investigateFake{
		investigateErr: errors.New("backend unreachable"),
	}
	client.aggregateErr = errors.New("aggregation unreachable")
	svc := newTestInvestigatorService(client)

	ans, origin, err := svc.answer(context.Background(), standardSession(), "anything at all", nil)
	require.NoError(t, err)
	assert.Equal(t, "local", origin)
	assert.Nil(t, ans.Chart)
	assert.NotEmpty(t, ans.Warning)
	assert.NotEmpty(t, ans.Content)
}

func TestConversationTitleTruncation(t *testing.T) {
	short := "why did margins drop"
	assert.Equal(t, short, conversationTitle(short))

	long := ""
	for i := 0; i < 30; i++ {
		long += "margin "
	}
	title := conversationTitle(long)
	assert.LessOrEqual(t, len(title), 84, "truncated title stays near the cap")
	assert.NotEqual(t, long, title)
}

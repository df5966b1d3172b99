package chartspec

import (
	"testing"

	"github.com/freightlens/backend/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_NoKeywordsReturnsDefaults(t *testing.T) {
	prompts := []string{
		"",
		"hello there",
		"show me something interesting",
	}
	catalog := ListFields(false)

	for _, prompt := range prompts {
		s := Classify(prompt, catalog)
		assert.Equal(t, DefaultChartType, s.ChartType, "prompt: %q", prompt)
		assert.Equal(t, DefaultAggregation, s.Aggregation, "prompt: %q", prompt)
		assert.Equal(t, DefaultGroupField, s.GroupField, "prompt: %q", prompt)
		assert.Equal(t, DefaultMeasureField, s.MeasureField, "prompt: %q", prompt)
		assert.Empty(t, s.Filters, "prompt: %q", prompt)
		assert.True(t, s.Fallback, "no-keyword prompt must be flagged fallback-origin")
	}
}

func TestClassify_TimeKeywordSelectsLine(t *testing.T) {
	catalog := ListFields(false)
	for _, prompt := range []string{
		"retail by month",
		"shipment trend",
		"weight over time",
	} {
		s := Classify(prompt, catalog)
		assert.Equal(t, ChartLine, s.ChartType, "prompt: %q", prompt)
		assert.False(t, s.Fallback)
	}
}

func TestClassify_ChartTypePriorityOrder(t *testing.T) {
	catalog := ListFields(false)

	// Line outranks pie when both keyword sets appear.
	s := Classify("trend breakdown of retail", catalog)
	assert.Equal(t, ChartLine, s.ChartType)

	s = Classify("pie of carriers", catalog)
	assert.Equal(t, ChartPie, s.ChartType)

	s = Classify("geographic view of shipments", catalog)
	assert.Equal(t, ChartMap, s.ChartType)

	s = Classify("detail list of loads", catalog)
	assert.Equal(t, ChartTable, s.ChartType)
}

func TestClassify_AverageRetailByCarrier(t *testing.T) {
	s := Classify("Average retail by carrier", ListFields(false))

	assert.Equal(t, ChartBar, s.ChartType)
	assert.Equal(t, AggAvg, s.Aggregation)
	assert.Equal(t, constants.ShipmentFieldCarrier, s.GroupField)
	assert.Equal(t, constants.ShipmentFieldRetail, s.MeasureField)
	assert.Empty(t, s.Filters)
	assert.False(t, s.Fallback)
}

func TestClassify_ShipmentCountByState(t *testing.T) {
	s := Classify("Shipment count by state", ListFields(false))

	assert.Equal(t, ChartBar, s.ChartType)
	assert.Equal(t, AggCount, s.Aggregation)
	assert.Equal(t, constants.ShipmentFieldOriginState, s.GroupField)
	// Count aggregation overrides the measure to the row-count-bearing field.
	assert.Equal(t, constants.ShipmentFieldID, s.MeasureField)
}

func TestClassify_ProductTermsProduceFiltersAndForceGrouping(t *testing.T) {
	s := Classify("average cost for drawer system and cargoglide", ListFields(true))

	require.Len(t, s.Filters, 2)
	values := []string{s.Filters[0].Value, s.Filters[1].Value}
	assert.Contains(t, values, "drawer")
	assert.Contains(t, values, "cargoglide")
	for _, f := range s.Filters {
		assert.Equal(t, constants.ShipmentFieldDescription, f.Field)
		assert.Equal(t, OpContains, f.Operator)
		assert.NotEmpty(t, f.ID)
	}

	// Filters imply grouping by the filtered dimension.
	assert.Equal(t, constants.ShipmentFieldDescription, s.GroupField)
	assert.Equal(t, AggAvg, s.Aggregation)
	assert.Equal(t, constants.ShipmentFieldCost, s.MeasureField)
}

func TestClassify_RestrictedMeasureUnreachableForStandardUser(t *testing.T) {
	// Cost is not in the standard-user catalog, so the keyword cannot bind
	// and the default measure applies.
	s := Classify("total cost by carrier", ListFields(false))
	assert.Equal(t, DefaultMeasureField, s.MeasureField)

	s = Classify("total cost by carrier", ListFields(true))
	assert.Equal(t, constants.ShipmentFieldCost, s.MeasureField)
}

func TestClassify_DestinationBeforeState(t *testing.T) {
	s := Classify("sum of retail by destination state", ListFields(false))
	assert.Equal(t, constants.ShipmentFieldDestState, s.GroupField)
}

func TestClassify_Deterministic(t *testing.T) {
	catalog := ListFields(true)
	a := Classify("average weight by carrier", catalog)
	b := Classify("average weight by carrier", catalog)

	// Filter IDs are generated per call; everything else must match exactly.
	a.Filters, b.Filters = nil, nil
	assert.Equal(t, a, b)
}

package rowfilter

import (
	"testing"

	"github.com/freightlens/backend/pkg/chartspec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filter(field string, op chartspec.FilterOperator, value string) chartspec.ValueFilter {
	return chartspec.ValueFilter{ID: "f-" + field, Field: field, Operator: op, Value: value}
}

func TestMatcher_Contains(t *testing.T) {
	engine := NewEngine()
	m, err := engine.Compile([]chartspec.ValueFilter{
		filter("description", chartspec.OpContains, "Drawer"),
	})
	require.NoError(t, err)

	assert.True(t, m.Matches(map[string]any{"description": "DECKED drawer system"}))
	assert.True(t, m.Matches(map[string]any{"description": "DRAWER SYSTEM"}), "contains is case-insensitive")
	assert.False(t, m.Matches(map[string]any{"description": "cargoglide"}))
	assert.False(t, m.Matches(map[string]any{"description": nil}))
	assert.False(t, m.Matches(map[string]any{}))
}

func TestMatcher_Equals(t *testing.T) {
	engine := NewEngine()
	m, err := engine.Compile([]chartspec.ValueFilter{
		filter("origin_state", chartspec.OpEquals, "TX"),
	})
	require.NoError(t, err)

	assert.True(t, m.Matches(map[string]any{"origin_state": "TX"}))
	assert.False(t, m.Matches(map[string]any{"origin_state": "OK"}))
}

func TestMatcher_NumericOperators(t *testing.T) {
	engine := NewEngine()
	cases := []struct {
		op      chartspec.FilterOperator
		target  string
		weight  any
		matches bool
	}{
		{chartspec.OpGt, "500", 750.0, true},
		{chartspec.OpGt, "500", 500.0, false},
		{chartspec.OpGte, "500", 500.0, true},
		{chartspec.OpLt, "500", 499.9, true},
		{chartspec.OpLte, "500", 500.0, true},
		{chartspec.OpLte, "500", 501.0, false},
		// Stringified numeric columns coerce too.
		{chartspec.OpGt, "500", "750", true},
	}

	for _, tc := range cases {
		m, err := engine.Compile([]chartspec.ValueFilter{filter("weight", tc.op, tc.target)})
		require.NoError(t, err)
		assert.Equal(t, tc.matches, m.Matches(map[string]any{"weight": tc.weight}),
			"op=%s target=%s weight=%v", tc.op, tc.target, tc.weight)
	}
}

func TestMatcher_AndAcrossFilters(t *testing.T) {
	engine := NewEngine()
	m, err := engine.Compile([]chartspec.ValueFilter{
		filter("description", chartspec.OpContains, "drawer"),
		filter("weight", chartspec.OpGt, "100"),
	})
	require.NoError(t, err)

	rows := []map[string]any{
		{"description": "drawer system", "weight": 150.0},
		{"description": "drawer system", "weight": 50.0},
		{"description": "toolbox", "weight": 150.0},
	}
	assert.Len(t, m.Apply(rows), 1)
}

func TestMatcher_EmptyFilterListPassesEverything(t *testing.T) {
	engine := NewEngine()
	m, err := engine.Compile(nil)
	require.NoError(t, err)

	rows := []map[string]any{{"a": 1}, {"b": 2}}
	assert.Equal(t, rows, m.Apply(rows))
}

func TestCompile_RejectsBadFilters(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Compile([]chartspec.ValueFilter{
		{ID: "x", Field: "", Operator: chartspec.OpEquals, Value: "a"},
	})
	assert.Error(t, err)

	_, err = engine.Compile([]chartspec.ValueFilter{
		{ID: "x", Field: "weight", Operator: "between", Value: "a"},
	})
	assert.Error(t, err)
}

package chartspec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_TupleShape(t *testing.T) {
	rows := []map[string]any{
		{"carrier_name": "Estes", "avg_retail": 412.5},
		{"carrier_name": "Saia", "avg_retail": 388.0},
	}

	points := Normalize(rows, "carrier_name", "avg")
	require.Len(t, points, 2)
	assert.Equal(t, DataPoint{Label: "Estes", Value: 412.5, Count: 1}, points[0])
	assert.Equal(t, DataPoint{Label: "Saia", Value: 388.0, Count: 1}, points[1])
}

func TestNormalize_TripleShape(t *testing.T) {
	rows := []map[string]any{
		{"name": "TX", "value": 1280.0, "count": 14},
		{"name": "OK", "value": 311.0, "count": 3},
	}

	points := Normalize(rows, "origin_state", "sum")
	require.Len(t, points, 2)
	assert.Equal(t, DataPoint{Label: "TX", Value: 1280.0, Count: 14}, points[0])
	assert.Equal(t, DataPoint{Label: "OK", Value: 311.0, Count: 3}, points[1])
}

func TestNormalize_BothShapesProduceSamePoints(t *testing.T) {
	tuple := []map[string]any{{"origin_state": "TX", "sum_retail": 990.0, "count": 9}}
	triple := []map[string]any{{"name": "TX", "value": 990.0, "count": 9}}

	assert.Equal(t,
		Normalize(tuple, "origin_state", "sum"),
		Normalize(triple, "origin_state", "sum"))
}

func TestNormalize_Idempotent(t *testing.T) {
	rows := []map[string]any{
		{"carrier_name": "Estes", "sum_retail": 412.5, "count": 4},
		{"carrier_name": "Saia", "sum_retail": 388.0, "count": 2},
	}

	once := Normalize(rows, "carrier_name", "sum")

	// Re-feed the normalized output as {label, value, count} rows.
	again := make([]map[string]any, 0, len(once))
	for _, p := range once {
		again = append(again, map[string]any{"label": p.Label, "value": p.Value, "count": p.Count})
	}

	assert.Equal(t, once, Normalize(again, "carrier_name", "sum"))
}

func TestNormalize_LabelFallsBackToGroupFieldThenUnknown(t *testing.T) {
	// No string-valued key: expected group field's raw value, stringified.
	points := Normalize([]map[string]any{{"pickup_month": 7, "sum_weight": 120.0}}, "pickup_month", "sum")
	require.Len(t, points, 1)
	assert.Equal(t, "7", points[0].Label)
	assert.Equal(t, 120.0, points[0].Value)

	// No string key and no group field either.
	points = Normalize([]map[string]any{{"sum_weight": 55.0}}, "carrier_name", "sum")
	require.Len(t, points, 1)
	assert.Equal(t, "Unknown", points[0].Label)
}

func TestNormalize_NoMatchableValueColumnYieldsZero(t *testing.T) {
	points := Normalize([]map[string]any{{"carrier_name": "Estes"}}, "carrier_name", "sum")
	require.Len(t, points, 1)
	assert.Equal(t, DataPoint{Label: "Estes", Value: 0, Count: 1}, points[0])
}

func TestNormalize_StringifiedNumericColumns(t *testing.T) {
	// Some backends stringify DECIMAL columns and encode counts as
	// json.Number; both must still coerce.
	rows := []map[string]any{
		{"carrier_name": "ABF", "value": "123.45", "count": json.Number("6")},
	}
	points := Normalize(rows, "carrier_name", "sum")
	require.Len(t, points, 1)
	assert.Equal(t, 123.45, points[0].Value)
	assert.Equal(t, 6, points[0].Count)
}

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(nil, "carrier_name", "sum"))
	assert.Empty(t, Normalize([]map[string]any{}, "carrier_name", "sum"))
}

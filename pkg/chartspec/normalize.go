package chartspec

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Normalize converts heterogeneous rows returned by the aggregation RPC into
// a uniform DataPoint list. The backend is observed to answer in two shapes:
// generic {field: value} tuples keyed by the grouped/aggregated columns, and
// pre-shaped {name, value, count} triples. Both normalize identically, and
// normalizing already-normalized input is a no-op.
//
// Per row: the label is the first string-valued key (key order sorted for
// determinism), falling back to the stringified group-field value, then
// "Unknown". The value is the first key whose name contains the aggregation
// keyword, else a key literally named "value", else the first numeric key
// that is neither "count" nor the label key; rows with no matchable value
// column yield 0. The count is the row's "count" key, or 1 when absent.
func Normalize(rows []map[string]any, groupField, aggregation string) []DataPoint {
	points := make([]DataPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, normalizeRow(row, groupField, aggregation))
	}
	return points
}

func normalizeRow(row map[string]any, groupField, aggregation string) DataPoint {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	labelKey := ""
	label := ""
	for _, k := range keys {
		if s, ok := row[k].(string); ok {
			labelKey = k
			label = s
			break
		}
	}
	if labelKey == "" {
		if v, ok := row[groupField]; ok && v != nil {
			label = fmt.Sprintf("%v", v)
		} else {
			label = "Unknown"
		}
	}

	value, found := pickValue(row, keys, labelKey, aggregation)
	if !found {
		value = 0
	}

	count := 1
	if c, ok := row["count"]; ok {
		if n, ok := toFloat(c); ok {
			count = int(n)
		}
	}

	return DataPoint{Label: label, Value: value, Count: count}
}

func pickValue(row map[string]any, keys []string, labelKey, aggregation string) (float64, bool) {
	agg := strings.ToLower(aggregation)
	if agg != "" {
		for _, k := range keys {
			if strings.Contains(strings.ToLower(k), agg) {
				if n, ok := toFloat(row[k]); ok {
					return n, true
				}
			}
		}
	}

	if v, ok := row["value"]; ok {
		if n, ok := toFloat(v); ok {
			return n, true
		}
	}

	for _, k := range keys {
		if k == "count" || k == labelKey {
			continue
		}
		if n, ok := toFloat(row[k]); ok {
			return n, true
		}
	}

	return 0, false
}

// toFloat coerces the numeric representations seen in RPC responses:
// float64/int from decoded JSON, json.Number, and numeric strings (some
// backends stringify DECIMAL columns).
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

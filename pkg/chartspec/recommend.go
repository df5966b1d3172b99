package chartspec

import "strings"

// Cardinality thresholds for the shape-based recommendation rules.
const (
	pieMaxPoints     = 5
	treemapMinPoints = 11
)

// Recommend picks a chart type for a normalized point list. Rules are
// checked in order and the function is total:
//
//	no points            -> bar (default, nothing to draw)
//	exactly one point    -> kpi
//	time-bucket group    -> line
//	geographic group     -> map
//	<= 5 points          -> pie
//	> 10 points          -> treemap
//	otherwise            -> bar
func Recommend(points []DataPoint, groupField string) ChartType {
	if len(points) == 0 {
		return ChartBar
	}
	if len(points) == 1 {
		return ChartKPI
	}
	if isTimeBucketField(groupField) {
		return ChartLine
	}
	if isGeographicField(groupField) {
		return ChartMap
	}
	if len(points) <= pieMaxPoints {
		return ChartPie
	}
	if len(points) >= treemapMinPoints {
		return ChartTreemap
	}
	return ChartBar
}

// isTimeBucketField reports whether a group field buckets rows by time
// (month, week, or day-of-week style columns).
func isTimeBucketField(field string) bool {
	f := strings.ToLower(field)
	return strings.Contains(f, "month") ||
		strings.Contains(f, "week") ||
		strings.Contains(f, "date")
}

// isGeographicField reports whether a group field is state-like and suits a
// choropleth rendering.
func isGeographicField(field string) bool {
	return strings.Contains(strings.ToLower(field), "state")
}

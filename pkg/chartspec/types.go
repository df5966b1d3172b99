// Package chartspec implements the deterministic prompt-to-chart heuristics
// used by the widget builder and as the local fallback when the remote AI
// classification function is unavailable. Everything in this package is pure:
// no I/O, no ambient state, same input always produces the same output.
package chartspec

// ChartType identifies how a widget renders its data points.
type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartLine    ChartType = "line"
	ChartPie     ChartType = "pie"
	ChartArea    ChartType = "area"
	ChartTreemap ChartType = "treemap"
	ChartFunnel  ChartType = "funnel"
	ChartKPI     ChartType = "kpi"
	ChartTable   ChartType = "table"
	ChartMap     ChartType = "map"
	ChartCombo   ChartType = "combo"
)

// Aggregation identifies how the measure column is folded within each group.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggAvg   Aggregation = "avg"
	AggCount Aggregation = "count"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
)

// ValueType is the storage type of a catalog field.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeDate    ValueType = "date"
	TypeBoolean ValueType = "boolean"
)

// FieldCategory groups catalog fields for the builder UI.
type FieldCategory string

const (
	CategoryParty     FieldCategory = "party"     // carrier, customer
	CategoryGeography FieldCategory = "geography" // origin/destination
	CategoryTime      FieldCategory = "time"      // pickup date buckets
	CategoryFreight   FieldCategory = "freight"   // description, mode, status
	CategoryMeasure   FieldCategory = "measure"   // numeric columns
)

// FieldDescriptor describes one queryable shipment column. The catalog is
// static: loaded at startup, never mutated. Restricted descriptors must be
// filtered out before the catalog is handed to a non-privileged caller.
type FieldDescriptor struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	Category   FieldCategory `json:"category"`
	ValueType  ValueType     `json:"valueType"`
	Restricted bool          `json:"restricted"`
}

// FilterOperator is the comparison applied by a ValueFilter.
type FilterOperator string

const (
	OpContains FilterOperator = "contains"
	OpEquals   FilterOperator = "equals"
	OpGt       FilterOperator = "gt"
	OpLt       FilterOperator = "lt"
	OpGte      FilterOperator = "gte"
	OpLte      FilterOperator = "lte"
)

// ValueFilter narrows the rows a widget aggregates over. Identity is the
// generated ID; a filter lives until explicit removal or widget reset.
type ValueFilter struct {
	ID       string         `json:"id"`
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Value    string         `json:"value"`
}

// Suggestion is the classifier's output: a complete chart configuration
// seed. Immutable once produced. Fallback is true when no keyword in any
// dimension matched and the suggestion is just the documented defaults, so
// callers can visually distinguish it from a confident match.
type Suggestion struct {
	ChartType    ChartType     `json:"chartType"`
	GroupField   string        `json:"groupField"`
	MeasureField string        `json:"measureField"`
	Aggregation  Aggregation   `json:"aggregation"`
	Filters      []ValueFilter `json:"filters"`
	Fallback     bool          `json:"fallback"`
}

// DataPoint is one chart-ready point produced by the result normalizer.
// The list is fully replaced on every query execution; there are no
// incremental update semantics.
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

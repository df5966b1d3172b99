package chartspec

import (
	"strings"

	"github.com/freightlens/backend/pkg/constants"
	"github.com/freightlens/backend/pkg/utils"
)

// Classification defaults when no keyword matches. Several historical
// builder variants disagreed on the default aggregation (sum vs avg); sum is
// canonical here because an unqualified "retail by carrier" style prompt
// reads as a total, not a rate.
const (
	DefaultGroupField   = constants.ShipmentFieldOriginState
	DefaultMeasureField = constants.ShipmentFieldRetail
	DefaultAggregation  = AggSum
	DefaultChartType    = ChartBar
)

// keywordRule maps a set of trigger substrings to a resolved value. Rules
// are evaluated in slice order, first match wins.
type keywordRule struct {
	keywords []string
	value    string
}

// Chart-type rules in priority order. Line outranks pie so "sales trend
// breakdown" reads as a time series.
var chartTypeRules = []keywordRule{
	{[]string{"line", "trend", "over time", "month"}, string(ChartLine)},
	{[]string{"pie", "breakdown", "distribution"}, string(ChartPie)},
	{[]string{"map", "geographic", "choropleth"}, string(ChartMap)},
	{[]string{"treemap"}, string(ChartTreemap)},
	{[]string{"kpi", "single number", "just the total"}, string(ChartKPI)},
	{[]string{"table", "list", "detail"}, string(ChartTable)},
}

var aggregationRules = []keywordRule{
	{[]string{"average", "avg", "mean"}, string(AggAvg)},
	{[]string{"count", "number of", "how many"}, string(AggCount)},
	{[]string{"max", "highest", "top"}, string(AggMax)},
	{[]string{"min", "lowest"}, string(AggMin)},
	{[]string{"total", "sum", "overall"}, string(AggSum)},
}

// Group-field rules. "destination" must come before the bare "state" rule so
// "by destination state" resolves to the destination column.
var groupFieldRules = []keywordRule{
	{[]string{"carrier"}, constants.ShipmentFieldCarrier},
	{[]string{"customer", "client", "shipper"}, constants.ShipmentFieldCustomer},
	{[]string{"day of week", "weekday"}, constants.ShipmentFieldDayOfWeek},
	{[]string{"month", "date", "time", "trend"}, constants.ShipmentFieldPickupMonth},
	{[]string{"destination"}, constants.ShipmentFieldDestState},
	{[]string{"city"}, constants.ShipmentFieldDestCity},
	{[]string{"state", "region"}, constants.ShipmentFieldOriginState},
	{[]string{"mode", "equipment"}, constants.ShipmentFieldMode},
	{[]string{"status"}, constants.ShipmentFieldStatus},
	{[]string{"product", "item", "commodity"}, constants.ShipmentFieldDescription},
}

// Measure-field rules. Cost and margin are restricted columns: the rule only
// takes effect when the caller's catalog actually contains the field, so a
// standard user asking about cost falls through to the default measure.
var measureFieldRules = []keywordRule{
	{[]string{"cost", "spend"}, constants.ShipmentFieldCost},
	{[]string{"margin", "profit"}, constants.ShipmentFieldMargin},
	{[]string{"weight", "lbs", "pounds"}, constants.ShipmentFieldWeight},
	{[]string{"miles", "mileage", "distance"}, constants.ShipmentFieldMiles},
	{[]string{"retail", "revenue", "charge", "price"}, constants.ShipmentFieldRetail},
}

// productTerms are known product/entity nouns from the brokered freight mix.
// A prompt mentioning one produces a contains-filter on the description
// column, and any filter forces grouping by description: filtering a
// dimension implies bucketing by it.
var productTerms = []string{
	"drawer",
	"cargoglide",
	"bedslide",
	"toolbox",
	"rack",
	"liner",
	"headache rack",
	"camper shell",
	"tonneau",
}

// Classify maps a free-text prompt to a chart suggestion using ordered
// case-insensitive substring matching against the supplied catalog. It is
// total and deterministic; an unrecognized prompt yields the documented
// defaults with Fallback set so the UI can flag the low-confidence result.
func Classify(prompt string, catalog []FieldDescriptor) Suggestion {
	text := strings.ToLower(prompt)
	matched := false

	s := Suggestion{
		ChartType:    DefaultChartType,
		GroupField:   DefaultGroupField,
		MeasureField: DefaultMeasureField,
		Aggregation:  DefaultAggregation,
		Filters:      []ValueFilter{},
	}

	if v, ok := firstMatch(text, chartTypeRules); ok {
		s.ChartType = ChartType(v)
		matched = true
	}

	if v, ok := firstMatch(text, aggregationRules); ok {
		s.Aggregation = Aggregation(v)
		matched = true
	}

	if v, ok := firstMatch(text, groupFieldRules); ok && HasField(catalog, v) {
		s.GroupField = v
		matched = true
	}

	if v, ok := firstMatch(text, measureFieldRules); ok && HasField(catalog, v) {
		s.MeasureField = v
		matched = true
	}

	// Count aggregates rows, not a measure column: force the record-id field
	// so the backend counts shipments regardless of any measure keyword.
	if s.Aggregation == AggCount {
		s.MeasureField = constants.ShipmentFieldID
	}

	for _, term := range productTerms {
		if strings.Contains(text, term) {
			s.Filters = append(s.Filters, ValueFilter{
				ID:       utils.GenerateID(),
				Field:    constants.ShipmentFieldDescription,
				Operator: OpContains,
				Value:    term,
			})
			matched = true
		}
	}
	if len(s.Filters) > 0 {
		s.GroupField = constants.ShipmentFieldDescription
	}

	s.Fallback = !matched
	return s
}

func firstMatch(text string, rules []keywordRule) (string, bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.value, true
			}
		}
	}
	return "", false
}

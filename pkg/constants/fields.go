package constants

// Common field names - snake_case API names used in storage and SQL.
const (
	FieldID               = "id"
	FieldName             = "name"
	FieldDescription      = "description"
	FieldCreatedDate      = "created_date"
	FieldLastModifiedDate = "last_modified_date"
	FieldCreatedByID      = "created_by_id"

	// User fields
	FieldEmail      = "email"
	FieldUsername   = "username"
	FieldPassword   = "password"
	FieldProfileID  = "profile_id"
	FieldCustomerID = "customer_id"
	FieldIsActive   = "is_active"

	// Widget/dashboard fields
	FieldConfig     = "config"
	FieldVisibility = "visibility"
	FieldSection    = "section"
	FieldLayout     = "layout"
	FieldStatus     = "status"
	FieldSortOrder  = "sort_order"
)

// Shipment catalog field IDs. These are the queryable columns of the
// replicated shipment table and the ids the chart heuristics resolve to.
const (
	ShipmentFieldID          = "id"
	ShipmentFieldCarrier     = "carrier_name"
	ShipmentFieldCustomer    = "customer_name"
	ShipmentFieldDescription = "description"
	ShipmentFieldOriginState = "origin_state"
	ShipmentFieldDestState   = "dest_state"
	ShipmentFieldDestCity    = "dest_city"
	ShipmentFieldPickupDate  = "pickup_date"
	ShipmentFieldPickupMonth = "pickup_month"
	ShipmentFieldDayOfWeek   = "pickup_day_of_week"
	ShipmentFieldWeight      = "weight"
	ShipmentFieldMiles       = "miles"
	ShipmentFieldRetail      = "retail"
	ShipmentFieldCost        = "cost"
	ShipmentFieldMargin      = "margin"
	ShipmentFieldMode        = "transport_mode"
	ShipmentFieldStatus      = "shipment_status"
)

package chartspec

import "github.com/freightlens/backend/pkg/constants"

// shipmentCatalog is the full static field catalog for the replicated
// shipment table. Cost and margin carry broker economics and are visible to
// admin callers only.
var shipmentCatalog = []FieldDescriptor{
	{ID: constants.ShipmentFieldID, Label: "Shipment ID", Category: CategoryFreight, ValueType: TypeString},
	{ID: constants.ShipmentFieldCarrier, Label: "Carrier", Category: CategoryParty, ValueType: TypeString},
	{ID: constants.ShipmentFieldCustomer, Label: "Customer", Category: CategoryParty, ValueType: TypeString},
	{ID: constants.ShipmentFieldDescription, Label: "Product Description", Category: CategoryFreight, ValueType: TypeString},
	{ID: constants.ShipmentFieldOriginState, Label: "Origin State", Category: CategoryGeography, ValueType: TypeString},
	{ID: constants.ShipmentFieldDestState, Label: "Destination State", Category: CategoryGeography, ValueType: TypeString},
	{ID: constants.ShipmentFieldDestCity, Label: "Destination City", Category: CategoryGeography, ValueType: TypeString},
	{ID: constants.ShipmentFieldPickupDate, Label: "Pickup Date", Category: CategoryTime, ValueType: TypeDate},
	{ID: constants.ShipmentFieldPickupMonth, Label: "Pickup Month", Category: CategoryTime, ValueType: TypeString},
	{ID: constants.ShipmentFieldDayOfWeek, Label: "Pickup Day of Week", Category: CategoryTime, ValueType: TypeString},
	{ID: constants.ShipmentFieldMode, Label: "Transport Mode", Category: CategoryFreight, ValueType: TypeString},
	{ID: constants.ShipmentFieldStatus, Label: "Shipment Status", Category: CategoryFreight, ValueType: TypeString},
	{ID: constants.ShipmentFieldWeight, Label: "Weight (lbs)", Category: CategoryMeasure, ValueType: TypeNumber},
	{ID: constants.ShipmentFieldMiles, Label: "Miles", Category: CategoryMeasure, ValueType: TypeNumber},
	{ID: constants.ShipmentFieldRetail, Label: "Retail Charge", Category: CategoryMeasure, ValueType: TypeNumber},
	{ID: constants.ShipmentFieldCost, Label: "Carrier Cost", Category: CategoryMeasure, ValueType: TypeNumber, Restricted: true},
	{ID: constants.ShipmentFieldMargin, Label: "Margin", Category: CategoryMeasure, ValueType: TypeNumber, Restricted: true},
}

// ListFields returns the field catalog available to a caller. Privileged
// callers get the full catalog; everyone else gets restricted descriptors
// filtered out. The returned slice is a copy and safe to mutate.
func ListFields(isPrivileged bool) []FieldDescriptor {
	fields := make([]FieldDescriptor, 0, len(shipmentCatalog))
	for _, f := range shipmentCatalog {
		if f.Restricted && !isPrivileged {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// FieldByID looks up a descriptor by id within a catalog slice.
func FieldByID(catalog []FieldDescriptor, id string) (FieldDescriptor, bool) {
	for _, f := range catalog {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// HasField reports whether a catalog slice contains the given field id.
func HasField(catalog []FieldDescriptor, id string) bool {
	_, ok := FieldByID(catalog, id)
	return ok
}

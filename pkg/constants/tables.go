package constants

// System table names used throughout the backend for persistence.
// All platform tables share the "_Sys_" prefix so they never collide with
// customer-facing shipment data tables replicated from the TMS feed.
const (
	SystemTablePrefix = "_Sys_"

	// Security
	TableUser    = "_Sys_User"
	TableSession = "_Sys_Session"

	// Dashboarding
	TableWidget    = "_Sys_Widget"
	TableDashboard = "_Sys_Dashboard"

	// Investigator (AI chat)
	TableConversation     = "_Sys_Conversation"
	TableConversationTurn = "_Sys_ConversationTurn"

	// Knowledge base
	TableGlossaryTerm = "_Sys_GlossaryTerm"
	TableDocument     = "_Sys_Document"
)

// TableShipments is the replicated shipment fact table the aggregation RPC
// reads from. The backend never writes to it.
const TableShipments = "shipments"

package constants

// Default values for system operations
const (
	DefaultUserName = "Unknown"
	SystemUserName  = "System" // Used when operations are performed without a user context

	// Default row limit the aggregation RPC is asked for when a widget does
	// not set one.
	DefaultQueryLimit = 50

	// Upload ceiling for knowledge-base documents (10 MB). Files above this
	// are rejected before any extraction or network call.
	MaxDocumentBytes = 10 << 20
)

package constants

// Context keys
const (
	ContextKeyUser  = "user"
	ContextKeyToken = "token"
)

// HTTP header names
const (
	HeaderAuthorization = "Authorization"
)

// Response envelope keys
const (
	ResponseError = "error"
	FieldMessage  = "message"
)

// Widget visibility buckets. Admin-bucket widgets are never returned to
// non-privileged viewers.
const (
	VisibilityShared = "shared"
	VisibilityAdmin  = "admin"
)

// Document ingestion statuses
const (
	DocumentPending  = "pending"
	DocumentEmbedded = "embedded"
	DocumentFailed   = "failed"
)

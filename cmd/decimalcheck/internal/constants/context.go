package constants

// Context keys stored on request contexts.
const (
	// ContextKeyRequestID is the context key (and log field) holding the request ID.
	// Used in: logging/logger.go, logging/middleware.go
	ContextKeyRequestID = "request_id"
)

// Package constants provides centralized constant definitions for decimalcheck.
// All hardcoded values that are reused across the codebase should be defined here
// to ensure consistency across the CLI, the HTTP API and the audit store.
package constants

// HTTP header names used throughout the application.
const (
	// HeaderRequestID is the HTTP header used for request tracking and correlation.
	// Used in: logging/middleware.go
	HeaderRequestID = "X-Request-ID"

	// HeaderContentType is the standard HTTP Content-Type header.
	// Used in: errors/errors.go
	HeaderContentType = "Content-Type"
)

// MIME types used in HTTP responses.
const (
	// MIMEApplicationJSON is the MIME type for JSON responses.
	MIMEApplicationJSON = "application/json"
)

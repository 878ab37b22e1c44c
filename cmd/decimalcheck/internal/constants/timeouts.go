package constants

import "time"

// Timeout and duration constants used throughout the application.
const (
	// ShutdownTimeout is the maximum time allowed for graceful shutdown.
	// Used in: server/server.go
	// Default: 30 seconds
	ShutdownTimeout = 30 * time.Second

	// HTTPReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Used in: server/server.go
	// Default: 15 seconds
	HTTPReadTimeout = 15 * time.Second

	// HTTPWriteTimeout is the maximum duration before timing out writes of the response.
	// Used in: server/server.go
	// Default: 15 seconds
	HTTPWriteTimeout = 15 * time.Second

	// HTTPIdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Used in: server/server.go
	// Default: 60 seconds
	HTTPIdleTimeout = 60 * time.Second

	// HealthCheckTimeout bounds the audit database ping done by the health endpoint.
	// Used in: server/server.go
	// Default: 5 seconds
	HealthCheckTimeout = 5 * time.Second

	// AuditWriteTimeout bounds the audit writes issued by the CLI.
	// Used in: main.go
	// Default: 10 seconds
	AuditWriteTimeout = 10 * time.Second
)

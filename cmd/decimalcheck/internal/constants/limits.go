package constants

// Limits applied to API requests and audit queries.
const (
	// DefaultBatchMaxSize is the maximum number of values accepted by a single
	// validate request when batch.max_size is not configured.
	// Used in: config/config.go, handlers/decimals.go
	// Default: 1000 values
	DefaultBatchMaxSize = 1000

	// DefaultRecentChecks is the number of audit records returned by checks:list
	// when no limit is given.
	// Used in: handlers/checks.go
	// Default: 50 records
	DefaultRecentChecks = 50

	// MaxRecentChecks is the hard upper bound for checks:list.
	// Used in: audit/recorder.go
	// Default: 500 records
	MaxRecentChecks = 500

	// MaxRequestBodyBytes bounds the size of a validate request body.
	// Used in: handlers/decimals.go
	// Default: 1 MiB
	MaxRequestBodyBytes = 1 << 20
)

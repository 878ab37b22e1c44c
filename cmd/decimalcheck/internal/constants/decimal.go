package constants

// Decimal matching defaults.
const (
	// DefaultMaxTotalDigits is the maximum number of significant digits a value
	// may carry when a matcher is built without parameters.
	// Used in: matcher/matcher.go, config/config.go
	// Default: 11 digits (e.g., "12345678901")
	DefaultMaxTotalDigits = 11

	// MaxMatcherParams is the largest number of positional parameters a matcher
	// accepts: total digits followed by decimal places.
	// Used in: matcher/matcher.go
	MaxMatcherParams = 2
)

package constants

// Sensitive field names that should be masked/redacted in logs.
// Used in: logging/logger.go for automatic field masking
var SensitiveFields = []string{
	"password",
	"token",
	"secret",
	"authorization",
	"connection",
	"dsn",
}

// RedactedPlaceholder is the string used to replace sensitive values in logs.
// Used in: logging/logger.go
const RedactedPlaceholder = "***REDACTED***"

package constants

// Validation error codes reported by the decimal number matcher.
// The codes are stable and form part of the public contract.
const (
	// CodeInvalidDecimal is reported when the value is not a decimal numeral.
	// Used in: matcher/matcher.go
	CodeInvalidDecimal = "doubleNumber.e001"

	// CodeMaxDigitsExceeded is reported when the value carries more significant
	// digits than the configured maximum.
	// Used in: matcher/matcher.go
	CodeMaxDigitsExceeded = "doubleNumber.e002"

	// CodeMaxDecimalPlacesExceeded is reported when the value carries more
	// fractional digits than the configured maximum.
	// Used in: matcher/matcher.go
	CodeMaxDecimalPlacesExceeded = "doubleNumber.e003"
)

// Validation error messages, paired with the codes above.
const (
	MessageInvalidDecimal           = "The value is not a valid decimal number."
	MessageMaxDigitsExceeded        = "The value exceeded maximum number of digits."
	MessageMaxDecimalPlacesExceeded = "The value exceeded maximum number of decimal places."
)

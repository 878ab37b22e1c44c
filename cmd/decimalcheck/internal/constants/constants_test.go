package constants

import (
	"os"
	"strings"
	"testing"
)

// TestValidationCodes verifies the error codes and messages reported to callers.
func TestValidationCodes(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"invalid decimal code", CodeInvalidDecimal, "doubleNumber.e001"},
		{"max digits code", CodeMaxDigitsExceeded, "doubleNumber.e002"},
		{"max places code", CodeMaxDecimalPlacesExceeded, "doubleNumber.e003"},
		{"invalid decimal message", MessageInvalidDecimal, "The value is not a valid decimal number."},
		{"max digits message", MessageMaxDigitsExceeded, "The value exceeded maximum number of digits."},
		{"max places message", MessageMaxDecimalPlacesExceeded, "The value exceeded maximum number of decimal places."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("Expected %s to be %q, got %q", tt.name, tt.expected, tt.constant)
			}
		})
	}
}

func TestDecimalDefaults(t *testing.T) {
	if DefaultMaxTotalDigits != 11 {
		t.Errorf("Expected DefaultMaxTotalDigits to be 11, got %d", DefaultMaxTotalDigits)
	}
	if MaxMatcherParams != 2 {
		t.Errorf("Expected MaxMatcherParams to be 2, got %d", MaxMatcherParams)
	}
}

func TestPermissionConstants(t *testing.T) {
	if DirPermissions != os.FileMode(0755) {
		t.Errorf("Expected DirPermissions to be 0755, got %o", DirPermissions)
	}
	if FilePermissions != os.FileMode(0644) {
		t.Errorf("Expected FilePermissions to be 0644, got %o", FilePermissions)
	}
}

// TestSensitiveFieldsAreLowercase verifies the masking lookup keys, which are
// compared against lowercased field names.
func TestSensitiveFieldsAreLowercase(t *testing.T) {
	for _, field := range SensitiveFields {
		if field != strings.ToLower(field) {
			t.Errorf("sensitive field %q must be lowercase", field)
		}
	}
}

func TestLimits(t *testing.T) {
	if DefaultRecentChecks > MaxRecentChecks {
		t.Errorf("DefaultRecentChecks (%d) exceeds MaxRecentChecks (%d)", DefaultRecentChecks, MaxRecentChecks)
	}
	if DefaultBatchMaxSize <= 0 {
		t.Errorf("DefaultBatchMaxSize must be positive, got %d", DefaultBatchMaxSize)
	}
}

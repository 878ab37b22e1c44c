// Package matcher validates that values are decimal numbers within
// configurable digit limits.
//
// A DecimalNumberMatcher checks the total number of significant digits of a
// value and, when configured, the number of digits after the decimal point.
// Matchers are immutable after construction and safe for concurrent use.
package matcher

import (
	"errors"
	"fmt"

	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/decimal"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/validation"
)

// ErrTooManyParams is returned when more than two positional parameters are given.
var ErrTooManyParams = errors.New("too many matcher parameters")

// Config holds the limits applied by a DecimalNumberMatcher.
type Config struct {
	// MaxTotalDigits is the maximum number of significant digits.
	MaxTotalDigits int `json:"max_total_digits" mapstructure:"max_total_digits"`

	// MaxDecimalPlaces is the maximum number of fractional digits.
	// Nil disables the decimal places check.
	MaxDecimalPlaces *int `json:"max_decimal_places,omitempty" mapstructure:"max_decimal_places"`
}

// DefaultConfig returns the configuration used when no parameters are given.
func DefaultConfig() Config {
	return Config{MaxTotalDigits: constants.DefaultMaxTotalDigits}
}

// ConfigFromParams builds a Config from positional parameters:
// no parameters keeps the defaults, one sets the total digits and two set the
// total digits followed by the decimal places.
func ConfigFromParams(params ...int) (Config, error) {
	if len(params) > constants.MaxMatcherParams {
		return Config{}, fmt.Errorf("%w: got %d, at most %d allowed", ErrTooManyParams, len(params), constants.MaxMatcherParams)
	}

	cfg := DefaultConfig()
	if len(params) >= 1 {
		cfg.MaxTotalDigits = params[0]
	}
	if len(params) == 2 {
		places := params[1]
		cfg.MaxDecimalPlaces = &places
	}
	return cfg, nil
}

// HasDecimalPlacesLimit reports whether the decimal places check applies.
func (c Config) HasDecimalPlacesLimit() bool {
	return c.MaxDecimalPlaces != nil
}

// clone returns a copy that shares no memory with c.
func (c Config) clone() Config {
	out := Config{MaxTotalDigits: c.MaxTotalDigits}
	if c.MaxDecimalPlaces != nil {
		places := *c.MaxDecimalPlaces
		out.MaxDecimalPlaces = &places
	}
	return out
}

// Matcher validates a single value.
type Matcher interface {
	Match(value any) *validation.ValidationResult
}

// DecimalNumberMatcher validates that a value is a decimal number or absent.
// "." is always the decimal separator.
type DecimalNumberMatcher struct {
	config Config
}

// NewDecimalNumberMatcher creates a matcher with the given limits.
func NewDecimalNumberMatcher(cfg Config) *DecimalNumberMatcher {
	return &DecimalNumberMatcher{config: cfg.clone()}
}

// NewDecimalNumberMatcherFromParams creates a matcher from positional parameters.
// See ConfigFromParams.
func NewDecimalNumberMatcherFromParams(params ...int) (*DecimalNumberMatcher, error) {
	cfg, err := ConfigFromParams(params...)
	if err != nil {
		return nil, err
	}
	return &DecimalNumberMatcher{config: cfg}, nil
}

// Config returns a copy of the matcher configuration.
func (m *DecimalNumberMatcher) Config() Config {
	return m.config.clone()
}

// Match validates value and returns a new result.
// A nil value is always valid. A value that is not a decimal numeral yields a
// single invalid-decimal error. Otherwise the digit limit and, when configured,
// the decimal places limit are checked independently, in that order.
func (m *DecimalNumberMatcher) Match(value any) *validation.ValidationResult {
	result := validation.NewValidationResult()

	if isAbsent(value) {
		return result
	}

	number, err := decimal.Parse(value)
	if err != nil {
		result.AddError(constants.CodeInvalidDecimal, constants.MessageInvalidDecimal)
		return result
	}

	if number.Precision() > m.config.MaxTotalDigits {
		result.AddError(constants.CodeMaxDigitsExceeded, constants.MessageMaxDigitsExceeded)
	}

	if m.config.HasDecimalPlacesLimit() && number.DecimalPlaces() > *m.config.MaxDecimalPlaces {
		result.AddError(constants.CodeMaxDecimalPlacesExceeded, constants.MessageMaxDecimalPlacesExceeded)
	}

	return result
}

func isAbsent(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case *string:
		return v == nil
	}
	return false
}

// Package decimal provides exact parsing of decimal numerals for digit-count
// validation. Values are held by github.com/shopspring/decimal as an
// arbitrary-precision coefficient and a base-10 exponent, so the digits a
// caller typed are never approximated by binary floating point.
package decimal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"

	shopspring "github.com/shopspring/decimal"
)

// numeralRegex validates the accepted numeral syntax: an optional sign, digits
// with an optional fractional part (either side of the point may be empty, not
// both) and an optional exponent. "." is the only decimal separator.
var numeralRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ErrInvalidNumeral indicates that a value is not a decimal numeral.
var ErrInvalidNumeral = errors.New("invalid decimal numeral")

// Decimal is an exact decimal value.
type Decimal struct {
	value shopspring.Decimal
}

// Zero returns a zero-valued Decimal.
func Zero() Decimal {
	return Decimal{value: shopspring.Zero}
}

// Parse converts a string or numeric value into a Decimal.
// Floats are converted through their shortest round-trip representation, so
// 0.1 parses as the one-digit value 0.1.
func Parse(value any) (Decimal, error) {
	switch v := value.(type) {
	case nil:
		return Zero(), fmt.Errorf("%w: no value", ErrInvalidNumeral)
	case string:
		return ParseString(v)
	case *string:
		if v == nil {
			return Zero(), fmt.Errorf("%w: no value", ErrInvalidNumeral)
		}
		return ParseString(*v)
	case []byte:
		return ParseString(string(v))
	case json.Number:
		return ParseString(v.String())
	case Decimal:
		return v, nil
	case shopspring.Decimal:
		return Decimal{value: v}, nil
	case *big.Int:
		if v == nil {
			return Zero(), fmt.Errorf("%w: no value", ErrInvalidNumeral)
		}
		return Decimal{value: shopspring.NewFromBigInt(v, 0)}, nil
	case int:
		return Decimal{value: shopspring.NewFromInt(int64(v))}, nil
	case int8:
		return Decimal{value: shopspring.NewFromInt(int64(v))}, nil
	case int16:
		return Decimal{value: shopspring.NewFromInt(int64(v))}, nil
	case int32:
		return Decimal{value: shopspring.NewFromInt(int64(v))}, nil
	case int64:
		return Decimal{value: shopspring.NewFromInt(v)}, nil
	case uint:
		return fromUint(uint64(v)), nil
	case uint8:
		return fromUint(uint64(v)), nil
	case uint16:
		return fromUint(uint64(v)), nil
	case uint32:
		return fromUint(uint64(v)), nil
	case uint64:
		return fromUint(v), nil
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Zero(), fmt.Errorf("%w: %v is not finite", ErrInvalidNumeral, v)
		}
		return Decimal{value: shopspring.NewFromFloat32(v)}, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Zero(), fmt.Errorf("%w: %v is not finite", ErrInvalidNumeral, v)
		}
		return Decimal{value: shopspring.NewFromFloat(v)}, nil
	default:
		return Zero(), fmt.Errorf("%w: unsupported type %T", ErrInvalidNumeral, value)
	}
}

// ParseString parses a decimal numeral such as "123.45", "-0.5", "5." or "1.2e-3".
// Surrounding whitespace, thousands separators, NaN and Infinity are rejected.
func ParseString(s string) (Decimal, error) {
	if s == "" {
		return Zero(), fmt.Errorf("%w: empty string", ErrInvalidNumeral)
	}

	if !numeralRegex.MatchString(s) {
		return Zero(), fmt.Errorf("%w: '%s' is not a valid number", ErrInvalidNumeral, s)
	}

	d, err := shopspring.NewFromString(s)
	if err != nil {
		// The syntax is already known to be valid here, so this is an exponent
		// outside the representable range.
		return Zero(), fmt.Errorf("%w: %v", ErrInvalidNumeral, err)
	}

	return Decimal{value: d}, nil
}

// MustParse parses a string into a Decimal and panics on error.
// Use only for test fixtures or static values known to be valid.
func MustParse(s string) Decimal {
	d, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fromUint(v uint64) Decimal {
	return Decimal{value: shopspring.NewFromBigInt(new(big.Int).SetUint64(v), 0)}
}

// normalized returns the digits of the absolute coefficient of d and its
// exponent, with trailing fractional zeros removed. Zeros left of the decimal
// point are kept, so 100 stays ("100", 0) while 1.50 becomes ("15", -1).
func (d Decimal) normalized() (string, int64) {
	coef := d.value.Coefficient()
	if coef.Sign() == 0 {
		return "0", 0
	}

	digits := coef.Abs(coef).String()
	exp := int64(d.value.Exponent())
	if exp < 0 {
		zeros := int64(len(digits) - len(strings.TrimRight(digits, "0")))
		zeros = min(zeros, -exp)
		digits = digits[:int64(len(digits))-zeros]
		exp += zeros
	}

	return digits, exp
}

// Precision returns the number of significant digits of d, counting zeros in
// the integer part: 100 has 3, 0.001 has 1, 1.50 has 2 and zero has 1.
// The sign is never counted.
func (d Decimal) Precision() int {
	digits, exp := d.normalized()
	if exp > 0 {
		return len(digits) + int(exp)
	}
	return len(digits)
}

// DecimalPlaces returns the number of digits after the decimal point in the
// normalized, non-exponential form of d.
func (d Decimal) DecimalPlaces() int {
	_, exp := d.normalized()
	if exp >= 0 {
		return 0
	}
	return int(-exp)
}

// String returns the plain (non-exponential) representation of d.
func (d Decimal) String() string {
	return d.value.String()
}

package matcher

import (
	"errors"
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestNewRuleSet_BuiltinDefault(t *testing.T) {
	rs, err := NewRuleSet(map[string]Config{
		"price":    {MaxTotalDigits: 8, MaxDecimalPlaces: intPtr(2)},
		"quantity": {MaxTotalDigits: 6},
	}, "")
	if err != nil {
		t.Fatalf("NewRuleSet error = %v", err)
	}

	if rs.DefaultName() != "" {
		t.Errorf("DefaultName() = %q, want empty", rs.DefaultName())
	}
	if got := rs.Default().Config().MaxTotalDigits; got != 11 {
		t.Errorf("default MaxTotalDigits = %d, want 11", got)
	}

	m, err := rs.Lookup("")
	if err != nil || m != rs.Default() {
		t.Errorf("Lookup(\"\") = %v, %v; want default matcher", m, err)
	}

	if got := rs.Names(); !reflect.DeepEqual(got, []string{"price", "quantity"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestNewRuleSet_NamedDefault(t *testing.T) {
	rs, err := NewRuleSet(map[string]Config{
		"price": {MaxTotalDigits: 8, MaxDecimalPlaces: intPtr(2)},
	}, "price")
	if err != nil {
		t.Fatalf("NewRuleSet error = %v", err)
	}

	price, err := rs.Lookup("price")
	if err != nil {
		t.Fatalf("Lookup(price) error = %v", err)
	}
	if rs.Default() != price {
		t.Error("default matcher should be the price rule")
	}
	if got := rs.Default().Match("1.234").Codes(); !reflect.DeepEqual(got, []string{e003}) {
		t.Errorf("default Match(1.234) = %v, want [%s]", got, e003)
	}
}

func TestNewRuleSet_Errors(t *testing.T) {
	if _, err := NewRuleSet(map[string]Config{"price": {MaxTotalDigits: 8}}, "missing"); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("unknown default error = %v, want ErrUnknownRule", err)
	}
	if _, err := NewRuleSet(map[string]Config{"": {MaxTotalDigits: 8}}, ""); err == nil {
		t.Error("empty rule name should be rejected")
	}
}

func TestRuleSet_LookupUnknown(t *testing.T) {
	rs, err := NewRuleSet(nil, "")
	if err != nil {
		t.Fatalf("NewRuleSet error = %v", err)
	}
	if _, err := rs.Lookup("nope"); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("Lookup(nope) error = %v, want ErrUnknownRule", err)
	}
	if len(rs.Names()) != 0 {
		t.Errorf("Names() = %v, want empty", rs.Names())
	}
}

func TestRuleSet_NamesAreCaseInsensitive(t *testing.T) {
	rs, err := NewRuleSet(map[string]Config{
		"Price": {MaxTotalDigits: 6, MaxDecimalPlaces: intPtr(2)},
	}, "PRICE")
	if err != nil {
		t.Fatalf("NewRuleSet error = %v", err)
	}

	if got := rs.Names(); !reflect.DeepEqual(got, []string{"price"}) {
		t.Errorf("Names() = %v, want [price]", got)
	}
	if rs.DefaultName() != "price" {
		t.Errorf("DefaultName() = %q, want price", rs.DefaultName())
	}

	for _, name := range []string{"price", "Price", "PRICE"} {
		m, err := rs.Lookup(name)
		if err != nil {
			t.Errorf("Lookup(%q) error = %v", name, err)
			continue
		}
		if m != rs.Default() {
			t.Errorf("Lookup(%q) did not return the price rule", name)
		}
	}

	tests := []struct {
		input string
		want  string
	}{
		{"", "price"},
		{"Price", "price"},
	}
	for _, tt := range tests {
		name, _, err := rs.Resolve(tt.input)
		if err != nil || name != tt.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q", tt.input, name, err, tt.want)
		}
	}
	if _, _, err := rs.Resolve("weight"); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("Resolve(weight) error = %v, want ErrUnknownRule", err)
	}
}

func TestNewRuleSet_DuplicateNamesAfterFolding(t *testing.T) {
	_, err := NewRuleSet(map[string]Config{
		"price": {MaxTotalDigits: 6},
		"PRICE": {MaxTotalDigits: 8},
	}, "")
	if err == nil {
		t.Error("rules differing only in case should be rejected")
	}
}

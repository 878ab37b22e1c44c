package validation

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNewValidationResult(t *testing.T) {
	r := NewValidationResult()

	if !r.IsValid() {
		t.Error("new result should be valid")
	}
	if codes := r.Codes(); len(codes) != 0 {
		t.Errorf("Codes() = %v, want empty", codes)
	}
}

func TestValidationResult_AddError(t *testing.T) {
	r := NewValidationResult()
	r.AddError("doubleNumber.e002", "too many digits")
	r.AddError("doubleNumber.e003", "too many places")

	if r.IsValid() {
		t.Fatal("result with errors should not be valid")
	}

	if codes := r.Codes(); !reflect.DeepEqual(codes, []string{"doubleNumber.e002", "doubleNumber.e003"}) {
		t.Errorf("Codes() = %v, want insertion order [e002 e003]", codes)
	}
	if r.Errors[1].Message != "too many places" {
		t.Errorf("Errors[1].Message = %q", r.Errors[1].Message)
	}
}

func TestValidationResult_JSON(t *testing.T) {
	data, err := json.Marshal(NewValidationResult())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"errors":[]}` {
		t.Errorf("empty result JSON = %s, want errors as empty array", data)
	}

	r := NewValidationResult()
	r.AddError("doubleNumber.e001", "bad")
	data, err = json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"errors":[{"code":"doubleNumber.e001","message":"bad"}]}` {
		t.Errorf("result JSON = %s", data)
	}
}

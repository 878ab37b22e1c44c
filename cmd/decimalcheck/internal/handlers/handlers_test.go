package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/audit"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
	apperrors "github.com/thalib/decimalcheck/cmd/decimalcheck/internal/errors"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/logging"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/matcher"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/ulid"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/validation"
)

// memoryStore is an in-memory CheckRecorder and CheckStore.
type memoryStore struct {
	records []audit.Record
	fail    error
}

func (s *memoryStore) Record(ctx context.Context, rule string, checks []audit.Check) ([]audit.Record, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	records := make([]audit.Record, 0, len(checks))
	for _, check := range checks {
		now := time.Now().UTC()
		records = append(records, audit.Record{
			ID:        ulid.GenerateWithTime(now),
			Rule:      rule,
			Value:     audit.FormatValue(check.Value),
			Valid:     check.Result.IsValid(),
			Codes:     check.Result.Codes(),
			CreatedAt: now,
		})
	}
	s.records = append(s.records, records...)
	return records, nil
}

func (s *memoryStore) Get(ctx context.Context, id string) (audit.Record, error) {
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return audit.Record{}, fmt.Errorf("%w: %s", audit.ErrRecordNotFound, id)
}

func (s *memoryStore) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	out := []audit.Record{}
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func intPtr(v int) *int { return &v }

func testRules(t *testing.T) *matcher.RuleSet {
	t.Helper()
	rs, err := matcher.NewRuleSet(map[string]matcher.Config{
		"price":    {MaxTotalDigits: 6, MaxDecimalPlaces: intPtr(2)},
		"quantity": {MaxTotalDigits: 4},
	}, "")
	if err != nil {
		t.Fatalf("NewRuleSet error = %v", err)
	}
	return rs
}

func testDeps() (*apperrors.ErrorHandler, *logging.Logger) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.LoggerConfig{Format: logging.FormatJSON, Output: &buf})
	return apperrors.NewErrorHandler(apperrors.ErrorHandlerConfig{Logger: logger}), logger
}

func newDecimalsHandler(t *testing.T, recorder CheckRecorder, maxBatch int) *DecimalsHandler {
	t.Helper()
	errs, logger := testDeps()
	return NewDecimalsHandler(testRules(t), recorder, maxBatch, errs, logger)
}

func postValidate(h *DecimalsHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/decimals:validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Validate(rec, req)
	return rec
}

func decodeValidate(t *testing.T, rec *httptest.ResponseRecorder) ValidateResponse {
	t.Helper()
	var resp ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func codesOf(r ValueResult) []string {
	codes := []string{}
	for _, e := range r.Errors {
		codes = append(codes, e.Code)
	}
	return codes
}

func TestValidate_NamedRule(t *testing.T) {
	h := newDecimalsHandler(t, nil, 0)

	rec := postValidate(h, `{"rule":"price","values":["123.45", 1234.56, "12.345", "123456.78", "abc", null, 12.30]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeValidate(t, rec)
	if resp.Rule != "price" || resp.Valid {
		t.Errorf("rule = %q, valid = %v", resp.Rule, resp.Valid)
	}

	want := [][]string{
		{},
		{},
		{constants.CodeMaxDecimalPlacesExceeded},
		{constants.CodeMaxDigitsExceeded, constants.CodeMaxDecimalPlacesExceeded},
		{constants.CodeInvalidDecimal},
		{},
		{},
	}
	if len(resp.Results) != len(want) {
		t.Fatalf("got %d results, want %d", len(resp.Results), len(want))
	}
	for i, result := range resp.Results {
		got := codesOf(result)
		if strings.Join(got, ",") != strings.Join(want[i], ",") {
			t.Errorf("result %d (%v) codes = %v, want %v", i, result.Value, got, want[i])
		}
		if result.Valid != (len(want[i]) == 0) {
			t.Errorf("result %d valid = %v", i, result.Valid)
		}
		if result.CheckID != "" {
			t.Errorf("result %d has check id without audit", i)
		}
	}
}

func TestValidate_NumbersKeepTheirDigits(t *testing.T) {
	h := newDecimalsHandler(t, nil, 0)

	// A float64 decode would round this literal to 16-17 significant digits.
	rec := postValidate(h, `{"values":[0.12345678901234567890123]}`)
	resp := decodeValidate(t, rec)
	if len(resp.Results) != 1 || resp.Results[0].Valid {
		t.Fatalf("results = %+v", resp.Results)
	}
	if !strings.Contains(rec.Body.String(), "0.12345678901234567890123") {
		t.Errorf("value not echoed verbatim: %s", rec.Body.String())
	}
	if got := codesOf(resp.Results[0]); len(got) != 1 || got[0] != constants.CodeMaxDigitsExceeded {
		t.Errorf("codes = %v", got)
	}
}

func TestValidate_DefaultRule(t *testing.T) {
	h := newDecimalsHandler(t, nil, 0)

	rec := postValidate(h, `{"values":["12345678901", "123456789012"]}`)
	resp := decodeValidate(t, rec)
	if resp.Rule != "" {
		t.Errorf("rule = %q, want built-in default", resp.Rule)
	}
	if !resp.Results[0].Valid || resp.Results[1].Valid {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestValidate_RuleNameIgnoresCase(t *testing.T) {
	h := newDecimalsHandler(t, nil, 0)

	rec := postValidate(h, `{"rule":"Quantity","values":["1234", "12345"]}`)
	resp := decodeValidate(t, rec)
	if resp.Rule != "quantity" {
		t.Errorf("rule = %q, want quantity", resp.Rule)
	}
	if !resp.Results[0].Valid || resp.Results[1].Valid {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   apperrors.ErrorCode
	}{
		{"malformed json", `{"values":[`, http.StatusBadRequest, apperrors.CodeInvalidJSON},
		{"unknown field", `{"value":["1"]}`, http.StatusBadRequest, apperrors.CodeInvalidJSON},
		{"trailing data", `{"values":["1"]} {}`, http.StatusBadRequest, apperrors.CodeInvalidJSON},
		{"empty values", `{"values":[]}`, http.StatusBadRequest, apperrors.CodeBadRequest},
		{"missing values", `{}`, http.StatusBadRequest, apperrors.CodeBadRequest},
		{"batch too large", `{"values":["1","2","3"]}`, http.StatusRequestEntityTooLarge, apperrors.CodeBatchTooLarge},
		{"unknown rule", `{"rule":"weight","values":["1"]}`, http.StatusNotFound, apperrors.CodeRuleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newDecimalsHandler(t, nil, 2)
			rec := postValidate(h, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if resp := decodeError(t, rec); resp.ErrorCode != tt.code {
				t.Errorf("error_code = %s, want %s", resp.ErrorCode, tt.code)
			}
		})
	}
}

func TestValidate_BodyTooLarge(t *testing.T) {
	h := newDecimalsHandler(t, nil, 0)
	body := `{"values":["` + strings.Repeat("1", constants.MaxRequestBodyBytes) + `"]}`

	rec := postValidate(h, body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestValidate_RecordsChecks(t *testing.T) {
	store := &memoryStore{}
	h := newDecimalsHandler(t, store, 0)

	rec := postValidate(h, `{"rule":"quantity","values":["12", "12345"]}`)
	resp := decodeValidate(t, rec)

	if len(store.records) != 2 {
		t.Fatalf("recorded %d checks, want 2", len(store.records))
	}
	for i, result := range resp.Results {
		if result.CheckID != store.records[i].ID {
			t.Errorf("result %d check_id = %q, want %q", i, result.CheckID, store.records[i].ID)
		}
	}
	if store.records[1].Valid || store.records[1].Rule != "quantity" {
		t.Errorf("second record = %+v", store.records[1])
	}
}

func TestValidate_RecorderFailure(t *testing.T) {
	h := newDecimalsHandler(t, &memoryStore{fail: errors.New("database is locked")}, 0)

	rec := postValidate(h, `{"values":["1", "2"]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.ErrorCode != apperrors.CodeDatabaseError {
		t.Errorf("error_code = %s", resp.ErrorCode)
	}
}

func TestRulesList(t *testing.T) {
	h := NewRulesHandler(testRules(t))
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/rules:list", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp RulesListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Default.MaxTotalDigits != 11 || resp.Default.MaxDecimalPlaces != nil {
		t.Errorf("default = %+v", resp.Default)
	}
	if len(resp.Rules) != 2 || resp.Rules[0].Name != "price" || resp.Rules[1].Name != "quantity" {
		t.Fatalf("rules = %+v", resp.Rules)
	}
	if resp.Rules[0].MaxDecimalPlaces == nil || *resp.Rules[0].MaxDecimalPlaces != 2 {
		t.Errorf("price places = %v", resp.Rules[0].MaxDecimalPlaces)
	}
	if strings.Contains(rec.Body.String(), `"name":"quantity","max_total_digits":4,"max_decimal_places"`) {
		t.Error("quantity should omit max_decimal_places")
	}
}

func newChecksHandler(store CheckStore) *ChecksHandler {
	errs, _ := testDeps()
	return NewChecksHandler(store, errs)
}

func getChecks(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestChecks_Disabled(t *testing.T) {
	h := newChecksHandler(nil)

	for _, rec := range []*httptest.ResponseRecorder{
		getChecks(h.List, "/checks:list"),
		getChecks(h.Get, "/checks:get?id="+ulid.GenerateWithTime(time.Now())),
	} {
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	}
}

func TestChecks_ListAndGet(t *testing.T) {
	store := &memoryStore{}
	var checks []audit.Check
	for _, v := range []string{"1", "2", "3"} {
		checks = append(checks, audit.Check{Value: v, Result: validation.NewValidationResult()})
	}
	if _, err := store.Record(context.Background(), "price", checks); err != nil {
		t.Fatal(err)
	}
	h := newChecksHandler(store)

	rec := getChecks(h.List, "/checks:list?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list ChecksListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 2 || *list.Checks[0].Value != "3" {
		t.Errorf("list = %+v", list)
	}

	id := store.records[0].ID
	rec = getChecks(h.Get, "/checks:get?id="+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got ChecksGetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Check.ID != id || *got.Check.Value != "1" {
		t.Errorf("check = %+v", got.Check)
	}
}

func TestChecks_Errors(t *testing.T) {
	h := newChecksHandler(&memoryStore{})

	tests := []struct {
		name   string
		fn     http.HandlerFunc
		target string
		status int
		code   apperrors.ErrorCode
	}{
		{"bad limit", h.List, "/checks:list?limit=abc", http.StatusBadRequest, apperrors.CodeBadRequest},
		{"zero limit", h.List, "/checks:list?limit=0", http.StatusBadRequest, apperrors.CodeBadRequest},
		{"missing id", h.Get, "/checks:get", http.StatusBadRequest, apperrors.CodeInvalidULID},
		{"bad id", h.Get, "/checks:get?id=not-a-ulid", http.StatusBadRequest, apperrors.CodeInvalidULID},
		{"unknown id", h.Get, "/checks:get?id=" + ulid.GenerateWithTime(time.Now()), http.StatusNotFound, apperrors.CodeRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := getChecks(tt.fn, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if resp := decodeError(t, rec); resp.ErrorCode != tt.code {
				t.Errorf("error_code = %s, want %s", resp.ErrorCode, tt.code)
			}
		})
	}
}

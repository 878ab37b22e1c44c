// Package handlers provides the HTTP handlers of the decimalcheck API.
// Endpoints follow the AIP-136 custom actions pattern, e.g.
// POST /decimals:validate and GET /checks:get?id=...
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/audit"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
	apperrors "github.com/thalib/decimalcheck/cmd/decimalcheck/internal/errors"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/logging"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/matcher"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/validation"
)

// CheckRecorder persists check outcomes. Record stores a whole batch or
// nothing and returns the records in input order.
type CheckRecorder interface {
	Record(ctx context.Context, rule string, checks []audit.Check) ([]audit.Record, error)
}

// DecimalsHandler validates batches of values against configured rules.
type DecimalsHandler struct {
	rules    *matcher.RuleSet
	recorder CheckRecorder
	maxBatch int
	errs     *apperrors.ErrorHandler
	logger   *logging.Logger
}

// NewDecimalsHandler creates a decimals handler. recorder may be nil when
// auditing is disabled.
func NewDecimalsHandler(rules *matcher.RuleSet, recorder CheckRecorder, maxBatch int, errs *apperrors.ErrorHandler, logger *logging.Logger) *DecimalsHandler {
	if maxBatch <= 0 {
		maxBatch = constants.DefaultBatchMaxSize
	}
	return &DecimalsHandler{
		rules:    rules,
		recorder: recorder,
		maxBatch: maxBatch,
		errs:     errs,
		logger:   logger,
	}
}

// ValidateRequest is the body of POST /decimals:validate
type ValidateRequest struct {
	Rule   string `json:"rule,omitempty"`
	Values []any  `json:"values"`
}

// ValueResult is the outcome for one submitted value
type ValueResult struct {
	Value   any                          `json:"value"`
	Valid   bool                         `json:"valid"`
	Errors  []validation.ValidationError `json:"errors"`
	CheckID string                       `json:"check_id,omitempty"`
}

// ValidateResponse is the response of POST /decimals:validate
type ValidateResponse struct {
	Rule    string        `json:"rule"`
	Valid   bool          `json:"valid"`
	Results []ValueResult `json:"results"`
}

// Validate handles POST /decimals:validate. With auditing enabled the batch
// is recorded in one transaction, so a storage failure returns 500 and leaves
// no partial trail.
func (h *DecimalsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidateRequest(http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errs.WriteError(w, r, apperrors.NewAPIError(http.StatusRequestEntityTooLarge,
				apperrors.CodeBatchTooLarge, "Request body too large"))
			return
		}
		h.errs.WriteError(w, r, apperrors.NewInvalidJSONError(err))
		return
	}

	if len(req.Values) == 0 {
		h.errs.WriteError(w, r, apperrors.NewBadRequestError("values must contain at least one entry"))
		return
	}
	if len(req.Values) > h.maxBatch {
		h.errs.WriteError(w, r, apperrors.NewBatchTooLargeError(len(req.Values), h.maxBatch))
		return
	}

	ruleName, m, err := h.rules.Resolve(req.Rule)
	if err != nil {
		h.errs.WriteError(w, r, apperrors.NewRuleNotFoundError(req.Rule))
		return
	}

	logger := h.logger.WithContext(r.Context())
	resp := ValidateResponse{
		Rule:    ruleName,
		Valid:   true,
		Results: make([]ValueResult, 0, len(req.Values)),
	}

	checks := make([]audit.Check, 0, len(req.Values))
	for _, value := range req.Values {
		result := m.Match(value)
		logger.LogCheck(ruleName, value, result)

		item := ValueResult{
			Value:  value,
			Valid:  result.IsValid(),
			Errors: result.Errors,
		}
		if !item.Valid {
			resp.Valid = false
		}

		resp.Results = append(resp.Results, item)
		checks = append(checks, audit.Check{Value: value, Result: result})
	}

	if h.recorder != nil {
		records, err := h.recorder.Record(r.Context(), ruleName, checks)
		if err != nil {
			h.errs.WriteError(w, r, apperrors.NewDatabaseError(err))
			return
		}
		for i := range resp.Results {
			resp.Results[i].CheckID = records[i].ID
		}
	}

	apperrors.WriteJSON(w, http.StatusOK, resp)
}

// decodeValidateRequest decodes the body keeping numbers as json.Number so
// their decimal text reaches the matcher unchanged.
func decodeValidateRequest(body io.Reader) (ValidateRequest, error) {
	var req ValidateRequest

	dec := json.NewDecoder(body)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	if dec.More() {
		return req, errors.New("unexpected data after JSON body")
	}

	return req, nil
}

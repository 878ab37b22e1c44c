package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/audit"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
	apperrors "github.com/thalib/decimalcheck/cmd/decimalcheck/internal/errors"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/ulid"
)

// CheckStore reads audited checks.
type CheckStore interface {
	Get(ctx context.Context, id string) (audit.Record, error)
	Recent(ctx context.Context, limit int) ([]audit.Record, error)
}

// ChecksHandler exposes the audit trail
type ChecksHandler struct {
	store CheckStore
	errs  *apperrors.ErrorHandler
}

// NewChecksHandler creates a checks handler. A nil store means auditing is
// disabled and every request answers 503.
func NewChecksHandler(store CheckStore, errs *apperrors.ErrorHandler) *ChecksHandler {
	return &ChecksHandler{store: store, errs: errs}
}

// ChecksListResponse is the response of GET /checks:list
type ChecksListResponse struct {
	Checks []audit.Record `json:"checks"`
	Count  int            `json:"count"`
}

// ChecksGetResponse is the response of GET /checks:get
type ChecksGetResponse struct {
	Check audit.Record `json:"check"`
}

// List handles GET /checks:list?limit=N
func (h *ChecksHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}

	limit := constants.DefaultRecentChecks
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.errs.WriteError(w, r, apperrors.NewBadRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		h.errs.WriteError(w, r, apperrors.NewDatabaseError(err))
		return
	}

	apperrors.WriteJSON(w, http.StatusOK, ChecksListResponse{Checks: records, Count: len(records)})
}

// Get handles GET /checks:get?id=ULID
func (h *ChecksHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}

	id := r.URL.Query().Get("id")
	if err := ulid.Validate(id); err != nil {
		h.errs.WriteError(w, r, apperrors.NewInvalidULIDError(id))
		return
	}

	record, err := h.store.Get(r.Context(), id)
	if errors.Is(err, audit.ErrRecordNotFound) {
		h.errs.WriteError(w, r, apperrors.NewRecordNotFoundError(id))
		return
	}
	if err != nil {
		h.errs.WriteError(w, r, apperrors.NewDatabaseError(err))
		return
	}

	apperrors.WriteJSON(w, http.StatusOK, ChecksGetResponse{Check: record})
}

func (h *ChecksHandler) enabled(w http.ResponseWriter, r *http.Request) bool {
	if h.store == nil {
		h.errs.WriteError(w, r, apperrors.NewServiceUnavailableError("Audit trail is disabled"))
		return false
	}
	return true
}

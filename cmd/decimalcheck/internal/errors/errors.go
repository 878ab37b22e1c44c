// Package errors provides centralized error handling and HTTP error responses.
// It defines standard error codes, the APIError type, and middleware for
// consistent JSON error output across the HTTP API.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/logging"
)

// ErrorCode represents a standard error code
type ErrorCode string

const (
	// Request errors
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeInvalidJSON      ErrorCode = "INVALID_JSON"
	CodeInvalidULID      ErrorCode = "INVALID_ULID"
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	CodeBatchTooLarge    ErrorCode = "BATCH_TOO_LARGE"

	// Resource errors
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeRuleNotFound   ErrorCode = "RULE_NOT_FOUND"
	CodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"

	// Server errors
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      int            `json:"code"`
	ErrorCode ErrorCode      `json:"error_code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// APIError represents an application error
type APIError struct {
	Message    string
	StatusCode int
	ErrorCode  ErrorCode
	Details    map[string]any
	Err        error // Wrapped error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *APIError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error
func (e *APIError) WithDetails(details map[string]any) *APIError {
	e.Details = details
	return e
}

// Wrap wraps an error with additional context
func (e *APIError) Wrap(err error) *APIError {
	e.Err = err
	return e
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, errorCode ErrorCode, message string) *APIError {
	return &APIError{
		Message:    message,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeBadRequest, message)
}

// NewInvalidJSONError creates a 400 error for an undecodable request body
func NewInvalidJSONError(err error) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON request body").Wrap(err)
}

// NewInvalidULIDError creates a 400 error for a malformed record ID
func NewInvalidULIDError(id string) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeInvalidULID, fmt.Sprintf("Invalid ULID '%s'", id))
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string) *APIError {
	return NewAPIError(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// NewRuleNotFoundError creates a 404 error for an unknown rule
func NewRuleNotFoundError(rule string) *APIError {
	return NewAPIError(http.StatusNotFound, CodeRuleNotFound, fmt.Sprintf("Rule '%s' not found", rule))
}

// NewRecordNotFoundError creates a 404 error for an unknown check record
func NewRecordNotFoundError(id string) *APIError {
	return NewAPIError(http.StatusNotFound, CodeRecordNotFound, fmt.Sprintf("Check '%s' not found", id))
}

// NewMethodNotAllowedError creates a 405 Method Not Allowed error
func NewMethodNotAllowedError(method string) *APIError {
	return NewAPIError(http.StatusMethodNotAllowed, CodeMethodNotAllowed, fmt.Sprintf("Method %s not allowed", method))
}

// NewBatchTooLargeError creates a 413 error when a batch exceeds the limit
func NewBatchTooLargeError(size, limit int) *APIError {
	return NewAPIError(http.StatusRequestEntityTooLarge, CodeBatchTooLarge,
		fmt.Sprintf("Batch of %d values exceeds the limit of %d", size, limit)).
		WithDetails(map[string]any{"size": size, "limit": limit})
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string) *APIError {
	return NewAPIError(http.StatusInternalServerError, CodeInternalError, message)
}

// NewDatabaseError creates a 500 Database Error
func NewDatabaseError(err error) *APIError {
	return NewAPIError(http.StatusInternalServerError, CodeDatabaseError, "Database error").Wrap(err)
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return NewAPIError(http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}

// ErrorHandlerConfig holds configuration for error handling
type ErrorHandlerConfig struct {
	// ShowInternalErrors includes wrapped error text in responses.
	// Should be false in production
	ShowInternalErrors bool

	// LogStackTrace logs stack traces for panics
	LogStackTrace bool

	// Logger receives error logs. Defaults to the global logger.
	Logger *logging.Logger
}

// ErrorHandler provides error handling middleware and utilities
type ErrorHandler struct {
	config ErrorHandlerConfig
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(config ErrorHandlerConfig) *ErrorHandler {
	if config.Logger == nil {
		config.Logger = logging.GetLogger()
	}
	return &ErrorHandler{config: config}
}

// RecoveryMiddleware catches panics and converts them to 500 errors
func (h *ErrorHandler) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger := h.config.Logger.WithContext(r.Context())
				if h.config.LogStackTrace {
					logger.WithField("stack", string(debug.Stack())).Errorf("PANIC: %v", rec)
				} else {
					logger.Errorf("PANIC: %v", rec)
				}

				message := "Internal server error"
				if h.config.ShowInternalErrors {
					message = fmt.Sprintf("Internal server error: %v", rec)
				}

				h.WriteError(w, r, NewInternalError(message))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// WriteError writes an error response
func (h *ErrorHandler) WriteError(w http.ResponseWriter, r *http.Request, err *APIError) {
	requestID := logging.GetRequestID(r.Context())

	response := ErrorResponse{
		Error:     err.Message,
		Code:      err.StatusCode,
		ErrorCode: err.ErrorCode,
		Details:   err.Details,
		RequestID: requestID,
	}

	if h.config.ShowInternalErrors && err.Err != nil {
		details := make(map[string]any, len(err.Details)+1)
		for k, v := range err.Details {
			details[k] = v
		}
		details["internal_error"] = err.Err.Error()
		response.Details = details
	}

	logger := h.config.Logger.WithContext(r.Context())
	if err.StatusCode >= 500 {
		if err.Err != nil {
			logger.ErrorWithErr(fmt.Sprintf("%d %s: %s", err.StatusCode, err.ErrorCode, err.Message), err.Err)
		} else {
			logger.Errorf("%d %s: %s", err.StatusCode, err.ErrorCode, err.Message)
		}
	} else {
		logger.Debugf("%d %s: %s", err.StatusCode, err.ErrorCode, err.Message)
	}

	WriteJSON(w, err.StatusCode, response)
}

// WriteErrorFromError converts a standard error to an API error response
func (h *ErrorHandler) WriteErrorFromError(w http.ResponseWriter, r *http.Request, err error) {
	if apiErr, ok := err.(*APIError); ok {
		h.WriteError(w, r, apiErr)
		return
	}

	apiErr := NewInternalError("An unexpected error occurred")
	if h.config.ShowInternalErrors {
		apiErr = NewInternalError(err.Error())
	}
	apiErr.Err = err
	h.WriteError(w, r, apiErr)
}

// WriteJSON writes data as a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.ErrorWithErr("failed to encode JSON response", err)
	}
}

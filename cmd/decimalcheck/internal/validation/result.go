// Package validation provides the result container returned by matchers.
// A ValidationResult accumulates coded errors in insertion order and is valid
// when no error has been appended.
package validation

// ValidationError represents a single validation error
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult represents the outcome of validating one value
type ValidationResult struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationResult creates an empty, valid result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Errors: []ValidationError{}}
}

// AddError appends an error entry
func (r *ValidationResult) AddError(code, message string) {
	r.Errors = append(r.Errors, ValidationError{Code: code, Message: message})
}

// IsValid returns true if no errors were appended
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Codes returns the error codes in insertion order
func (r *ValidationResult) Codes() []string {
	codes := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		codes[i] = e.Code
	}
	return codes
}

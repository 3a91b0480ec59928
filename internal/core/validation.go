package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfigurationNotFound = errors.New("configuration not found")
	ErrInvalidTransition     = errors.New("invalid naming transition")
)

// ValidationCode identifies one kind of draft problem. Codes are stable and
// returned to API callers.
type ValidationCode string

const (
	CodeMissingName               ValidationCode = "MissingName"
	CodeInvalidKindForBillingMode ValidationCode = "InvalidKindForBillingMode"
	CodeInsufficientFunds         ValidationCode = "InsufficientFunds"
	CodeUnknownCatalogEntry       ValidationCode = "UnknownCatalogEntry"
	CodeInvalidQuantity           ValidationCode = "InvalidQuantity"
	CodeInvalidRuntimeHours       ValidationCode = "InvalidRuntimeHours"
	CodeInvalidGPUSelection       ValidationCode = "InvalidGPUSelection"
	CodeInvalidAddOn              ValidationCode = "InvalidAddOn"
	CodeInvalidSizing             ValidationCode = "InvalidSizing"
	CodeInvalidTerm               ValidationCode = "InvalidTerm"
	CodeUnknownVariant            ValidationCode = "UnknownVariant"
	CodeInvalidAmount             ValidationCode = "InvalidAmount"
)

type ValidationIssue struct {
	Code    ValidationCode `json:"code"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues"`
}

func (r *ValidationResult) add(code ValidationCode, field, format string, args ...any) {
	r.Issues = append(r.Issues, ValidationIssue{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
	r.Valid = false
}

// Err returns nil for a valid result, otherwise a *ValidationError carrying
// the issues.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Issues: r.Issues}
}

func newValidationResult() *ValidationResult {
	return &ValidationResult{Valid: true, Issues: []ValidationIssue{}}
}

// ValidationError rejects a draft or request. It is never retried.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, fmt.Sprintf("%s: %s", is.Code, is.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Has(code ValidationCode) bool {
	for _, is := range e.Issues {
		if is.Code == code {
			return true
		}
	}
	return false
}

// HasIssue reports whether err is (or wraps) a ValidationError with code.
func HasIssue(err error, code ValidationCode) bool {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	return ve.Has(code)
}

func invalid(code ValidationCode, field, format string, args ...any) *ValidationError {
	r := newValidationResult()
	r.add(code, field, format, args...)
	return &ValidationError{Issues: r.Issues}
}

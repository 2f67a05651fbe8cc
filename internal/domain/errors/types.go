package errors

import (
	"fmt"
	"strings"
)

// Stable machine-readable codes carried alongside every user-visible error.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotActivated = "USER_NOT_ACTIVATED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeExpired      = "EXPIRED"
	CodeDelegate     = "DELEGATE_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError wraps an underlying error with a user-facing message and a stable
// code for the API surface.
type AppError struct {
	Err  error
	Msg  string
	Code string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError builds an AppError with the given code.
func NewAppError(err error, msg, code string) *AppError {
	return &AppError{Err: err, Msg: msg, Code: code}
}

// ValidationError reports malformed or missing caller input with field-level
// detail. It never implies any state change occurred.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// NewValidationError builds a ValidationError from a field→messages map.
func NewValidationError(fields map[string][]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// FieldErrors accumulates per-field validation messages.
type FieldErrors map[string][]string

// Add appends a message for the named field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Empty reports whether no messages were recorded.
func (f FieldErrors) Empty() bool { return len(f) == 0 }

// AsError returns a *ValidationError, or nil when no messages were recorded.
func (f FieldErrors) AsError() error {
	if f.Empty() {
		return nil
	}
	return NewValidationError(f)
}

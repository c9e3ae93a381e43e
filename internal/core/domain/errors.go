package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure returned by the core wraps exactly one of these
// so that callers can branch with errors.Is.
var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("conflict")
)

// ValidationError names the violated rule. It unwraps to ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with a formatted message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// MissingFieldsError reports all missing required fields at once
func MissingFieldsError(fields []string) *ValidationError {
	return &ValidationError{Message: "Missing required fields: " + strings.Join(fields, ", ")}
}

// NotFoundError wraps ErrNotFound with the entity name
func NotFoundError(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}

// ConflictError wraps ErrConflict with a description of the duplicate field
func ConflictError(what string) error {
	return fmt.Errorf("%s: %w", what, ErrConflict)
}

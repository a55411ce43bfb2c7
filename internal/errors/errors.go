package errors

import (
	"errors"
	"fmt"
)

// Lifecycle error taxonomy. Every failure is scoped to a single operation;
// none of these is fatal to the process.
var (
	// ErrValidation indicates malformed or missing required input
	ErrValidation = errors.New("validation error")

	// ErrState indicates an operation that is illegal in the record's current lifecycle state
	ErrState = errors.New("invalid lifecycle state")

	// ErrNotFound indicates a referenced identifier does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadySent indicates a terminal draft was targeted by a mutating operation
	ErrAlreadySent = fmt.Errorf("%w: draft already sent", ErrState)

	// ErrDuplicateEntry indicates a unique constraint violation
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInternal indicates an unexpected internal failure
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeState          = "STATE_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeDuplicateEntry = "DUPLICATE_ENTRY"
	CodeInternalError  = "INTERNAL_ERROR"
)

// Validationf wraps ErrValidation with a formatted message
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Statef wraps ErrState with a formatted message
func Statef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted message
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsState checks if the error is a lifecycle state error
func IsState(err error) bool {
	return errors.Is(err, ErrState)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// GetErrorCode returns the API error code for an error
func GetErrorCode(err error) string {
	switch {
	case IsValidation(err):
		return CodeValidation
	case IsState(err):
		return CodeState
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrDuplicateEntry):
		return CodeDuplicateEntry
	default:
		return CodeInternalError
	}
}

package models

import "fmt"

// ValidationError reports a rejected mutation. Handlers map it to a 400
// with a field-level message; repositories return it before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-level validation error.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a mutation that collides with an existing row,
// typically a duplicate slug or title. Handlers map it to a 409.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewConflictError builds a field-level conflict error.
func NewConflictError(field, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Field: field, Message: fmt.Sprintf(format, args...)}
}

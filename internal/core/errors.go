package core

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is; the typed errors below carry the details.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidCalendarDate = errors.New("invalid calendar date")
)

// ValidationError indicates malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError indicates a referenced row is missing from the owner's scope.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConstraintError wraps a uniqueness or referential constraint raised by storage.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation [%s]: %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraintViolation }

// InvalidCalendarDateError is returned by date arithmetic that would land on
// a day the target month does not have (e.g. February 31).
type InvalidCalendarDateError struct {
	Year  int
	Month int
	Day   int
}

func (e *InvalidCalendarDateError) Error() string {
	return fmt.Sprintf("invalid calendar date: %04d-%02d-%02d", e.Year, e.Month, e.Day)
}

func (e *InvalidCalendarDateError) Is(target error) bool { return target == ErrInvalidCalendarDate }

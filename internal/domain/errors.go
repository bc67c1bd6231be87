package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates no record exists for the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden indicates the record exists but belongs to another owner.
	ErrForbidden = errors.New("record owned by another user")
	// ErrConflict wraps storage uniqueness or foreign-key violations.
	ErrConflict = errors.New("data constraint violation")
)

// ValidationError reports a client-fixable problem with the submitted payload.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

func missingFields(fields ...string) error {
	return &ValidationError{Detail: "missing required fields: " + strings.Join(fields, ", ")}
}

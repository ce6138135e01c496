package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateRecord = errors.New("record already saved for this racer, race, venue and date")
	ErrNoData          = errors.New("no recorded history")
)

// ValidationError describes a record that failed the builder's checks. It is
// scoped to a single competitor and never aborts the rest of the batch.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError creates a coded validation error.
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

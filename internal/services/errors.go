package services

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that an operate-by-id target does not exist. Handlers
// decide whether that becomes a 404.
var ErrNotFound = errors.New("not found")

// ValidationError covers missing required fields and values outside a
// closed enum or allow-list. Never retried, reported to the caller as 4xx.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

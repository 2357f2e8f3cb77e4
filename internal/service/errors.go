package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks recoverable bad-input failures. Wrapped values
	// carry the human-readable reason.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden marks an authenticated caller acting outside its role
	// or on a resource it does not own.
	ErrForbidden = errors.New("forbidden")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbiddenError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

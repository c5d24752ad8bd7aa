package soil

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request missing a required identifying field
	// or carrying a malformed argument.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means no reading matched a device/window query.
	ErrNotFound = errors.New("not found")
	// ErrStorage wraps failures of the storage collaborator.
	ErrStorage = errors.New("storage error")
)

// ValidationError names the offending field. Message is complete on its
// own and safe to show to clients.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for subscriber input validation.
var (
	ErrInvalidName  = errors.New("invalid subscriber name")
	ErrInvalidEmail = errors.New("invalid subscriber email")
)

// InvalidEmailError carries the rejected address for diagnostics.
// errors.Is(err, ErrInvalidEmail) reports true for it.
type InvalidEmailError struct {
	Value string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("%q is an invalid email", e.Value)
}

func (e *InvalidEmailError) Unwrap() error { return ErrInvalidEmail }

// IsValidationError reports whether err came from parsing client input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidName) || errors.Is(err, ErrInvalidEmail)
}

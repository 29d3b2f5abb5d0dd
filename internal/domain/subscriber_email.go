package domain

import (
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	emailValidator     *validator.Validate
	emailValidatorOnce sync.Once
)

func getEmailValidator() *validator.Validate {
	emailValidatorOnce.Do(func() {
		emailValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return emailValidator
}

// SubscriberEmail is a syntactically valid email address.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail checks raw against the validator's email grammar and
// wraps it unchanged.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if !utf8.ValidString(raw) {
		return SubscriberEmail{}, &InvalidEmailError{Value: raw}
	}
	if err := getEmailValidator().Var(raw, "required,email"); err != nil {
		return SubscriberEmail{}, &InvalidEmailError{Value: raw}
	}
	return SubscriberEmail{value: raw}, nil
}

func (e SubscriberEmail) String() string { return e.value }

// IsZero reports whether e was never produced by ParseSubscriberEmail.
func (e SubscriberEmail) IsZero() bool { return e.value == "" }

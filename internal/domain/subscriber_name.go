package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// MaxNameGraphemes is the longest display name accepted, counted in
// user-perceived characters.
const MaxNameGraphemes = 256

// forbiddenNameChars are rejected anywhere in a name.
const forbiddenNameChars = `/()"<>\{}`

// SubscriberName is a validated subscriber display name.
type SubscriberName struct {
	value string
}

// ParseSubscriberName validates raw and wraps it unchanged. The trimmed form
// is only used for the emptiness check; the stored value keeps any
// surrounding whitespace.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	if !utf8.ValidString(raw) || strings.TrimSpace(raw) == "" {
		return SubscriberName{}, ErrInvalidName
	}
	if uniseg.GraphemeClusterCount(raw) > MaxNameGraphemes {
		return SubscriberName{}, ErrInvalidName
	}
	if strings.ContainsAny(raw, forbiddenNameChars) {
		return SubscriberName{}, ErrInvalidName
	}
	return SubscriberName{value: raw}, nil
}

func (n SubscriberName) String() string { return n.value }

// IsZero reports whether n was never produced by ParseSubscriberName.
func (n SubscriberName) IsZero() bool { return n.value == "" }

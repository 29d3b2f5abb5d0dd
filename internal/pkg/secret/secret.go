// Package secret holds credentials in a form that resists accidental
// disclosure. A String prints, marshals and logs as "[REDACTED]"; the only way
// to read the underlying value is an explicit call to Expose.
package secret

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const redacted = "[REDACTED]"

// value sits behind a pointer so that fmt, when walking a struct that embeds a
// String in an unexported field, prints an address rather than the contents.
type value struct {
	v string
}

// String wraps a secret string value. The zero value is an empty secret.
type String struct {
	p *value
}

// New wraps s.
func New(s string) String {
	return String{p: &value{v: s}}
}

// Expose returns the plaintext. Call it only where the value is handed to the
// system that needs it (an HTTP header, a database driver).
func (s String) Expose() string {
	if s.p == nil {
		return ""
	}
	return s.p.v
}

// IsEmpty reports whether no secret has been set.
func (s String) IsEmpty() bool {
	return s.Expose() == ""
}

func (s String) String() string   { return redacted }
func (s String) GoString() string { return "secret.String(" + redacted + ")" }

// Format covers every fmt verb, including %x and %q.
func (s String) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		fmt.Fprint(f, s.GoString())
		return
	}
	fmt.Fprint(f, redacted)
}

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(redacted)
}

func (s String) MarshalYAML() (interface{}, error) {
	return redacted, nil
}

// UnmarshalYAML lets secrets be loaded straight from config files.
func (s *String) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("decode secret: expected a string scalar")
	}
	*s = New(raw)
	return nil
}

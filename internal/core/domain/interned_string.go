package domain

import "unique"

// InternedString is a canonical handle for a name that appears in many method
// keys, such as a method name or a joined type-argument list. Two handles are
// equal exactly when their strings are, so keys compare without string scans.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString interns s.
func NewInternedString(s string) InternedString {
	return InternedString{h: unique.Make(s)}
}

// IsZero reports whether the handle was never set.
func (is InternedString) IsZero() bool {
	return is.h == unique.Handle[string]{}
}

func (is InternedString) String() string {
	if is.IsZero() {
		return ""
	}
	return is.h.Value()
}

// MarshalText implements encoding.TextMarshaler so keys print by name.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.String()), nil
}

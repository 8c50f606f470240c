package domain

import "reflect"

// TypeDescriptor identifies a concrete runtime type: the proxy's own type or the
// delegation target's type. It is comparable and immutable.
type TypeDescriptor struct {
	t    reflect.Type
	name InternedString
}

// TypeOf returns the descriptor of t.
func TypeOf(t reflect.Type) TypeDescriptor {
	return TypeDescriptor{t: t, name: NewInternedString(TypeName(t))}
}

// TypeOfValue returns the descriptor of the dynamic type of v.
func TypeOfValue(v any) TypeDescriptor {
	return TypeOf(reflect.TypeOf(v))
}

// Type returns the underlying reflect.Type, nil for the zero descriptor.
func (d TypeDescriptor) Type() reflect.Type { return d.t }

// Name returns the package-path qualified type name.
func (d TypeDescriptor) Name() string { return d.name.String() }

// IsZero reports whether the descriptor identifies no type.
func (d TypeDescriptor) IsZero() bool { return d.t == nil }

// String implements fmt.Stringer.
func (d TypeDescriptor) String() string { return d.Name() }

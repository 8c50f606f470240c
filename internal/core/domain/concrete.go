package domain

import (
	"reflect"
	"unsafe"

	"go.trai.ch/zerr"
)

// ConcreteMethod is the implementation that fulfils a declared method on a concrete type.
// Entries are built once by the resolver and never mutated afterwards.
type ConcreteMethod struct {
	declared *MethodDescriptor
	concrete reflect.Type
	owner    reflect.Type
	path     []int
	fn       reflect.Value
}

// NewConcreteMethod builds a resolved method.
// fn takes the receiver (of type owner) as its first argument; path is the
// embedded-field index path leading from a concrete value to that receiver.
func NewConcreteMethod(declared *MethodDescriptor, concrete, owner reflect.Type, path []int, fn reflect.Value) *ConcreteMethod {
	var p []int
	if len(path) > 0 {
		p = make([]int, len(path))
		copy(p, path)
	}
	return &ConcreteMethod{
		declared: declared,
		concrete: concrete,
		owner:    owner,
		path:     p,
		fn:       fn,
	}
}

// Declared returns the declared method this implementation fulfils.
func (m *ConcreteMethod) Declared() *MethodDescriptor { return m.declared }

// ConcreteType returns the type the method was resolved against.
func (m *ConcreteMethod) ConcreteType() reflect.Type { return m.concrete }

// Owner returns the receiver type of the implementation.
func (m *ConcreteMethod) Owner() reflect.Type { return m.owner }

// Path returns a copy of the embedded-field path from the concrete type to the owner.
func (m *ConcreteMethod) Path() []int {
	if len(m.path) == 0 {
		return nil
	}
	p := make([]int, len(m.path))
	copy(p, m.path)
	return p
}

// Func returns the receiver-first function value.
func (m *ConcreteMethod) Func() reflect.Value { return m.fn }

// Record returns the diagnostic view of the method.
func (m *ConcreteMethod) Record() ResolutionRecord {
	rec := ResolutionRecord{
		Method: m.declared.String(),
		Type:   TypeName(m.concrete),
		Owner:  TypeName(m.owner),
		Path:   m.Path(),
	}
	for _, ta := range m.declared.typeArgs {
		rec.TypeArgs = append(rec.TypeArgs, TypeName(ta))
	}
	return rec
}

// Call invokes the implementation on receiver, a value of the concrete type.
// Variadic methods expect the last argument to hold the whole variadic slice.
func (m *ConcreteMethod) Call(receiver reflect.Value, args []reflect.Value) ([]reflect.Value, error) {
	recv, err := m.Receiver(receiver)
	if err != nil {
		return nil, err
	}

	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, recv)
	in = append(in, args...)

	if m.declared.variadic {
		return m.fn.CallSlice(in), nil
	}
	return m.fn.Call(in), nil
}

// Receiver walks the embedded-field path from v and adapts the result to the owner type.
func (m *ConcreteMethod) Receiver(v reflect.Value) (reflect.Value, error) {
	for _, idx := range m.path {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, m.receiverError("nil embedded receiver")
			}
			v = v.Elem()
		}
		v = exposeField(v.Field(idx))
	}
	if len(m.path) > 0 && v.Kind() == reflect.Pointer && v.IsNil() {
		return reflect.Value{}, m.receiverError("nil embedded receiver")
	}
	return m.adaptReceiver(v)
}

func (m *ConcreteMethod) adaptReceiver(v reflect.Value) (reflect.Value, error) {
	switch {
	case v.Type() == m.owner:
		return v, nil
	case v.Kind() == reflect.Pointer && v.Type().Elem() == m.owner:
		if v.IsNil() {
			return reflect.Value{}, m.receiverError("nil embedded receiver")
		}
		return v.Elem(), nil
	case m.owner.Kind() == reflect.Pointer && m.owner.Elem() == v.Type():
		if !v.CanAddr() {
			return reflect.Value{}, m.receiverError("receiver is not addressable")
		}
		return v.Addr(), nil
	case v.Type().AssignableTo(m.owner):
		return v, nil
	default:
		return reflect.Value{}, m.receiverError("receiver type mismatch")
	}
}

func (m *ConcreteMethod) receiverError(msg string) error {
	err := zerr.With(zerr.Wrap(ErrInvariantViolated, msg), "method", m.declared.String())
	return zerr.With(err, "owner", TypeName(m.owner))
}

// exposeField lifts the read-only flag reflect puts on values reached through
// unexported embedded fields, so methods of unexported base types stay callable.
func exposeField(f reflect.Value) reflect.Value {
	if f.CanInterface() || !f.CanAddr() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

package domain

import (
	"reflect"

	"go.trai.ch/zerr"
)

// GenericDefinition describes a generic method implementation of some owner type.
// Go methods cannot carry type parameters, so implementations are supplied as
// generic functions taking the receiver first, pre-instantiated per type-argument list.
type GenericDefinition struct {
	Name  string
	Arity int

	// Instantiate returns the receiver-first function specialized for typeArgs.
	Instantiate func(typeArgs []reflect.Type) (reflect.Value, bool)
}

// InstanceSet collects instantiations of one generic function.
// Populate it during initialization; it is not safe for Add after Definition is in use.
type InstanceSet struct {
	name  string
	arity int
	fns   map[InternedString]reflect.Value
}

// NewInstanceSet creates an empty set for the generic method name with arity type parameters.
func NewInstanceSet(name string, arity int) *InstanceSet {
	return &InstanceSet{
		name:  name,
		arity: arity,
		fns:   make(map[InternedString]reflect.Value),
	}
}

// Add registers fn, an instantiation of the generic function over typeArgs.
// It panics when fn is not a function or the argument count does not match the arity.
func (s *InstanceSet) Add(fn any, typeArgs ...reflect.Type) *InstanceSet {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(zerr.With(zerr.Wrap(ErrMethodNotDeclared, "generic instance is not a function"), "method", s.name))
	}
	if len(typeArgs) != s.arity {
		panic(zerr.With(zerr.Wrap(ErrMethodNotDeclared, "type argument count mismatch"), "method", s.name))
	}
	s.fns[NewInternedString(typeListName(typeArgs))] = v
	return s
}

// Len returns the number of registered instantiations.
func (s *InstanceSet) Len() int {
	return len(s.fns)
}

// Definition returns the generic definition backed by the set.
func (s *InstanceSet) Definition() GenericDefinition {
	return GenericDefinition{
		Name:  s.name,
		Arity: s.arity,
		Instantiate: func(typeArgs []reflect.Type) (reflect.Value, bool) {
			fn, ok := s.fns[NewInternedString(typeListName(typeArgs))]
			return fn, ok
		},
	}
}

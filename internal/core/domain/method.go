package domain

import (
	"reflect"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// MethodKey is the comparable identity of a declared method.
// Closed generic instantiations differ in TypeArgs, so each instantiation gets its own key.
type MethodKey struct {
	Declaring reflect.Type
	Name      InternedString
	TypeArgs  InternedString
}

// MethodDescriptor identifies a member declared on an interface or base type.
// It is immutable once built; share it freely between goroutines.
type MethodDescriptor struct {
	declaring reflect.Type
	name      InternedString
	params    []reflect.Type
	results   []reflect.Type
	variadic  bool

	// arity is the number of type parameters of a generic method (0 otherwise).
	arity      int
	typeArgs   []reflect.Type
	definition *MethodDescriptor

	key         MethodKey
	fingerprint uint64
}

// MethodOf builds a descriptor for the method called name declared by t.
// For interfaces the method comes from the interface itself; for any other type
// it comes from the type's method set with the receiver stripped.
func MethodOf(t reflect.Type, name string) (*MethodDescriptor, error) {
	if t == nil {
		return nil, zerr.With(zerr.Wrap(ErrMethodNotDeclared, "nil declaring type"), "method", name)
	}

	m, ok := t.MethodByName(name)
	if !ok {
		return nil, zerr.With(zerr.With(zerr.Wrap(ErrMethodNotDeclared, "lookup failed"), "method", name), "type", TypeName(t))
	}

	ft := m.Type
	offset := 1
	if t.Kind() == reflect.Interface {
		offset = 0
	}

	params := make([]reflect.Type, 0, ft.NumIn()-offset)
	for i := offset; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}
	results := make([]reflect.Type, 0, ft.NumOut())
	for i := 0; i < ft.NumOut(); i++ {
		results = append(results, ft.Out(i))
	}

	return NewMethod(t, name, params, results, ft.IsVariadic()), nil
}

// MustMethodOf is like MethodOf but panics on error.
// It is meant for package-level descriptor variables of generated proxies.
func MustMethodOf(t reflect.Type, name string) *MethodDescriptor {
	m, err := MethodOf(t, name)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMethod builds a non-generic descriptor from its parts.
func NewMethod(declaring reflect.Type, name string, params, results []reflect.Type, variadic bool) *MethodDescriptor {
	m := &MethodDescriptor{
		declaring: declaring,
		name:      NewInternedString(name),
		params:    cloneTypes(params),
		results:   cloneTypes(results),
		variadic:  variadic,
	}
	m.seal()
	return m
}

// NewGenericMethod builds an open generic method definition with the given number of type parameters.
// A nil entry in params marks a parameter whose type depends on a type argument;
// it is not compared structurally.
func NewGenericMethod(declaring reflect.Type, name string, arity int, params, results []reflect.Type) *MethodDescriptor {
	m := &MethodDescriptor{
		declaring: declaring,
		name:      NewInternedString(name),
		params:    cloneTypes(params),
		results:   cloneTypes(results),
		arity:     arity,
	}
	m.seal()
	return m
}

// Instantiate closes a generic definition over typeArgs.
func (m *MethodDescriptor) Instantiate(typeArgs ...reflect.Type) (*MethodDescriptor, error) {
	def := m.Definition()
	if def.arity == 0 || len(typeArgs) != def.arity {
		err := zerr.With(zerr.Wrap(ErrMethodNotDeclared, "type argument count mismatch"), "method", def.String())
		return nil, zerr.With(err, "type_args", len(typeArgs))
	}
	for _, ta := range typeArgs {
		if ta == nil {
			return nil, zerr.With(zerr.Wrap(ErrMethodNotDeclared, "nil type argument"), "method", def.String())
		}
	}

	closed := &MethodDescriptor{
		declaring:  def.declaring,
		name:       def.name,
		params:     def.params,
		results:    def.results,
		variadic:   def.variadic,
		arity:      def.arity,
		typeArgs:   cloneTypes(typeArgs),
		definition: def,
	}
	closed.seal()
	return closed, nil
}

// seal computes the key and fingerprint. Called once by every constructor.
func (m *MethodDescriptor) seal() {
	var args string
	switch {
	case len(m.typeArgs) > 0:
		args = typeListName(m.typeArgs)
	case m.arity > 0:
		args = "`" + strconv.Itoa(m.arity)
	}

	m.key = MethodKey{
		Declaring: m.declaring,
		Name:      m.name,
		TypeArgs:  NewInternedString(args),
	}

	d := xxhash.New()
	_, _ = d.WriteString(TypeName(m.declaring))
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(m.name.String())
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(args)
	m.fingerprint = d.Sum64()
}

// Key returns the comparable identity of the method.
func (m *MethodDescriptor) Key() MethodKey { return m.key }

// Fingerprint returns a stable hash of the method identity.
func (m *MethodDescriptor) Fingerprint() uint64 { return m.fingerprint }

// DeclaringType returns the interface or base type that declares the method.
func (m *MethodDescriptor) DeclaringType() reflect.Type { return m.declaring }

// Name returns the method name.
func (m *MethodDescriptor) Name() string { return m.name.String() }

// NumParams returns the number of declared parameters (receiver excluded).
func (m *MethodDescriptor) NumParams() int { return len(m.params) }

// Param returns the i-th declared parameter type, or nil for a type-parameter position.
func (m *MethodDescriptor) Param(i int) reflect.Type { return m.params[i] }

// Results returns a copy of the declared result types.
func (m *MethodDescriptor) Results() []reflect.Type { return cloneTypes(m.results) }

// Variadic reports whether the last parameter is variadic.
func (m *MethodDescriptor) Variadic() bool { return m.variadic }

// IsGeneric reports whether the method has type parameters (open or closed).
func (m *MethodDescriptor) IsGeneric() bool { return m.arity > 0 }

// Arity returns the number of type parameters.
func (m *MethodDescriptor) Arity() int { return m.arity }

// TypeArgs returns a copy of the type arguments of a closed generic method.
func (m *MethodDescriptor) TypeArgs() []reflect.Type { return cloneTypes(m.typeArgs) }

// IsClosed reports whether the method is a generic instantiation.
func (m *MethodDescriptor) IsClosed() bool { return len(m.typeArgs) > 0 }

// Definition strips a closed generic method to its open definition.
// Non-generic and open methods return themselves.
func (m *MethodDescriptor) Definition() *MethodDescriptor {
	if m.definition != nil {
		return m.definition
	}
	return m
}

// Equal reports whether both descriptors denote the same declared signature.
func (m *MethodDescriptor) Equal(other *MethodDescriptor) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.key == other.key
}

// Matches compares fn structurally against the declared signature: parameter
// count, parameter types and the variadic flag. Result types are not compared.
// When hasReceiver is set the first parameter of fn is skipped.
func (m *MethodDescriptor) Matches(fn reflect.Type, hasReceiver bool) bool {
	if fn == nil || fn.Kind() != reflect.Func {
		return false
	}
	offset := 0
	if hasReceiver {
		offset = 1
	}
	if fn.NumIn()-offset != len(m.params) || fn.IsVariadic() != m.variadic {
		return false
	}
	for i, p := range m.params {
		if p == nil {
			continue
		}
		if fn.In(i+offset) != p {
			return false
		}
	}
	return true
}

// String renders the method as "pkg.Type.Name" with type arguments when closed.
func (m *MethodDescriptor) String() string {
	s := TypeName(m.declaring) + "." + m.name.String()
	switch {
	case len(m.typeArgs) > 0:
		s += "[" + typeListName(m.typeArgs) + "]"
	case m.arity > 0:
		s += "`" + strconv.Itoa(m.arity)
	}
	return s
}

func cloneTypes(types []reflect.Type) []reflect.Type {
	if len(types) == 0 {
		return nil
	}
	out := make([]reflect.Type, len(types))
	copy(out, types)
	return out
}

package resolver

import (
	"reflect"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/zerr"
)

// embedded is a type reachable from a concrete type through anonymous fields.
type embedded struct {
	typ  reflect.Type
	path []int
}

// compute finds the implementation of declared on concrete. It runs under the
// shard's write lock and must depend on nothing but its arguments.
func (r *Resolver) compute(
	declared *domain.MethodDescriptor,
	concrete reflect.Type,
	mode domain.DispatchMode,
) (*domain.ConcreteMethod, error) {
	if declared.IsGeneric() && !declared.IsClosed() {
		return nil, r.invariant(declared, concrete, "open generic method cannot be dispatched")
	}

	def := declared.Definition()
	typeArgs := declared.TypeArgs()

	if def.DeclaringType().Kind() == reflect.Interface {
		return r.resolveInterface(declared, def, concrete, typeArgs)
	}
	return r.resolveBase(declared, def, concrete, typeArgs, mode)
}

func (r *Resolver) resolveInterface(
	declared, def *domain.MethodDescriptor,
	concrete reflect.Type,
	typeArgs []reflect.Type,
) (*domain.ConcreteMethod, error) {
	iface := def.DeclaringType()
	if !concrete.Implements(iface) {
		return nil, r.invariant(declared, concrete, "type does not implement the declaring interface")
	}

	if def.IsGeneric() {
		owners := append([]embedded{{typ: concrete}}, embeddedTypes(concrete)...)
		return r.resolveGeneric(declared, def, concrete, owners, typeArgs)
	}

	slots := interfaceMap(iface, concrete)
	m, ok := slots[def.Name()]
	if !ok || !def.Matches(m.Type, true) {
		return nil, r.notFound(declared, concrete)
	}
	return domain.NewConcreteMethod(declared, concrete, concrete, nil, m.Func), nil
}

func (r *Resolver) resolveBase(
	declared, def *domain.MethodDescriptor,
	concrete reflect.Type,
	typeArgs []reflect.Type,
	mode domain.DispatchMode,
) (*domain.ConcreteMethod, error) {
	base := def.DeclaringType()
	path, ok := embeddingPath(concrete, base)
	if !ok {
		return nil, r.invariant(declared, concrete, "type does not embed the declaring type")
	}

	if def.IsGeneric() {
		owners := []embedded{{typ: base, path: path}}
		if mode == domain.DispatchVirtual {
			owners = append([]embedded{{typ: concrete}}, owners...)
		}
		return r.resolveGeneric(declared, def, concrete, owners, typeArgs)
	}

	// Virtual dispatch takes the most derived implementation in the concrete
	// type's method set. A method promoted from base is found there too.
	if mode == domain.DispatchVirtual {
		if m, ok := concrete.MethodByName(def.Name()); ok && def.Matches(m.Type, true) {
			return domain.NewConcreteMethod(declared, concrete, concrete, nil, m.Func), nil
		}
	}

	// The base type's own method set: an override on the concrete type is never
	// selected, so an overriding proxy cannot re-enter itself.
	for i := 0; i < base.NumMethod(); i++ {
		m := base.Method(i)
		if m.Name != def.Name() || !def.Matches(m.Type, true) {
			continue
		}
		return domain.NewConcreteMethod(declared, concrete, base, path, m.Func), nil
	}
	return nil, r.notFound(declared, concrete)
}

func (r *Resolver) resolveGeneric(
	declared, def *domain.MethodDescriptor,
	concrete reflect.Type,
	owners []embedded,
	typeArgs []reflect.Type,
) (*domain.ConcreteMethod, error) {
	if r.generics == nil {
		return nil, r.notFound(declared, concrete)
	}

	for _, owner := range owners {
		gd, ok := r.generics.Lookup(owner.typ, def.Name(), def.Arity())
		if !ok {
			continue
		}
		fn, ok := gd.Instantiate(typeArgs)
		if !ok || !fn.IsValid() {
			return nil, zerr.With(r.notFound(declared, concrete), "reason", "no instantiation for type arguments")
		}

		ft := fn.Type()
		if ft.Kind() != reflect.Func || ft.NumIn() == 0 || !def.Matches(ft, true) {
			return nil, zerr.With(r.notFound(declared, concrete), "reason", "instantiation signature mismatch")
		}
		if !receiverCompatible(ft.In(0), owner.typ) {
			return nil, zerr.With(r.notFound(declared, concrete), "reason", "instantiation receiver mismatch")
		}
		return domain.NewConcreteMethod(declared, concrete, ft.In(0), owner.path, fn), nil
	}
	return nil, r.notFound(declared, concrete)
}

func (r *Resolver) invariant(declared *domain.MethodDescriptor, concrete reflect.Type, msg string) error {
	err := zerr.With(zerr.Wrap(domain.ErrInvariantViolated, msg), "method", declared.String())
	return zerr.With(err, "type", domain.TypeName(concrete))
}

func (r *Resolver) notFound(declared *domain.MethodDescriptor, concrete reflect.Type) error {
	err := zerr.With(zerr.Wrap(domain.ErrResolutionFailed, "resolution failed"), "method", declared.String())
	return zerr.With(err, "type", domain.TypeName(concrete))
}

// interfaceMap aligns each method of iface with the method of concrete that fills its slot.
// Promoted methods are included; their function values accept concrete as receiver.
func interfaceMap(iface, concrete reflect.Type) map[string]reflect.Method {
	slots := make(map[string]reflect.Method, iface.NumMethod())
	for i := 0; i < iface.NumMethod(); i++ {
		name := iface.Method(i).Name
		if m, ok := concrete.MethodByName(name); ok {
			slots[name] = m
		}
	}
	return slots
}

// embeddingPath returns the anonymous field path leading from concrete to target.
// Pointer and value embeddings of target are both accepted. The shallowest
// embedding wins; ties go to the first field in declaration order.
func embeddingPath(concrete, target reflect.Type) ([]int, bool) {
	if sameOrPointer(concrete, target) {
		return nil, true
	}
	for _, e := range embeddedTypes(concrete) {
		if sameOrPointer(e.typ, target) {
			return e.path, true
		}
	}
	return nil, false
}

// embeddedTypes lists every type reachable through anonymous fields, breadth first.
func embeddedTypes(t reflect.Type) []embedded {
	var out []embedded
	seen := map[reflect.Type]bool{indirect(t): true}
	queue := []embedded{{typ: t}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		st := indirect(cur.typ)
		if st.Kind() != reflect.Struct {
			continue
		}
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			if !f.Anonymous {
				continue
			}
			path := make([]int, len(cur.path)+1)
			copy(path, cur.path)
			path[len(cur.path)] = i

			e := embedded{typ: f.Type, path: path}
			out = append(out, e)
			if !seen[indirect(f.Type)] {
				seen[indirect(f.Type)] = true
				queue = append(queue, e)
			}
		}
	}
	return out
}

func indirect(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func sameOrPointer(a, b reflect.Type) bool {
	return a == b || indirect(a) == indirect(b) && indirect(b).Name() != ""
}

func receiverCompatible(recv, owner reflect.Type) bool {
	return recv == owner || indirect(recv) == indirect(owner)
}

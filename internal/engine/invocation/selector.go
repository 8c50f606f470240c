package invocation

import (
	"reflect"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/zerr"
)

// Selector chooses the interceptors that apply to one (type, method) pair.
// Implementations must be deterministic for a fixed input and safe for concurrent use.
type Selector interface {
	Select(concrete reflect.Type, method *domain.MethodDescriptor, all []Interceptor) []Interceptor
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(concrete reflect.Type, method *domain.MethodDescriptor, all []Interceptor) []Interceptor

// Select calls f.
func (f SelectorFunc) Select(concrete reflect.Type, method *domain.MethodDescriptor, all []Interceptor) []Interceptor {
	return f(concrete, method, all)
}

type selectAll struct{}

func (selectAll) Select(_ reflect.Type, _ *domain.MethodDescriptor, all []Interceptor) []Interceptor {
	return all
}

// SelectAll returns the default selector, which keeps the full sequence unchanged.
func SelectAll() Selector {
	return selectAll{}
}

// SelectByType keeps the interceptors whose dynamic type is T, or implements T
// when T is an interface, in their original order.
func SelectByType[T any]() Selector {
	return SelectWhere(func(_ *domain.MethodDescriptor, ic Interceptor) bool {
		_, ok := ic.(T)
		return ok
	})
}

// SelectWhere keeps the interceptors for which keep returns true, in their original order.
func SelectWhere(keep func(method *domain.MethodDescriptor, ic Interceptor) bool) Selector {
	return SelectorFunc(func(_ reflect.Type, method *domain.MethodDescriptor, all []Interceptor) []Interceptor {
		out := make([]Interceptor, 0, len(all))
		for _, ic := range all {
			if keep(method, ic) {
				out = append(out, ic)
			}
		}
		return out
	})
}

// Select runs sel and checks that the result only uses members of all, each no
// more often than it occurs there. A nil selector selects everything.
func Select(sel Selector, concrete reflect.Type, method *domain.MethodDescriptor, all []Interceptor) ([]Interceptor, error) {
	if sel == nil {
		sel = SelectAll()
	}
	selected := sel.Select(concrete, method, all)

	used := make([]bool, len(all))
	for i, ic := range selected {
		if !claim(ic, all, used) {
			err := zerr.With(zerr.Wrap(domain.ErrInvalidSelection, "interceptor not in the full sequence"), "method", method.String())
			return nil, zerr.With(err, "position", i)
		}
	}
	return selected, nil
}

// claim marks the first unused member of all that equals ic.
func claim(ic Interceptor, all []Interceptor, used []bool) bool {
	for j, candidate := range all {
		if !used[j] && sameInterceptor(ic, candidate) {
			used[j] = true
			return true
		}
	}
	return false
}

// sameInterceptor compares interceptors by identity. Function interceptors are
// compared by code pointer since func values are not comparable. Values that are
// not comparable at runtime fall back to deep equality.
func sameInterceptor(a, b Interceptor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if domain.SameObject(a, b) {
		return true
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || va.Kind() == reflect.Func {
		return false
	}
	if !va.Comparable() || !vb.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return false
}

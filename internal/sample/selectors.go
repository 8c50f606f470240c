package sample

import (
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/engine/invocation"
	"go.trai.ch/zerr"
)

// ErrUnknownSelector is returned for a selector name not in SelectorNames.
var ErrUnknownSelector = zerr.Wrap(domain.ErrConfiguration, "unknown selector")

// SelectorNames lists the selectors known to Selector.
func SelectorNames() []string {
	return []string{"all", "audit", "arithmetic"}
}

// Selector returns a named selector:
//
//	all         every interceptor on every method
//	audit       only Recorder and Counter interceptors
//	arithmetic  every interceptor on Add and Sum, only Recorders elsewhere
func Selector(name string) (invocation.Selector, error) {
	switch name {
	case "", "all":
		return invocation.SelectAll(), nil
	case "audit":
		return invocation.SelectWhere(func(_ *domain.MethodDescriptor, ic invocation.Interceptor) bool {
			switch ic.(type) {
			case *Recorder, *Counter:
				return true
			default:
				return false
			}
		}), nil
	case "arithmetic":
		return invocation.SelectWhere(func(m *domain.MethodDescriptor, ic invocation.Interceptor) bool {
			if n := m.Name(); n == "Add" || n == "Sum" {
				return true
			}
			_, ok := ic.(*Recorder)
			return ok
		}), nil
	default:
		return nil, zerr.With(zerr.Wrap(ErrUnknownSelector, "no such selector"), "selector", name)
	}
}

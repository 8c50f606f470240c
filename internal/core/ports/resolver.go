package ports

import (
	"reflect"

	"go.trai.ch/interpose/internal/core/domain"
)

//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks

// MethodResolver maps a declared method and a concrete type to the implementation that must run.
type MethodResolver interface {
	// Resolve returns the concrete method fulfilling declared on concrete.
	// mode decides whether an override on concrete hides a base-type method.
	// Implementations must be safe for concurrent use and return the same
	// *domain.ConcreteMethod for repeated calls with the same key.
	Resolve(declared *domain.MethodDescriptor, concrete reflect.Type, mode domain.DispatchMode) (*domain.ConcreteMethod, error)
}

// GenericSource supplies generic method implementations, which reflection cannot enumerate.
type GenericSource interface {
	// Lookup returns the generic definition registered on owner under name with the given arity.
	Lookup(owner reflect.Type, name string, arity int) (domain.GenericDefinition, bool)
}

package resolver

import (
	"reflect"
	"sync"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/zerr"
)

var (
	// ErrNilOwner is returned when a generic definition is registered without an owner type.
	ErrNilOwner = zerr.New("nil owner type")
	// ErrInvalidDefinition is returned when a generic definition has no name, arity or instantiator.
	ErrInvalidDefinition = zerr.New("invalid generic definition")
	// ErrConflictingRegistration is returned when an owner already has a generic
	// method of the same name with a different arity.
	ErrConflictingRegistration = zerr.New("conflicting generic registration")
)

type genericKey struct {
	owner reflect.Type
	name  string
}

// Generics is a registry of generic method implementations keyed by owner type.
// It implements ports.GenericSource and is safe for concurrent use.
type Generics struct {
	mu   sync.RWMutex
	defs map[genericKey]domain.GenericDefinition
}

// NewGenerics creates an empty registry.
func NewGenerics() *Generics {
	return &Generics{defs: make(map[genericKey]domain.GenericDefinition)}
}

// Register associates def with owner. Pointer and value forms of a named type share entries.
// It is idempotent for the same (owner, name, arity).
func (g *Generics) Register(owner reflect.Type, def domain.GenericDefinition) error {
	if owner == nil {
		return ErrNilOwner
	}
	if def.Name == "" || def.Arity <= 0 || def.Instantiate == nil {
		return zerr.With(zerr.Wrap(ErrInvalidDefinition, "register failed"), "name", def.Name)
	}

	key := genericKey{owner: normalize(owner), name: def.Name}

	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.defs[key]; ok {
		if old.Arity == def.Arity {
			return nil
		}
		err := zerr.With(zerr.Wrap(ErrConflictingRegistration, "arity differs"), "owner", domain.TypeName(owner))
		return zerr.With(err, "name", def.Name)
	}
	g.defs[key] = def
	return nil
}

// Lookup returns the definition registered on owner under name with the given arity.
func (g *Generics) Lookup(owner reflect.Type, name string, arity int) (domain.GenericDefinition, bool) {
	if owner == nil {
		return domain.GenericDefinition{}, false
	}

	g.mu.RLock()
	def, ok := g.defs[genericKey{owner: normalize(owner), name: name}]
	g.mu.RUnlock()

	if !ok || def.Arity != arity {
		return domain.GenericDefinition{}, false
	}
	return def, true
}

// Count returns the number of registered definitions.
func (g *Generics) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.defs)
}

// normalize maps a pointer to a named type onto the named type itself.
func normalize(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer && t.Elem().Name() != "" {
		return t.Elem()
	}
	return t
}

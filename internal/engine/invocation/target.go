package invocation

import (
	"reflect"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/zerr"
)

// Strategy is the terminal dispatch behavior of an invocation.
// The two implementations are Delegating and Overriding.
type Strategy interface {
	// Target returns the object the concrete method is called on.
	Target() any
	// TargetType returns the concrete type the declared method is resolved against.
	TargetType() reflect.Type
	// Mode returns how the declared method is bound on TargetType.
	Mode() domain.DispatchMode

	// validate checks the strategy against the proxy and method of a call.
	validate(proxy any, method *domain.MethodDescriptor) error
	// ready runs right before terminal dispatch.
	ready() error
	// retarget returns the same strategy bound to target.
	retarget(target any) (Strategy, error)
}

type delegating struct {
	target any
}

// Delegating returns the strategy of a proxy that forwards to a separate target.
// A nil target is accepted here and fails with ErrNoTarget if the call reaches terminal dispatch.
func Delegating(target any) Strategy {
	return delegating{target: target}
}

func (d delegating) Target() any { return d.target }

func (d delegating) TargetType() reflect.Type { return reflect.TypeOf(d.target) }

// Mode is virtual: an override on the target wins over the method it overrides.
func (d delegating) Mode() domain.DispatchMode { return domain.DispatchVirtual }

func (d delegating) validate(proxy any, method *domain.MethodDescriptor) error {
	if aliases(proxy, d.target) {
		err := zerr.With(zerr.Wrap(domain.ErrTargetAliasesProxy, "delegating to the proxy would recurse"), "method", method.String())
		return zerr.With(err, "proxy", domain.TypeName(reflect.TypeOf(proxy)))
	}
	return nil
}

func (d delegating) ready() error {
	if domain.IsNil(d.target) {
		return zerr.Wrap(domain.ErrNoTarget, "delegating call reached terminal dispatch")
	}
	return nil
}

func (d delegating) retarget(target any) (Strategy, error) {
	if domain.IsNil(target) {
		return nil, zerr.Wrap(domain.ErrNoTarget, "cannot change to a nil target")
	}
	return delegating{target: target}, nil
}

type overriding struct {
	proxy any
}

// Overriding returns the strategy of a proxy that embeds its base type and
// overrides its methods. Terminal dispatch runs the base implementation.
func Overriding(proxy any) Strategy {
	return overriding{proxy: proxy}
}

func (o overriding) Target() any { return o.proxy }

func (o overriding) TargetType() reflect.Type { return reflect.TypeOf(o.proxy) }

// Mode is base: the proxy's own override is skipped.
func (o overriding) Mode() domain.DispatchMode { return domain.DispatchBase }

func (o overriding) validate(proxy any, method *domain.MethodDescriptor) error {
	if domain.IsNil(o.proxy) {
		return zerr.Wrap(domain.ErrNoTarget, "overriding proxy is nil")
	}
	if !aliases(proxy, o.proxy) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidOverride, "strategy is bound to another proxy"), "method", method.String())
	}
	// An interface slot on the proxy resolves to the proxy's own override.
	if method.DeclaringType().Kind() == reflect.Interface {
		return zerr.With(zerr.Wrap(domain.ErrInvalidOverride, "interface method on overriding proxy"), "method", method.String())
	}
	return nil
}

func (o overriding) ready() error { return nil }

func (o overriding) retarget(any) (Strategy, error) {
	return nil, zerr.Wrap(domain.ErrTargetNotChangeable, "overriding proxy is its own target")
}

// aliases reports whether target is the very same object as proxy.
// Embedded fields sharing the proxy's address do not alias it because their type differs.
func aliases(proxy, target any) bool {
	if domain.IsNil(proxy) || domain.IsNil(target) {
		return false
	}
	return domain.SameObject(proxy, target)
}

package proxy

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
	"go.trai.ch/interpose/internal/engine/invocation"
	"go.trai.ch/zerr"
)

// Option configures a Proxy.
type Option func(*Proxy)

// WithSelector scopes the proxy's interceptors per (type, method) with sel.
func WithSelector(sel invocation.Selector) Option {
	return func(p *Proxy) {
		if sel != nil {
			p.selector = sel
		}
	}
}

// WithoutSelectionCache runs the selector on every call instead of once per (method, type).
func WithoutSelectionCache() Option {
	return func(p *Proxy) { p.selectionCache = false }
}

// Proxy is the runtime half of a proxy object: each intercepted member of the
// proxy forwards its call here. The interceptor sequence and selector are fixed
// at construction. A Proxy is safe for concurrent calls.
type Proxy struct {
	engine       *Engine
	self         any
	overriding   bool
	target       atomic.Pointer[boxed]
	interceptors []invocation.Interceptor
	selector     invocation.Selector

	selectionCache bool
	selections     sync.Map // selectionKey -> []invocation.Interceptor
}

type boxed struct {
	v any
}

type selectionKey struct {
	method domain.MethodKey
	target domain.TypeDescriptor
}

// Call runs method through the interceptor chain and returns its value results.
// Missing results are zero values and a trailing error result is returned as err.
func (p *Proxy) Call(ctx context.Context, method *domain.MethodDescriptor, args ...any) (results []any, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var vertex ports.Vertex
	if p.engine.telemetry != nil && method != nil {
		ctx, vertex = p.engine.telemetry.Record(ctx, method.String())
		defer func() { vertex.Complete(err) }()
	}

	inv, err := p.newInvocation(ctx, method, args)
	if err != nil {
		return nil, err
	}
	err = inv.Run()
	if vertex != nil && err == nil && inv.ConcreteMethod() == nil {
		vertex.Cached()
	}
	return inv.Results(), err
}

func (p *Proxy) newInvocation(ctx context.Context, method *domain.MethodDescriptor, args []any) (*invocation.Invocation, error) {
	strategy := p.strategy()
	call := invocation.Call{
		Context:  ctx,
		Proxy:    p.self,
		Method:   method,
		Args:     args,
		Resolver: p.engine.resolver,
		Strategy: strategy,
	}
	if !p.overriding {
		call.Setter = p
	}

	if !p.selectionCache || method == nil {
		return invocation.New(call, p.interceptors, p.selector)
	}

	key := selectionKey{method: method.Key(), target: domain.TypeOf(strategy.TargetType())}
	if cached, ok := p.selections.Load(key); ok {
		return invocation.NewSelected(call, cached.([]invocation.Interceptor))
	}

	inv, err := invocation.New(call, p.interceptors, p.selector)
	if err != nil {
		return nil, err
	}
	p.selections.Store(key, inv.Interceptors())
	return inv, nil
}

func (p *Proxy) strategy() invocation.Strategy {
	if p.overriding {
		return invocation.Overriding(p.self)
	}
	return invocation.Delegating(p.Target())
}

// Target returns the current delegation target, or the proxy itself when it overrides its base.
func (p *Proxy) Target() any {
	if p.overriding {
		return p.self
	}
	if b := p.target.Load(); b != nil {
		return b.v
	}
	return nil
}

// SetTarget replaces the delegation target for later calls.
func (p *Proxy) SetTarget(target any) error {
	if p.overriding {
		return zerr.Wrap(domain.ErrTargetNotChangeable, "overriding proxy is its own target")
	}
	if domain.IsNil(target) {
		return zerr.Wrap(domain.ErrNoTarget, "cannot change to a nil target")
	}
	if domain.SameObject(p.self, target) {
		return zerr.With(zerr.Wrap(domain.ErrTargetAliasesProxy, "delegating to the proxy would recurse"), "proxy", domain.TypeName(reflect.TypeOf(p.self)))
	}
	p.target.Store(&boxed{v: target})
	return nil
}

// Interceptors returns a copy of the full interceptor sequence.
func (p *Proxy) Interceptors() []invocation.Interceptor {
	return append([]invocation.Interceptor(nil), p.interceptors...)
}

// Selector returns the proxy's selector.
func (p *Proxy) Selector() invocation.Selector { return p.selector }

// Overriding reports whether the proxy dispatches to its embedded base.
func (p *Proxy) Overriding() bool { return p.overriding }

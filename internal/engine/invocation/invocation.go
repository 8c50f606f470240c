// Package invocation implements the per-call interception state machine.
package invocation

import (
	"context"
	"reflect"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
	"go.trai.ch/zerr"
)

// TargetSetter is implemented by proxies whose delegation target can be replaced for later calls.
type TargetSetter interface {
	SetTarget(target any) error
}

// Call describes one intercepted call as handed over by a proxy.
type Call struct {
	Context  context.Context
	Proxy    any
	Method   *domain.MethodDescriptor
	Args     []any
	Resolver ports.MethodResolver
	Strategy Strategy
	// Setter persists ChangeProxyTarget. Nil makes the proxy target fixed.
	Setter TargetSetter
}

// Invocation is the mutable record of a single intercepted call.
// It is owned by the goroutine making the call and must not be retained after it returns.
type Invocation struct {
	ctx          context.Context
	proxy        any
	method       *domain.MethodDescriptor
	args         []any
	interceptors []Interceptor
	resolver     ports.MethodResolver
	strategy     Strategy
	setter       TargetSetter

	cursor     int
	state      domain.InvocationState
	dispatched bool
	done       bool

	returnValues []any
	hasReturn    bool
	fault        error
	concrete     *domain.ConcreteMethod
}

// New builds an invocation, choosing the interceptors for the call with sel.
// A nil selector keeps every interceptor.
func New(call Call, interceptors []Interceptor, sel Selector) (*Invocation, error) {
	if err := call.validate(); err != nil {
		return nil, err
	}
	selected, err := Select(sel, call.Strategy.TargetType(), call.Method, interceptors)
	if err != nil {
		return nil, err
	}
	return newInvocation(call, selected), nil
}

// NewSelected builds an invocation from interceptors already chosen by a selector.
// Configuration errors are reported here, before any interceptor runs.
func NewSelected(call Call, selected []Interceptor) (*Invocation, error) {
	if err := call.validate(); err != nil {
		return nil, err
	}
	return newInvocation(call, selected), nil
}

func newInvocation(call Call, selected []Interceptor) *Invocation {
	ctx := call.Context
	if ctx == nil {
		ctx = context.Background()
	}

	args := make([]any, len(call.Args))
	copy(args, call.Args)

	return &Invocation{
		ctx:          ctx,
		proxy:        call.Proxy,
		method:       call.Method,
		args:         args,
		interceptors: selected,
		resolver:     call.Resolver,
		strategy:     call.Strategy,
		setter:       call.Setter,
		state:        domain.InvocationCreated,
	}
}

func (c *Call) validate() error {
	switch {
	case c.Method == nil:
		return zerr.Wrap(domain.ErrMethodNotDeclared, "nil method descriptor")
	case c.Resolver == nil:
		return zerr.Wrap(domain.ErrConfiguration, "nil method resolver")
	case c.Strategy == nil:
		return zerr.Wrap(domain.ErrConfiguration, "nil dispatch strategy")
	}
	if err := c.Strategy.validate(c.Proxy, c.Method); err != nil {
		return err
	}
	if len(c.Args) != c.Method.NumParams() {
		err := zerr.With(zerr.Wrap(domain.ErrArgumentIndex, "argument count mismatch"), "method", c.Method.String())
		return zerr.With(err, "args", len(c.Args))
	}
	return nil
}

// Proceed runs the next interceptor, or the terminal dispatch once the chain is exhausted.
// The cursor advances before the interceptor runs, so a Proceed from inside it continues
// with the following one. Terminal dispatch runs at most once per invocation.
func (inv *Invocation) Proceed() error {
	if inv.done {
		return inv.misuse("invocation already completed")
	}

	if inv.cursor < len(inv.interceptors) {
		next := inv.interceptors[inv.cursor]
		inv.cursor++
		inv.state = domain.InvocationRunning
		return next.Intercept(inv)
	}

	if inv.dispatched {
		return inv.misuse("terminal dispatch already ran")
	}
	inv.dispatched = true
	inv.state = domain.InvocationDispatching

	if err := inv.dispatch(); err != nil {
		inv.state = domain.InvocationFaulted
		return err
	}
	inv.state = domain.InvocationCompleted
	return nil
}

// Run is the call entry point used by proxies: it starts the chain and settles
// the final state and fault.
func (inv *Invocation) Run() error {
	if inv.done || inv.cursor > 0 || inv.dispatched {
		return inv.misuse("invocation already started")
	}

	err := inv.Proceed()
	inv.done = true
	if err != nil {
		inv.fault = err
		inv.state = domain.InvocationFaulted
		return err
	}
	inv.state = domain.InvocationCompleted
	return nil
}

func (inv *Invocation) misuse(msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrProceedAfterCompletion, msg), "method", inv.method.String())
}

func (inv *Invocation) dispatch() error {
	if err := inv.strategy.ready(); err != nil {
		return zerr.With(err, "method", inv.method.String())
	}

	cm, err := inv.resolver.Resolve(inv.method, inv.strategy.TargetType(), inv.strategy.Mode())
	if err != nil {
		return err
	}
	inv.concrete = cm

	in, err := inv.callArgs(cm)
	if err != nil {
		return err
	}
	out, err := cm.Call(reflect.ValueOf(inv.strategy.Target()), in)
	if err != nil {
		return err
	}

	values, fault := splitResults(out)
	inv.returnValues = values
	inv.hasReturn = true
	return fault
}

// Context returns the context of the call.
func (inv *Invocation) Context() context.Context { return inv.ctx }

// Method returns the declared method. It never changes during the call.
func (inv *Invocation) Method() *domain.MethodDescriptor { return inv.method }

// Proxy returns the proxy the call arrived on.
func (inv *Invocation) Proxy() any { return inv.proxy }

// Target returns the object terminal dispatch calls into: the delegation
// target, or the proxy itself for overriding proxies.
func (inv *Invocation) Target() any { return inv.strategy.Target() }

// TargetType returns the concrete type the method is resolved against.
func (inv *Invocation) TargetType() reflect.Type { return inv.strategy.TargetType() }

// State returns the current lifecycle state.
func (inv *Invocation) State() domain.InvocationState { return inv.state }

// Interceptors returns a copy of the interceptor sequence of the call.
func (inv *Invocation) Interceptors() []Interceptor {
	out := make([]Interceptor, len(inv.interceptors))
	copy(out, inv.interceptors)
	return out
}

// ConcreteMethod returns the resolved method, or nil before terminal dispatch.
func (inv *Invocation) ConcreteMethod() *domain.ConcreteMethod { return inv.concrete }

// Fault returns the error that ended the call, nil if it completed.
func (inv *Invocation) Fault() error { return inv.fault }

// ChangeInvocationTarget redirects terminal dispatch of this call to target.
func (inv *Invocation) ChangeInvocationTarget(target any) error {
	s, err := inv.strategy.retarget(target)
	if err != nil {
		return zerr.With(err, "method", inv.method.String())
	}
	if err := s.validate(inv.proxy, inv.method); err != nil {
		return err
	}
	inv.strategy = s
	return nil
}

// ChangeProxyTarget redirects this call and every later call on the proxy to target.
func (inv *Invocation) ChangeProxyTarget(target any) error {
	if inv.setter == nil {
		return zerr.With(zerr.Wrap(domain.ErrTargetNotChangeable, "proxy target is fixed"), "method", inv.method.String())
	}
	if err := inv.ChangeInvocationTarget(target); err != nil {
		return err
	}
	return inv.setter.SetTarget(target)
}

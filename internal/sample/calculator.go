// Package sample holds a small domain proxied through the engine: a calculator
// behind a delegating proxy and a ledger behind an overriding one.
package sample

import (
	"context"
	"reflect"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/engine/invocation"
	"go.trai.ch/interpose/internal/engine/proxy"
	"go.trai.ch/zerr"
)

// ErrDivideByZero is returned by Div when the divisor is zero.
var ErrDivideByZero = zerr.New("divide by zero")

// Calculator is the interface proxied by CalculatorProxy.
type Calculator interface {
	Add(a, b int) int
	Div(a, b int) (int, error)
	Sum(xs ...int) int
}

// BasicCalculator is the plain Calculator implementation.
type BasicCalculator struct{}

// Add returns a+b.
func (BasicCalculator) Add(a, b int) int { return a + b }

// Div returns a/b.
func (BasicCalculator) Div(a, b int) (int, error) {
	if b == 0 {
		return 0, zerr.With(zerr.Wrap(ErrDivideByZero, "division failed"), "dividend", a)
	}
	return a / b, nil
}

// Sum returns the sum of xs.
func (BasicCalculator) Sum(xs ...int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

// Calculator method descriptors.
var (
	CalculatorAdd = domain.MustMethodOf(reflect.TypeFor[Calculator](), "Add")
	CalculatorDiv = domain.MustMethodOf(reflect.TypeFor[Calculator](), "Div")
	CalculatorSum = domain.MustMethodOf(reflect.TypeFor[Calculator](), "Sum")
)

// CalculatorMethods lists every Calculator descriptor.
func CalculatorMethods() []*domain.MethodDescriptor {
	return []*domain.MethodDescriptor{CalculatorAdd, CalculatorDiv, CalculatorSum}
}

// CalculatorProxy is a delegating Calculator proxy.
// Methods without an error result panic when the call fails.
type CalculatorProxy struct {
	call *proxy.Proxy
}

var _ Calculator = (*CalculatorProxy)(nil)

// NewCalculatorProxy creates a proxy forwarding to target.
func NewCalculatorProxy(
	e *proxy.Engine,
	target Calculator,
	interceptors []invocation.Interceptor,
	opts ...proxy.Option,
) (*CalculatorProxy, error) {
	p := &CalculatorProxy{}
	call, err := e.NewDelegating(p, target, interceptors, opts...)
	if err != nil {
		return nil, err
	}
	p.call = call
	return p, nil
}

// Proxy returns the call site of the proxy.
func (p *CalculatorProxy) Proxy() *proxy.Proxy { return p.call }

// Add implements Calculator.
func (p *CalculatorProxy) Add(a, b int) int {
	v, err := proxy.Call1[int](context.Background(), p.call, CalculatorAdd, a, b)
	must(err)
	return v
}

// Div implements Calculator.
func (p *CalculatorProxy) Div(a, b int) (int, error) {
	return proxy.Call1[int](context.Background(), p.call, CalculatorDiv, a, b)
}

// Sum implements Calculator.
func (p *CalculatorProxy) Sum(xs ...int) int {
	v, err := proxy.Call1[int](context.Background(), p.call, CalculatorSum, xs)
	must(err)
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

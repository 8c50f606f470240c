package sample

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/engine/invocation"
	"go.trai.ch/interpose/internal/engine/proxy"
)

// Ledger is a keyed store of arbitrary values. It is the base type of AuditedLedger.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]any)}
}

// Put stores v under key.
func (l *Ledger) Put(key string, v any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = v
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Keys returns the keys in sorted order.
func (l *Ledger) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Find is the generic method Ledger.Find[T]: it returns the entry under key if it holds a T.
func Find[T any](l *Ledger, key string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.entries[key].(T)
	return v, ok
}

// Ledger method descriptors. LedgerFind is the open generic definition.
var (
	LedgerPut  = domain.MustMethodOf(reflect.TypeFor[*Ledger](), "Put")
	LedgerLen  = domain.MustMethodOf(reflect.TypeFor[*Ledger](), "Len")
	LedgerFind = domain.NewGenericMethod(reflect.TypeFor[*Ledger](), "Find", 1,
		[]reflect.Type{reflect.TypeFor[string]()},
		[]reflect.Type{nil, reflect.TypeFor[bool]()})
)

// FindInstances are the instantiations of Find available to the engine.
var FindInstances = domain.NewInstanceSet("Find", 1).
	Add(Find[int], reflect.TypeFor[int]()).
	Add(Find[string], reflect.TypeFor[string]()).
	Add(Find[float64], reflect.TypeFor[float64]())

// GenericRegistry receives generic method definitions.
type GenericRegistry interface {
	Register(owner reflect.Type, def domain.GenericDefinition) error
}

// RegisterGenerics registers the generic methods of the sample types.
func RegisterGenerics(r GenericRegistry) error {
	return r.Register(reflect.TypeFor[*Ledger](), FindInstances.Definition())
}

// LedgerMethods lists the non-generic Ledger descriptors and the closed Find instantiations.
func LedgerMethods() []*domain.MethodDescriptor {
	methods := []*domain.MethodDescriptor{LedgerPut, LedgerLen}
	for _, t := range []reflect.Type{reflect.TypeFor[int](), reflect.TypeFor[string](), reflect.TypeFor[float64]()} {
		closed, err := LedgerFind.Instantiate(t)
		must(err)
		methods = append(methods, closed)
	}
	return methods
}

// AuditedLedger is an overriding proxy of Ledger: it embeds the base and
// routes Put, Len and Find through the interceptor chain.
type AuditedLedger struct {
	*Ledger
	call *proxy.Proxy
}

// NewAuditedLedger creates an overriding proxy around base.
func NewAuditedLedger(
	e *proxy.Engine,
	base *Ledger,
	interceptors []invocation.Interceptor,
	opts ...proxy.Option,
) (*AuditedLedger, error) {
	a := &AuditedLedger{Ledger: base}
	call, err := e.NewOverriding(a, interceptors, opts...)
	if err != nil {
		return nil, err
	}
	a.call = call
	return a, nil
}

// Proxy returns the call site of the proxy.
func (a *AuditedLedger) Proxy() *proxy.Proxy { return a.call }

// Put overrides Ledger.Put.
func (a *AuditedLedger) Put(key string, v any) {
	must(proxy.Call0(context.Background(), a.call, LedgerPut, key, v))
}

// Len overrides Ledger.Len.
func (a *AuditedLedger) Len() int {
	n, err := proxy.Call1[int](context.Background(), a.call, LedgerLen)
	must(err)
	return n
}

// FindIn calls Find[T] on a through the interceptor chain.
func FindIn[T any](ctx context.Context, a *AuditedLedger, key string) (T, bool, error) {
	m, err := LedgerFind.Instantiate(reflect.TypeFor[T]())
	if err != nil {
		var zero T
		return zero, false, err
	}
	return proxy.Call2[T, bool](ctx, a.call, m, key)
}

package interpose

import (
	"context"
	"reflect"

	"go.trai.ch/interpose/internal/adapters/resolver"
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
	"go.trai.ch/interpose/internal/engine/invocation"
	"go.trai.ch/interpose/internal/engine/proxy"
)

type (
	// Engine builds proxies sharing one method resolution cache.
	Engine = proxy.Engine
	// Proxy is the call site held by a proxy object.
	Proxy = proxy.Proxy
	// ProxyOption configures a single proxy.
	ProxyOption = proxy.Option

	// Interceptor is a unit of cross-cutting behavior around an intercepted call.
	Interceptor = invocation.Interceptor
	// InterceptorFunc adapts a function to Interceptor.
	InterceptorFunc = invocation.InterceptorFunc
	// StandardInterceptor splits interception into pre, perform and post hooks.
	StandardInterceptor = invocation.StandardInterceptor
	// Invocation is the state of one intercepted call.
	Invocation = invocation.Invocation
	// Selector chooses the interceptors that apply to a method.
	Selector = invocation.Selector
	// SelectorFunc adapts a function to Selector.
	SelectorFunc = invocation.SelectorFunc
	// TargetSetter is implemented by proxies whose target can be changed from an interceptor.
	TargetSetter = invocation.TargetSetter

	// MethodDescriptor identifies a declared method.
	MethodDescriptor = domain.MethodDescriptor
	// GenericDefinition maps closed type-argument lists to instantiations of a generic method.
	GenericDefinition = domain.GenericDefinition
	// InstanceSet builds a GenericDefinition from explicit instantiations.
	InstanceSet = domain.InstanceSet
	// InvocationState is the lifecycle state of an Invocation.
	InvocationState = domain.InvocationState
	// Config is the engine configuration.
	Config = domain.Config
	// DispatchMode selects how a declared method binds on a concrete type.
	DispatchMode = domain.DispatchMode

	// Logger receives engine log messages.
	Logger = ports.Logger
	// Telemetry records a vertex per proxied call.
	Telemetry = ports.Telemetry

	// GenericRegistry holds the generic method definitions known to an engine.
	GenericRegistry = resolver.Generics
)

// Dispatch modes. Delegating proxies resolve virtually, overriding proxies against their base.
const (
	DispatchVirtual = domain.DispatchVirtual
	DispatchBase    = domain.DispatchBase
)

// Error categories and the errors they group.
var (
	ErrConfiguration  = domain.ErrConfiguration
	ErrResolution     = domain.ErrResolution
	ErrProtocolMisuse = domain.ErrProtocolMisuse

	ErrNoTarget            = domain.ErrNoTarget
	ErrTargetAliasesProxy  = domain.ErrTargetAliasesProxy
	ErrInvalidSelection    = domain.ErrInvalidSelection
	ErrInvalidOverride     = domain.ErrInvalidOverride
	ErrTargetNotChangeable = domain.ErrTargetNotChangeable
	ErrMethodNotDeclared   = domain.ErrMethodNotDeclared
	ErrInvalidConfig       = domain.ErrInvalidConfig

	ErrResolutionFailed  = domain.ErrResolutionFailed
	ErrInvariantViolated = domain.ErrInvariantViolated

	ErrProceedAfterCompletion  = domain.ErrProceedAfterCompletion
	ErrReturnValueNotAvailable = domain.ErrReturnValueNotAvailable
	ErrArgumentIndex           = domain.ErrArgumentIndex
	ErrArgumentType            = domain.ErrArgumentType
)

// Option configures NewEngine.
type Option func(*settings)

type settings struct {
	cfg       domain.Config
	generics  *resolver.Generics
	logger    ports.Logger
	telemetry ports.Telemetry
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(s *settings) { s.cfg = cfg }
}

// WithGenericRegistry lets the engine resolve the generic methods registered in g.
func WithGenericRegistry(g *GenericRegistry) Option {
	return func(s *settings) { s.generics = g }
}

// WithLogger sets the engine logger.
func WithLogger(l Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithTelemetry records a vertex for every proxied call.
func WithTelemetry(t Telemetry) Option {
	return func(s *settings) { s.telemetry = t }
}

// NewEngine creates an engine with its own resolution cache.
func NewEngine(opts ...Option) (*Engine, error) {
	s := settings{cfg: domain.DefaultConfig()}
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	resOpts := []resolver.Option{resolver.WithShards(s.cfg.Resolver.Shards)}
	engineOpts := []proxy.EngineOption{proxy.WithConfig(s.cfg)}
	if s.generics != nil {
		resOpts = append(resOpts, resolver.WithGenerics(s.generics))
	}
	if s.logger != nil {
		resOpts = append(resOpts, resolver.WithLogger(s.logger))
		engineOpts = append(engineOpts, proxy.WithLogger(s.logger))
	}
	if s.telemetry != nil {
		engineOpts = append(engineOpts, proxy.WithTelemetry(s.telemetry))
	}

	res, err := resolver.New(resOpts...)
	if err != nil {
		return nil, err
	}
	return proxy.NewEngine(res, engineOpts...)
}

// DefaultConfig returns the configuration NewEngine uses without WithConfig.
func DefaultConfig() Config { return domain.DefaultConfig() }

// NewGenericRegistry creates an empty GenericRegistry.
func NewGenericRegistry() *GenericRegistry { return resolver.NewGenerics() }

// MethodOf describes the method called name declared by t.
func MethodOf(t reflect.Type, name string) (*MethodDescriptor, error) {
	return domain.MethodOf(t, name)
}

// MustMethodOf is like MethodOf but panics on error.
func MustMethodOf(t reflect.Type, name string) *MethodDescriptor { return domain.MustMethodOf(t, name) }

// NewGenericMethod describes an open generic method of declaring with arity type
// parameters. A nil entry in params or results stands for a type parameter.
func NewGenericMethod(declaring reflect.Type, name string, arity int, params, results []reflect.Type) *MethodDescriptor {
	return domain.NewGenericMethod(declaring, name, arity, params, results)
}

// NewInstanceSet starts an InstanceSet for the generic method called name.
func NewInstanceSet(name string, arity int) *InstanceSet { return domain.NewInstanceSet(name, arity) }

// SelectAll applies every interceptor to every method.
func SelectAll() Selector { return invocation.SelectAll() }

// SelectByType applies only the interceptors of type T.
func SelectByType[T any]() Selector { return invocation.SelectByType[T]() }

// SelectWhere applies the interceptors keep reports true for.
func SelectWhere(keep func(method *MethodDescriptor, ic Interceptor) bool) Selector {
	return invocation.SelectWhere(keep)
}

// WithSelector sets the selector of a proxy.
func WithSelector(sel Selector) ProxyOption { return proxy.WithSelector(sel) }

// WithoutSelectionCache makes a proxy run its selector on every call.
func WithoutSelectionCache() ProxyOption { return proxy.WithoutSelectionCache() }

// Call0 calls a method without value results.
func Call0(ctx context.Context, p *Proxy, method *MethodDescriptor, args ...any) error {
	return proxy.Call0(ctx, p, method, args...)
}

// Call1 calls a method with one value result.
func Call1[R any](ctx context.Context, p *Proxy, method *MethodDescriptor, args ...any) (R, error) {
	return proxy.Call1[R](ctx, p, method, args...)
}

// Call2 calls a method with two value results.
func Call2[R1, R2 any](ctx context.Context, p *Proxy, method *MethodDescriptor, args ...any) (R1, R2, error) {
	return proxy.Call2[R1, R2](ctx, p, method, args...)
}

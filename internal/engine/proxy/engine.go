// Package proxy provides the call sites generated and hand-written proxies forward to.
package proxy

import (
	"context"
	"reflect"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
	"go.trai.ch/interpose/internal/engine/invocation"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Engine builds proxies sharing one method resolver.
type Engine struct {
	resolver        ports.MethodResolver
	logger          ports.Logger
	telemetry       ports.Telemetry
	warmParallelism int
	selectionCache  bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for proxy construction and warm-up.
func WithLogger(l ports.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithTelemetry records a vertex for every proxied call.
func WithTelemetry(t ports.Telemetry) EngineOption {
	return func(e *Engine) { e.telemetry = t }
}

// WithWarmParallelism bounds the concurrent resolutions run by Warm.
func WithWarmParallelism(n int) EngineOption {
	return func(e *Engine) { e.warmParallelism = n }
}

// WithSelectionCache sets whether new proxies cache selector results.
func WithSelectionCache(enabled bool) EngineOption {
	return func(e *Engine) { e.selectionCache = enabled }
}

// WithConfig applies the engine-level settings of cfg.
func WithConfig(cfg domain.Config) EngineOption {
	return func(e *Engine) {
		e.warmParallelism = cfg.Resolver.WarmParallelism
		e.selectionCache = cfg.Selection.Cache
	}
}

// NewEngine creates an engine resolving methods with res.
func NewEngine(res ports.MethodResolver, opts ...EngineOption) (*Engine, error) {
	if res == nil {
		return nil, zerr.Wrap(domain.ErrConfiguration, "nil method resolver")
	}
	e := &Engine{
		resolver:        res,
		logger:          ports.NopLogger{},
		warmParallelism: domain.DefaultWarmParallelism,
		selectionCache:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.warmParallelism <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "warm parallelism must be positive"), "warm_parallelism", e.warmParallelism)
	}
	return e, nil
}

// Resolver returns the method resolver shared by the engine's proxies.
func (e *Engine) Resolver() ports.MethodResolver { return e.resolver }

// NewDelegating creates the call site of a proxy that forwards to target.
// self is the proxy object itself; a target aliasing it is rejected.
// A nil target is accepted and fails with ErrNoTarget on the first call that reaches it.
func (e *Engine) NewDelegating(self, target any, interceptors []invocation.Interceptor, opts ...Option) (*Proxy, error) {
	if domain.IsNil(self) {
		return nil, zerr.Wrap(domain.ErrConfiguration, "nil proxy")
	}
	p := e.newProxy(self, interceptors, opts)
	if !domain.IsNil(target) {
		if err := p.SetTarget(target); err != nil {
			return nil, err
		}
	}
	e.logger.Debug("created delegating proxy " + domain.TypeName(reflect.TypeOf(self)))
	return p, nil
}

// NewOverriding creates the call site of a proxy that embeds its base type.
// Terminal dispatch runs the base implementation on self.
func (e *Engine) NewOverriding(self any, interceptors []invocation.Interceptor, opts ...Option) (*Proxy, error) {
	if domain.IsNil(self) {
		return nil, zerr.Wrap(domain.ErrNoTarget, "nil overriding proxy")
	}
	p := e.newProxy(self, interceptors, opts)
	p.overriding = true
	e.logger.Debug("created overriding proxy " + domain.TypeName(reflect.TypeOf(self)))
	return p, nil
}

func (e *Engine) newProxy(self any, interceptors []invocation.Interceptor, opts []Option) *Proxy {
	p := &Proxy{
		engine:         e,
		self:           self,
		interceptors:   append([]invocation.Interceptor(nil), interceptors...),
		selector:       invocation.SelectAll(),
		selectionCache: e.selectionCache,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Warm resolves every method against every type ahead of the first call.
// Each method must be declared by, or implemented on, every given type.
// mode must match the proxies that will use the entries: DispatchVirtual for
// delegating targets, DispatchBase for overriding proxies.
func (e *Engine) Warm(ctx context.Context, mode domain.DispatchMode, methods []*domain.MethodDescriptor, types []reflect.Type) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.warmParallelism)

	for _, t := range types {
		for _, m := range methods {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				_, err := e.resolver.Resolve(m, t, mode)
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return zerr.Wrap(err, "warm-up failed")
	}
	e.logger.Info("warmed method cache (" + mode.String() + ")")
	return nil
}

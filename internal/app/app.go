// Package app implements the application layer for interpose.
package app

import (
	"context"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.trai.ch/interpose/internal/adapters/resolver"  //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/adapters/snapshot"  //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
	"go.trai.ch/interpose/internal/engine/proxy"
	"go.trai.ch/interpose/internal/sample"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	generics     *resolver.Generics
	telemetries  map[string]ports.Telemetry
	snapshots    snapshot.Opener
}

// New creates a new App instance.
// telemetries maps a telemetry backend name to its implementation.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	generics *resolver.Generics,
	telemetries map[string]ports.Telemetry,
	snapshots snapshot.Opener,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		generics:     generics,
		telemetries:  telemetries,
		snapshots:    snapshots,
	}
}

// session is the engine built from one loaded configuration.
type session struct {
	cfg       *domain.Config
	resolver  *resolver.Resolver
	engine    *proxy.Engine
	telemetry ports.Telemetry
}

type levelSetter interface {
	SetLevel(level domain.LogLevel)
}

func (a *App) newSession(configPath string) (*session, error) {
	cfg, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if ls, ok := a.logger.(levelSetter); ok {
		ls.SetLevel(domain.ParseLogLevel(cfg.Logging.Level))
	}

	if err := sample.RegisterGenerics(a.generics); err != nil {
		return nil, zerr.Wrap(err, "failed to register generic methods")
	}

	res, err := resolver.New(
		resolver.WithShards(cfg.Resolver.Shards),
		resolver.WithGenerics(a.generics),
		resolver.WithLogger(a.logger),
		resolver.WithMeter(otel.GetMeterProvider().Meter(resolver.MeterName)),
	)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create resolver")
	}

	var tel ports.Telemetry = telemetry.NewNoOp()
	if cfg.Telemetry.Enabled {
		backend := cfg.Telemetry.Backend
		if backend == "" {
			backend = domain.TelemetryProgrock
		}
		tel = a.telemetries[backend]
		if tel == nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "telemetry backend not available"), "backend", backend)
		}
	}

	e, err := proxy.NewEngine(res, proxy.WithConfig(*cfg), proxy.WithLogger(a.logger), proxy.WithTelemetry(tel))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create engine")
	}

	return &session{cfg: cfg, resolver: res, engine: e, telemetry: tel}, nil
}

type warmTarget struct {
	mode    domain.DispatchMode
	methods []*domain.MethodDescriptor
	types   []reflect.Type
}

// warmTargets lists the descriptor sets resolved by Inspect, the concrete types
// they run on and the dispatch mode of the proxies calling them.
func warmTargets() []warmTarget {
	return []warmTarget{
		{
			mode:    domain.DispatchVirtual,
			methods: sample.CalculatorMethods(),
			types:   []reflect.Type{reflect.TypeFor[sample.BasicCalculator](), reflect.TypeFor[*sample.BasicCalculator]()},
		},
		{
			mode:    domain.DispatchVirtual,
			methods: sample.LedgerMethods(),
			types:   []reflect.Type{reflect.TypeFor[*sample.Ledger]()},
		},
		{
			mode:    domain.DispatchBase,
			methods: sample.LedgerMethods(),
			types:   []reflect.Type{reflect.TypeFor[*sample.AuditedLedger]()},
		},
	}
}

func (s *session) warm(ctx context.Context) error {
	for _, t := range warmTargets() {
		if err := s.engine.Warm(ctx, t.mode, t.methods, t.types); err != nil {
			return err
		}
	}
	return nil
}

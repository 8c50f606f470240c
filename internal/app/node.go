package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/interpose/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/adapters/resolver"           //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/adapters/snapshot"           //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/adapters/telemetry"          //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			resolver.GenericsNodeID,
			telemetry.NodeID,
			progrock.NodeID,
			snapshot.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	generics, err := graft.Dep[*resolver.Generics](ctx)
	if err != nil {
		return nil, err
	}

	otelTelemetry, err := graft.Dep[*telemetry.OTel](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[*progrock.Recorder](ctx)
	if err != nil {
		return nil, err
	}

	opener, err := graft.Dep[snapshot.Opener](ctx)
	if err != nil {
		return nil, err
	}

	telemetries := map[string]ports.Telemetry{
		domain.TelemetryOTel:     otelTelemetry,
		domain.TelemetryProgrock: recorder,
	}
	return New(loader, log, generics, telemetries, opener), nil
}

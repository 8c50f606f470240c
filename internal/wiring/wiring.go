// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/interpose/internal/adapters/config"
	_ "go.trai.ch/interpose/internal/adapters/logger"
	_ "go.trai.ch/interpose/internal/adapters/resolver"
	_ "go.trai.ch/interpose/internal/adapters/snapshot"
	_ "go.trai.ch/interpose/internal/adapters/telemetry"
	_ "go.trai.ch/interpose/internal/adapters/telemetry/progrock"
	// Register app nodes.
	_ "go.trai.ch/interpose/internal/app"
)

package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the OpenTelemetry adapter Graft node.
const NodeID graft.ID = "adapter.telemetry.otel"

func init() {
	graft.Register(graft.Node[*OTel]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*OTel, error) {
			return NewOTel(), nil
		},
	})
}

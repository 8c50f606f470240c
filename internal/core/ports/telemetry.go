package ports

import (
	"context"

	"go.trai.ch/interpose/internal/core/domain"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records intercepted calls.
type Telemetry interface {
	// Record starts a vertex for one call and returns a context carrying it.
	Record(ctx context.Context, name string) (context.Context, Vertex)
}

// Vertex represents a single recorded call.
type Vertex interface {
	// Log records a message associated with the call.
	Log(level domain.LogLevel, msg string)
	// Cached marks the call as served without reaching the target.
	Cached()
	// Complete marks the call as finished, successfully or with an error.
	Complete(err error)
}

type vertexKey struct{}

// ContextWithVertex returns a copy of ctx carrying v.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the vertex carried by ctx, if any.
func VertexFromContext(ctx context.Context) (Vertex, bool) {
	v, ok := ctx.Value(vertexKey{}).(Vertex)
	return v, ok
}

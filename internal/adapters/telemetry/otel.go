package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
)

// InstrumentationName is the tracer name used by NewOTel.
const InstrumentationName = "go.trai.ch/interpose"

// OTel implements ports.Telemetry with one OpenTelemetry span per call.
type OTel struct {
	tracer trace.Tracer
}

// NewOTel creates an OTel telemetry on the global tracer provider.
func NewOTel() *OTel {
	return &OTel{tracer: otel.Tracer(InstrumentationName)}
}

// NewOTelWithProvider creates an OTel telemetry on tp.
func NewOTelWithProvider(tp trace.TracerProvider) *OTel {
	return &OTel{tracer: tp.Tracer(InstrumentationName)}
}

// Record starts a span named after the call.
func (t *OTel) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	ctx, span := t.tracer.Start(ctx, name)
	v := &OTelVertex{span: span}
	return ports.ContextWithVertex(ctx, v), v
}

// OTelVertex implements ports.Vertex on a span.
type OTelVertex struct {
	span trace.Span
}

// Log adds a log event to the span.
func (v *OTelVertex) Log(level domain.LogLevel, msg string) {
	v.span.AddEvent("log", trace.WithAttributes(
		attribute.String("level", level.String()),
		attribute.String("message", msg),
	))
}

// Cached marks the call as short-circuited.
func (v *OTelVertex) Cached() {
	v.span.SetAttributes(attribute.Bool("interpose.short_circuit", true))
}

// Complete ends the span, recording err when the call failed.
func (v *OTelVertex) Complete(err error) {
	if err != nil {
		v.span.RecordError(err)
		v.span.SetStatus(codes.Error, err.Error())
	}
	v.span.End()
}

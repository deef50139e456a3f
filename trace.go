package stencil

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "impractical.co/stencil"

const (
	attrPath     = attribute.Key("stencil.path")
	attrResolved = attribute.Key("stencil.resolved")
	attrMaster   = attribute.Key("stencil.master")
	attrItems    = attribute.Key("stencil.items")
	attrCached   = attribute.Key("stencil.cached")
)

// startSpan starts a span using the globally registered TracerProvider,
// which is a no-op unless the program installs one.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

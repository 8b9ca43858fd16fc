package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const usecaseTracerName = "player-scout/internal/usecase"

// startUsecaseSpan only continues an existing trace. CLI turns and sweeper passes carry
// no parent and stay untraced.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return parent.TracerProvider().Tracer(usecaseTracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func endUsecaseSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

const apiTracerName = "player-scout/internal/interfaces/httpapi"

// startSpan opens a child of the otelhttp request span for handler methods.
// Middleware and response helpers get a no-op span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() || !isHandlerSpan(name) {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return parent.TracerProvider().Tracer(apiTracerName).Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
}

func isHandlerSpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func tracedContext(t *testing.T) (context.Context, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, root := tp.Tracer("test").Start(context.Background(), "root")
	t.Cleanup(func() { root.End() })
	return ctx, exporter
}

func TestStartUsecaseSpan_RequiresParent(t *testing.T) {
	t.Parallel()

	ctx, span := startUsecaseSpan(context.Background(), "usecase.Test")
	span.End()
	if span.SpanContext().IsValid() || span.IsRecording() {
		t.Fatalf("span without a parent trace should be a no-op")
	}
	if ctx != context.Background() {
		t.Fatalf("context should be returned unchanged")
	}
}

func TestStartUsecaseSpan_RecordsChildAndError(t *testing.T) {
	t.Parallel()

	ctx, exporter := tracedContext(t)

	_, span := startUsecaseSpan(ctx, "usecase.Test", attribute.String("user_id", "u1"))
	endUsecaseSpan(span, errors.New("boom"))
	_, ok := startUsecaseSpan(ctx, "usecase.Ok")
	endUsecaseSpan(ok, nil)

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("unexpected span count: got=%d want=2", len(spans))
	}
	failed := spans[0]
	if failed.Name != "usecase.Test" || failed.Status.Code != codes.Error || failed.Status.Description != "boom" {
		t.Fatalf("unexpected failed span: name=%s status=%+v", failed.Name, failed.Status)
	}
	if len(failed.Attributes) != 1 || failed.Attributes[0] != attribute.String("user_id", "u1") {
		t.Fatalf("unexpected attributes: %+v", failed.Attributes)
	}
	if !failed.Parent.IsValid() {
		t.Fatalf("span should be a child of the incoming trace")
	}
	if spans[1].Status.Code != codes.Unset {
		t.Fatalf("successful span should keep an unset status: %+v", spans[1].Status)
	}
}

func TestDataAggregator_SpanMarksFailure(t *testing.T) {
	t.Parallel()

	ctx, exporter := tracedContext(t)
	h := newHarness(t)

	if _, err := h.chat.AggregateProfile(ctx, nil); !errors.Is(err, ErrInvalidIdentity) {
		t.Fatalf("expected ErrInvalidIdentity, got %v", err)
	}

	for _, s := range exporter.GetSpans() {
		if s.Name == "usecase.DataAggregator.Aggregate" {
			if s.Status.Code != codes.Error {
				t.Fatalf("aggregate span should carry the error: %+v", s.Status)
			}
			return
		}
	}
	t.Fatalf("aggregate span not exported")
}

package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValueFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("component", "resolver")

	logger.WarnContext(context.Background(), "source failed", "source", "SCRAPED", "error", errors.New("boom"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("unexpected entry count: got=%d want=1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "resolver" {
		t.Fatalf("missing component field: %v", fields)
	}
	if fields["source"] != "SCRAPED" {
		t.Fatalf("missing source field: %v", fields)
	}
	if fields["error"] != "boom" {
		t.Fatalf("error field not encoded: %v", fields)
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("dangling key should still be logged: %v", fields)
	}
	if _, ok := fields["trace_id"]; ok {
		t.Fatalf("trace_id must be absent without a span")
	}
}

func TestLogger_ConsoleFormatRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, LevelWarn, FormatConsole)
	logger.Info("hidden")
	logger.Warn("shown", "user_id", "u-1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked below warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "u-1") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		" error ": LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v want=%v", in, got, want)
		}
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if logger.Zap() == nil {
		t.Fatalf("expected nop zap logger")
	}
}

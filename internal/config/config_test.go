package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SPORTMONKS_TOKEN", "")
	t.Setenv("STRUCTURED_SOURCE_ENABLED", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StructuredSourceEnabled {
		t.Fatalf("structured source should default off without a token")
	}
	if !cfg.ScrapedSourceEnabled {
		t.Fatalf("scraped source should default on")
	}
	if cfg.StructuredMinScore != 0.6 || cfg.ScrapedMinScore != 0.75 {
		t.Fatalf("unexpected thresholds: structured=%v scraped=%v", cfg.StructuredMinScore, cfg.ScrapedMinScore)
	}
	if cfg.MaxCandidates != 10 {
		t.Fatalf("unexpected MaxCandidates: got=%d want=10", cfg.MaxCandidates)
	}
	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Fatalf("unexpected SessionIdleTimeout: %s", cfg.SessionIdleTimeout)
	}
	if cfg.MCPPath != "/mcp" {
		t.Fatalf("unexpected MCPPath: %q", cfg.MCPPath)
	}
	if cfg.PprofEnabled || cfg.PprofAddr != "127.0.0.1:6060" {
		t.Fatalf("unexpected pprof defaults: enabled=%v addr=%q", cfg.PprofEnabled, cfg.PprofAddr)
	}
}

func TestLoad_StructuredSourceRequiresToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STRUCTURED_SOURCE_ENABLED", "true")
	t.Setenv("SPORTMONKS_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when STRUCTURED_SOURCE_ENABLED=true without SPORTMONKS_TOKEN")
	}
}

func TestLoad_TokenEnablesStructuredSource(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STRUCTURED_SOURCE_ENABLED", "")
	t.Setenv("SPORTMONKS_TOKEN", "token-123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.StructuredSourceEnabled {
		t.Fatalf("expected structured source enabled when a token is set")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("SOURCE_TIMEOUT", "3s")
	t.Setenv("SOURCE_MAX_RETRIES", "4")
	t.Setenv("SCRAPED_MIN_SCORE", "0.8")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SourceTimeout != 3*time.Second {
		t.Fatalf("unexpected SourceTimeout: %s", cfg.SourceTimeout)
	}
	if cfg.SourceMaxRetries != 4 {
		t.Fatalf("unexpected SourceMaxRetries: got=%d want=4", cfg.SourceMaxRetries)
	}
	if cfg.ScrapedMinScore != 0.8 {
		t.Fatalf("unexpected ScrapedMinScore: %v", cfg.ScrapedMinScore)
	}
	if cfg.SessionIdleTimeout != 5*time.Minute {
		t.Fatalf("unexpected SessionIdleTimeout: %s", cfg.SessionIdleTimeout)
	}
	if cfg.LogLevel.String() != "debug" {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel.String())
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "negative retries", key: "SOURCE_MAX_RETRIES", value: "-1"},
		{name: "threshold above one", key: "STRUCTURED_MIN_SCORE", value: "1.5"},
		{name: "zero candidates", key: "MAX_CANDIDATES", value: "0"},
		{name: "bad duration", key: "SESSION_IDLE_TIMEOUT", value: "soon"},
		{name: "zero timeout", key: "SOURCE_TIMEOUT", value: "0s"},
		{name: "bad bool", key: "MCP_ENABLED", value: "maybe"},
		{name: "relative mcp path", key: "MCP_PATH", value: "mcp"},
		{name: "bad pprof flag", key: "PPROF_ENABLED", value: "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

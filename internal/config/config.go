package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/player-scout/internal/platform/logging"
)

// Config stores runtime configuration for the service and the CLI.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	StructuredSourceEnabled bool
	SportMonksBaseURL       string
	SportMonksToken         string

	ScrapedSourceEnabled   bool
	TransfermarktBaseURL   string
	TransfermarktUserAgent string

	SourceTimeout              time.Duration
	SourceMaxRetries           int
	SourceRetryInitialInterval time.Duration
	SourceCircuitEnabled       bool
	SourceCircuitFailureCount  int
	SourceCircuitOpenTimeout   time.Duration
	SourceCircuitHalfOpenMax   int
	SourceCacheEnabled         bool
	SourceCacheTTL             time.Duration

	StructuredMinScore   float64
	ScrapedMinScore      float64
	MaxCandidates        int
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration
	AggregatorWorkers    int

	MCPEnabled     bool
	MCPPath        string
	MetricsEnabled bool

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                 appEnv,
		ServiceName:            getEnv("SERVICE_NAME", "player-scout"),
		ServiceVersion:         getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:     splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:               logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
		SportMonksBaseURL:      strings.TrimSpace(getEnv("SPORTMONKS_BASE_URL", "https://api.sportmonks.com/v3/football")),
		SportMonksToken:        strings.TrimSpace(getEnv("SPORTMONKS_TOKEN", "")),
		TransfermarktBaseURL:   strings.TrimSpace(getEnv("TRANSFERMARKT_BASE_URL", "https://www.transfermarkt.com")),
		TransfermarktUserAgent: strings.TrimSpace(getEnv("TRANSFERMARKT_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) player-scout/1.0")),
		MCPPath:                strings.TrimSpace(getEnv("MCP_PATH", "/mcp")),
		UptraceDSN:             strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress: strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(
			getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		),
		PprofAddr: strings.TrimSpace(getEnv("PPROF_ADDR", "127.0.0.1:6060")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	// The structured provider needs a token, so it defaults to on only when one is set.
	structuredDefault := strconv.FormatBool(cfg.SportMonksToken != "")
	if cfg.StructuredSourceEnabled, err = getEnvAsBool("STRUCTURED_SOURCE_ENABLED", structuredDefault); err != nil {
		return Config{}, err
	}
	if cfg.ScrapedSourceEnabled, err = getEnvAsBool("SCRAPED_SOURCE_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.SourceCircuitEnabled, err = getEnvAsBool("SOURCE_CIRCUIT_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.SourceCacheEnabled, err = getEnvAsBool("SOURCE_CACHE_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.MCPEnabled, err = getEnvAsBool("MCP_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.MetricsEnabled, err = getEnvAsBool("METRICS_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", "false"); err != nil {
		return Config{}, err
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"READ_TIMEOUT", "10s", &cfg.ReadTimeout},
		{"WRITE_TIMEOUT", "30s", &cfg.WriteTimeout},
		{"SOURCE_TIMEOUT", "8s", &cfg.SourceTimeout},
		{"SOURCE_RETRY_INITIAL_INTERVAL", "250ms", &cfg.SourceRetryInitialInterval},
		{"SOURCE_CIRCUIT_OPEN_TIMEOUT", "15s", &cfg.SourceCircuitOpenTimeout},
		{"SOURCE_CACHE_TTL", "5m", &cfg.SourceCacheTTL},
		{"SESSION_IDLE_TIMEOUT", "30m", &cfg.SessionIdleTimeout},
		{"SESSION_SWEEP_INTERVAL", "1m", &cfg.SessionSweepInterval},
		{"PYROSCOPE_UPLOAD_RATE", "15s", &cfg.PyroscopeUploadRate},
	}
	for _, item := range durations {
		value, err := getEnvAsDuration(item.key, item.fallback)
		if err != nil {
			return Config{}, err
		}
		*item.dst = value
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"SOURCE_MAX_RETRIES", 2, &cfg.SourceMaxRetries},
		{"SOURCE_CIRCUIT_FAILURE_THRESHOLD", 5, &cfg.SourceCircuitFailureCount},
		{"SOURCE_CIRCUIT_HALF_OPEN_MAX_REQ", 1, &cfg.SourceCircuitHalfOpenMax},
		{"MAX_CANDIDATES", 10, &cfg.MaxCandidates},
		{"AGGREGATOR_WORKERS", 8, &cfg.AggregatorWorkers},
	}
	for _, item := range ints {
		value, err := getEnvAsInt(item.key, item.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = value
	}

	if cfg.StructuredMinScore, err = getEnvAsFloat("STRUCTURED_MIN_SCORE", 0.6); err != nil {
		return Config{}, err
	}
	if cfg.ScrapedMinScore, err = getEnvAsFloat("SCRAPED_MIN_SCORE", 0.75); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	positive := map[string]time.Duration{
		"READ_TIMEOUT":                  c.ReadTimeout,
		"WRITE_TIMEOUT":                 c.WriteTimeout,
		"SOURCE_TIMEOUT":                c.SourceTimeout,
		"SOURCE_RETRY_INITIAL_INTERVAL": c.SourceRetryInitialInterval,
		"SOURCE_CIRCUIT_OPEN_TIMEOUT":   c.SourceCircuitOpenTimeout,
		"SOURCE_CACHE_TTL":              c.SourceCacheTTL,
		"SESSION_IDLE_TIMEOUT":          c.SessionIdleTimeout,
		"SESSION_SWEEP_INTERVAL":        c.SessionSweepInterval,
		"PYROSCOPE_UPLOAD_RATE":         c.PyroscopeUploadRate,
	}
	for key, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be > 0", key)
		}
	}

	if c.SourceMaxRetries < 0 {
		return fmt.Errorf("SOURCE_MAX_RETRIES must be >= 0")
	}
	if c.SourceCircuitFailureCount < 1 {
		return fmt.Errorf("SOURCE_CIRCUIT_FAILURE_THRESHOLD must be >= 1")
	}
	if c.SourceCircuitHalfOpenMax < 1 {
		return fmt.Errorf("SOURCE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("MAX_CANDIDATES must be >= 1")
	}
	if c.AggregatorWorkers < 1 {
		return fmt.Errorf("AGGREGATOR_WORKERS must be >= 1")
	}
	if c.StructuredMinScore < 0 || c.StructuredMinScore > 1 {
		return fmt.Errorf("STRUCTURED_MIN_SCORE must be within [0,1]")
	}
	if c.ScrapedMinScore < 0 || c.ScrapedMinScore > 1 {
		return fmt.Errorf("SCRAPED_MIN_SCORE must be within [0,1]")
	}

	if c.StructuredSourceEnabled {
		if c.SportMonksToken == "" {
			return fmt.Errorf("SPORTMONKS_TOKEN is required when STRUCTURED_SOURCE_ENABLED=true")
		}
		if c.SportMonksBaseURL == "" {
			return fmt.Errorf("SPORTMONKS_BASE_URL cannot be empty when STRUCTURED_SOURCE_ENABLED=true")
		}
	}
	if c.ScrapedSourceEnabled && c.TransfermarktBaseURL == "" {
		return fmt.Errorf("TRANSFERMARKT_BASE_URL cannot be empty when SCRAPED_SOURCE_ENABLED=true")
	}
	if c.MCPEnabled && !strings.HasPrefix(c.MCPPath, "/") {
		return fmt.Errorf("MCP_PATH must start with '/'")
	}
	if c.UptraceEnabled && c.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if c.PyroscopeEnabled {
		if c.PyroscopeServerAddress == "" {
			return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
		}
		if c.PyroscopeAppName == "" {
			return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
		}
	}
	if c.PprofEnabled && c.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR cannot be empty when PPROF_ENABLED=true")
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

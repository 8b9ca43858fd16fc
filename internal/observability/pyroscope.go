package observability

import (
	"fmt"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/player-scout/internal/config"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
)

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexCount,
	pyroscope.ProfileMutexDuration,
}

// InitPyroscope starts continuous profiling when enabled.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.PyroscopeEnabled {
		logger.Debug("pyroscope disabled")
		return func() error { return nil }, nil
	}

	profiler, err := pyroscope.Start(pyroscopeConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	logger.Info("pyroscope enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
	)
	return profiler.Stop, nil
}

func pyroscopeConfig(cfg config.Config) pyroscope.Config {
	return pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
			"version": cfg.ServiceVersion,
		},
		ProfileTypes: profileTypes,
	}
}

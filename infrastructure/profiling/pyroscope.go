// Package profiling starts optional Pyroscope continuous profiling.
package profiling

import (
	"fmt"
	"os"
	"runtime"

	"github.com/grafana/pyroscope-go"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
)

// Config controls continuous profiling.
type Config struct {
	Enabled     bool   `env:"ENABLE_CONTINUOUS_PROFILING" yaml:"enabled"`
	ServerURL   string `env:"PYROSCOPE_SERVER_URL"        yaml:"server_url"`
	Environment string `env:"PYROSCOPE_ENVIRONMENT"       yaml:"environment"`
}

// Profiler wraps a running Pyroscope profiler. A nil *Profiler is valid and
// does nothing.
type Profiler struct {
	profiler *pyroscope.Profiler
}

// Start begins profiling when cfg.Enabled; otherwise it returns nil, nil.
func Start(cfg Config, serviceName, version string, log logger.Logger) (*Profiler, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://pyroscope:4040"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "grievance." + serviceName,
		ServerAddress:   cfg.ServerURL,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"environment": cfg.Environment,
			"version":     version,
			"hostname":    hostname(),
			"go_version":  runtime.Version(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}

	log.Info("Continuous profiling started",
		logger.String("server", cfg.ServerURL),
		logger.String("environment", cfg.Environment),
	)
	return &Profiler{profiler: p}, nil
}

// Stop flushes and stops the profiler.
func (p *Profiler) Stop() error {
	if p == nil || p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}

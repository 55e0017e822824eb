// Package bootstrap wires configuration, storage and the analysis service
// for the HTTP server and the operator CLI.
package bootstrap

import (
	"fmt"

	infraconfig "github.com/dj0804/GrievanceInsight/infrastructure/config"
	infralogger "github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/config"
)

// ServiceName labels logs, traces and profiles.
const ServiceName = "grievance-insight"

// LoadConfig loads configuration from CONFIG_PATH or config.yml. A missing
// file is not an error; defaults and environment overrides apply.
func LoadConfig() (*config.Config, error) {
	return config.Load(infraconfig.GetConfigPath("config.yml"))
}

// CreateLogger creates a logger instance from configuration. Output goes to
// stdout unless outputPaths are given.
func CreateLogger(cfg *config.Config, outputPaths ...string) (infralogger.Logger, error) {
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
		OutputPaths: outputPaths,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(infralogger.String("service", ServiceName)), nil
}

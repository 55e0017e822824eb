package bootstrap

import (
	"context"

	infralogger "github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/config"
	"github.com/dj0804/GrievanceInsight/internal/service"
	"github.com/dj0804/GrievanceInsight/internal/telemetry"
)

// Components is everything a process needs to serve grievance analysis.
type Components struct {
	Config    *config.Config
	Logger    infralogger.Logger
	Telemetry *telemetry.Provider
	Storage   *Storage
	Service   *service.GrievanceService
}

// NewComponents connects storage and builds the service.
func NewComponents(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*Components, error) {
	tp := telemetry.NewProvider()

	storage, err := SetupStorage(ctx, cfg, log, tp)
	if err != nil {
		return nil, err
	}

	return &Components{
		Config:    cfg,
		Logger:    log,
		Telemetry: tp,
		Storage:   storage,
		Service:   service.NewGrievanceService(serviceConfig(cfg, log, tp, storage)),
	}, nil
}

// serviceConfig only sets interface fields for stores that exist, so the
// service never sees a typed nil.
func serviceConfig(cfg *config.Config, log infralogger.Logger, tp *telemetry.Provider, s *Storage) service.Config {
	sc := service.Config{
		Pipeline:  NewPipeline(cfg, log, tp),
		Logger:    log,
		Telemetry: tp,
	}
	if s.Grievances != nil {
		sc.Store = s.Grievances
	}
	if s.Analytics != nil {
		sc.Analytics = s.Analytics
	}
	if s.Index != nil {
		sc.Index = s.Index
	}
	if s.Cache != nil {
		sc.Cache = s.Cache
	}
	return sc
}

// Close releases storage connections.
func (c *Components) Close() error {
	return c.Storage.Close()
}

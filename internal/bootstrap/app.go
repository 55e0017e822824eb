package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/dj0804/GrievanceInsight/infrastructure/gin"
	infralogger "github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/infrastructure/profiling"
	"github.com/dj0804/GrievanceInsight/internal/api"
	"github.com/dj0804/GrievanceInsight/internal/config"
	"github.com/dj0804/GrievanceInsight/internal/mlhealth"
	"github.com/dj0804/GrievanceInsight/internal/scheduler"
)

const (
	readTimeout  = 30 * time.Second
	writeTimeout = 60 * time.Second
	idleTimeout  = 120 * time.Second
)

// Start runs the HTTP server until a shutdown signal and returns the
// process exit code.
func Start() int {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	profiler, err := profiling.Start(cfg.Profiling, ServiceName, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Pyroscope failed to start", infralogger.Error(err))
	}
	defer profiler.Stop() //nolint:errcheck // best-effort cleanup

	log.Info("Starting grievance service",
		infralogger.String("name", cfg.Service.Name),
		infralogger.String("version", cfg.Service.Version),
		infralogger.Int("port", cfg.Service.Port),
		infralogger.Bool("debug", cfg.Service.Debug),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	comps, err := NewComponents(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to set up storage", infralogger.Error(err))
		return 1
	}
	defer func() {
		if closeErr := comps.Close(); closeErr != nil {
			log.Warn("Failed to close storage", infralogger.Error(closeErr))
		}
	}()

	if cfg.Scheduler.Enabled {
		sched, schedErr := startScheduler(ctx, comps)
		if schedErr != nil {
			log.Error("Failed to start snapshot scheduler", infralogger.Error(schedErr))
			return 1
		}
		defer sched.Stop()
	}

	server := newServer(cfg, comps)
	if err = server.RunWithGracefulShutdown(ctx); err != nil {
		log.Error("Server error", infralogger.Error(err))
		return 1
	}
	log.Info("Server stopped gracefully")
	return 0
}

func startScheduler(ctx context.Context, comps *Components) (*scheduler.Scheduler, error) {
	snapshotter, err := comps.NewSnapshotter()
	if err != nil {
		return nil, err
	}
	sched := scheduler.New(snapshotter, comps.Logger)
	if err = sched.Start(ctx, comps.Config.Scheduler.Schedule); err != nil {
		return nil, err
	}
	return sched, nil
}

func newServer(cfg *config.Config, comps *Components) *infragin.Server {
	handler := api.NewHandler(comps.Service, comps.Logger, cfg.Service.Version)

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(comps.Logger).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(readTimeout, writeTimeout, idleTimeout).
		WithJWTAuth(cfg.Auth.JWTSecret).
		WithCORS(infragin.CORSConfig{
			Enabled:        len(cfg.Service.AllowedOrigins) > 0,
			AllowedOrigins: cfg.Service.AllowedOrigins,
		})

	s := comps.Storage
	if s.Grievances != nil {
		builder.WithHealthCheck("database", infragin.PingChecker(s.Grievances.Ping, false))
	}
	if s.Index != nil {
		builder.WithHealthCheck("elasticsearch", infragin.PingChecker(s.Index.Ping, true))
	}
	if s.Cache != nil {
		builder.WithHealthCheck("redis", infragin.PingChecker(s.Cache.Ping, true))
	}
	if usesSidecar(cfg) {
		builder.WithHealthCheck("ml", mlhealth.Checker(cfg.ML.URL))
	}

	return builder.
		WithRoutes(func(r *gin.Engine) {
			// Health routes are registered first and stay out of request metrics.
			r.Use(comps.Telemetry.Middleware())
			api.SetupRoutes(r, handler, builder.Secret(), comps.Telemetry.Handler())
		}).
		Build()
}

func usesSidecar(cfg *config.Config) bool {
	return cfg.Analysis.SentimentStrategy == config.StrategyExternal ||
		(cfg.Analysis.SummaryStrategy == config.StrategyExternal && cfg.LLM.APIKey == "")
}

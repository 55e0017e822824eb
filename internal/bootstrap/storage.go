package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	infraes "github.com/dj0804/GrievanceInsight/infrastructure/elasticsearch"
	infralogger "github.com/dj0804/GrievanceInsight/infrastructure/logger"
	infraredis "github.com/dj0804/GrievanceInsight/infrastructure/redis"
	"github.com/dj0804/GrievanceInsight/internal/cache"
	"github.com/dj0804/GrievanceInsight/internal/config"
	"github.com/dj0804/GrievanceInsight/internal/database"
	"github.com/dj0804/GrievanceInsight/internal/search"
	"github.com/dj0804/GrievanceInsight/internal/telemetry"
)

// Storage holds the optional backing stores. Any field may be nil when the
// corresponding store is disabled or unreachable.
type Storage struct {
	DB         *sqlx.DB
	Grievances *database.GrievanceRepository
	Analytics  *database.AnalyticsRepository
	Index      *search.Index
	Cache      *cache.DashboardCache

	redis *goredis.Client
}

// SetupStorage connects every enabled store. The database is required when
// enabled; Elasticsearch and Redis only degrade the service when they fail.
func SetupStorage(ctx context.Context, cfg *config.Config, log infralogger.Logger, tp *telemetry.Provider) (*Storage, error) {
	s := &Storage{}

	if cfg.Database.Enabled {
		if err := s.setupDatabase(ctx, cfg.Database, log); err != nil {
			return nil, err
		}
	} else {
		log.Info("Database disabled, running in-memory batch mode")
	}

	if cfg.Elasticsearch.Enabled {
		s.setupSearch(ctx, cfg.Elasticsearch, log)
	}
	if cfg.Redis.Enabled {
		s.setupCache(ctx, cfg.Redis, log, tp)
	}
	return s, nil
}

func (s *Storage) setupDatabase(ctx context.Context, cfg config.DatabaseConfig, log infralogger.Logger) error {
	if cfg.MigrateOnStart {
		if err := database.RunMigrations(cfg, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup database: %w", err)
	}
	log.Info("Database connected", infralogger.String("driver", cfg.Driver))

	s.DB = db
	s.Grievances = database.NewGrievanceRepository(db)
	s.Analytics = database.NewAnalyticsRepository(db)
	return nil
}

func (s *Storage) setupSearch(ctx context.Context, cfg config.ElasticsearchConfig, log infralogger.Logger) {
	client, err := infraes.NewClient(ctx, infraes.Config{
		URL:        cfg.URL,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	}, log)
	if err != nil {
		log.Warn("Elasticsearch unavailable, search uses the database", infralogger.Error(err))
		return
	}

	index := search.NewIndex(client, cfg.Index, log)
	if err = index.EnsureIndex(ctx); err != nil {
		log.Warn("Failed to ensure search index, search uses the database", infralogger.Error(err))
		return
	}
	s.Index = index
}

func (s *Storage) setupCache(ctx context.Context, cfg config.RedisConfig, log infralogger.Logger, tp *telemetry.Provider) {
	client, err := infraredis.NewClient(ctx, infraredis.Config{
		Address:  cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, dashboard cache disabled", infralogger.Error(err))
		return
	}
	s.redis = client
	s.Cache = cache.NewDashboardCache(client, cfg.CacheTTL, tp)
	log.Info("Dashboard cache enabled", infralogger.Duration("ttl", cfg.CacheTTL))
}

// Close releases every open connection.
func (s *Storage) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}
	return errors.Join(errs...)
}

// Package config loads the grievance service configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	infraconfig "github.com/dj0804/GrievanceInsight/infrastructure/config"
	"github.com/dj0804/GrievanceInsight/infrastructure/profiling"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Strategy names for the analysis collaborators.
const (
	StrategyExternal = "external"
	StrategyFallback = "fallback"
)

// Default configuration values.
const (
	defaultServiceName      = "grievance-insight"
	defaultServiceVersion   = "1.0.0"
	defaultServicePort      = 8000
	defaultDBDriver         = DriverSQLite
	defaultDBHost           = "localhost"
	defaultDBPort           = 5432
	defaultDBUser           = "postgres"
	defaultDBName           = "grievances"
	defaultDBSSLMode        = "disable"
	defaultDBPath           = "grievance_system.db"
	defaultDBMaxConns       = 25
	defaultDBMaxIdleConns   = 5
	defaultDBConnLifetime   = 5 * time.Minute
	defaultESURL            = "http://localhost:9200"
	defaultESIndex          = "grievances"
	defaultESMaxRetries     = 3
	defaultRedisAddress     = "localhost:6379"
	defaultCacheTTL         = 5 * time.Minute
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
	defaultExternalTimeout  = 3 * time.Second
	defaultRateLimitRPS     = 10
	defaultConcurrency      = 4
	defaultSentimentChars   = 250
	defaultSummaryChars     = 2000
	defaultSummaryMinLen    = 30
	defaultSummaryMaxLen    = 150
	defaultSummaryMinInput  = 50
	defaultMLURL            = "http://grievance-ml:8077"
	defaultBreakerFailures  = 5
	defaultBreakerOpenFor   = 30 * time.Second
	defaultLLMModel         = "claude-3-5-haiku-latest"
	defaultLLMMaxTokens     = 300
	defaultSnapshotSchedule = "0 0 * * *"
)

// Config holds all configuration for the grievance service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Database      DatabaseConfig      `yaml:"database"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Redis         RedisConfig         `yaml:"redis"`
	Logging       LoggingConfig       `yaml:"logging"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	ML            MLConfig            `yaml:"ml"`
	LLM           LLMConfig           `yaml:"llm"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Auth          AuthConfig          `yaml:"auth"`
	Profiling     profiling.Config    `yaml:"profiling"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name           string   `yaml:"name"`
	Version        string   `yaml:"version"`
	Port           int      `env:"GRIEVANCE_PORT"  yaml:"port"`
	Debug          bool     `env:"APP_DEBUG"       yaml:"debug"`
	AllowedOrigins []string `env:"CORS_ORIGINS"    yaml:"allowed_origins"`
}

// DatabaseConfig holds database configuration. Driver sqlite3 uses Path;
// postgres uses the connection fields.
type DatabaseConfig struct {
	Enabled         bool          `env:"DATABASE_ENABLED"  yaml:"enabled"`
	Driver          string        `env:"DATABASE_DRIVER"   yaml:"driver"`
	Path            string        `env:"SQLITE_PATH"       yaml:"path"`
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
	MigrateOnStart  bool          `env:"DATABASE_MIGRATE"  yaml:"migrate_on_start"`
}

// ElasticsearchConfig holds Elasticsearch configuration.
type ElasticsearchConfig struct {
	Enabled    bool   `env:"ELASTICSEARCH_ENABLED" yaml:"enabled"`
	URL        string `env:"ELASTICSEARCH_URL"     yaml:"url"`
	Username   string `yaml:"username"`
	Password   string `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	Index      string `yaml:"index"`
	MaxRetries int    `yaml:"max_retries"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address  string        `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// AnalysisConfig selects and bounds the analysis strategies.
type AnalysisConfig struct {
	SentimentStrategy string        `env:"SENTIMENT_STRATEGY" yaml:"sentiment_strategy"`
	SummaryStrategy   string        `env:"SUMMARY_STRATEGY"   yaml:"summary_strategy"`
	ExternalTimeout   time.Duration `yaml:"external_timeout"`
	RateLimitRPS      int           `yaml:"rate_limit_rps"`
	Concurrency       int           `env:"ANALYSIS_CONCURRENCY" yaml:"concurrency"`
	SentimentMaxChars int           `yaml:"sentiment_max_chars"`
	SummaryMaxChars   int           `yaml:"summary_max_chars"`
	SummaryMinLen     int           `yaml:"summary_min_len"`
	SummaryMaxLen     int           `yaml:"summary_max_len"`
	SummaryMinInput   int           `yaml:"summary_min_input"`
}

// MLConfig points at the sentiment/summarization sidecar.
type MLConfig struct {
	URL              string        `env:"GRIEVANCE_ML_URL" yaml:"url"`
	FailureThreshold int           `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
}

// LLMConfig configures the hosted summarization model. When APIKey is set
// and the summary strategy is external, it is preferred over the sidecar.
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	APIKey    string `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model     string `env:"LLM_MODEL"         yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// SchedulerConfig controls the analytics snapshot job.
type SchedulerConfig struct {
	Enabled  bool   `env:"SNAPSHOT_ENABLED"  yaml:"enabled"`
	Schedule string `env:"SNAPSHOT_SCHEDULE" yaml:"schedule"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// Load loads configuration from the specified path and validates it.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Default returns a configuration with every default applied and no file or
// environment input.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Validate rejects unknown strategies and drivers.
func (c *Config) Validate() error {
	return errors.Join(
		infraconfig.ValidatePort("service.port", c.Service.Port),
		infraconfig.ValidateOneOf("database.driver", c.Database.Driver, DriverPostgres, DriverSQLite),
		infraconfig.ValidateOneOf("analysis.sentiment_strategy", c.Analysis.SentimentStrategy, StrategyExternal, StrategyFallback),
		infraconfig.ValidateOneOf("analysis.summary_strategy", c.Analysis.SummaryStrategy, StrategyExternal, StrategyFallback),
		infraconfig.ValidateOneOf("logging.format", c.Logging.Format, "json", "console"),
	)
}

// DSN returns the driver data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return "file:" + d.Path + "?_foreign_keys=on&_busy_timeout=5000"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setRedisDefaults(&cfg.Redis)
	setLoggingDefaults(&cfg.Logging)
	setAnalysisDefaults(&cfg.Analysis)
	setMLDefaults(&cfg.ML)
	setLLMDefaults(&cfg.LLM)
	if cfg.Scheduler.Schedule == "" {
		cfg.Scheduler.Schedule = defaultSnapshotSchedule
	}
	// Auth and profiling are driven by env tags.
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Driver == "" {
		d.Driver = defaultDBDriver
	}
	if d.Path == "" {
		d.Path = defaultDBPath
	}
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = defaultDBConnLifetime
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.Index == "" {
		e.Index = defaultESIndex
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = defaultESMaxRetries
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.CacheTTL == 0 {
		r.CacheTTL = defaultCacheTTL
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setAnalysisDefaults(a *AnalysisConfig) {
	if a.SentimentStrategy == "" {
		a.SentimentStrategy = StrategyFallback
	}
	if a.SummaryStrategy == "" {
		a.SummaryStrategy = StrategyFallback
	}
	if a.ExternalTimeout == 0 {
		a.ExternalTimeout = defaultExternalTimeout
	}
	if a.RateLimitRPS == 0 {
		a.RateLimitRPS = defaultRateLimitRPS
	}
	if a.Concurrency == 0 {
		a.Concurrency = defaultConcurrency
	}
	if a.SentimentMaxChars == 0 {
		a.SentimentMaxChars = defaultSentimentChars
	}
	if a.SummaryMaxChars == 0 {
		a.SummaryMaxChars = defaultSummaryChars
	}
	if a.SummaryMinLen == 0 {
		a.SummaryMinLen = defaultSummaryMinLen
	}
	if a.SummaryMaxLen == 0 {
		a.SummaryMaxLen = defaultSummaryMaxLen
	}
	if a.SummaryMinInput == 0 {
		a.SummaryMinInput = defaultSummaryMinInput
	}
}

func setMLDefaults(m *MLConfig) {
	if m.URL == "" {
		m.URL = defaultMLURL
	}
	if m.FailureThreshold == 0 {
		m.FailureThreshold = defaultBreakerFailures
	}
	if m.OpenTimeout == 0 {
		m.OpenTimeout = defaultBreakerOpenFor
	}
}

func setLLMDefaults(l *LLMConfig) {
	if l.Provider == "" {
		l.Provider = "anthropic"
	}
	if l.Model == "" {
		l.Model = defaultLLMModel
	}
	if l.MaxTokens == 0 {
		l.MaxTokens = defaultLLMMaxTokens
	}
}

package gin

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dj0804/GrievanceInsight/infrastructure/jwt"
	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
)

// ServerBuilder assembles a Server fluently.
type ServerBuilder struct {
	cfg       Config
	log       logger.Logger
	jwtSecret string
	checks    map[string]HealthChecker
	routes    []func(*gin.Engine)
	startTime time.Time
}

// NewServerBuilder starts a builder for serviceName on port.
func NewServerBuilder(serviceName string, port int) *ServerBuilder {
	return &ServerBuilder{
		cfg:       Config{Port: port, ServiceName: serviceName},
		checks:    make(map[string]HealthChecker),
		startTime: time.Now(),
	}
}

func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.log = log
	return b
}

func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.cfg.Debug = debug
	return b
}

func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.cfg.ServiceVersion = version
	return b
}

func (b *ServerBuilder) WithCORS(cors CORSConfig) *ServerBuilder {
	b.cfg.CORS = cors
	return b
}

// WithTimeouts overrides non-zero timeouts.
func (b *ServerBuilder) WithTimeouts(read, write, idle time.Duration) *ServerBuilder {
	if read > 0 {
		b.cfg.ReadTimeout = read
	}
	if write > 0 {
		b.cfg.WriteTimeout = write
	}
	if idle > 0 {
		b.cfg.IdleTimeout = idle
	}
	return b
}

// WithJWTAuth makes ProtectedGroup available to route setup via Secret.
func (b *ServerBuilder) WithJWTAuth(secret string) *ServerBuilder {
	b.jwtSecret = secret
	return b
}

// WithHealthCheck registers a named dependency check on GET /health.
func (b *ServerBuilder) WithHealthCheck(name string, check HealthChecker) *ServerBuilder {
	b.checks[name] = check
	return b
}

// WithRoutes appends a route setup function. Functions run in order.
func (b *ServerBuilder) WithRoutes(setup func(*gin.Engine)) *ServerBuilder {
	b.routes = append(b.routes, setup)
	return b
}

// Secret returns the configured JWT secret.
func (b *ServerBuilder) Secret() string {
	return b.jwtSecret
}

// Build creates the Server. Health routes are registered before service routes.
func (b *ServerBuilder) Build() *Server {
	if b.log == nil {
		b.log = logger.NewNop()
	}
	health := &healthHandler{
		service:   b.cfg.ServiceName,
		version:   b.cfg.ServiceVersion,
		startTime: b.startTime,
		checks:    b.checks,
	}
	routes := b.routes
	return NewServer(b.cfg, b.log, func(r *gin.Engine) {
		r.GET("/health", health.handle)
		r.GET("/health/live", health.live)
		for _, setup := range routes {
			setup(r)
		}
	})
}

// ProtectedGroup returns a route group behind JWT auth. An empty secret
// leaves the group open.
func ProtectedGroup(router gin.IRouter, path, secret string) *gin.RouterGroup {
	group := router.Group(path)
	if secret != "" {
		group.Use(jwt.Middleware(secret))
	}
	return group
}

// PublicGroup returns an unauthenticated route group.
func PublicGroup(router gin.IRouter, path string) *gin.RouterGroup {
	return router.Group(path)
}

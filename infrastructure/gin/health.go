package gin

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the overall or per-check health.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

const healthCheckTimeout = 3 * time.Second

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// HealthChecker probes a single dependency.
type HealthChecker func(ctx context.Context) CheckResult

// PingChecker adapts a ping function into a HealthChecker. A failing ping is
// reported as degraded when optional is true.
func PingChecker(ping func(ctx context.Context) error, optional bool) HealthChecker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		err := ping(ctx)
		latency := time.Since(start).Round(time.Millisecond).String()
		if err == nil {
			return CheckResult{Status: HealthStatusHealthy, Latency: latency}
		}
		status := HealthStatusUnhealthy
		if optional {
			status = HealthStatusDegraded
		}
		return CheckResult{Status: status, Message: err.Error(), Latency: latency}
	}
}

type healthHandler struct {
	service   string
	version   string
	startTime time.Time
	checks    map[string]HealthChecker
}

func (h *healthHandler) run(ctx context.Context) HealthResponse {
	resp := HealthResponse{
		Status:    HealthStatusHealthy,
		Service:   h.service,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if len(h.checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	resp.Checks = make(map[string]CheckResult, len(h.checks))
	for name, check := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := check(ctx)
			mu.Lock()
			resp.Checks[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, result := range resp.Checks {
		switch result.Status {
		case HealthStatusUnhealthy:
			resp.Status = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if resp.Status == HealthStatusHealthy {
				resp.Status = HealthStatusDegraded
			}
		case HealthStatusHealthy:
		}
	}
	return resp
}

func (h *healthHandler) handle(c *gin.Context) {
	resp := h.run(c.Request.Context())
	code := http.StatusOK
	if resp.Status == HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (h *healthHandler) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": HealthStatusHealthy})
}

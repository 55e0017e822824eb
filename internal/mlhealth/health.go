// Package mlhealth provides a single implementation for ML sidecar health checks.
package mlhealth

import (
	"context"
	"fmt"

	infragin "github.com/dj0804/GrievanceInsight/infrastructure/gin"
	"github.com/dj0804/GrievanceInsight/internal/mltransport"
)

// Check calls GET /health at baseURL and returns reachable, latencyMs, model_version, and any error.
func Check(ctx context.Context, baseURL string) (reachable bool, latencyMs int64, modelVersion string, err error) {
	reachable, latencyMs, modelVersion, err = mltransport.DoHealth(ctx, baseURL)
	if err != nil {
		return reachable, latencyMs, modelVersion, fmt.Errorf("ml health check: %w", err)
	}
	return reachable, latencyMs, modelVersion, nil
}

// Checker reports the sidecar on the service health endpoint. The sidecar
// is optional, so an outage only degrades the service.
func Checker(baseURL string) infragin.HealthChecker {
	return func(ctx context.Context) infragin.CheckResult {
		_, latencyMs, modelVersion, err := Check(ctx, baseURL)
		latency := fmt.Sprintf("%dms", latencyMs)
		if err != nil {
			return infragin.CheckResult{Status: infragin.HealthStatusDegraded, Message: err.Error(), Latency: latency}
		}
		msg := ""
		if modelVersion != "" {
			msg = "model " + modelVersion
		}
		return infragin.CheckResult{Status: infragin.HealthStatusHealthy, Message: msg, Latency: latency}
	}
}

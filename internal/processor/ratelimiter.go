package processor

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
)

const defaultRPS = 100

// RateLimiter paces calls to an external collaborator.
type RateLimiter struct {
	limiter *rate.Limiter
	log     logger.Logger
}

// NewRateLimiter creates a limiter admitting rps calls per second. A
// non-positive burst defaults to rps.
func NewRateLimiter(rps, burst int, log logger.Logger) *RateLimiter {
	if rps <= 0 {
		rps = defaultRPS
	}
	if burst <= 0 {
		burst = rps
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     log,
	}
}

// Wait blocks until the limiter admits one call or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		r.log.Warn("Rate limiter wait failed", logger.Error(err))
		return err
	}
	return nil
}

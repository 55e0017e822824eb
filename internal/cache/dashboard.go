// Package cache keeps the stored-history dashboard in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/telemetry"
)

const (
	// StoredDashboardKey holds the dashboard built from stored history.
	StoredDashboardKey = "grievance:dashboard:stored"
	defaultTTL         = 5 * time.Minute
)

// DashboardCache caches dashboards as JSON strings.
type DashboardCache struct {
	client    *redis.Client
	ttl       time.Duration
	telemetry *telemetry.Provider
}

// NewDashboardCache creates a cache. A zero ttl uses five minutes.
func NewDashboardCache(client *redis.Client, ttl time.Duration, tp *telemetry.Provider) *DashboardCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &DashboardCache{client: client, ttl: ttl, telemetry: tp}
}

// Get returns the cached dashboard under key. A miss returns (nil, false, nil).
func (c *DashboardCache) Get(ctx context.Context, key string) (*domain.Dashboard, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.telemetry.RecordCacheLookup(ctx, false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached dashboard: %w", err)
	}

	var d domain.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.client.Del(ctx, key).Err()
		c.telemetry.RecordCacheLookup(ctx, false)
		return nil, false, nil
	}

	c.telemetry.RecordCacheLookup(ctx, true)
	return &d, true, nil
}

// Set stores d under key for the configured ttl.
func (c *DashboardCache) Set(ctx context.Context, key string, d *domain.Dashboard) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache dashboard: %w", err)
	}
	return nil
}

// Invalidate drops the stored-history dashboard after new writes.
func (c *DashboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, StoredDashboardKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (c *DashboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/internal/cache"
	"github.com/dj0804/GrievanceInsight/internal/domain"
)

func newCache(t *testing.T, ttl time.Duration) (*cache.DashboardCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewDashboardCache(client, ttl, nil), mr
}

func TestDashboardCache_MissThenHit(t *testing.T) {
	t.Parallel()

	c, _ := newCache(t, time.Minute)
	ctx := context.Background()

	got, ok, err := c.Get(ctx, cache.StoredDashboardKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	d := &domain.Dashboard{
		TotalComplaints: 3,
		CategoryCounts:  map[domain.Category]int{domain.CategoryHostel: 3},
		WeeklySummary:   "summary",
	}
	require.NoError(t, c.Set(ctx, cache.StoredDashboardKey, d))

	got, ok, err = c.Get(ctx, cache.StoredDashboardKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.TotalComplaints)
	assert.Equal(t, 3, got.CategoryCounts[domain.CategoryHostel])
}

func TestDashboardCache_Expires(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, cache.StoredDashboardKey, &domain.Dashboard{TotalComplaints: 1}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, cache.StoredDashboardKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDashboardCache_Invalidate(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, cache.StoredDashboardKey, &domain.Dashboard{TotalComplaints: 1}))
	require.NoError(t, c.Invalidate(ctx))
	assert.False(t, mr.Exists(cache.StoredDashboardKey))
}

func TestDashboardCache_CorruptEntryIsMiss(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t, time.Minute)
	require.NoError(t, mr.Set(cache.StoredDashboardKey, "{not json"))

	_, ok, err := c.Get(context.Background(), cache.StoredDashboardKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(cache.StoredDashboardKey))
}

func TestDashboardCache_ReadErrorSurfaces(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), cache.StoredDashboardKey)
	require.Error(t, err)
}

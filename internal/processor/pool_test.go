package processor_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/internal/processor"
)

func TestMap_PreservesOrder(t *testing.T) {
	t.Parallel()

	pool := processor.NewPool(8, nil)
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	results, err := processor.Map(context.Background(), pool, items, func(_ context.Context, n int) int {
		if n%7 == 0 {
			time.Sleep(time.Millisecond)
		}
		return n * n
	})
	require.NoError(t, err)

	for i, got := range results {
		assert.Equal(t, i*i, got)
	}
}

func TestMap_Empty(t *testing.T) {
	t.Parallel()

	results, err := processor.Map(context.Background(), processor.NewPool(0, nil), []string{}, func(context.Context, string) int {
		return 1
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMap_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	var active, peak atomic.Int32
	pool := processor.NewPool(2, nil)
	_, err := processor.Map(context.Background(), pool, make([]struct{}, 20), func(context.Context, struct{}) bool {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		active.Add(-1)
		return true
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestMap_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := processor.Map(ctx, processor.NewPool(2, nil), []int{1, 2, 3}, func(context.Context, int) int { return 0 })
	require.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	limiter := processor.NewRateLimiter(1, 1, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.NoError(t, limiter.Wait(ctx), "burst admits the first call")
	assert.Error(t, limiter.Wait(ctx), "second call needs a full second")
}

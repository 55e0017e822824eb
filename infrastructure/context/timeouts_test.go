package context_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infracontext "github.com/dj0804/GrievanceInsight/infrastructure/context"
)

func TestWithQueryTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := infracontext.WithQueryTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(infracontext.DefaultQueryTimeout), deadline, time.Second)
}

func TestWithQueryTimeout_KeepsShorterParentDeadline(t *testing.T) {
	t.Parallel()

	parent, cancelParent := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelParent()

	ctx, cancel := infracontext.WithQueryTimeout(parent)
	defer cancel()

	parentDeadline, _ := parent.Deadline()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.Equal(t, parentDeadline, deadline)
}

func TestWithPingTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := infracontext.WithPingTimeout(context.Background())
	cancel()

	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

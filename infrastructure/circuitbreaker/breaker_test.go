package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDependency = errors.New("sidecar down")

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	var transitions []State
	b := New(Config{
		FailureThreshold: 2,
		Timeout:          time.Minute,
		OnStateChange:    func(_, to State) { transitions = append(transitions, to) },
	})
	ctx := context.Background()

	require.ErrorIs(t, b.Execute(ctx, func() error { return errDependency }), errDependency)
	assert.Equal(t, StateClosed, b.State())
	require.ErrorIs(t, b.Execute(ctx, func() error { return errDependency }), errDependency)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(ctx, func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, []State{StateOpen}, transitions)
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New(Config{FailureThreshold: 1, Timeout: time.Second})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_ = b.Execute(ctx, func() error { return errDependency })
	require.Equal(t, StateOpen, b.State())

	now = now.Add(2 * time.Second)
	require.NoError(t, b.Execute(ctx, func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New(Config{FailureThreshold: 1, Timeout: time.Second})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_ = b.Execute(ctx, func() error { return errDependency })
	now = now.Add(2 * time.Second)
	_ = b.Execute(ctx, func() error { return errDependency })

	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Execute(ctx, func() error { return nil }), ErrCircuitOpen)
}

func TestBreaker_IgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	b := New(Config{FailureThreshold: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Execute(ctx, func() error { return ctx.Err() })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}

package logger

import (
	"context"
	"sync"
)

type ctxKey struct{}

var (
	fallbackOnce sync.Once
	fallback     Logger
)

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a stderr logger when none
// was attached so errors are never dropped.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
		return l
	}
	fallbackOnce.Do(func() {
		l, err := New(Config{OutputPaths: []string{"stderr"}})
		if err != nil {
			fallback = NewNop()
			return
		}
		fallback = l
	})
	return fallback
}

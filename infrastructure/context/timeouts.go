// Package context holds the timeouts shared by startup pings and storage queries.
package context

import (
	"context"
	"time"
)

const (
	DefaultPingTimeout  = 5 * time.Second
	DefaultQueryTimeout = 10 * time.Second
)

// WithPingTimeout derives a context bounded by DefaultPingTimeout.
func WithPingTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultPingTimeout)
}

// WithQueryTimeout derives a context bounded by DefaultQueryTimeout.
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultQueryTimeout)
}

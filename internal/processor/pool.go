// Package processor runs per-record work across a bounded worker pool.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
)

const defaultConcurrency = 4

// Pool fans per-item work out to a fixed number of workers.
type Pool struct {
	concurrency int
	log         logger.Logger
}

// NewPool creates a worker pool. A non-positive concurrency uses the default.
func NewPool(concurrency int, log logger.Logger) *Pool {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Pool{concurrency: concurrency, log: log}
}

type job[T any] struct {
	index int
	item  T
}

// Map applies fn to every item and returns the results in input order.
// Items not started before ctx is cancelled keep their zero value and the
// context error is returned.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(ctx context.Context, item T) R) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	start := time.Now()
	workers := min(p.concurrency, len(items))
	jobs := make(chan job[T], len(items))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					return
				}
				// Each index is written by exactly one worker.
				results[j.index] = fn(ctx, j.item)
			}
		}()
	}

	for i, item := range items {
		jobs <- job[T]{index: i, item: item}
	}
	close(jobs)
	wg.Wait()

	p.log.Debug("Pool batch complete",
		logger.Int("items", len(items)),
		logger.Int("workers", workers),
		logger.Duration("duration", time.Since(start)),
	)

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

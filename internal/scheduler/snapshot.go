// Package scheduler records periodic system analytics snapshots.
package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/analyzer"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/telemetry"
)

const week = 7 * 24 * time.Hour

// SnapshotStore is the storage the snapshotter reads from and writes to.
type SnapshotStore interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	CleanTextsSince(ctx context.Context, since time.Time) ([]string, error)
	CountSince(ctx context.Context, from, to time.Time) (int, error)
	InsertSnapshot(ctx context.Context, s *domain.Snapshot) (int64, error)
}

// Snapshotter builds and stores analytics snapshots.
type Snapshotter struct {
	store     SnapshotStore
	log       logger.Logger
	telemetry *telemetry.Provider
	now       func() time.Time
}

// NewSnapshotter creates a Snapshotter.
func NewSnapshotter(store SnapshotStore, log logger.Logger, tp *telemetry.Provider) *Snapshotter {
	return &Snapshotter{
		store:     store,
		log:       log,
		telemetry: tp,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Capture records a snapshot of current stats, trending issues over the
// last week and week-over-week growth.
func (s *Snapshotter) Capture(ctx context.Context) (*domain.Snapshot, error) {
	now := s.now()

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	texts, err := s.store.CleanTextsSince(ctx, now.Add(-week))
	if err != nil {
		return nil, fmt.Errorf("failed to load recent text: %w", err)
	}

	thisWeek, err := s.store.CountSince(ctx, now.Add(-week), now)
	if err != nil {
		return nil, fmt.Errorf("failed to count this week: %w", err)
	}
	lastWeek, err := s.store.CountSince(ctx, now.Add(-2*week), now.Add(-week))
	if err != nil {
		return nil, fmt.Errorf("failed to count last week: %w", err)
	}

	snap := &domain.Snapshot{
		AnalyticsDate:   now,
		TotalGrievances: stats.TotalGrievances,
		CategoryCounts:  stats.ByCategory,
		SentimentCounts: stats.BySentiment,
		UrgencyCounts:   stats.ByUrgency,
		TrendingIssues:  analyzer.ExtractTrends(texts),
		WeeklyGrowth:    WeeklyGrowth(thisWeek, lastWeek),
	}

	if _, err := s.store.InsertSnapshot(ctx, snap); err != nil {
		s.telemetry.RecordPersistenceFailure(ctx, "insert_snapshot")
		return nil, &domain.PersistenceError{Op: "insert_snapshot", Err: err}
	}

	s.telemetry.RecordSnapshot(ctx)
	s.log.Info("Recorded analytics snapshot",
		logger.Int64("snapshot_id", snap.ID),
		logger.Int("total_grievances", snap.TotalGrievances),
		logger.Int("this_week", thisWeek),
		logger.Int("last_week", lastWeek),
		logger.Float64("weekly_growth", snap.WeeklyGrowth),
	)
	return snap, nil
}

// WeeklyGrowth is the percentage change from lastWeek to thisWeek, rounded
// to two decimals. Growth from an empty week is 100, or 0 when both are empty.
func WeeklyGrowth(thisWeek, lastWeek int) float64 {
	if lastWeek == 0 {
		if thisWeek == 0 {
			return 0
		}
		return 100
	}
	growth := float64(thisWeek-lastWeek) / float64(lastWeek) * 100
	return math.Round(growth*100) / 100
}

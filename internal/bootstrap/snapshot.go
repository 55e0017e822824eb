package bootstrap

import (
	"context"
	"errors"

	"github.com/dj0804/GrievanceInsight/internal/database"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/scheduler"
)

// ErrNoDatabase is returned by operations that need the database when it is
// disabled.
var ErrNoDatabase = errors.New("database is not enabled")

// snapshotStore reads grievance stats and writes snapshots to the
// analytics tables.
type snapshotStore struct {
	*database.GrievanceRepository
	analytics *database.AnalyticsRepository
}

func (s snapshotStore) InsertSnapshot(ctx context.Context, snap *domain.Snapshot) (int64, error) {
	return s.analytics.InsertSnapshot(ctx, snap)
}

// NewSnapshotter builds a snapshotter over the configured database.
func (c *Components) NewSnapshotter() (*scheduler.Snapshotter, error) {
	if c.Storage.Grievances == nil {
		return nil, ErrNoDatabase
	}
	store := snapshotStore{GrievanceRepository: c.Storage.Grievances, analytics: c.Storage.Analytics}
	return scheduler.NewSnapshotter(store, c.Logger, c.Telemetry), nil
}

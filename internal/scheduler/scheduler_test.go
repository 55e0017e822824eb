package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/domain"
)

type fakeStore struct {
	mu        sync.Mutex
	texts     []string
	counts    map[time.Time]int
	insertErr error
	inserted  []*domain.Snapshot
	since     time.Time
}

func (f *fakeStore) Stats(context.Context) (*domain.Stats, error) {
	return &domain.Stats{
		TotalGrievances: 4,
		ByCategory:      map[domain.Category]int{domain.CategoryHostel: 4},
		BySentiment:     map[domain.Sentiment]int{domain.SentimentNegative: 4},
		ByUrgency:       map[domain.Urgency]int{domain.UrgencyLow: 4},
	}, nil
}

func (f *fakeStore) CleanTextsSince(_ context.Context, since time.Time) ([]string, error) {
	f.since = since
	return f.texts, nil
}

func (f *fakeStore) CountSince(_ context.Context, from, _ time.Time) (int, error) {
	return f.counts[from], nil
}

func (f *fakeStore) InsertSnapshot(_ context.Context, s *domain.Snapshot) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	s.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, s)
	return s.ID, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func TestWeeklyGrowth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		this, last int
		want       float64
	}{
		{0, 0, 0},
		{5, 0, 100},
		{15, 10, 50},
		{5, 10, -50},
		{1, 3, -66.67},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, WeeklyGrowth(tt.this, tt.last), 0.001)
	}
}

func TestSnapshotter_Capture(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		texts: []string{"wifi down again", "wifi slow", "mess food cold"},
		counts: map[time.Time]int{
			now.Add(-week):     6,
			now.Add(-2 * week): 4,
		},
	}
	s := NewSnapshotter(store, logger.NewNop(), nil)
	s.now = func() time.Time { return now }

	snap, err := s.Capture(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.ID)
	assert.Equal(t, now, snap.AnalyticsDate)
	assert.Equal(t, now.Add(-week), store.since)
	assert.Equal(t, 4, snap.TotalGrievances)
	assert.InDelta(t, 50.0, snap.WeeklyGrowth, 0.001)
	require.NotEmpty(t, snap.TrendingIssues)
	assert.Equal(t, `Frequent topic: "Wifi" (mentioned 2 times)`, snap.TrendingIssues[0])
}

func TestSnapshotter_CaptureInsertFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{insertErr: errors.New("disk full")}
	s := NewSnapshotter(store, logger.NewNop(), nil)

	_, err := s.Capture(context.Background())

	var pErr *domain.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "insert_snapshot", pErr.Op)
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	t.Parallel()

	s := New(NewSnapshotter(&fakeStore{}, logger.NewNop(), nil), logger.NewNop())
	require.Error(t, s.Start(context.Background(), "every tuesday"))
}

func TestScheduler_RunRecordsSnapshot(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	s := New(NewSnapshotter(store, logger.NewNop(), nil), logger.NewNop())
	require.NoError(t, s.Start(context.Background(), DefaultSchedule))
	defer s.Stop()

	s.run()
	assert.Equal(t, 1, store.count())
}

package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/internal/database"
	"github.com/dj0804/GrievanceInsight/internal/domain"
)

func TestAnalyticsRepository_InsertBatchSummary(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := database.NewAnalyticsRepository(db)

	mock.ExpectQuery("INSERT INTO batch_summaries").
		WithArgs(
			"batch_20260301",
			2,
			`{"Mess":2}`,
			`{"Negative":2}`,
			`{"Low":2}`,
			"summary",
			`[]`,
			`[4,5]`,
			sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	s := &domain.BatchSummary{
		BatchName: "batch_20260301",
		Dashboard: domain.Dashboard{
			TotalComplaints: 2,
			CategoryCounts:  map[domain.Category]int{domain.CategoryMess: 2},
			SentimentCounts: map[domain.Sentiment]int{domain.SentimentNegative: 2},
			UrgencyCounts:   map[domain.Urgency]int{domain.UrgencyLow: 2},
			WeeklySummary:   "summary",
		},
		GrievanceIDs: []int64{4, 5},
	}
	id, err := repo.InsertBatchSummary(context.Background(), s)

	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_LatestBatchSummary(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := database.NewAnalyticsRepository(db)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM batch_summaries").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "batch_name", "total_complaints", "complaint_volume_by_category", "sentiment_overview",
			"urgency_distribution", "weekly_summary", "top_recurring_issues", "grievance_ids", "created_at",
		}).AddRow(
			3, "batch", 2, []byte(`{"Mess":2}`), []byte(`{"Negative":2}`),
			[]byte(`{"Low":2}`), "two complaints", []byte(`["Frequent topic: \"Food\" (mentioned 2 times)"]`),
			[]byte(`[1,2]`), created,
		))

	s, err := repo.LatestBatchSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "batch", s.BatchName)
	assert.Equal(t, 2, s.Dashboard.CategoryCounts[domain.CategoryMess])
	assert.Equal(t, []string{`Frequent topic: "Food" (mentioned 2 times)`}, s.Dashboard.TopRecurringIssues)
	assert.Equal(t, []int64{1, 2}, s.GrievanceIDs)
	assert.Equal(t, created, s.CreatedAt)
}

func TestAnalyticsRepository_LatestBatchSummary_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := database.NewAnalyticsRepository(db)

	mock.ExpectQuery("FROM batch_summaries").WillReturnError(sql.ErrNoRows)

	_, err := repo.LatestBatchSummary(context.Background())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalyticsRepository_Snapshots(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := database.NewAnalyticsRepository(db)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO system_analytics").
		WithArgs(day, 10, `{"Hostel":10}`, `{}`, `{}`, `["wifi"]`, 25.0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("FROM system_analytics").
		WithArgs(database.DefaultListLimit).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "analytics_date", "total_grievances", "category_counts", "sentiment_counts",
			"urgency_counts", "trending_issues", "weekly_growth",
		}).AddRow(1, day, 10, []byte(`{"Hostel":10}`), []byte(`{}`), []byte(`{}`), []byte(`["wifi"]`), 25.0))

	_, err := repo.InsertSnapshot(context.Background(), &domain.Snapshot{
		AnalyticsDate:   day,
		TotalGrievances: 10,
		CategoryCounts:  map[domain.Category]int{domain.CategoryHostel: 10},
		SentimentCounts: map[domain.Sentiment]int{},
		UrgencyCounts:   map[domain.Urgency]int{},
		TrendingIssues:  []string{"wifi"},
		WeeklyGrowth:    25,
	})
	require.NoError(t, err)

	snaps, err := repo.ListSnapshots(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, []string{"wifi"}, snaps[0].TrendingIssues)
	assert.InDelta(t, 25.0, snaps[0].WeeklyGrowth, 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	infracontext "github.com/dj0804/GrievanceInsight/infrastructure/context"
	"github.com/dj0804/GrievanceInsight/internal/domain"
)

// AnalyticsRepository stores batch dashboards and daily analytics snapshots.
type AnalyticsRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewAnalyticsRepository creates a new analytics repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// InsertBatchSummary stores the dashboard of an analysed batch. Processed
// complaints are not persisted here; they live in analysis_results.
func (r *AnalyticsRepository) InsertBatchSummary(ctx context.Context, s *domain.BatchSummary) (int64, error) {
	d := s.Dashboard
	columns := make([]string, 0, 5)
	for _, v := range []any{d.CategoryCounts, d.SentimentCounts, d.UrgencyCounts, nonNil(d.TopRecurringIssues), nonNilIDs(s.GrievanceIDs)} {
		encoded, err := toJSON(v)
		if err != nil {
			return 0, err
		}
		columns = append(columns, encoded)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now()
	}

	query := r.db.Rebind(`
		INSERT INTO batch_summaries (
			batch_name, total_complaints, complaint_volume_by_category, sentiment_overview,
			urgency_distribution, weekly_summary, top_recurring_issues, grievance_ids, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		s.BatchName,
		d.TotalComplaints,
		columns[0],
		columns[1],
		columns[2],
		d.WeeklySummary,
		columns[3],
		columns[4],
		s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert batch summary: %w", err)
	}
	return s.ID, nil
}

type batchRow struct {
	ID              int64     `db:"id"`
	BatchName       string    `db:"batch_name"`
	TotalComplaints int       `db:"total_complaints"`
	Categories      []byte    `db:"complaint_volume_by_category"`
	Sentiments      []byte    `db:"sentiment_overview"`
	Urgencies       []byte    `db:"urgency_distribution"`
	WeeklySummary   string    `db:"weekly_summary"`
	TopIssues       []byte    `db:"top_recurring_issues"`
	GrievanceIDs    []byte    `db:"grievance_ids"`
	CreatedAt       time.Time `db:"created_at"`
}

// LatestBatchSummary returns the most recently stored batch dashboard, or
// domain.ErrNotFound when none exists.
func (r *AnalyticsRepository) LatestBatchSummary(ctx context.Context) (*domain.BatchSummary, error) {
	ctx, cancel := infracontext.WithQueryTimeout(ctx)
	defer cancel()

	var row batchRow
	query := `
		SELECT id, batch_name, total_complaints, complaint_volume_by_category, sentiment_overview,
			urgency_distribution, weekly_summary, top_recurring_issues, grievance_ids, created_at
		FROM batch_summaries
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest batch summary: %w", err)
	}

	s := &domain.BatchSummary{
		ID:        row.ID,
		BatchName: row.BatchName,
		CreatedAt: row.CreatedAt,
		Dashboard: domain.Dashboard{
			TotalComplaints: row.TotalComplaints,
			WeeklySummary:   row.WeeklySummary,
		},
	}
	decode := []struct {
		raw []byte
		dst any
	}{
		{row.Categories, &s.Dashboard.CategoryCounts},
		{row.Sentiments, &s.Dashboard.SentimentCounts},
		{row.Urgencies, &s.Dashboard.UrgencyCounts},
		{row.TopIssues, &s.Dashboard.TopRecurringIssues},
		{row.GrievanceIDs, &s.GrievanceIDs},
	}
	for _, d := range decode {
		if err := fromJSON(d.raw, d.dst); err != nil {
			return nil, fmt.Errorf("failed to decode batch summary %d: %w", row.ID, err)
		}
	}
	return s, nil
}

// InsertSnapshot stores a daily analytics snapshot.
func (r *AnalyticsRepository) InsertSnapshot(ctx context.Context, s *domain.Snapshot) (int64, error) {
	columns := make([]string, 0, 4)
	for _, v := range []any{s.CategoryCounts, s.SentimentCounts, s.UrgencyCounts, nonNil(s.TrendingIssues)} {
		encoded, err := toJSON(v)
		if err != nil {
			return 0, err
		}
		columns = append(columns, encoded)
	}
	if s.AnalyticsDate.IsZero() {
		s.AnalyticsDate = r.now()
	}

	query := r.db.Rebind(`
		INSERT INTO system_analytics (
			analytics_date, total_grievances, category_counts, sentiment_counts,
			urgency_counts, trending_issues, weekly_growth
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		s.AnalyticsDate,
		s.TotalGrievances,
		columns[0],
		columns[1],
		columns[2],
		columns[3],
		s.WeeklyGrowth,
	).Scan(&s.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return s.ID, nil
}

type snapshotRow struct {
	ID              int64     `db:"id"`
	AnalyticsDate   time.Time `db:"analytics_date"`
	TotalGrievances int       `db:"total_grievances"`
	CategoryCounts  []byte    `db:"category_counts"`
	SentimentCounts []byte    `db:"sentiment_counts"`
	UrgencyCounts   []byte    `db:"urgency_counts"`
	TrendingIssues  []byte    `db:"trending_issues"`
	WeeklyGrowth    float64   `db:"weekly_growth"`
}

// ListSnapshots returns the newest snapshots first.
func (r *AnalyticsRepository) ListSnapshots(ctx context.Context, limit int) ([]domain.Snapshot, error) {
	ctx, cancel := infracontext.WithQueryTimeout(ctx)
	defer cancel()

	var rows []snapshotRow
	query := r.db.Rebind(`
		SELECT id, analytics_date, total_grievances, category_counts, sentiment_counts,
			urgency_counts, trending_issues, weekly_growth
		FROM system_analytics
		ORDER BY analytics_date DESC, id DESC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &rows, query, clampLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	out := make([]domain.Snapshot, 0, len(rows))
	for _, row := range rows {
		s := domain.Snapshot{
			ID:              row.ID,
			AnalyticsDate:   row.AnalyticsDate,
			TotalGrievances: row.TotalGrievances,
			WeeklyGrowth:    row.WeeklyGrowth,
		}
		for _, d := range []struct {
			raw []byte
			dst any
		}{
			{row.CategoryCounts, &s.CategoryCounts},
			{row.SentimentCounts, &s.SentimentCounts},
			{row.UrgencyCounts, &s.UrgencyCounts},
			{row.TrendingIssues, &s.TrendingIssues},
		} {
			if err := fromJSON(d.raw, d.dst); err != nil {
				return nil, fmt.Errorf("failed to decode snapshot %d: %w", row.ID, err)
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

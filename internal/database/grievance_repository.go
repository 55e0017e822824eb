package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	infracontext "github.com/dj0804/GrievanceInsight/infrastructure/context"
	"github.com/dj0804/GrievanceInsight/internal/domain"
)

const (
	// DefaultListLimit bounds list queries when no limit is given.
	DefaultListLimit = 10
	// MaxListLimit is the largest accepted list limit.
	MaxListLimit = 100
)

// GrievanceRepository stores grievances and their analyses. Queries use
// ? placeholders rebound for the active driver.
type GrievanceRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewGrievanceRepository creates a new grievance repository.
func NewGrievanceRepository(db *sqlx.DB) *GrievanceRepository {
	return &GrievanceRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Ping verifies the database is reachable.
func (r *GrievanceRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InsertGrievance stores a raw submission and returns its id.
func (r *GrievanceRepository) InsertGrievance(ctx context.Context, g *domain.Grievance) (int64, error) {
	var userInfo any
	if len(g.UserInfo) > 0 {
		encoded, err := toJSON(g.UserInfo)
		if err != nil {
			return 0, err
		}
		userInfo = encoded
	}
	if g.SubmittedAt.IsZero() {
		g.SubmittedAt = r.now()
	}

	query := r.db.Rebind(`
		INSERT INTO user_grievances (raw_text, submitted_at, user_info, ip_address)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	if err := r.db.QueryRowxContext(ctx, query, g.RawText, g.SubmittedAt, userInfo, nullString(g.IPAddress)).Scan(&g.ID); err != nil {
		return 0, fmt.Errorf("failed to insert grievance: %w", err)
	}
	return g.ID, nil
}

// InsertAnalysis stores the analysis of a grievance and returns its id.
func (r *GrievanceRepository) InsertAnalysis(ctx context.Context, a *domain.AnalysisResult) (int64, error) {
	var confidence any
	if len(a.Confidence) > 0 {
		encoded, err := toJSON(a.Confidence)
		if err != nil {
			return 0, err
		}
		confidence = encoded
	}
	if a.ProcessedAt.IsZero() {
		a.ProcessedAt = r.now()
	}

	query := r.db.Rebind(`
		INSERT INTO analysis_results (grievance_id, category, sentiment, urgency, clean_text, confidence, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		a.GrievanceID,
		string(a.Category),
		string(a.Sentiment),
		string(a.Urgency),
		a.CleanText,
		confidence,
		a.ProcessedAt,
	).Scan(&a.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}
	return a.ID, nil
}

const joinedColumns = `
	g.id, g.raw_text, g.submitted_at, a.clean_text, a.category, a.sentiment, a.urgency
	FROM user_grievances g
	JOIN analysis_results a ON a.grievance_id = g.id`

// Recent returns the most recently submitted analysed grievances.
func (r *GrievanceRepository) Recent(ctx context.Context, limit int) ([]domain.GrievanceWithAnalysis, error) {
	query := `SELECT` + joinedColumns + ` ORDER BY g.submitted_at DESC, g.id DESC LIMIT ?`
	return r.list(ctx, "recent grievances", query, clampLimit(limit))
}

// ListWithAnalysis returns every analysed grievance, oldest first.
func (r *GrievanceRepository) ListWithAnalysis(ctx context.Context) ([]domain.GrievanceWithAnalysis, error) {
	query := `SELECT` + joinedColumns + ` ORDER BY g.submitted_at, g.id`
	return r.list(ctx, "grievances", query)
}

// Search returns analysed grievances whose raw text contains term,
// case-insensitively. SQLite's LOWER folds ASCII letters only, so on the
// sqlite3 driver non-ASCII text matches case-sensitively.
func (r *GrievanceRepository) Search(ctx context.Context, term string, limit int) ([]domain.GrievanceWithAnalysis, error) {
	query := `SELECT` + joinedColumns + ` WHERE LOWER(g.raw_text) LIKE ? ORDER BY g.submitted_at DESC, g.id DESC LIMIT ?`
	return r.list(ctx, "search grievances", query, "%"+strings.ToLower(term)+"%", clampLimit(limit))
}

// ByCategory returns analysed grievances in category, newest first.
func (r *GrievanceRepository) ByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.GrievanceWithAnalysis, error) {
	query := `SELECT` + joinedColumns + ` WHERE a.category = ? ORDER BY g.submitted_at DESC, g.id DESC LIMIT ?`
	return r.list(ctx, "grievances by category", query, string(category), clampLimit(limit))
}

// CleanTextsSince returns the normalized text of grievances analysed at or
// after since.
func (r *GrievanceRepository) CleanTextsSince(ctx context.Context, since time.Time) ([]string, error) {
	ctx, cancel := infracontext.WithQueryTimeout(ctx)
	defer cancel()

	var texts []string
	query := r.db.Rebind(`SELECT clean_text FROM analysis_results WHERE processed_at >= ? ORDER BY processed_at, id`)
	if err := r.db.SelectContext(ctx, &texts, query, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list clean texts: %w", err)
	}
	return texts, nil
}

// CountSince counts grievances submitted in [from, to).
func (r *GrievanceRepository) CountSince(ctx context.Context, from, to time.Time) (int, error) {
	ctx, cancel := infracontext.WithQueryTimeout(ctx)
	defer cancel()

	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM user_grievances WHERE submitted_at >= ? AND submitted_at < ?`)
	if err := r.db.GetContext(ctx, &n, query, from.UTC(), to.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count grievances: %w", err)
	}
	return n, nil
}

// Stats aggregates stored analyses.
func (r *GrievanceRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	ctx, cancel := infracontext.WithQueryTimeout(ctx)
	defer cancel()

	stats := &domain.Stats{
		ByCategory:  make(map[domain.Category]int),
		BySentiment: make(map[domain.Sentiment]int),
		ByUrgency:   make(map[domain.Urgency]int),
	}

	if err := r.db.GetContext(ctx, &stats.TotalGrievances, `SELECT COUNT(*) FROM user_grievances`); err != nil {
		return nil, fmt.Errorf("failed to count grievances: %w", err)
	}

	for _, col := range []string{"category", "sentiment", "urgency"} {
		counts, err := r.countBy(ctx, col)
		if err != nil {
			return nil, err
		}
		for label, n := range counts {
			switch col {
			case "category":
				stats.ByCategory[domain.Category(label)] = n
			case "sentiment":
				stats.BySentiment[domain.Sentiment(label)] = n
			default:
				stats.ByUrgency[domain.Urgency(label)] = n
			}
		}
	}
	return stats, nil
}

type labelCount struct {
	Label string `db:"label"`
	Count int    `db:"count"`
}

// countBy groups analysis_results by a trusted column name.
func (r *GrievanceRepository) countBy(ctx context.Context, column string) (map[string]int, error) {
	var rows []labelCount
	query := fmt.Sprintf(`SELECT %[1]s AS label, COUNT(*) AS count FROM analysis_results GROUP BY %[1]s`, column)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count by %s: %w", column, err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Label] = row.Count
	}
	return out, nil
}

type joinedRow struct {
	ID          int64     `db:"id"`
	RawText     string    `db:"raw_text"`
	SubmittedAt time.Time `db:"submitted_at"`
	CleanText   string    `db:"clean_text"`
	Category    string    `db:"category"`
	Sentiment   string    `db:"sentiment"`
	Urgency     string    `db:"urgency"`
}

func (r *GrievanceRepository) list(ctx context.Context, what, query string, args ...any) ([]domain.GrievanceWithAnalysis, error) {
	ctx, cancel := infracontext.WithQueryTimeout(ctx)
	defer cancel()

	var rows []joinedRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}

	out := make([]domain.GrievanceWithAnalysis, len(rows))
	for i, row := range rows {
		out[i] = domain.GrievanceWithAnalysis{
			ID:          row.ID,
			RawText:     row.RawText,
			SubmittedAt: row.SubmittedAt,
			CleanText:   row.CleanText,
			Category:    domain.Category(row.Category),
			Sentiment:   domain.Sentiment(row.Sentiment),
			Urgency:     domain.Urgency(row.Urgency),
		}
	}
	return out, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/analyzer"
	"github.com/dj0804/GrievanceInsight/internal/cache"
	"github.com/dj0804/GrievanceInsight/internal/database"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/sample"
	"github.com/dj0804/GrievanceInsight/internal/search"
	"github.com/dj0804/GrievanceInsight/internal/telemetry"
)

// ErrStoreUnavailable is returned by operations that need a configured store.
var ErrStoreUnavailable = errors.New("persistence store not configured")

const maxTopCategories = 5

// Config wires a GrievanceService. Store, Analytics, Index and Cache are
// optional; without a store the service runs in in-memory batch mode.
type Config struct {
	Pipeline  *analyzer.Pipeline
	Store     GrievanceStore
	Analytics AnalyticsStore
	Index     Indexer
	Cache     DashboardCache
	Logger    logger.Logger
	Telemetry *telemetry.Provider
}

// GrievanceService runs analyses and the persistence around them.
type GrievanceService struct {
	pipeline  *analyzer.Pipeline
	store     GrievanceStore
	analytics AnalyticsStore
	index     Indexer
	cache     DashboardCache
	log       logger.Logger
	telemetry *telemetry.Provider
	now       func() time.Time
}

// NewGrievanceService creates a service.
func NewGrievanceService(cfg Config) *GrievanceService {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Pipeline == nil {
		cfg.Pipeline = analyzer.NewPipeline(analyzer.Options{Logger: cfg.Logger, Telemetry: cfg.Telemetry})
	}
	return &GrievanceService{
		pipeline:  cfg.Pipeline,
		store:     cfg.Store,
		analytics: cfg.Analytics,
		index:     cfg.Index,
		cache:     cfg.Cache,
		log:       cfg.Logger,
		telemetry: cfg.Telemetry,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HasStore reports whether a persistence store is configured.
func (s *GrievanceService) HasStore() bool {
	return s.store != nil
}

// Categories returns the category labels in rule priority order.
func (s *GrievanceService) Categories() []domain.Category {
	return domain.Categories()
}

// BatchOptions controls batch persistence.
type BatchOptions struct {
	Persist   bool
	BatchName string
	IPAddress string
}

// BatchResult is the outcome of a batch analysis.
type BatchResult struct {
	Dashboard    *domain.Dashboard `json:"dashboard"`
	BatchID      int64             `json:"batch_id,omitempty"`
	BatchName    string            `json:"batch_name,omitempty"`
	GrievanceIDs []int64           `json:"grievance_ids,omitempty"`
}

// AnalyzeBatch analyses records and, when asked and a store is configured,
// stores each processed complaint and the batch dashboard. A storage failure
// returns the result together with a *domain.PersistenceError.
func (s *GrievanceService) AnalyzeBatch(ctx context.Context, records []domain.RawRecord, opts BatchOptions) (*BatchResult, error) {
	dashboard, err := s.pipeline.Process(ctx, records)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Dashboard: dashboard}
	if !opts.Persist || s.store == nil {
		return result, nil
	}

	result.BatchName = opts.BatchName
	if result.BatchName == "" {
		result.BatchName = "batch_" + s.now().Format("20060102") + "_" + uuid.NewString()[:8]
	}

	// Any stored row makes the cached dashboard stale, even if a later write fails.
	wrote := false
	defer func() {
		if wrote {
			s.invalidate(ctx)
		}
	}()

	for _, c := range dashboard.ProcessedComplaints {
		ids, storeErr := s.storeComplaint(ctx, c, nil, opts.IPAddress)
		if ids != nil {
			wrote = true
		}
		if storeErr != nil {
			return result, storeErr
		}
		result.GrievanceIDs = append(result.GrievanceIDs, ids.GrievanceID)
	}

	if s.analytics != nil {
		summary := &domain.BatchSummary{
			BatchName:    result.BatchName,
			Dashboard:    *dashboard,
			GrievanceIDs: result.GrievanceIDs,
		}
		id, storeErr := s.analytics.InsertBatchSummary(ctx, summary)
		if storeErr != nil {
			return result, s.persistenceFailure(ctx, "insert_batch_summary", storeErr)
		}
		result.BatchID = id
	}

	s.log.Info("Batch stored",
		logger.String("batch_name", result.BatchName),
		logger.Int64("batch_id", result.BatchID),
		logger.Int("grievances", len(result.GrievanceIDs)),
	)
	return result, nil
}

// AnalyzeSingle analyses one complaint without storing it.
func (s *GrievanceService) AnalyzeSingle(ctx context.Context, rawText string) (domain.Complaint, error) {
	return s.pipeline.AnalyzeText(ctx, rawText)
}

// Submission is a single complaint to store and analyse.
type Submission struct {
	RawText   string
	UserInfo  map[string]any
	IPAddress string
}

// StoredAnalysis is the outcome of SubmitGrievance.
type StoredAnalysis struct {
	GrievanceID int64            `json:"grievance_id"`
	AnalysisID  int64            `json:"analysis_id"`
	Complaint   domain.Complaint `json:"-"`
}

// SubmitGrievance analyses a complaint and stores both the grievance and its
// analysis. On a storage failure the analysis is returned with a
// *domain.PersistenceError.
func (s *GrievanceService) SubmitGrievance(ctx context.Context, sub Submission) (*StoredAnalysis, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	complaint, err := s.pipeline.AnalyzeText(ctx, sub.RawText)
	if err != nil {
		return nil, err
	}

	stored, err := s.storeComplaint(ctx, complaint, sub.UserInfo, sub.IPAddress)
	if stored == nil {
		stored = &StoredAnalysis{}
	} else {
		s.invalidate(ctx)
	}
	stored.Complaint = complaint
	return stored, err
}

func (s *GrievanceService) storeComplaint(
	ctx context.Context, c domain.Complaint, userInfo map[string]any, ip string,
) (*StoredAnalysis, error) {
	g := &domain.Grievance{RawText: c.RawText, UserInfo: userInfo, IPAddress: ip, SubmittedAt: s.now()}
	grievanceID, err := s.store.InsertGrievance(ctx, g)
	if err != nil {
		return nil, s.persistenceFailure(ctx, "insert_grievance", err)
	}

	a := &domain.AnalysisResult{
		GrievanceID: grievanceID,
		Category:    c.Category,
		Sentiment:   c.Sentiment,
		Urgency:     c.Urgency,
		CleanText:   c.CleanText,
		ProcessedAt: s.now(),
	}
	analysisID, err := s.store.InsertAnalysis(ctx, a)
	if err != nil {
		return &StoredAnalysis{GrievanceID: grievanceID}, s.persistenceFailure(ctx, "insert_analysis", err)
	}

	s.indexGrievance(ctx, domain.GrievanceWithAnalysis{
		ID:          grievanceID,
		RawText:     c.RawText,
		SubmittedAt: g.SubmittedAt,
		CleanText:   c.CleanText,
		Category:    c.Category,
		Sentiment:   c.Sentiment,
		Urgency:     c.Urgency,
	})
	return &StoredAnalysis{GrievanceID: grievanceID, AnalysisID: analysisID}, nil
}

// indexGrievance failures are logged only; SQL stays the source of truth.
func (s *GrievanceService) indexGrievance(ctx context.Context, g domain.GrievanceWithAnalysis) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexGrievance(ctx, search.NewDocument(g)); err != nil {
		s.log.Warn("Failed to index grievance",
			logger.Int64("grievance_id", g.ID),
			logger.Error(err),
		)
	}
}

func (s *GrievanceService) persistenceFailure(ctx context.Context, op string, err error) error {
	s.telemetry.RecordPersistenceFailure(ctx, op)
	s.log.Error("Persistence failed", logger.String("operation", op), logger.Error(err))
	return &domain.PersistenceError{Op: op, Err: err}
}

func (s *GrievanceService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("Failed to invalidate dashboard cache", logger.Error(err))
	}
}

// Demo analyses the built-in sample complaints.
func (s *GrievanceService) Demo(ctx context.Context) (*domain.Dashboard, error) {
	return s.pipeline.Process(ctx, sample.Records())
}

// StoredDashboard builds a dashboard from everything stored, served from the
// cache when possible.
func (s *GrievanceService) StoredDashboard(ctx context.Context) (*domain.Dashboard, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, cache.StoredDashboardKey)
		if err != nil {
			s.log.Warn("Dashboard cache read failed", logger.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	rows, err := s.store.ListWithAnalysis(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load grievances: %w", err)
	}

	complaints := make([]domain.Complaint, len(rows))
	for i, row := range rows {
		complaints[i] = row.Complaint()
	}

	top := TopCategories(stats.ByCategory, maxTopCategories)
	dashboard := &domain.Dashboard{
		TotalComplaints:     stats.TotalGrievances,
		CategoryCounts:      stats.ByCategory,
		SentimentCounts:     stats.BySentiment,
		UrgencyCounts:       stats.ByUrgency,
		WeeklySummary:       StoredNarrative(stats, top),
		TopRecurringIssues:  top,
		ProcessedComplaints: complaints,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.StoredDashboardKey, dashboard); err != nil {
			s.log.Warn("Dashboard cache write failed", logger.Error(err))
		}
	}
	return dashboard, nil
}

// TopCategories returns up to n category names by descending count. Ties
// follow category rule order, then name.
func TopCategories(counts map[domain.Category]int, n int) []string {
	rank := make(map[domain.Category]int, len(counts))
	for i, c := range domain.Categories() {
		rank[c] = i
	}

	cats := make([]domain.Category, 0, len(counts))
	for c, count := range counts {
		if count > 0 {
			cats = append(cats, c)
		}
	}
	slices.SortFunc(cats, func(a, b domain.Category) int {
		if d := cmp.Compare(counts[b], counts[a]); d != 0 {
			return d
		}
		ra, aKnown := rank[a]
		rb, bKnown := rank[b]
		switch {
		case aKnown && bKnown:
			return cmp.Compare(ra, rb)
		case aKnown:
			return -1
		case bKnown:
			return 1
		}
		return cmp.Compare(a, b)
	})

	out := make([]string, 0, min(n, len(cats)))
	for _, c := range cats[:min(n, len(cats))] {
		out = append(out, string(c))
	}
	return out
}

// StoredNarrative summarises stored history in one paragraph.
func StoredNarrative(stats *domain.Stats, top []string) string {
	named := "none"
	if len(top) > 0 {
		named = strings.Join(top[:min(3, len(top))], ", ")
	}
	return fmt.Sprintf(
		"Database contains %d total grievances. %d show negative sentiment, and %d are marked as high urgency. Top categories: %s.",
		stats.TotalGrievances,
		stats.BySentiment[domain.SentimentNegative],
		stats.ByUrgency[domain.UrgencyHigh],
		named,
	)
}

// Recent returns the newest stored grievances.
func (s *GrievanceService) Recent(ctx context.Context, limit int) ([]domain.GrievanceWithAnalysis, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return s.store.Recent(ctx, limit)
}

// Search finds stored grievances containing term. The search index is used
// when configured; if it fails the SQL substring search answers instead.
func (s *GrievanceService) Search(ctx context.Context, term string, limit int) ([]domain.GrievanceWithAnalysis, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.MalformedError("search term is required")
	}
	if s.store == nil && s.index == nil {
		return nil, ErrStoreUnavailable
	}
	limit = clampLimit(limit)

	if s.index != nil {
		results, err := s.index.Search(ctx, term, limit)
		if err == nil {
			return results, nil
		}
		if s.store == nil {
			return nil, fmt.Errorf("failed to search index: %w", err)
		}
		s.log.Warn("Search index failed, using database search",
			logger.String("fallback_strategy", "sql_like"),
			logger.Error(err),
		)
	}
	return s.store.Search(ctx, term, limit)
}

// ByCategory lists stored grievances in one category.
func (s *GrievanceService) ByCategory(ctx context.Context, name string, limit int) ([]domain.GrievanceWithAnalysis, error) {
	category, ok := domain.ParseCategory(name)
	if !ok {
		return nil, domain.MalformedError("unknown category %q", name)
	}
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return s.store.ByCategory(ctx, category, limit)
}

// LatestBatch returns the most recently stored batch dashboard.
func (s *GrievanceService) LatestBatch(ctx context.Context) (*domain.BatchSummary, error) {
	if s.analytics == nil {
		return nil, ErrStoreUnavailable
	}
	return s.analytics.LatestBatchSummary(ctx)
}

// Snapshots lists recorded analytics snapshots, newest first.
func (s *GrievanceService) Snapshots(ctx context.Context, limit int) ([]domain.Snapshot, error) {
	if s.analytics == nil {
		return nil, ErrStoreUnavailable
	}
	return s.analytics.ListSnapshots(ctx, limit)
}

// Stats returns aggregate counts over stored analyses.
func (s *GrievanceService) Stats(ctx context.Context) (*domain.Stats, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return s.store.Stats(ctx)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return database.DefaultListLimit
	}
	return min(limit, database.MaxListLimit)
}

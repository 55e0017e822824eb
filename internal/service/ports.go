// Package service ties the analysis pipeline to storage, search and caching.
package service

import (
	"context"

	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/search"
)

// GrievanceStore persists grievances and their analyses.
type GrievanceStore interface {
	InsertGrievance(ctx context.Context, g *domain.Grievance) (int64, error)
	InsertAnalysis(ctx context.Context, a *domain.AnalysisResult) (int64, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	ListWithAnalysis(ctx context.Context) ([]domain.GrievanceWithAnalysis, error)
	Recent(ctx context.Context, limit int) ([]domain.GrievanceWithAnalysis, error)
	Search(ctx context.Context, term string, limit int) ([]domain.GrievanceWithAnalysis, error)
	ByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.GrievanceWithAnalysis, error)
}

// AnalyticsStore persists batch dashboards and snapshots.
type AnalyticsStore interface {
	InsertBatchSummary(ctx context.Context, s *domain.BatchSummary) (int64, error)
	LatestBatchSummary(ctx context.Context) (*domain.BatchSummary, error)
	ListSnapshots(ctx context.Context, limit int) ([]domain.Snapshot, error)
}

// Indexer writes and queries the full-text index.
type Indexer interface {
	IndexGrievance(ctx context.Context, doc search.Document) error
	Search(ctx context.Context, term string, limit int) ([]domain.GrievanceWithAnalysis, error)
}

// DashboardCache caches the stored-history dashboard.
type DashboardCache interface {
	Get(ctx context.Context, key string) (*domain.Dashboard, bool, error)
	Set(ctx context.Context, key string, d *domain.Dashboard) error
	Invalidate(ctx context.Context) error
}

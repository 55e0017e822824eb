package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/search"
)

var errBoom = errors.New("boom")

type fakeStore struct {
	mu          sync.Mutex
	grievances  []*domain.Grievance
	analyses    []*domain.AnalysisResult
	failInsert  bool
	failAnalyse bool
	stats       *domain.Stats
	rows        []domain.GrievanceWithAnalysis
	searchTerm  string
	statsCalls  int
}

func (f *fakeStore) InsertGrievance(_ context.Context, g *domain.Grievance) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return 0, errBoom
	}
	g.ID = int64(len(f.grievances) + 1)
	f.grievances = append(f.grievances, g)
	return g.ID, nil
}

func (f *fakeStore) InsertAnalysis(_ context.Context, a *domain.AnalysisResult) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAnalyse {
		return 0, errBoom
	}
	a.ID = int64(len(f.analyses) + 100)
	f.analyses = append(f.analyses, a)
	return a.ID, nil
}

func (f *fakeStore) Stats(context.Context) (*domain.Stats, error) {
	f.statsCalls++
	return f.stats, nil
}

func (f *fakeStore) ListWithAnalysis(context.Context) ([]domain.GrievanceWithAnalysis, error) {
	return f.rows, nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]domain.GrievanceWithAnalysis, error) {
	return f.rows[:min(limit, len(f.rows))], nil
}

func (f *fakeStore) Search(_ context.Context, term string, _ int) ([]domain.GrievanceWithAnalysis, error) {
	f.searchTerm = term
	return f.rows, nil
}

func (f *fakeStore) ByCategory(_ context.Context, c domain.Category, _ int) ([]domain.GrievanceWithAnalysis, error) {
	var out []domain.GrievanceWithAnalysis
	for _, r := range f.rows {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAnalytics struct {
	batches []*domain.BatchSummary
	fail    bool
}

func (f *fakeAnalytics) InsertBatchSummary(_ context.Context, s *domain.BatchSummary) (int64, error) {
	if f.fail {
		return 0, errBoom
	}
	s.ID = int64(len(f.batches) + 1)
	f.batches = append(f.batches, s)
	return s.ID, nil
}

func (f *fakeAnalytics) LatestBatchSummary(context.Context) (*domain.BatchSummary, error) {
	if len(f.batches) == 0 {
		return nil, domain.ErrNotFound
	}
	return f.batches[len(f.batches)-1], nil
}

func (f *fakeAnalytics) ListSnapshots(context.Context, int) ([]domain.Snapshot, error) {
	return []domain.Snapshot{{ID: 1}}, nil
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    []search.Document
	fail    bool
	results []domain.GrievanceWithAnalysis
}

func (f *fakeIndex) IndexGrievance(_ context.Context, doc search.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBoom
	}
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int) ([]domain.GrievanceWithAnalysis, error) {
	if f.fail {
		return nil, errBoom
	}
	return f.results, nil
}

type fakeCache struct {
	entries     map[string]*domain.Dashboard
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*domain.Dashboard{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (*domain.Dashboard, bool, error) {
	d, ok := f.entries[key]
	return d, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, d *domain.Dashboard) error {
	f.entries[key] = d
	return nil
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.invalidated++
	f.entries = map[string]*domain.Dashboard{}
	return nil
}

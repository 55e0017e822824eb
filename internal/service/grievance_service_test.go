package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/service"
)

func records(texts ...string) []domain.RawRecord {
	out := make([]domain.RawRecord, len(texts))
	for i, t := range texts {
		out[i] = domain.NewRawRecord(t)
	}
	return out
}

func TestAnalyzeBatch_InMemory(t *testing.T) {
	t.Parallel()

	svc := service.NewGrievanceService(service.Config{})

	res, err := svc.AnalyzeBatch(context.Background(), records("Mess food is stale", "WiFi down"), service.BatchOptions{Persist: true})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Dashboard.TotalComplaints)
	assert.Empty(t, res.GrievanceIDs)
	assert.Zero(t, res.BatchID)
}

func TestAnalyzeBatch_NoInput(t *testing.T) {
	t.Parallel()

	svc := service.NewGrievanceService(service.Config{})

	_, err := svc.AnalyzeBatch(context.Background(), nil, service.BatchOptions{})
	require.ErrorIs(t, err, domain.ErrNoInput)
}

func TestAnalyzeBatch_Persists(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	analytics := &fakeAnalytics{}
	index := &fakeIndex{}
	cache := newFakeCache()
	svc := service.NewGrievanceService(service.Config{Store: store, Analytics: analytics, Index: index, Cache: cache})

	res, err := svc.AnalyzeBatch(context.Background(),
		records("Mess food is stale", "Exam schedule clash", "Mess food is stale"),
		service.BatchOptions{Persist: true, BatchName: "week-12", IPAddress: "10.1.1.1"})

	require.NoError(t, err)
	assert.Equal(t, "week-12", res.BatchName)
	assert.Equal(t, []int64{1, 2}, res.GrievanceIDs)
	assert.Equal(t, int64(1), res.BatchID)
	require.Len(t, store.analyses, 2)
	assert.Equal(t, domain.CategoryMess, store.analyses[0].Category)
	assert.Equal(t, "10.1.1.1", store.grievances[0].IPAddress)
	assert.Len(t, index.docs, 2)
	assert.Equal(t, 1, cache.invalidated)
	assert.Equal(t, []int64{1, 2}, analytics.batches[0].GrievanceIDs)
}

func TestAnalyzeBatch_GeneratesBatchName(t *testing.T) {
	t.Parallel()

	svc := service.NewGrievanceService(service.Config{Store: &fakeStore{}})

	res, err := svc.AnalyzeBatch(context.Background(), records("Fan broken"), service.BatchOptions{Persist: true})

	require.NoError(t, err)
	assert.Regexp(t, `^batch_\d{8}_[0-9a-f]{8}$`, res.BatchName)
}

func TestAnalyzeBatch_PersistenceFailureKeepsAnalysis(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	svc := service.NewGrievanceService(service.Config{Store: &fakeStore{failInsert: true}, Cache: cache})

	res, err := svc.AnalyzeBatch(context.Background(), records("Fan broken"), service.BatchOptions{Persist: true})

	var pErr *domain.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "insert_grievance", pErr.Op)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Dashboard.TotalComplaints)
	assert.Zero(t, cache.invalidated)
}

func TestAnalyzeBatch_BatchSummaryFailure(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	svc := service.NewGrievanceService(service.Config{Store: &fakeStore{}, Analytics: &fakeAnalytics{fail: true}, Cache: cache})

	res, err := svc.AnalyzeBatch(context.Background(), records("Fan broken"), service.BatchOptions{Persist: true})

	require.True(t, domain.IsPersistence(err))
	assert.Len(t, res.GrievanceIDs, 1)
	assert.Equal(t, 1, cache.invalidated, "stored grievances must evict the cached dashboard")
}

func TestSubmitGrievance(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	index := &fakeIndex{fail: true}
	svc := service.NewGrievanceService(service.Config{Store: store, Index: index})

	got, err := svc.SubmitGrievance(context.Background(), service.Submission{
		RawText:   "WiFi not working URGENT",
		IPAddress: "127.0.0.1",
		UserInfo:  map[string]any{"room": "B-12"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.GrievanceID)
	assert.Equal(t, int64(100), got.AnalysisID)
	assert.Equal(t, domain.UrgencyHigh, got.Complaint.Urgency)
	assert.Equal(t, "B-12", store.grievances[0].UserInfo["room"])
}

func TestSubmitGrievance_Errors(t *testing.T) {
	t.Parallel()

	_, err := service.NewGrievanceService(service.Config{}).SubmitGrievance(context.Background(), service.Submission{RawText: "x"})
	require.ErrorIs(t, err, service.ErrStoreUnavailable)

	svc := service.NewGrievanceService(service.Config{Store: &fakeStore{}})
	_, err = svc.SubmitGrievance(context.Background(), service.Submission{RawText: "   "})
	require.ErrorIs(t, err, domain.ErrNoInput)

	cache := newFakeCache()
	svc = service.NewGrievanceService(service.Config{Store: &fakeStore{failAnalyse: true}, Cache: cache})
	got, err := svc.SubmitGrievance(context.Background(), service.Submission{RawText: "Mess food cold"})
	require.True(t, domain.IsPersistence(err))
	assert.Equal(t, int64(1), got.GrievanceID)
	assert.Equal(t, domain.CategoryMess, got.Complaint.Category)
	assert.Equal(t, 1, cache.invalidated)

	cache = newFakeCache()
	svc = service.NewGrievanceService(service.Config{Store: &fakeStore{failInsert: true}, Cache: cache})
	_, err = svc.SubmitGrievance(context.Background(), service.Submission{RawText: "Mess food cold"})
	require.True(t, domain.IsPersistence(err))
	assert.Zero(t, cache.invalidated)
}

func storedFixture() *fakeStore {
	return &fakeStore{
		stats: &domain.Stats{
			TotalGrievances: 6,
			ByCategory: map[domain.Category]int{
				domain.CategoryHostel:    3,
				domain.CategoryMess:      1,
				domain.CategoryAcademics: 1,
				"Transport":              1,
			},
			BySentiment: map[domain.Sentiment]int{domain.SentimentNegative: 5, domain.SentimentPositive: 1},
			ByUrgency:   map[domain.Urgency]int{domain.UrgencyHigh: 2, domain.UrgencyLow: 4},
		},
		rows: []domain.GrievanceWithAnalysis{
			{ID: 1, RawText: "WiFi down", CleanText: "wifi down", Category: domain.CategoryHostel},
		},
	}
}

func TestStoredDashboard(t *testing.T) {
	t.Parallel()

	store := storedFixture()
	cache := newFakeCache()
	svc := service.NewGrievanceService(service.Config{Store: store, Cache: cache})

	d, err := svc.StoredDashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 6, d.TotalComplaints)
	assert.Equal(t, []string{"Hostel", "Mess", "Academics", "Transport"}, d.TopRecurringIssues)
	assert.Equal(t,
		"Database contains 6 total grievances. 5 show negative sentiment, and 2 are marked as high urgency. Top categories: Hostel, Mess, Academics.",
		d.WeeklySummary)
	require.Len(t, d.ProcessedComplaints, 1)

	_, err = svc.StoredDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.statsCalls, "second call served from cache")
}

func TestStoredNarrative_Empty(t *testing.T) {
	t.Parallel()

	got := service.StoredNarrative(&domain.Stats{}, nil)
	assert.Equal(t,
		"Database contains 0 total grievances. 0 show negative sentiment, and 0 are marked as high urgency. Top categories: none.",
		got)
}

func TestTopCategories_Limit(t *testing.T) {
	t.Parallel()

	counts := map[domain.Category]int{
		domain.CategoryAdministration: 4,
		domain.CategoryHostel:         4,
		domain.CategoryMess:           0,
	}
	assert.Equal(t, []string{"Hostel"}, service.TopCategories(counts, 1))
	assert.Equal(t, []string{"Hostel", "Administration"}, service.TopCategories(counts, 5))
}

func TestSearch(t *testing.T) {
	t.Parallel()

	store := storedFixture()
	ctx := context.Background()

	svc := service.NewGrievanceService(service.Config{Store: store})
	_, err := svc.Search(ctx, "  ", 10)
	require.ErrorIs(t, err, domain.ErrMalformedIngestion)

	got, err := svc.Search(ctx, " wifi ", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "wifi", store.searchTerm)

	indexed := []domain.GrievanceWithAnalysis{{ID: 9}, {ID: 10}}
	svc = service.NewGrievanceService(service.Config{Store: store, Index: &fakeIndex{results: indexed}})
	got, err = svc.Search(ctx, "wifi", 10)
	require.NoError(t, err)
	assert.Equal(t, indexed, got)

	store.searchTerm = ""
	svc = service.NewGrievanceService(service.Config{Store: store, Index: &fakeIndex{fail: true}})
	got, err = svc.Search(ctx, "fan", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "fan", store.searchTerm)
}

func TestByCategory(t *testing.T) {
	t.Parallel()

	svc := service.NewGrievanceService(service.Config{Store: storedFixture()})

	got, err := svc.ByCategory(context.Background(), "hostel", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ByCategory(context.Background(), "Parking", 10)
	require.ErrorIs(t, err, domain.ErrMalformedIngestion)
}

func TestStoreBackedReadsWithoutStore(t *testing.T) {
	t.Parallel()

	svc := service.NewGrievanceService(service.Config{})
	ctx := context.Background()

	_, err := svc.Recent(ctx, 10)
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
	_, err = svc.StoredDashboard(ctx)
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
	_, err = svc.LatestBatch(ctx)
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
	_, err = svc.Snapshots(ctx, 5)
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
	assert.False(t, svc.HasStore())
}

func TestDemo(t *testing.T) {
	t.Parallel()

	d, err := service.NewGrievanceService(service.Config{}).Demo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, d.TotalComplaints)
	assert.Equal(t, 5, d.CategoryCounts[domain.CategoryHostel])
}

package search_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/search"
)

type fakeCluster struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	exists   bool
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	f.bodies[key] = string(body)
	exists := f.exists
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/grievances":
		if exists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && r.URL.Path == "/grievances":
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case strings.HasPrefix(r.URL.Path, "/grievances/_doc/"):
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case r.URL.Path == "/grievances/_search":
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":7,"raw_text":"WiFi down","clean_text":"wifi down","category":"Hostel","sentiment":"Negative","urgency":"Low","submitted_at":"2026-03-01T09:00:00Z"}}]}}`))
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}
}

func newIndex(t *testing.T, cluster *fakeCluster) *search.Index {
	t.Helper()

	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return search.NewIndex(client, "", logger.NewNop())
}

func TestIndex_EnsureIndexCreatesMissingIndex(t *testing.T) {
	t.Parallel()

	cluster := &fakeCluster{bodies: map[string]string{}}
	idx := newIndex(t, cluster)

	require.NoError(t, idx.EnsureIndex(context.Background()))

	assert.Equal(t, []string{"HEAD /grievances", "PUT /grievances"}, cluster.requests)
	assert.Contains(t, cluster.bodies["PUT /grievances"], `"category":{"type":"keyword"}`)
}

func TestIndex_EnsureIndexSkipsExistingIndex(t *testing.T) {
	t.Parallel()

	cluster := &fakeCluster{bodies: map[string]string{}, exists: true}
	idx := newIndex(t, cluster)

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Equal(t, []string{"HEAD /grievances"}, cluster.requests)
}

func TestIndex_IndexGrievance(t *testing.T) {
	t.Parallel()

	cluster := &fakeCluster{bodies: map[string]string{}}
	idx := newIndex(t, cluster)

	doc := search.NewDocument(domain.GrievanceWithAnalysis{
		ID:        12,
		RawText:   "Mess food cold",
		CleanText: "mess food cold",
		Category:  domain.CategoryMess,
		Sentiment: domain.SentimentNegative,
		Urgency:   domain.UrgencyLow,
	})
	require.NoError(t, idx.IndexGrievance(context.Background(), doc))

	require.Len(t, cluster.requests, 1)
	assert.Equal(t, "PUT /grievances/_doc/12", cluster.requests[0])

	var sent search.Document
	require.NoError(t, json.Unmarshal([]byte(cluster.bodies["PUT /grievances/_doc/12"]), &sent))
	assert.Equal(t, "Mess", sent.Category)
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()

	cluster := &fakeCluster{bodies: map[string]string{}}
	idx := newIndex(t, cluster)

	got, err := idx.Search(context.Background(), "wifi", 10)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].ID)
	assert.Equal(t, domain.CategoryHostel, got[0].Category)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), got[0].SubmittedAt)
	assert.Contains(t, cluster.bodies["POST /grievances/_search"], `"multi_match"`)
}

package llmsummary_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/llmsummary"
)

func messagesServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "claude-test", req["model"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"down"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-test",
			"stop_reason": "end_turn",
			"content":     []map[string]any{{"type": "text", "text": content}},
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newSummarizer(t *testing.T, baseURL string) *llmsummary.Summarizer {
	t.Helper()
	s, err := llmsummary.New(llmsummary.Config{
		APIKey:    "test-key",
		Model:     "claude-test",
		MaxTokens: 200,
		BaseURL:   baseURL,
	})
	require.NoError(t, err)
	return s
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	srv := messagesServer(t, http.StatusOK, " Hostel maintenance and mess food quality dominate. ")
	got, err := newSummarizer(t, srv.URL).Summarize(context.Background(), "fan broken. food stale.", 30, 150)
	require.NoError(t, err)
	assert.Equal(t, "Hostel maintenance and mess food quality dominate.", got)
}

func TestSummarize_APIError(t *testing.T) {
	t.Parallel()

	srv := messagesServer(t, http.StatusInternalServerError, "")
	_, err := newSummarizer(t, srv.URL).Summarize(context.Background(), "x", 30, 150)
	require.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
}

func TestSummarize_EmptyText(t *testing.T) {
	t.Parallel()

	srv := messagesServer(t, http.StatusOK, "   ")
	_, err := newSummarizer(t, srv.URL).Summarize(context.Background(), "x", 30, 150)
	require.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
}

func TestNew_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := llmsummary.New(llmsummary.Config{})
	require.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
}

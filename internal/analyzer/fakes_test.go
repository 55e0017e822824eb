package analyzer_test

import (
	"context"
	"sync"

	"github.com/dj0804/GrievanceInsight/internal/domain"
)

type fakeScorer struct {
	mu    sync.Mutex
	label domain.Sentiment
	err   error
	block bool
	texts []string
}

func (f *fakeScorer) Score(ctx context.Context, text string) (domain.Sentiment, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.label, f.err
}

func (f *fakeScorer) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeSummarizer struct {
	summary string
	err     error
	text    string
	minLen  int
	maxLen  int
	called  bool
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, minLen, maxLen int) (string, error) {
	f.called = true
	f.text, f.minLen, f.maxLen = text, minLen, maxLen
	return f.summary, f.err
}

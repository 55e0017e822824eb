package analyzer

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// keywordMatcher finds which of a fixed set of keywords occur as substrings
// of a text in one pass.
type keywordMatcher struct {
	// Matcher.Match mutates internal state and is not safe for concurrent use.
	mu       sync.Mutex
	matcher  *ahocorasick.Matcher
	keywords []string
}

func newKeywordMatcher(keywords []string) *keywordMatcher {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			normalized = append(normalized, kw)
		}
	}
	m := &keywordMatcher{keywords: normalized}
	if len(normalized) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(normalized)
	}
	return m
}

// match returns the indices of keywords found in text.
func (m *keywordMatcher) match(text string) []int {
	if m.matcher == nil || text == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matcher.Match([]byte(text))
}

// contains reports whether any keyword occurs in text.
func (m *keywordMatcher) contains(text string) bool {
	return len(m.match(text)) > 0
}

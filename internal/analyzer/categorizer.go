package analyzer

import (
	"strings"

	"github.com/dj0804/GrievanceInsight/internal/domain"
)

// CategoryRule routes texts containing any of Keywords to Category.
type CategoryRule struct {
	Category domain.Category
	Keywords []string
}

// DefaultCategoryRules returns the routing table in priority order.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Category: domain.CategoryHostel, Keywords: []string{"hostel", "room", "fan", "water", "washroom", "leak", "roommate"}},
		{Category: domain.CategoryMess, Keywords: []string{"mess", "food", "chicken", "quality"}},
		{Category: domain.CategoryAcademics, Keywords: []string{"grade", "course", "portal", "registration"}},
		{Category: domain.CategoryAdministration, Keywords: []string{"staff", "administration", "office", "fees"}},
	}
}

// Categorizer assigns a category by substring keyword match. When several
// rules match, the earliest rule wins; when none do, the fallback is used.
type Categorizer struct {
	matcher  *keywordMatcher
	priority []int // keyword index -> rule index
	rules    []CategoryRule
	fallback domain.Category
}

// NewCategorizer builds a categorizer over rules with the given fallback.
func NewCategorizer(rules []CategoryRule, fallback domain.Category) *Categorizer {
	var (
		keywords []string
		priority []int
	)
	// The automaton keeps one index per pattern, so a keyword shared by two
	// rules is registered once under the higher priority rule.
	seen := make(map[string]struct{})
	for ruleIdx, rule := range rules {
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if _, dup := seen[kw]; dup || kw == "" {
				continue
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
			priority = append(priority, ruleIdx)
		}
	}
	return &Categorizer{
		matcher:  newKeywordMatcher(keywords),
		priority: priority,
		rules:    rules,
		fallback: fallback,
	}
}

// NewDefaultCategorizer uses DefaultCategoryRules with a Hostel fallback.
func NewDefaultCategorizer() *Categorizer {
	return NewCategorizer(DefaultCategoryRules(), domain.CategoryHostel)
}

// Categorize returns the category for an already normalized text.
func (c *Categorizer) Categorize(cleanText string) domain.Category {
	best := -1
	for _, hit := range c.matcher.match(cleanText) {
		if hit >= len(c.priority) {
			continue
		}
		if rule := c.priority[hit]; best == -1 || rule < best {
			best = rule
		}
	}
	if best == -1 {
		return c.fallback
	}
	return c.rules[best].Category
}

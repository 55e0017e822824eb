package analyzer

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTopIssues is how many recurring issues a dashboard shows.
const DefaultTopIssues = 3

const minTokenRunes = 3

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// TermCount is a token and how often it occurred.
type TermCount struct {
	Term  string
	Count int
}

// Tokenize splits text into lowercased word tokens.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// TopTerms counts the non-stopword tokens of texts and returns the n most
// frequent. Equal counts keep first-occurrence order.
func TopTerms(texts []string, n int) []TermCount {
	tokens := Tokenize(strings.Join(texts, " "))

	counts := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if !keepToken(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	ranked := make([]TermCount, len(order))
	for i, term := range order {
		ranked[i] = TermCount{Term: term, Count: counts[term]}
	}
	slices.SortStableFunc(ranked, func(a, b TermCount) int {
		return b.Count - a.Count
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ExtractTrends renders the top recurring terms of cleanTexts as dashboard
// phrases, most frequent first.
func ExtractTrends(cleanTexts []string) []string {
	terms := TopTerms(cleanTexts, DefaultTopIssues)
	issues := make([]string, 0, len(terms))
	for _, tc := range terms {
		issues = append(issues, FormatTrend(tc))
	}
	return issues
}

// FormatTrend renders one term as a dashboard phrase.
func FormatTrend(tc TermCount) string {
	return fmt.Sprintf(`Frequent topic: "%s" (mentioned %d times)`, capitalize(tc.Term), tc.Count)
}

func keepToken(tok string) bool {
	if utf8.RuneCountInString(tok) < minTokenRunes || isStopword(tok) {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// capitalize upper-cases the first rune only, so "2nd" stays "2nd".
func capitalize(word string) string {
	r, n := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToTitle(r)) + word[n:]
}

// Package analyzer implements the complaint analysis pipeline: normalization,
// categorization, tone estimation, trend extraction and batch summaries.
package analyzer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dj0804/GrievanceInsight/internal/domain"
)

// Normalize drops records whose raw text repeats an earlier record, then
// lowercases and trims the survivors. Input order is kept and records is not
// modified.
func Normalize(records []domain.RawRecord) []domain.Complaint {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.Complaint, 0, len(records))
	for _, r := range records {
		raw := r.Text()
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		out = append(out, domain.Complaint{
			RawText:   raw,
			CleanText: CleanText(raw),
		})
	}
	return out
}

// CleanText lowercases and trims one text. Punctuation is kept.
func CleanText(raw string) string {
	// Casers are stateful and not safe for concurrent use.
	return strings.TrimSpace(cases.Lower(language.Und).String(raw))
}

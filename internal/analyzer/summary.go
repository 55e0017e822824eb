package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/processor"
	"github.com/dj0804/GrievanceInsight/internal/telemetry"
)

const (
	stageSummary = "summary"

	DefaultSummaryMaxChars = 2000
	DefaultSummaryMinLen   = 30
	DefaultSummaryMaxLen   = 150
	// DefaultSummaryMinInput is the combined text length at or below which
	// the collaborator is skipped.
	DefaultSummaryMinInput = 50

	// EmptySummary is returned for a batch with no complaints.
	EmptySummary = "No complaints to summarize for this period."
)

// Summarizer condenses text into a short narrative between minLen and maxLen
// words.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error)
}

// SummaryOptions configures a SummaryBuilder. A nil Summarizer selects the
// template strategy.
type SummaryOptions struct {
	Summarizer Summarizer
	Limiter    *processor.RateLimiter
	MaxChars   int
	MinLength  int
	MaxLength  int
	MinInput   int
	Timeout    time.Duration
	Logger     logger.Logger
	Telemetry  *telemetry.Provider
}

// SummaryBuilder writes the narrative for a batch.
type SummaryBuilder struct {
	opts SummaryOptions
}

// NewSummaryBuilder creates a builder.
func NewSummaryBuilder(opts SummaryOptions) *SummaryBuilder {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultSummaryMaxChars
	}
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultSummaryMinLen
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultSummaryMaxLen
	}
	if opts.MinInput <= 0 {
		opts.MinInput = DefaultSummaryMinInput
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultExternalTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &SummaryBuilder{opts: opts}
}

// Strategy names the summary strategy in use.
func (b *SummaryBuilder) Strategy() string {
	if b.opts.Summarizer == nil {
		return StrategyFallback
	}
	return StrategyExternal
}

// Build returns the narrative for complaints.
func (b *SummaryBuilder) Build(ctx context.Context, complaints []domain.Complaint) string {
	if len(complaints) == 0 {
		return EmptySummary
	}
	if b.opts.Summarizer == nil {
		return TemplateSummary(complaints)
	}

	texts := make([]string, len(complaints))
	for i, c := range complaints {
		texts[i] = c.CleanText
	}
	combined := strings.Join(texts, " ")
	if utf8.RuneCountInString(combined) <= b.opts.MinInput {
		b.opts.Telemetry.RecordFallback(ctx, stageSummary, "short_input")
		return TemplateSummary(complaints)
	}

	summary, err := b.summarize(ctx, truncateRunes(combined, b.opts.MaxChars))
	if err != nil {
		b.opts.Logger.Warn("Summarization failed, using template",
			logger.String("stage", stageSummary),
			logger.Error(err),
		)
		b.opts.Telemetry.RecordFallback(ctx, stageSummary, fallbackReason(err))
		return TemplateSummary(complaints)
	}
	return summary
}

func (b *SummaryBuilder) summarize(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	if b.opts.Limiter != nil {
		if err := b.opts.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	start := time.Now()
	summary, err := b.opts.Summarizer.Summarize(ctx, text, b.opts.MinLength, b.opts.MaxLength)
	b.opts.Telemetry.RecordExternalCall(ctx, stageSummary, time.Since(start))
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary", domain.ErrCollaboratorUnavailable)
	}
	return summary, nil
}

// TemplateSummary is the deterministic narrative: it names the batch size
// and the dominant category.
func TemplateSummary(complaints []domain.Complaint) string {
	if len(complaints) == 0 {
		return EmptySummary
	}
	return fmt.Sprintf(
		"Analysis of %d complaints shows primary concerns in %s category. "+
			"Key issues include maintenance, quality control, and service delivery. "+
			"Immediate attention required for high-priority complaints.",
		len(complaints), strings.ToLower(string(DominantCategory(complaints))),
	)
}

// DominantCategory returns the most frequent category. Ties go to the
// category seen first.
func DominantCategory(complaints []domain.Complaint) domain.Category {
	counts := make(map[domain.Category]int)
	var (
		best      domain.Category
		bestCount int
	)
	for _, c := range complaints {
		counts[c.Category]++
	}
	for _, c := range complaints {
		if n := counts[c.Category]; n > bestCount {
			best, bestCount = c.Category, n
		}
	}
	return best
}

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	infraerrors "github.com/dj0804/GrievanceInsight/infrastructure/errors"
	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/processor"
	"github.com/dj0804/GrievanceInsight/internal/telemetry"
)

const (
	stageSentiment = "sentiment"

	DefaultSentimentMaxChars = 250
	DefaultExternalTimeout   = 3 * time.Second
)

var (
	positiveMarkers      = []string{"thank", "good", "great", "resolved"}
	highUrgencyMarkers   = []string{"urgent", "immediately", "emergency", "asap"}
	mediumUrgencyMarkers = []string{"week", "days", "still"}
)

// SentimentScorer labels the sentiment of a text.
type SentimentScorer interface {
	Score(ctx context.Context, text string) (domain.Sentiment, error)
}

// ToneOptions configures a ToneEstimator. A nil Scorer selects the rule
// strategy.
type ToneOptions struct {
	Scorer    SentimentScorer
	Limiter   *processor.RateLimiter
	MaxChars  int
	Timeout   time.Duration
	Logger    logger.Logger
	Telemetry *telemetry.Provider
}

// ToneEstimator assigns sentiment and urgency to normalized text.
type ToneEstimator struct {
	opts     ToneOptions
	positive *keywordMatcher
	high     *keywordMatcher
	medium   *keywordMatcher
}

// NewToneEstimator creates an estimator.
func NewToneEstimator(opts ToneOptions) *ToneEstimator {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultSentimentMaxChars
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultExternalTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &ToneEstimator{
		opts:     opts,
		positive: newKeywordMatcher(positiveMarkers),
		high:     newKeywordMatcher(highUrgencyMarkers),
		medium:   newKeywordMatcher(mediumUrgencyMarkers),
	}
}

// Strategy names the sentiment strategy in use.
func (t *ToneEstimator) Strategy() string {
	if t.opts.Scorer == nil {
		return StrategyFallback
	}
	return StrategyExternal
}

// Estimate returns the sentiment and urgency of cleanText.
func (t *ToneEstimator) Estimate(ctx context.Context, cleanText string) (domain.Sentiment, domain.Urgency) {
	return t.Sentiment(ctx, cleanText), t.Urgency(cleanText)
}

// Sentiment labels cleanText with the configured strategy.
func (t *ToneEstimator) Sentiment(ctx context.Context, cleanText string) domain.Sentiment {
	if t.opts.Scorer == nil {
		return t.RuleSentiment(cleanText)
	}
	if cleanText == "" {
		t.opts.Telemetry.RecordFallback(ctx, stageSentiment, "empty_text")
		return domain.SentimentNeutral
	}

	label, err := t.score(ctx, truncateRunes(cleanText, t.opts.MaxChars))
	if err != nil {
		t.opts.Logger.Warn("Sentiment scoring failed, using neutral",
			logger.String("stage", stageSentiment),
			logger.Error(err),
		)
		t.opts.Telemetry.RecordFallback(ctx, stageSentiment, fallbackReason(err))
		return domain.SentimentNeutral
	}
	return label
}

func (t *ToneEstimator) score(ctx context.Context, text string) (domain.Sentiment, error) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	if t.opts.Limiter != nil {
		if err := t.opts.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	start := time.Now()
	label, err := t.opts.Scorer.Score(ctx, text)
	t.opts.Telemetry.RecordExternalCall(ctx, stageSentiment, time.Since(start))
	if err != nil {
		return "", err
	}
	if label == "" {
		return "", fmt.Errorf("%w: empty label", domain.ErrCollaboratorUnavailable)
	}
	return label, nil
}

// RuleSentiment is the deterministic sentiment strategy: empty text is
// neutral, a positive marker makes it positive, anything else is negative.
func (t *ToneEstimator) RuleSentiment(cleanText string) domain.Sentiment {
	switch {
	case cleanText == "":
		return domain.SentimentNeutral
	case t.positive.contains(cleanText):
		return domain.SentimentPositive
	default:
		return domain.SentimentNegative
	}
}

// Urgency derives urgency from marker words.
func (t *ToneEstimator) Urgency(cleanText string) domain.Urgency {
	switch {
	case t.high.contains(cleanText):
		return domain.UrgencyHigh
	case t.medium.contains(cleanText):
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case isHTTPError(err):
		return "http_error"
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func isHTTPError(err error) bool {
	_, ok := infraerrors.StatusCode(err)
	return ok
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/processor"
	"github.com/dj0804/GrievanceInsight/internal/telemetry"
)

// Strategy names accepted by configuration.
const (
	StrategyExternal = "external"
	StrategyFallback = "fallback"
)

// Options wires a Pipeline. Nil components get deterministic defaults.
type Options struct {
	Categorizer *Categorizer
	Tone        *ToneEstimator
	Summary     *SummaryBuilder
	Pool        *processor.Pool
	Logger      logger.Logger
	Telemetry   *telemetry.Provider
}

// Pipeline turns a batch of raw records into a dashboard. It holds no
// per-batch state and is safe for concurrent use.
type Pipeline struct {
	categorizer *Categorizer
	tone        *ToneEstimator
	summary     *SummaryBuilder
	pool        *processor.Pool
	log         logger.Logger
	telemetry   *telemetry.Provider
}

// NewPipeline creates a pipeline.
func NewPipeline(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Categorizer == nil {
		opts.Categorizer = NewDefaultCategorizer()
	}
	if opts.Tone == nil {
		opts.Tone = NewToneEstimator(ToneOptions{Logger: opts.Logger, Telemetry: opts.Telemetry})
	}
	if opts.Summary == nil {
		opts.Summary = NewSummaryBuilder(SummaryOptions{Logger: opts.Logger, Telemetry: opts.Telemetry})
	}
	if opts.Pool == nil {
		opts.Pool = processor.NewPool(1, opts.Logger)
	}
	return &Pipeline{
		categorizer: opts.Categorizer,
		tone:        opts.Tone,
		summary:     opts.Summary,
		pool:        opts.Pool,
		log:         opts.Logger,
		telemetry:   opts.Telemetry,
	}
}

// Process analyses raw and aggregates the dashboard. It fails with
// domain.ErrNoInput when raw is empty or every record is blank.
func (p *Pipeline) Process(ctx context.Context, raw []domain.RawRecord) (*domain.Dashboard, error) {
	start := time.Now()
	ctx, span := p.telemetry.StartSpan(ctx, "pipeline.process", attribute.Int("records", len(raw)))
	defer span.End()

	complaints := Normalize(raw)
	if !hasText(complaints) {
		p.telemetry.RecordBatch(ctx, "no_input", 0, time.Since(start))
		return nil, domain.ErrNoInput
	}

	analysed, err := processor.Map(ctx, p.pool, complaints, p.analyse)
	if err != nil {
		p.telemetry.RecordBatch(ctx, "cancelled", len(complaints), time.Since(start))
		return nil, fmt.Errorf("analyse complaints: %w", err)
	}

	texts := make([]string, len(analysed))
	for i, c := range analysed {
		texts[i] = c.CleanText
		p.telemetry.RecordComplaint(ctx, string(c.Category))
	}

	_, trendSpan := p.telemetry.StartSpan(ctx, "pipeline.trends")
	issues := ExtractTrends(texts)
	trendSpan.End()

	summaryCtx, summarySpan := p.telemetry.StartSpan(ctx, "pipeline.summary",
		attribute.String("strategy", p.summary.Strategy()))
	summary := p.summary.Build(summaryCtx, analysed)
	summarySpan.End()

	dashboard := Aggregate(analysed, issues, summary)

	duration := time.Since(start)
	p.telemetry.RecordBatch(ctx, "ok", len(analysed), duration)
	p.log.Info("Batch analysed",
		logger.Int("submitted", len(raw)),
		logger.Int("distinct", len(analysed)),
		logger.String("sentiment_strategy", p.tone.Strategy()),
		logger.String("summary_strategy", p.summary.Strategy()),
		logger.Duration("duration", duration),
	)
	return dashboard, nil
}

// AnalyzeText analyses a single complaint. Blank text fails with
// domain.ErrNoInput.
func (p *Pipeline) AnalyzeText(ctx context.Context, raw string) (domain.Complaint, error) {
	c := domain.Complaint{RawText: raw, CleanText: CleanText(raw)}
	if c.CleanText == "" {
		return domain.Complaint{}, domain.ErrNoInput
	}
	c = p.analyse(ctx, c)
	p.telemetry.RecordComplaint(ctx, string(c.Category))
	return c, nil
}

func (p *Pipeline) analyse(ctx context.Context, c domain.Complaint) domain.Complaint {
	c.Category = p.categorizer.Categorize(c.CleanText)
	c.Sentiment, c.Urgency = p.tone.Estimate(ctx, c.CleanText)
	return c
}

// Aggregate assembles a dashboard from analysed complaints in one pass.
func Aggregate(complaints []domain.Complaint, issues []string, summary string) *domain.Dashboard {
	d := &domain.Dashboard{
		TotalComplaints:     len(complaints),
		CategoryCounts:      make(map[domain.Category]int),
		SentimentCounts:     make(map[domain.Sentiment]int),
		UrgencyCounts:       make(map[domain.Urgency]int),
		WeeklySummary:       summary,
		TopRecurringIssues:  issues,
		ProcessedComplaints: complaints,
	}
	if d.TopRecurringIssues == nil {
		d.TopRecurringIssues = []string{}
	}
	for _, c := range complaints {
		d.CategoryCounts[c.Category]++
		d.SentimentCounts[c.Sentiment]++
		d.UrgencyCounts[c.Urgency]++
	}
	return d
}

func hasText(complaints []domain.Complaint) bool {
	for _, c := range complaints {
		if c.CleanText != "" {
			return true
		}
	}
	return false
}

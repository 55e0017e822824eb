package bootstrap

import (
	"github.com/dj0804/GrievanceInsight/infrastructure/circuitbreaker"
	infralogger "github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/analyzer"
	"github.com/dj0804/GrievanceInsight/internal/config"
	"github.com/dj0804/GrievanceInsight/internal/llmsummary"
	"github.com/dj0804/GrievanceInsight/internal/mlclient"
	"github.com/dj0804/GrievanceInsight/internal/processor"
	"github.com/dj0804/GrievanceInsight/internal/telemetry"
)

// NewPipeline builds the analysis pipeline for the configured strategies.
// The ML sidecar scores sentiment; summaries come from the hosted model when
// an API key is set and from the sidecar otherwise.
func NewPipeline(cfg *config.Config, log infralogger.Logger, tp *telemetry.Provider) *analyzer.Pipeline {
	a := cfg.Analysis
	limiter := processor.NewRateLimiter(a.RateLimitRPS, 0, log)

	var ml *mlclient.Client
	sidecar := func() *mlclient.Client {
		if ml == nil {
			breaker := circuitbreaker.New(circuitbreaker.Config{
				FailureThreshold: cfg.ML.FailureThreshold,
				Timeout:          cfg.ML.OpenTimeout,
				OnStateChange: func(from, to circuitbreaker.State) {
					log.Warn("ML sidecar circuit changed",
						infralogger.String("from", from.String()),
						infralogger.String("to", to.String()),
					)
				},
			})
			ml = mlclient.NewClient(cfg.ML.URL, breaker)
		}
		return ml
	}

	toneOpts := analyzer.ToneOptions{
		Limiter:   limiter,
		MaxChars:  a.SentimentMaxChars,
		Timeout:   a.ExternalTimeout,
		Logger:    log,
		Telemetry: tp,
	}
	if a.SentimentStrategy == config.StrategyExternal {
		toneOpts.Scorer = sidecar()
	}

	summaryOpts := analyzer.SummaryOptions{
		Limiter:   limiter,
		MaxChars:  a.SummaryMaxChars,
		MinLength: a.SummaryMinLen,
		MaxLength: a.SummaryMaxLen,
		MinInput:  a.SummaryMinInput,
		Timeout:   a.ExternalTimeout,
		Logger:    log,
		Telemetry: tp,
	}
	if a.SummaryStrategy == config.StrategyExternal {
		summaryOpts.Summarizer = newSummarizer(cfg, log, sidecar)
	}

	log.Info("Analysis pipeline configured",
		infralogger.String("sentiment_strategy", a.SentimentStrategy),
		infralogger.String("summary_strategy", a.SummaryStrategy),
		infralogger.Int("concurrency", a.Concurrency),
	)

	return analyzer.NewPipeline(analyzer.Options{
		Tone:      analyzer.NewToneEstimator(toneOpts),
		Summary:   analyzer.NewSummaryBuilder(summaryOpts),
		Pool:      processor.NewPool(a.Concurrency, log),
		Logger:    log,
		Telemetry: tp,
	})
}

func newSummarizer(cfg *config.Config, log infralogger.Logger, sidecar func() *mlclient.Client) analyzer.Summarizer {
	if cfg.LLM.APIKey == "" {
		return sidecar()
	}
	s, err := llmsummary.New(llmsummary.Config{
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		log.Warn("Hosted summarizer unavailable, using ML sidecar", infralogger.Error(err))
		return sidecar()
	}
	log.Info("Hosted summarizer enabled",
		infralogger.String("provider", cfg.LLM.Provider),
		infralogger.String("model", cfg.LLM.Model),
	)
	return s
}

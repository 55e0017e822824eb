// Package telemetry provides OpenTelemetry instrumentation for the grievance service.
// It exports Prometheus metrics and provides tracing capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "grievance-insight"

// Metrics holds all grievance Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	ComplaintsProcessed *prometheus.CounterVec
	Batches             *prometheus.CounterVec
	BatchSize           prometheus.Histogram
	PipelineDuration    prometheus.Histogram

	// External collaborator metrics
	Fallbacks            *prometheus.CounterVec
	ExternalCallDuration *prometheus.HistogramVec

	// Storage metrics
	PersistenceFailures *prometheus.CounterVec
	CacheLookups        *prometheus.CounterVec
	SnapshotsRecorded   prometheus.Counter

	// HTTP metrics
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
	HTTPActiveRequests prometheus.Gauge
}

// Provider wraps telemetry providers. A nil *Provider records nothing.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider initializes telemetry with Prometheus metrics on a fresh registry.
func NewProvider() *Provider {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(registry)),
		registry: registry,
	}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func initMetrics(factory promauto.Factory) *Metrics {
	m := &Metrics{}
	initPipelineMetrics(factory, m)
	initExternalMetrics(factory, m)
	initStorageMetrics(factory, m)
	initHTTPMetrics(factory, m)
	return m
}

func initPipelineMetrics(factory promauto.Factory, m *Metrics) {
	m.ComplaintsProcessed = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "grievance_complaints_processed_total",
		Help: "Total complaints analysed, by assigned category",
	}, []string{"category"})

	m.Batches = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "grievance_batches_total",
		Help: "Total batches submitted, by outcome",
	}, []string{"outcome"})

	m.BatchSize = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "grievance_batch_size",
		Help:    "Number of distinct complaints per batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
	})

	m.PipelineDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "grievance_pipeline_duration_seconds",
		Help:    "Time to analyse one batch",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
	})
}

func initExternalMetrics(factory promauto.Factory, m *Metrics) {
	m.Fallbacks = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "grievance_fallback_total",
		Help: "Times a stage fell back to its deterministic strategy",
	}, []string{"stage", "reason"})

	m.ExternalCallDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grievance_external_call_duration_seconds",
		Help:    "Latency of scoring and summarization collaborator calls",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"stage"})
}

func initStorageMetrics(factory promauto.Factory, m *Metrics) {
	m.PersistenceFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "grievance_persistence_failures_total",
		Help: "Storage failures, by operation",
	}, []string{"operation"})

	m.CacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "grievance_cache_lookups_total",
		Help: "Dashboard cache lookups, by result",
	}, []string{"result"})

	m.SnapshotsRecorded = factory.NewCounter(prometheus.CounterOpts{
		Name: "grievance_snapshots_recorded_total",
		Help: "System analytics snapshots written by the scheduler",
	})
}

// RecordBatch records a finished batch.
func (p *Provider) RecordBatch(ctx context.Context, outcome string, size int, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.Batches.WithLabelValues(outcome).Inc()
	if size > 0 {
		p.Metrics.BatchSize.Observe(float64(size))
	}
	p.Metrics.PipelineDuration.Observe(duration.Seconds())
}

// RecordComplaint counts one analysed complaint.
func (p *Provider) RecordComplaint(ctx context.Context, category string) {
	if p == nil {
		return
	}
	p.Metrics.ComplaintsProcessed.WithLabelValues(category).Inc()
}

// RecordFallback counts a fallback to the deterministic strategy.
func (p *Provider) RecordFallback(ctx context.Context, stage, reason string) {
	if p == nil {
		return
	}
	p.Metrics.Fallbacks.WithLabelValues(stage, reason).Inc()
}

// RecordExternalCall records collaborator latency.
func (p *Provider) RecordExternalCall(ctx context.Context, stage string, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.ExternalCallDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordPersistenceFailure counts a storage failure.
func (p *Provider) RecordPersistenceFailure(ctx context.Context, operation string) {
	if p == nil {
		return
	}
	p.Metrics.PersistenceFailures.WithLabelValues(operation).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (p *Provider) RecordCacheLookup(ctx context.Context, hit bool) {
	if p == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	p.Metrics.CacheLookups.WithLabelValues(result).Inc()
}

// RecordSnapshot counts a recorded snapshot.
func (p *Provider) RecordSnapshot(ctx context.Context) {
	if p == nil {
		return
	}
	p.Metrics.SnapshotsRecorded.Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if p == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

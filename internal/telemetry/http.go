package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute labels requests that hit no registered route, keeping
// label cardinality bounded.
const unmatchedRoute = "unmatched"

func initHTTPMetrics(factory promauto.Factory, m *Metrics) {
	m.HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "grievance_http_requests_total",
		Help: "HTTP requests, by method, route and status",
	}, []string{"method", "route", "status"})

	m.HTTPRequestLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grievance_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	m.HTTPActiveRequests = factory.NewGauge(prometheus.GaugeOpts{
		Name: "grievance_http_active_requests",
		Help: "HTTP requests currently in flight",
	})
}

// Middleware records request counts and latency per route template.
func (p *Provider) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p == nil {
			c.Next()
			return
		}

		start := time.Now()
		p.Metrics.HTTPActiveRequests.Inc()
		defer p.Metrics.HTTPActiveRequests.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		p.Metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		p.Metrics.HTTPRequestLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

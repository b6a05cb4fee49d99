// Package monitoring provides Prometheus metrics and OpenTelemetry tracing
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/application/planner"
)

const namespace = "chefplanner"

// MetricsCollector handles Prometheus metrics collection on its own registry
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Planner metrics
	variantsGenerated  *prometheus.CounterVec
	generationFailures *prometheus.CounterVec
	menuHealth         prometheus.Histogram
	sessionsActive     prometheus.Gauge
	proposalCache      *prometheus.CounterVec
	datasetReloads     *prometheus.CounterVec
}

var _ planner.Metrics = (*MetricsCollector)(nil)

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: reg,

		// HTTP metrics
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status_code"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),

		// Planner metrics
		variantsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "variants_generated_total",
				Help:      "Recipe variants generated, by style",
			},
			[]string{"style"},
		),
		generationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_failures_total",
				Help:      "Proposal requests that produced no variant, by reason",
			},
			[]string{"reason"},
		),
		menuHealth: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "menu_health_score",
				Help:      "Menu health scores computed by analysis requests",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
		sessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Planning sessions currently stored",
			},
		),
		proposalCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "proposal_cache_total",
				Help:      "Proposal cache lookups, by result",
			},
			[]string{"result"},
		),
		datasetReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_reloads_total",
				Help:      "Dataset loads, by source",
			},
			[]string{"source"},
		),
	}
}

// HTTPMiddleware records request counts, latencies and sizes per chi route pattern
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)

		m.httpRequestsTotal.WithLabelValues(r.Method, route, code).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
		m.httpResponseSize.WithLabelValues(r.Method, route).Observe(float64(ww.BytesWritten()))
	})
}

func (m *MetricsCollector) VariantsGenerated(style string) {
	m.variantsGenerated.WithLabelValues(style).Inc()
}

func (m *MetricsCollector) GenerationFailed(reason string) {
	m.generationFailures.WithLabelValues(reason).Inc()
}

func (m *MetricsCollector) MenuHealth(score float64) {
	m.menuHealth.Observe(score)
}

func (m *MetricsCollector) ProposalCache(result string) {
	m.proposalCache.WithLabelValues(result).Inc()
}

func (m *MetricsCollector) SessionsActive(n int) {
	m.sessionsActive.Set(float64(n))
}

// DatasetLoaded counts a successful dataset load
func (m *MetricsCollector) DatasetLoaded(source string) {
	m.datasetReloads.WithLabelValues(source).Inc()
}

// Registry exposes the collector's registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Compile outcomes reported to Metrics.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusEmpty    = "empty"
	StatusCacheHit = "cache_hit"
)

// Metrics records pipeline measurements.
type Metrics interface {
	ObserveCompile(status string, elapsed time.Duration)
	ObservePages(pages int)
	IncDegraded()
	ObserveValidation(errors int)
}

type NopMetrics struct{}

func (NopMetrics) ObserveCompile(string, time.Duration) {}
func (NopMetrics) ObservePages(int)                     {}
func (NopMetrics) IncDegraded()                         {}
func (NopMetrics) ObserveValidation(int)                {}

// PrometheusMetrics exports pipeline metrics through client_golang.
type PrometheusMetrics struct {
	compilesTotal   *prometheus.CounterVec
	compileDuration prometheus.Histogram
	pagesPerPDF     prometheus.Histogram
	degradedTotal   prometheus.Counter
	validationErrs  prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewPrometheusMetrics registers collectors with a fresh registry.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	return NewPrometheusMetricsWithRegistry(namespace, reg, reg)
}

// NewPrometheusMetricsWithRegistry registers collectors with the given registerer.
func NewPrometheusMetricsWithRegistry(namespace string, registerer prometheus.Registerer, gatherer prometheus.Gatherer) *PrometheusMetrics {
	pm := &PrometheusMetrics{gatherer: gatherer}

	pm.compilesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pdf",
		Name:      "compiles_total",
		Help:      "Total number of compile requests by outcome",
	}, []string{"status"})

	pm.compileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pdf",
		Name:      "compile_duration_seconds",
		Help:      "Time spent compiling documents to PDF",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	pm.pagesPerPDF = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pdf",
		Name:      "pages",
		Help:      "Pages per generated PDF",
		Buckets:   []float64{1, 2, 3, 4, 5, 8, 13, 21},
	})

	pm.degradedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "latex",
		Name:      "degraded_total",
		Help:      "Transpilations that fell back to escaped plain text",
	})

	pm.validationErrs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "latex",
		Name:      "validation_errors",
		Help:      "Validation messages per validated document",
		Buckets:   []float64{0, 1, 2, 3, 5},
	})

	registerer.MustRegister(
		pm.compilesTotal,
		pm.compileDuration,
		pm.pagesPerPDF,
		pm.degradedTotal,
		pm.validationErrs,
	)
	return pm
}

func (pm *PrometheusMetrics) ObserveCompile(status string, elapsed time.Duration) {
	pm.compilesTotal.WithLabelValues(status).Inc()
	pm.compileDuration.Observe(elapsed.Seconds())
}

func (pm *PrometheusMetrics) ObservePages(pages int) { pm.pagesPerPDF.Observe(float64(pages)) }

func (pm *PrometheusMetrics) IncDegraded() { pm.degradedTotal.Inc() }

func (pm *PrometheusMetrics) ObserveValidation(errors int) { pm.validationErrs.Observe(float64(errors)) }

// Handler serves the registry in the Prometheus exposition format.
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.gatherer, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (pm *PrometheusMetrics) Gatherer() prometheus.Gatherer { return pm.gatherer }

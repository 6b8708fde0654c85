// Package metrics exposes Prometheus collectors for the HTTP surface and
// the analysis pipeline on a private registry.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume"

// OutcomeSuccess labels analyses that completed the whole pipeline. Failed
// analyses are labeled with their error kind.
const OutcomeSuccess = "success"

type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	uploadBytes      prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Resume analyses by outcome.",
		}, []string{"outcome"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Resume analysis latency by outcome. The AI call dominates.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "upload_bytes",
			Help:      "Size of accepted resume uploads.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.analysesTotal,
		m.analysisDuration,
		m.uploadBytes,
	)

	return m
}

// The API has only fixed routes; everything else collapses to one label
// value so scanners cannot blow up the cardinality.
var knownPaths = map[string]struct{}{
	"/":                   {},
	"/metrics":            {},
	"/api/resume/health":  {},
	"/api/resume/analyze": {},
}

func normalizePath(path string) string {
	if _, ok := knownPaths[path]; ok {
		return path
	}
	return "/unmatched"
}

// Middleware records count and latency for every request.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := normalizePath(c.Path())
		m.requestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())

		return err
	}
}

// ObserveAnalysis records one analyze request with its outcome.
func (m *Metrics) ObserveAnalysis(outcome string, duration time.Duration) {
	m.analysesTotal.WithLabelValues(outcome).Inc()
	m.analysisDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveUploadBytes records the size of an accepted resume upload.
func (m *Metrics) ObserveUploadBytes(n int) {
	m.uploadBytes.Observe(float64(n))
}

// Handler serves the private registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

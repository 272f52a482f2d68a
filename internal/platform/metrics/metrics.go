// Package metrics exposes Prometheus instrumentation for postings, document locks and health checks.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
)

// Metrics holds the ledger's collectors.
type Metrics struct {
	registry       *prometheus.Registry
	postings       *prometheus.CounterVec
	lockWait       *prometheus.HistogramVec
	healthFindings *prometheus.GaugeVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		postings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bizledger",
			Name:      "postings_total",
			Help:      "Ledger postings by kind and outcome.",
		}, []string{"kind", "outcome"}),
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bizledger",
			Name:      "document_lock_wait_seconds",
			Help:      "Time spent waiting for a document lock.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"result"}),
		healthFindings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bizledger",
			Name:      "health_findings",
			Help:      "Findings of the last integrity check run per tenant.",
		}, []string{"tenant", "check"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	m.registry.MustRegister(m.postings, m.lockWait, m.healthFindings, m.httpRequests, m.httpDuration)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePosting counts one posting attempt. err takes precedence over outcome.
func (m *Metrics) ObservePosting(kind string, outcome domain.PostOutcome, err error) {
	if m == nil {
		return
	}
	m.postings.WithLabelValues(kind, outcomeLabel(outcome, err)).Inc()
}

// SetHealthFindings records the finding count of one check.
func (m *Metrics) SetHealthFindings(tenantID string, check domain.HealthCheck, n int) {
	if m == nil {
		return
	}
	m.healthFindings.WithLabelValues(tenantID, string(check)).Set(float64(n))
}

func outcomeLabel(outcome domain.PostOutcome, err error) string {
	switch {
	case err == nil:
		return string(outcome)
	case errors.Is(err, apperrors.ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, apperrors.ErrConfiguration):
		return "CONFIGURATION_ERROR"
	case errors.Is(err, apperrors.ErrConcurrency):
		return "CONCURRENCY_ERROR"
	case errors.Is(err, apperrors.ErrNotFound):
		return "NOT_FOUND"
	default:
		return "ERROR"
	}
}

// GinMiddleware records request counts and latencies keyed by route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// InstrumentLocker wraps a DocumentLocker, timing how long callers wait for ownership.
func (m *Metrics) InstrumentLocker(next portsrepo.DocumentLocker) portsrepo.DocumentLocker {
	return &instrumentedLocker{next: next, hist: m.lockWait}
}

type instrumentedLocker struct {
	next portsrepo.DocumentLocker
	hist *prometheus.HistogramVec
}

func (l *instrumentedLocker) WithDocumentLock(ctx context.Context, doc domain.DocumentRef, fn func(ctx context.Context) error) error {
	start := time.Now()
	acquired := false
	err := l.next.WithDocumentLock(ctx, doc, func(ctx context.Context) error {
		acquired = true
		l.hist.WithLabelValues("acquired").Observe(time.Since(start).Seconds())
		return fn(ctx)
	})
	if !acquired && errors.Is(err, apperrors.ErrConcurrency) {
		l.hist.WithLabelValues("busy").Observe(time.Since(start).Seconds())
	}
	return err
}

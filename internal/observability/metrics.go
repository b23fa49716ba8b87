package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the ledger API.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	ledgerActions     *prometheus.CounterVec
	statementRuns     *prometheus.CounterVec
	statementWarnings *prometheus.CounterVec
}

// NewMetrics builds a private registry with HTTP and ledger collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_ledger_actions_total",
		Help: "Committed journal mutations by action.",
	}, []string{"action"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_statement_runs_total",
		Help: "Generated financial statements by type.",
	}, []string{"type"})
	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_statement_warnings_total",
		Help: "Warnings attached to generated statements by type.",
	}, []string{"type"})
	registry.MustRegister(requests, duration, actions, runs, warnings)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		ledgerActions:     actions,
		statementRuns:     runs,
		statementWarnings: warnings,
	}
}

// RecordLedgerAction counts a committed journal mutation.
func (m *Metrics) RecordLedgerAction(action string) {
	if m == nil {
		return
	}
	m.ledgerActions.WithLabelValues(action).Inc()
}

// RecordStatementRun counts a persisted statement run and its warnings.
func (m *Metrics) RecordStatementRun(statementType string, warnings int) {
	if m == nil {
		return
	}
	m.statementRuns.WithLabelValues(statementType).Inc()
	if warnings > 0 {
		m.statementWarnings.WithLabelValues(statementType).Add(float64(warnings))
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for collectors owned by other packages.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

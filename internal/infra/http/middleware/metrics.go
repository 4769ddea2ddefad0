package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_validations_total",
			Help: "Total number of lead field validations by verdict",
		},
		[]string{"field", "verdict"},
	)

	leadDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_dispatches_total",
			Help: "Total number of lead dispatches per downstream target",
		},
		[]string{"target", "outcome"},
	)

	leadsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_submitted_total",
			Help: "Total number of leads processed",
		},
		[]string{"status"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		path := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps the path label bounded to registered routes.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// PrometheusRecorder feeds pipeline events into the lead counters.
type PrometheusRecorder struct{}

func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{}
}

func (PrometheusRecorder) RecordValidation(field string, outcome entity.ValidationOutcome) {
	leadValidations.WithLabelValues(field, outcome.Verdict.Tag()).Inc()
}

func (PrometheusRecorder) RecordDispatch(result entity.SubmissionResult) {
	leadDispatches.WithLabelValues(result.Target, string(result.Status)).Inc()
}

func (PrometheusRecorder) RecordSubmission(delivered bool) {
	status := "delivered"
	if !delivered {
		status = "rejected"
	}
	leadsSubmitted.WithLabelValues(status).Inc()
}

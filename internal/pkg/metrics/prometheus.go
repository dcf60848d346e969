package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pulse",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Post submission metrics
	postSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "posts",
			Name:      "submissions_total",
			Help:      "Post submissions by outcome",
		},
		[]string{"outcome"},
	)

	policyDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "policy",
			Name:      "denials_total",
			Help:      "Usage policy denials by reason",
		},
		[]string{"reason"},
	)

	quotaUnitsCharged = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "posts",
			Name:      "quota_units_charged_total",
			Help:      "Quota units charged for accepted posts",
		},
	)

	// Billing metrics
	billingEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "billing",
			Name:      "events_total",
			Help:      "Payment provider events by type and outcome",
		},
		[]string{"event_type", "status"},
	)

	webhookDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "billing",
			Name:      "webhook_duration_seconds",
			Help:      "Time spent handling a payment provider webhook",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Maintenance metrics
	maintenanceAffected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "maintenance",
			Name:      "accounts_affected_total",
			Help:      "Accounts mutated by maintenance sweeps",
		},
		[]string{"job"},
	)

	maintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "maintenance",
			Name:      "runs_total",
			Help:      "Maintenance sweep runs by job and status",
		},
		[]string{"job", "status"},
	)

	// Upstream provider metrics
	upstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "External provider call duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "operation", "status"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPostSubmission records the outcome of one submit call. units is
// the quota charged and is only counted for accepted posts.
func RecordPostSubmission(outcome string, units int) {
	postSubmissionsTotal.WithLabelValues(outcome).Inc()
	if outcome == "accepted" && units > 0 {
		quotaUnitsCharged.Add(float64(units))
	}
}

// RecordPolicyDenial records a usage policy denial
func RecordPolicyDenial(reason string) {
	policyDenialsTotal.WithLabelValues(reason).Inc()
}

// RecordBillingEvent records a processed payment provider event
func RecordBillingEvent(eventType, status string) {
	billingEventsTotal.WithLabelValues(eventType, status).Inc()
}

// ObserveWebhook records how long a webhook request took
func ObserveWebhook(d time.Duration) {
	webhookDuration.Observe(d.Seconds())
}

// RecordMaintenanceRun records a maintenance sweep and the accounts it changed
func RecordMaintenanceRun(job string, affected int64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	maintenanceRuns.WithLabelValues(job, status).Inc()
	if err == nil && affected > 0 {
		maintenanceAffected.WithLabelValues(job).Add(float64(affected))
	}
}

// RecordUpstreamCall records an external provider call
func RecordUpstreamCall(provider, operation string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	upstreamCallDuration.WithLabelValues(provider, operation, status).Observe(d.Seconds())
}

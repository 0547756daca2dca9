package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"method", "endpoint"},
	)

	// Business metrics
	inquirySubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_submissions_total",
			Help: "Total number of inquiry submissions by outcome",
		},
		[]string{"outcome"}, // success, invalid, delivery_failed, internal_error
	)

	emailSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_sends_total",
			Help: "Total number of outbound notification emails",
		},
		[]string{"kind", "status"}, // kind: support_notice, user_confirmation; status: sent, failed
	)

	emailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_send_duration_seconds",
			Help:    "Email provider call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inquiry_rate_limited_total",
			Help: "Total number of inquiry submissions rejected by the rate limiter",
		},
	)
)

// OtherEndpoint labels requests to paths outside the known routes.
const OtherEndpoint = "other"

// PrometheusMiddleware creates a middleware that records Prometheus metrics.
// Only the given routes are used as endpoint labels; every other path is
// recorded as OtherEndpoint so the series count stays bounded.
func PrometheusMiddleware(next http.Handler, routes ...string) http.Handler {
	known := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		known[route] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip metrics endpoint itself
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		method := methodLabel(r.Method)
		endpoint := OtherEndpoint
		if _, ok := known[r.URL.Path]; ok {
			endpoint = r.URL.Path
		}

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		if r.ContentLength > 0 {
			httpRequestSize.WithLabelValues(method, endpoint).Observe(float64(r.ContentLength))
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
		httpRequestDuration.WithLabelValues(method, endpoint, statusCode).Observe(duration)
	})
}

func methodLabel(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return m
	}
	return "OTHER"
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecordInquiry records the outcome of one inquiry submission
func RecordInquiry(outcome string) {
	inquirySubmissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordEmailSend records one outbound email attempt
func RecordEmailSend(kind string, sent bool, duration time.Duration) {
	status := "failed"
	if sent {
		status = "sent"
	}
	emailSendsTotal.WithLabelValues(kind, status).Inc()
	emailSendDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordRateLimited records a submission rejected by the rate limiter
func RecordRateLimited() {
	rateLimitedTotal.Inc()
}

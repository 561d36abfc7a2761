package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modelcat_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modelcat_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	modelListFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modelcat_model_list_fetches_total",
			Help: "Total number of model catalog fetches",
		},
		[]string{"provider", "status"},
	)

	gatewayForwards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modelcat_gateway_forwards_total",
			Help: "Total number of requests forwarded to providers",
		},
		[]string{"provider", "status"},
	)
)

// RecordModelListFetch counts one catalog refresh outcome.
func RecordModelListFetch(provider, status string) {
	modelListFetches.WithLabelValues(provider, status).Inc()
}

// RecordGatewayForward counts one forwarded provider request.
func RecordGatewayForward(provider string, statusCode int) {
	gatewayForwards.WithLabelValues(provider, strconv.Itoa(statusCode)).Inc()
}

func Metrics() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" || r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// Use the route pattern rather than the raw path to keep
			// label cardinality bounded.
			endpoint := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}

			status := strconv.Itoa(ww.Status())
			httpRequestsTotal.WithLabelValues(r.Method, endpoint, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, endpoint, status).
				Observe(time.Since(start).Seconds())
		})
	}
}

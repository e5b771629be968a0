package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics holds the Prometheus instruments owned by one Server.
type serverMetrics struct {
	// chatRequestsTotal counts chat requests by outcome (ok, error, timeout).
	chatRequestsTotal *prometheus.CounterVec
	// chatDurationSeconds observes full chat round-trip latency by outcome.
	chatDurationSeconds *prometheus.HistogramVec
	// chatActiveRequests tracks chat requests currently in flight.
	chatActiveRequests prometheus.Gauge
	// httpRequestsTotal counts all HTTP requests by method, handler, and status.
	httpRequestsTotal *prometheus.CounterVec
	// httpDurationSeconds observes HTTP handler latency by method and handler.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers the server's instruments with reg.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		chatRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopsense",
			Name:      "chat_requests_total",
			Help:      "Total chat requests by outcome.",
		}, []string{"outcome"}),

		chatDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopsense",
			Name:      "chat_duration_seconds",
			Help:      "Chat request duration in seconds, generation included.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),

		chatActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "shopsense",
			Name:      "chat_active_requests",
			Help:      "Chat requests currently being processed.",
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopsense",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, handler, and status.",
		}, []string{"method", "handler", "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopsense",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "handler"}),
	}
}

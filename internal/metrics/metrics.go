package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andressep95/identity-service/internal/domain"
)

const (
	ProtocolIssue = "issue"
	ProtocolGrant = "grant"

	resultSuccess = "SUCCESS"
)

// Metrics holds the collectors of the service, registered on a single registry
type Metrics struct {
	registry *prometheus.Registry

	tokenRequests *prometheus.CounterVec
	tokenDuration *prometheus.HistogramVec

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		tokenRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "identity_token_requests_total",
				Help: "Token protocol requests by outcome.",
			},
			[]string{"protocol", "result"},
		),
		tokenDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "identity_token_duration_seconds",
				Help:    "Token protocol latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"protocol"},
		),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}

	m.registry.MustRegister(
		m.tokenRequests, m.tokenDuration,
		m.httpInFlight, m.httpRequestsTotal, m.httpRequestDuration,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveToken records one Issue or Grant call. The result label is the error code, which keeps
// its cardinality bounded by the error taxonomy.
func (m *Metrics) ObserveToken(protocol string, err error, elapsed time.Duration) {
	result := resultSuccess
	if err != nil {
		result = domain.ErrorCode(err)
	}

	m.tokenRequests.WithLabelValues(protocol, result).Inc()
	m.tokenDuration.WithLabelValues(protocol).Observe(elapsed.Seconds())
}

// TrackRequest marks a request in flight and returns the func that records its outcome.
func (m *Metrics) TrackRequest() func(method, path, status string, elapsed time.Duration) {
	m.httpInFlight.Inc()
	return func(method, path, status string, elapsed time.Duration) {
		m.httpRequestDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
		m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.httpInFlight.Dec()
	}
}

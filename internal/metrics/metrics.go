// Package metrics exports Prometheus collectors for the recommender client,
// the circuit breaker, form sessions and the HTTP surface.
//
// Every Metrics value owns its registry so tests and multiple servers in one
// process never collide on registration.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-recoform/pkg/client"
	"github.com/goliatone/go-recoform/pkg/model"
)

const namespace = "recoform"

// Metrics implements client.Observer.
type Metrics struct {
	registry *prometheus.Registry

	recommendRequests *prometheus.CounterVec
	recommendDuration *prometheus.HistogramVec
	breakerState      *prometheus.GaugeVec
	breakerChanges    *prometheus.CounterVec
	sessionsActive    prometheus.Gauge
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

var _ client.Observer = (*Metrics)(nil)

// New registers all collectors on a fresh registry, including the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		recommendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_requests_total",
			Help:      "Recommendation calls by method and outcome.",
		}, []string{"method", "outcome"}),
		recommendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_duration_seconds",
			Help:      "Recommendation call latency.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		breakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),
		breakerChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Circuit breaker transitions by target state.",
		}, []string{"name", "state"}),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Live web form sessions.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveRequest records one recommendation call.
func (m *Metrics) ObserveRequest(method model.Method, outcome client.Outcome, elapsed time.Duration) {
	m.recommendRequests.WithLabelValues(string(method), string(outcome)).Inc()
	m.recommendDuration.WithLabelValues(string(method)).Observe(elapsed.Seconds())
}

// ObserveBreakerState records a breaker transition.
func (m *Metrics) ObserveBreakerState(name, state string) {
	m.breakerState.WithLabelValues(name).Set(breakerStateValue(state))
	m.breakerChanges.WithLabelValues(name, state).Inc()
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// SetSessions reports the number of live sessions.
func (m *Metrics) SetSessions(n int) {
	m.sessionsActive.Set(float64(n))
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

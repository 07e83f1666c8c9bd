// Package metrics exposes Prometheus instrumentation for allocation and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joshdurbin/hashlink/internal/shortener"
)

const namespace = "hashlink"

// Metrics holds every collector the service registers
type Metrics struct {
	allocations        *prometheus.CounterVec
	allocationAttempts prometheus.Histogram
	collisions         prometheus.Counter
	exhausted          prometheus.Counter
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
// A nil reg uses a fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Shorten requests by outcome (created or existing).",
		}, []string{"outcome"}),
		allocationAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_attempts",
			Help:      "Candidate codes tried per allocation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collisions_total",
			Help:      "Candidate codes already held by a different URL.",
		}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_exhausted_total",
			Help:      "Allocations that ran out of candidate codes.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.allocations,
		m.allocationAttempts,
		m.collisions,
		m.exhausted,
		m.requests,
		m.requestDuration,
	)
	return m
}

// ObserveAllocation records a completed allocation
func (m *Metrics) ObserveAllocation(attempts int, created bool) {
	outcome := "existing"
	if created {
		outcome = "created"
	}
	m.allocations.WithLabelValues(outcome).Inc()
	m.allocationAttempts.Observe(float64(attempts))
}

// ObserveCollision records a candidate held by another URL
func (m *Metrics) ObserveCollision() {
	m.collisions.Inc()
}

// ObserveExhausted records an allocation that ran out of candidates
func (m *Metrics) ObserveExhausted() {
	m.exhausted.Inc()
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

var _ shortener.Observer = (*Metrics)(nil)

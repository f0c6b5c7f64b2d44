package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the HTTP boundary records.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	gate     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ideas",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ideas",
			Name:      "collaborator_duration_seconds",
			Help:      "Time spent waiting on external collaborators.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"operation"}),
		gate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ideas",
			Name:      "gate_results_total",
			Help:      "Completeness and submission gate outcomes.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.requests, m.duration, m.gate)
	return m
}

func (m *Metrics) observeRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) observeCall(operation string, started time.Time) {
	m.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeGate(operation, outcome string) {
	m.gate.WithLabelValues(operation, outcome).Inc()
}

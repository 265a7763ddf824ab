package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "restmanager"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Lifecycle metrics
	InFlight       prometheus.Gauge
	AuthChallenges prometheus.Counter
	Rejected       *prometheus.CounterVec

	// Snapshot for the CLI summary - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values
type MetricsSnapshot struct {
	TotalRequests  int64
	NetworkErrors  int64
	ParsingErrors  int64
	AuthChallenges int64
	TotalDuration  float64 // sum of all request durations
	RequestCount   int64   // count for averaging
}

// AverageDuration returns the mean lifecycle duration in seconds
func (s MetricsSnapshot) AverageDuration() float64 {
	if s.RequestCount == 0 {
		return 0
	}
	return s.TotalDuration / float64(s.RequestCount)
}

// NewMetrics creates a metrics collector registered on reg. A nil reg
// registers on the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of completed request lifecycles",
			},
			[]string{"method", "outcome", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request lifecycle duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_size_bytes",
				Help:      "Request body size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "response_size_bytes",
				Help:      "Response body size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method"},
		),

		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of request lifecycles in flight",
			},
		),
		AuthChallenges: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_challenges_total",
				Help:      "Total number of Basic authentication challenges received",
			},
		),
		Rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_rejected_total",
				Help:      "Total number of requests refused before dispatch",
			},
			[]string{"reason"},
		),
	}
}

// RecordRequest records a completed lifecycle
func (m *Metrics) RecordRequest(method, outcome string, status int, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, outcome, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	if reqSize > 0 {
		m.RequestSize.WithLabelValues(method).Observe(float64(reqSize))
	}
	m.ResponseSize.WithLabelValues(method).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	switch outcome {
	case "network_error":
		m.snapshot.NetworkErrors++
	case "parsing_error":
		m.snapshot.ParsingErrors++
	}
	m.mu.Unlock()
}

// RecordRejected records a request refused before dispatch
func (m *Metrics) RecordRejected(reason string) {
	m.Rejected.WithLabelValues(reason).Inc()
}

// IncAuthChallenges increments the challenge counter
func (m *Metrics) IncAuthChallenges() {
	m.AuthChallenges.Inc()
	m.mu.Lock()
	m.snapshot.AuthChallenges++
	m.mu.Unlock()
}

// IncInFlight marks a lifecycle as started
func (m *Metrics) IncInFlight() {
	m.InFlight.Inc()
}

// DecInFlight marks a lifecycle as finished
func (m *Metrics) DecInFlight() {
	m.InFlight.Dec()
}

// Snapshot returns a copy of the current values
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

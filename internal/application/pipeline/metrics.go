package pipeline

import (
	"context"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "school_records"

// Metrics is a prometheus.Collector for request counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewMetrics returns a new Metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "The number of dispatched requests by name and outcome.",
			}, []string{"request", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "The time taken to go through the pipeline.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			}, []string{"request"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "requests_in_flight",
				Help:      "The number of requests currently in the pipeline.",
			},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.requests.Describe(ch)
	m.duration.Describe(ch)
	m.inFlight.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.requests.Collect(ch)
	m.duration.Collect(ch)
	m.inFlight.Collect(ch)
}

// Behavior counts every request and observes its duration.
func (m *Metrics) Behavior(clk clock.Clock) Behavior {
	if clk == nil {
		clk = clock.WallClock
	}
	return func(ctx context.Context, info Info, req any, next Next) (any, error) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := clk.Now()
		out, err := next(ctx)

		m.duration.WithLabelValues(info.Name).Observe(clk.Now().Sub(start).Seconds())
		m.requests.WithLabelValues(info.Name, string(Classify(out, err))).Inc()
		return out, err
	}
}

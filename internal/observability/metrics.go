package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for upstream fetches, transforms and the probe.
type Metrics struct {
	FetchRequests  *prometheus.CounterVec   // labels: endpoint, outcome={success,connection_failed,non_success_status,decode_failed}
	FetchDuration  *prometheus.HistogramVec // labels: endpoint
	TransformError *prometheus.CounterVec   // labels: operation

	// Probe metrics.
	UpstreamUp *prometheus.GaugeVec // labels: operation
	ProbeRuns  prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.TransformError,
		m.UpstreamUp,
		m.ProbeRuns,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "todays_weather",
			Name:      "fetch_requests_total",
			Help:      "DataPoint requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "todays_weather",
			Name:      "fetch_duration_seconds",
			Help:      "DataPoint request duration in seconds, including body decode.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		TransformError: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "todays_weather",
			Name:      "transform_errors_total",
			Help:      "Documents that could not be transformed, by operation.",
		}, []string{"operation"}),
		UpstreamUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "todays_weather",
			Name:      "upstream_up",
			Help:      "1 when the last probe of an operation succeeded, 0 otherwise.",
		}, []string{"operation"}),
		ProbeRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "todays_weather",
			Name:      "probe_runs_total",
			Help:      "Completed upstream probe runs.",
		}),
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"WealthSentinel/internal/model"
)

// Metrics exposes cycle and earnings figures to Prometheus.
type Metrics struct {
	Registry *prometheus.Registry

	cycles         prometheus.Counter
	failures       *prometheus.CounterVec
	streamEarnings *prometheus.GaugeVec
	totalEarnings  prometheus.Gauge
	efficiency     prometheus.Gauge
	projection     prometheus.Gauge
	cycleDuration  prometheus.Histogram
}

// New registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wealth", Name: "cycles_total",
			Help: "Completed dispatch and aggregate cycles.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wealth", Name: "worker_failures_total",
			Help: "Failed worker executions by stream.",
		}, []string{"stream"}),
		streamEarnings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "wealth", Name: "stream_earnings",
			Help: "Accumulated earnings by stream.",
		}, []string{"stream", "type"}),
		totalEarnings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wealth", Name: "total_earnings",
			Help: "Accumulated earnings across all streams.",
		}),
		efficiency: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wealth", Name: "efficiency_percent",
			Help: "Actual hourly rate over target hourly rate.",
		}),
		projection: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wealth", Name: "monthly_projection",
			Help: "Sum of monthly targets of active streams.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wealth", Name: "cycle_duration_seconds",
			Help:    "Wall time of one dispatch.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	m.Registry.MustRegister(m.cycles, m.failures, m.streamEarnings, m.totalEarnings,
		m.efficiency, m.projection, m.cycleDuration)
	return m
}

// ObserveCycle updates all collectors after a completed cycle.
func (m *Metrics) ObserveCycle(seconds float64, results []model.CycleResult, r model.Report) {
	m.cycles.Inc()
	m.cycleDuration.Observe(seconds)
	for _, res := range results {
		if res.Err != nil {
			m.failures.WithLabelValues(res.Stream).Inc()
		}
	}
	m.ObserveReport(r)
}

// ObserveReport sets the gauges from a report.
func (m *Metrics) ObserveReport(r model.Report) {
	for _, s := range r.Streams {
		m.streamEarnings.WithLabelValues(s.Name, string(s.Kind)).Set(s.CurrentEarnings)
	}
	m.totalEarnings.Set(r.TotalEarnings)
	m.efficiency.Set(r.Efficiency)
	m.projection.Set(r.MonthlyProjection)
}

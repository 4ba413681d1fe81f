package health

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricChecksTotal      = "dbhealth_checks_total"
	MetricCheckErrorsTotal = "dbhealth_check_errors_total"
	MetricCheckDuration    = "dbhealth_check_duration_seconds"
	MetricDatabaseUp       = "dbhealth_database_up"
)

// Metrics contains Prometheus collectors for database checks.
// All operations are thread-safe.
type Metrics struct {
	checksTotal   *prometheus.CounterVec
	checkErrors   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	databaseUp    *prometheus.GaugeVec
}

// NewMetrics creates a Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricChecksTotal,
				Help: "Total number of database liveness checks by engine and status",
			},
			[]string{"engine", "status"},
		),
		checkErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCheckErrorsTotal,
				Help: "Total number of failed database liveness checks by engine and error kind",
			},
			[]string{"engine", "error"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricCheckDuration,
				Help:    "Histogram of database liveness check duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"engine"},
		),
		databaseUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricDatabaseUp,
				Help: "Whether the last liveness check succeeded (1) or failed (0)",
			},
			[]string{"engine"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.checksTotal,
		m.checkErrors,
		m.checkDuration,
		m.databaseUp,
	}
}

// ObserveResult records the outcome of one check.
func (m *Metrics) ObserveResult(r *Result) {
	if m == nil || r == nil {
		return
	}
	engine := r.Engine
	m.checksTotal.WithLabelValues(engine, r.Status).Inc()
	m.checkDuration.WithLabelValues(engine).Observe(r.LatencyMS / 1000)
	if r.Success {
		m.databaseUp.WithLabelValues(engine).Set(1)
		return
	}
	m.databaseUp.WithLabelValues(engine).Set(0)
	m.checkErrors.WithLabelValues(engine, string(r.Error)).Inc()
}

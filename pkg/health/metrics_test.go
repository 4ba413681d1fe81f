package health_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dbhealth/pkg/db"
	"github.com/dmitrymomot/dbhealth/pkg/health"
)

// findMetric gathers m through a private registry and returns the series
// of the named family matching all label pairs.
func findMetric(t *testing.T, m *health.Metrics, name string, labels ...string) *dto.Metric {
	t.Helper()

	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	families, err := reg.Gather()
	require.NoError(t, err)

	want := make(map[string]string, len(labels)/2)
	for i := 0; i+1 < len(labels); i += 2 {
		want[labels[i]] = labels[i+1]
	}

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	series:
		for _, metric := range family.GetMetric() {
			got := make(map[string]string, len(metric.GetLabel()))
			for _, l := range metric.GetLabel() {
				got[l.GetName()] = l.GetValue()
			}
			for k, v := range want {
				if got[k] != v {
					continue series
				}
			}
			return metric
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func counterValue(t *testing.T, m *health.Metrics, name string, labels ...string) float64 {
	t.Helper()
	return findMetric(t, m, name, labels...).GetCounter().GetValue()
}

func gaugeValue(t *testing.T, m *health.Metrics, name string, labels ...string) float64 {
	t.Helper()
	return findMetric(t, m, name, labels...).GetGauge().GetValue()
}

func TestMetrics_Register(t *testing.T) {
	t.Parallel()

	t.Run("successful registration", func(t *testing.T) {
		t.Parallel()

		m := health.NewMetrics()
		require.Len(t, m.Collectors(), 4)
		require.NoError(t, m.Register(prometheus.NewRegistry()))
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		require.NoError(t, health.NewMetrics().Register(reg))
		require.Error(t, health.NewMetrics().Register(reg))
	})
}

func TestMetrics_ObserveResult(t *testing.T) {
	t.Parallel()

	m := health.NewMetrics()
	m.ObserveResult(&health.Result{Engine: "mysql", Status: health.StatusOK, Success: true, LatencyMS: 12})
	m.ObserveResult(&health.Result{Engine: "mysql", Status: health.StatusOK, Success: true, LatencyMS: 8})

	require.Equal(t, 2.0, counterValue(t, m, health.MetricChecksTotal, "engine", "mysql", "status", health.StatusOK))
	require.Equal(t, 1.0, gaugeValue(t, m, health.MetricDatabaseUp, "engine", "mysql"))

	hist := findMetric(t, m, health.MetricCheckDuration, "engine", "mysql").GetHistogram()
	require.Equal(t, uint64(2), hist.GetSampleCount())
	require.InDelta(t, 0.02, hist.GetSampleSum(), 1e-9)

	m.ObserveResult(&health.Result{Engine: "mysql", Status: health.StatusError, Error: db.KindConnection, LatencyMS: 5000})
	require.Equal(t, 0.0, gaugeValue(t, m, health.MetricDatabaseUp, "engine", "mysql"))
	require.Equal(t, 1.0, counterValue(t, m, health.MetricCheckErrorsTotal, "engine", "mysql", "error", string(db.KindConnection)))
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *health.Metrics
	require.NotPanics(t, func() { m.ObserveResult(&health.Result{}) })
}

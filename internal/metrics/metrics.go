// Package metrics holds the prometheus collectors Engine.Health
// reports through. No HTTP exporter is owned here (exposing /metrics
// is an outer-surface decision explicitly out of scope); callers pass
// New the prometheus.Registerer their chosen exporter reads from.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the gauges and counters the stress harness exposes.
type Metrics struct {
	WorkersRunning prometheus.Gauge
	WorkersFailed  prometheus.Gauge
	WorkersTotal   prometheus.Gauge
	OpsTotal       *prometheus.CounterVec
	ActivePools    prometheus.Gauge
}

// New constructs a fresh Metrics set and registers it on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WorkersRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "frt_workers_running",
			Help: "Number of workers currently in the Running state.",
		}),
		WorkersFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "frt_workers_failed",
			Help: "Number of workers currently in the Error state.",
		}),
		WorkersTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "frt_workers_total",
			Help: "Total number of workers registered with the engine.",
		}),
		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frt_ops_total",
			Help: "Total pool operations attempted, by kind and result.",
		}, []string{"kind", "result"}),
		ActivePools: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "frt_active_pools",
			Help: "Number of pools the engine currently maintains.",
		}),
	}
	reg.MustRegister(m.WorkersRunning, m.WorkersFailed, m.WorkersTotal, m.OpsTotal, m.ActivePools)
	return m
}

// RecordOp increments the ops counter for kind/result ("success" or
// "failure").
func (m *Metrics) RecordOp(kind, result string) {
	m.OpsTotal.WithLabelValues(kind, result).Inc()
}

// SetHealth updates the worker-count gauges from a health snapshot.
func (m *Metrics) SetHealth(total, running, failed int) {
	m.WorkersTotal.Set(float64(total))
	m.WorkersRunning.Set(float64(running))
	m.WorkersFailed.Set(float64(failed))
}

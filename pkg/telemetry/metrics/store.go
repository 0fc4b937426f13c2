package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics tracks the session store and the plan repository.
//
// Metrics:
//   - <ns>_sessions_active: Sessions currently held
//   - <ns>_sessions_evicted_total: Sessions evicted for inactivity
//   - <ns>_plans_loaded: Plans in the active set
//   - <ns>_plans_reloads_total: Plan reloads by result
type StoreMetrics struct {
	sessionsActive  prometheus.Gauge
	sessionsEvicted prometheus.Counter
	plansLoaded     prometheus.Gauge
	planReloads     *prometheus.CounterVec
}

// NewStoreMetrics creates and registers store metrics.
func NewStoreMetrics(namespace string, registry *prometheus.Registry) *StoreMetrics {
	sm := &StoreMetrics{
		sessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "sessions",
				Name:      "active",
				Help:      "Current number of sessions in the store",
			},
		),

		sessionsEvicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sessions",
				Name:      "evicted_total",
				Help:      "Total number of sessions evicted after inactivity",
			},
		),

		plansLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "plans",
				Name:      "loaded",
				Help:      "Current number of loaded plan documents",
			},
		),

		planReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "plans",
				Name:      "reloads_total",
				Help:      "Total number of plan reloads by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(sm.sessionsActive, sm.sessionsEvicted, sm.plansLoaded, sm.planReloads)
	return sm
}

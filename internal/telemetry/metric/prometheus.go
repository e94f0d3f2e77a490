package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "handoff"

// Registry holds all application metrics.
type Registry struct {
	markerOps        *prometheus.CounterVec
	storageFaults    *prometheus.CounterVec
	recoveryAttempts *prometheus.CounterVec
	recoveryPhase    prometheus.Gauge
	refreshTriggers  *prometheus.CounterVec
	lifecycleEvents  *prometheus.CounterVec
}

// NewRegistry creates the metrics and registers them with reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		markerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marker",
			Name:      "operations_total",
			Help:      "Pending marker operations by kind, op and result",
		}, []string{"kind", "op", "result"}),
		storageFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "faults_total",
			Help:      "Swallowed storage faults by operation",
		}, []string{"op"}),
		recoveryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recovery",
			Name:      "attempts_total",
			Help:      "Secondary identity recovery attempts by outcome",
		}, []string{"outcome"}),
		recoveryPhase: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recovery",
			Name:      "phase",
			Help:      "Current recovery phase (0 idle, 1 recovering, 2 succeeded, 3 failed)",
		}),
		refreshTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authsync",
			Name:      "refresh_total",
			Help:      "Primary session refreshes by trigger and result",
		}, []string{"trigger", "result"}),
		lifecycleEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "events_total",
			Help:      "Lifecycle signals received by kind",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		r.markerOps,
		r.storageFaults,
		r.recoveryAttempts,
		r.recoveryPhase,
		r.refreshTriggers,
		r.lifecycleEvents,
	)
	return r
}

// NewProcessRegistry returns a prometheus registry with Go and process collectors.
func NewProcessRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// MarkerOp counts a marker operation.
func (r *Registry) MarkerOp(kind, op, result string) {
	if r == nil {
		return
	}
	r.markerOps.WithLabelValues(kind, op, result).Inc()
}

// StorageFault counts a swallowed storage error.
func (r *Registry) StorageFault(op string) {
	if r == nil {
		return
	}
	r.storageFaults.WithLabelValues(op).Inc()
}

// RecoveryOutcome counts a finished recovery attempt.
func (r *Registry) RecoveryOutcome(outcome string) {
	if r == nil {
		return
	}
	r.recoveryAttempts.WithLabelValues(outcome).Inc()
}

// RecoveryPhase records the current phase.
func (r *Registry) RecoveryPhase(phase int) {
	if r == nil {
		return
	}
	r.recoveryPhase.Set(float64(phase))
}

// Refresh counts a primary session refresh.
func (r *Registry) Refresh(trigger, result string) {
	if r == nil {
		return
	}
	r.refreshTriggers.WithLabelValues(trigger, result).Inc()
}

// LifecycleEvent counts a received lifecycle signal.
func (r *Registry) LifecycleEvent(kind string) {
	if r == nil {
		return
	}
	r.lifecycleEvents.WithLabelValues(kind).Inc()
}

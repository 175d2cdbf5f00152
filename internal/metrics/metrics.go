package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register and
// the helper functions no-op until that happens.
var (
	regOK atomic.Bool

	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proclife",
			Subsystem: "lifecycle",
			Name:      "state_transitions_total",
			Help:      "Number of lifecycle state transitions.",
		}, []string{"from", "to"},
	)
	enforcementFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proclife",
			Subsystem: "lifecycle",
			Name:      "enforcement_failures_total",
			Help:      "Number of non-fatal cgroup/OOM enforcement failures.",
		}, []string{"kind"},
	)
	evictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "proclife",
			Subsystem: "evictor",
			Name:      "evictions_total",
			Help:      "Number of idle cached processes sent a termination signal.",
		},
	)
	reaps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "proclife",
			Subsystem: "registry",
			Name:      "reaps_total",
			Help:      "Number of exited or vanished processes removed from tracking.",
		},
	)
	trackedProcesses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "proclife",
			Subsystem: "registry",
			Name:      "tracked_processes",
			Help:      "Current number of tracked processes.",
		},
	)
	memoryPressure = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "proclife",
			Subsystem: "monitor",
			Name:      "memory_pressure",
			Help:      "1 while the host is under memory pressure.",
		},
	)
	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "proclife",
			Subsystem: "monitor",
			Name:      "tick_duration_seconds",
			Help:      "Duration of one full monitoring pass.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	overrides = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proclife",
			Subsystem: "monitor",
			Name:      "priority_overrides_total",
			Help:      "Priority override requests by result.",
		}, []string{"result"},
	)
)

// Register registers all collectors with r. Safe to call multiple times.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{
		stateTransitions, enforcementFailures, evictions, reaps,
		trackedProcesses, memoryPressure, tickDuration, overrides,
	}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves Prometheus metrics for the default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

func RecordTransition(from, to string) {
	if regOK.Load() {
		stateTransitions.WithLabelValues(from, to).Inc()
	}
}

func IncEnforcementFailure(kind string) {
	if regOK.Load() {
		enforcementFailures.WithLabelValues(kind).Inc()
	}
}

func IncEviction() {
	if regOK.Load() {
		evictions.Inc()
	}
}

func AddReaps(n int) {
	if regOK.Load() {
		reaps.Add(float64(n))
	}
}

func SetTracked(n int) {
	if regOK.Load() {
		trackedProcesses.Set(float64(n))
	}
}

func SetMemoryPressure(on bool) {
	if regOK.Load() {
		v := 0.0
		if on {
			v = 1
		}
		memoryPressure.Set(v)
	}
}

func ObserveTick(seconds float64) {
	if regOK.Load() {
		tickDuration.Observe(seconds)
	}
}

func IncOverride(result string) {
	if regOK.Load() {
		overrides.WithLabelValues(result).Inc()
	}
}

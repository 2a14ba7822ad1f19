// Package metrics exposes Prometheus instrumentation for analysis runs
// and model invocations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors used by the analyzer and the generator
// clients. A nil *Metrics is safe to use; every method no-ops.
type Metrics struct {
	runsStarted   *prometheus.CounterVec
	runsSucceeded *prometheus.CounterVec
	runsFailed    *prometheus.CounterVec
	genAttempts   *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adreport",
			Name:      "runs_started_total",
			Help:      "Analysis runs started, by report family.",
		}, []string{"family"}),
		runsSucceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adreport",
			Name:      "runs_succeeded_total",
			Help:      "Analysis runs completed successfully, by report family.",
		}, []string{"family"}),
		runsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adreport",
			Name:      "runs_failed_total",
			Help:      "Analysis runs failed, by report family and error kind.",
		}, []string{"family", "kind"}),
		genAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adreport",
			Name:      "generator_attempts_total",
			Help:      "Model invocation attempts, by provider and outcome.",
		}, []string{"provider", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "adreport",
			Name:      "run_duration_seconds",
			Help:      "End-to-end analysis run duration.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"family"}),
	}
	reg.MustRegister(m.runsStarted, m.runsSucceeded, m.runsFailed, m.genAttempts, m.runDuration)
	return m
}

func (m *Metrics) RunStarted(family string) {
	if m == nil {
		return
	}
	m.runsStarted.WithLabelValues(family).Inc()
}

func (m *Metrics) RunSucceeded(family string, seconds float64) {
	if m == nil {
		return
	}
	m.runsSucceeded.WithLabelValues(family).Inc()
	m.runDuration.WithLabelValues(family).Observe(seconds)
}

func (m *Metrics) RunFailed(family, kind string, seconds float64) {
	if m == nil {
		return
	}
	m.runsFailed.WithLabelValues(family, kind).Inc()
	m.runDuration.WithLabelValues(family).Observe(seconds)
}

// GeneratorAttempt records one model call. Outcome is "ok", "transient",
// "quota", or "error".
func (m *Metrics) GeneratorAttempt(provider, outcome string) {
	if m == nil {
		return
	}
	m.genAttempts.WithLabelValues(provider, outcome).Inc()
}

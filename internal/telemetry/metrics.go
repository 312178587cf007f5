// Package telemetry exposes Prometheus instrumentation for simulation runs.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the simulator and risk oracle.
// All methods are safe on a nil receiver.
type Metrics struct {
	// Decisions by architecture variant, policy and outcome
	Decisions *prometheus.CounterVec

	// Risk oracle results by HTTP status (200, 500, ...)
	OracleResults *prometheus.CounterVec

	// Decision latency as measured by the simulator
	ResponseTime *prometheus.HistogramVec

	// Ledger records dropped or failed
	LedgerFailures prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance on its own registry so independent
// simulators never collide on registration.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ztbench_decisions_total",
			Help: "Simulated access decisions by variant, policy and outcome",
		}, []string{"variant", "policy", "outcome"}), // outcome: granted, denied, unauthenticated

		OracleResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ztbench_risk_oracle_results_total",
			Help: "Risk oracle results by reported status",
		}, []string{"status"}),

		ResponseTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ztbench_response_time_seconds",
			Help:    "Simulated decision latency by variant",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"variant"}),

		LedgerFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ztbench_ledger_failures_total",
			Help: "Decision records that could not be written to the ledger",
		}),

		registry: reg,
	}
}

// Registry returns the gatherer backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncrementDecision records one simulated decision.
func (m *Metrics) IncrementDecision(variant, policy, outcome string) {
	if m != nil {
		m.Decisions.WithLabelValues(variant, policy, outcome).Inc()
	}
}

// IncrementOracle records one risk oracle result.
func (m *Metrics) IncrementOracle(status int) {
	if m != nil {
		m.OracleResults.WithLabelValues(strconv.Itoa(status)).Inc()
	}
}

// ObserveResponseTime records the decision latency for a variant.
func (m *Metrics) ObserveResponseTime(variant string, d time.Duration) {
	if m != nil {
		m.ResponseTime.WithLabelValues(variant).Observe(d.Seconds())
	}
}

// IncrementLedgerFailure records a lost ledger write.
func (m *Metrics) IncrementLedgerFailure() {
	if m != nil {
		m.LedgerFailures.Inc()
	}
}

// WriteTextfile dumps all metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

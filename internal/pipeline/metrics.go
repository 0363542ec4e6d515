package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes gauges/counters a sender's caller can update to report
// overflow depth and drain outcomes, satisfying spec.md §4.C's "operators
// SHOULD monitor its length" with a concrete exposition surface instead of
// an ad-hoc log line.
type Metrics struct {
	OverflowDepth *prometheus.GaugeVec
	DrainTotal    *prometheus.CounterVec
}

// NewMetrics registers the pipeline core's metrics against reg. Pass
// prometheus.DefaultRegisterer to wire it into the process-wide registry
// served by cmd/pipelined's /metrics endpoint.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OverflowDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pipeline",
			Subsystem: "sender",
			Name:      "overflow_depth",
			Help:      "Number of messages currently parked in a sender's overflow queue.",
		}, []string{"pipeline_id"}),
		DrainTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Subsystem: "sender",
			Name:      "drain_total",
			Help:      "Outcomes of DrainReady calls, labeled ready/not_ready.",
		}, []string{"pipeline_id", "outcome"}),
	}
}

// ObserveDrain records the outcome of a DrainReady call for pipelineID.
func (m *Metrics) ObserveDrain(pipelineID string, ready bool) {
	outcome := "not_ready"
	if ready {
		outcome = "ready"
	}
	m.DrainTotal.WithLabelValues(pipelineID, outcome).Inc()
}

// SetOverflowDepth records the current overflow length for pipelineID.
func (m *Metrics) SetOverflowDepth(pipelineID string, depth int) {
	m.OverflowDepth.WithLabelValues(pipelineID).Set(float64(depth))
}

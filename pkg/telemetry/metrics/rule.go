package metrics

import (
	"time"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RuleMetrics tracks rule executions.
//
// Metrics:
//   - ecoimpact_engine_rule_executions_total: executions by rule, kind and status
//   - ecoimpact_engine_rule_duration_seconds: execution duration by kind
//   - ecoimpact_engine_rule_range_warnings_total: cells outside a rule's table
type RuleMetrics struct {
	executionsTotal   *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
	warningsTotal     *prometheus.CounterVec
}

// NewRuleMetrics creates and registers rule metrics with the provided registry.
func NewRuleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuleMetrics {
	rm := &RuleMetrics{
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_executions_total",
				Help:      "Total number of rule executions",
			},
			[]string{"rule", "kind", "status"},
		),

		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_duration_seconds",
				Help:      "Duration of rule executions in seconds",
				Buckets:   cfg.RuleDurationBuckets,
			},
			[]string{"kind"},
		),

		warningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_range_warnings_total",
				Help:      "Total number of cells below or above the range of a rule table",
			},
			[]string{"rule", "bound"},
		),
	}

	registry.MustRegister(
		rm.executionsTotal,
		rm.executionDuration,
		rm.warningsTotal,
	)

	return rm
}

// RecordExecution records one rule execution.
func (rm *RuleMetrics) RecordExecution(rule, kind, status string, duration time.Duration) {
	rm.executionsTotal.WithLabelValues(rule, kind, status).Inc()
	rm.executionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordWarnings adds the range warnings of one execution. Zero counts are
// skipped so that rules without tables do not create series.
func (rm *RuleMetrics) RecordWarnings(rule string, w rules.CellWarnings) {
	if w.BelowMin > 0 {
		rm.warningsTotal.WithLabelValues(rule, "below_min").Add(float64(w.BelowMin))
	}
	if w.AboveMax > 0 {
		rm.warningsTotal.WithLabelValues(rule, "above_max").Add(float64(w.AboveMax))
	}
}

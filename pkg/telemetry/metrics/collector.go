package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/processor"

	"github.com/prometheus/client_golang/prometheus"
)

// overflowLabel replaces rule names once the cardinality limit is reached.
const overflowLabel = "other"

// Collector owns the Prometheus metrics of EcoImpact. It receives rule
// executions as a processor.Observer and model and partition outcomes from
// the application.
//
// A disabled collector accepts every call and records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	ruleMetrics *RuleMetrics
	runMetrics  *RunMetrics

	// Rule names come from input files, so they are capped.
	cardinalityLimiter *CardinalityLimiter
}

var _ processor.Observer = (*Collector)(nil)

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "ecoimpact",
//		Subsystem: "engine",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RuleDurationBuckets) == 0 {
		cfg.RuleDurationBuckets = config.DefaultRuleDurationBuckets
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	c.ruleMetrics = NewRuleMetrics(cfg, registry)
	c.runMetrics = NewRunMetrics(cfg, registry)

	return c
}

// ObserveRule records one executed rule. It implements processor.Observer.
func (c *Collector) ObserveRule(event processor.RuleEvent) {
	if !c.config.Enabled {
		return
	}

	name := event.Rule
	if !c.cardinalityLimiter.Allow(fmt.Sprintf("rule:%s", name)) {
		name = overflowLabel
	}

	status := StatusSuccess
	if event.Err != nil {
		status = StatusError
	}

	c.ruleMetrics.RecordExecution(name, event.Kind.String(), status, event.Duration)
	c.ruleMetrics.RecordWarnings(name, event.Warnings)
}

// RecordModelRun records a finished model run.
//
// Parameters:
//   - status: final model status ("executed", "failed", ...)
//   - duration: wall time from validation to finalization
func (c *Collector) RecordModelRun(status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.runMetrics.RecordRun(status, duration)
}

// RecordPartition records the outcome of one partition of a run.
func (c *Collector) RecordPartition(status string) {
	if !c.config.Enabled {
		return
	}

	c.runMetrics.RecordPartition(status)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}

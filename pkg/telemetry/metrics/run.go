package metrics

import (
	"time"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks model runs and their partitions.
//
// Metrics:
//   - ecoimpact_engine_model_runs_total: runs by final status
//   - ecoimpact_engine_model_run_duration_seconds: run duration
//   - ecoimpact_engine_partitions_total: partitions by status
//   - ecoimpact_engine_last_run_timestamp_seconds: end time of the last run
type RunMetrics struct {
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	partitionsTotal *prometheus.CounterVec
	lastRun         prometheus.Gauge
}

// NewRunMetrics creates and registers run metrics with the provided registry.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "model_runs_total",
				Help:      "Total number of model runs by final status",
			},
			[]string{"status"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "model_run_duration_seconds",
				Help:      "Duration of model runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8), // 10ms to ~3min
			},
		),

		partitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "partitions_total",
				Help:      "Total number of processed input partitions by status",
			},
			[]string{"status"},
		),

		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time at which the last model run ended",
			},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.runDuration,
		rm.partitionsTotal,
		rm.lastRun,
	)

	return rm
}

// RecordRun records a finished model run.
func (rm *RunMetrics) RecordRun(status string, duration time.Duration) {
	rm.runsTotal.WithLabelValues(status).Inc()
	rm.runDuration.Observe(duration.Seconds())
	rm.lastRun.SetToCurrentTime()
}

// RecordPartition records one partition outcome.
func (rm *RunMetrics) RecordPartition(status string) {
	rm.partitionsTotal.WithLabelValues(status).Inc()
}

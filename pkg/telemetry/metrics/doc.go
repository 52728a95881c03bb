// Package metrics provides Prometheus metrics collection for EcoImpact.
//
// # Overview
//
// A Collector registers its metrics on a private registry and records:
//
//   - Rule metrics: executions by rule, kind and status, execution duration
//     and the number of cells that fell outside a rule's table
//   - Run metrics: model runs by final status, run duration, partition
//     outcomes and the time of the last run
//
// The Collector satisfies processor.Observer, so it is handed to a model
// with processor.WithObserver and sees every rule execution.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	m := model.NewRuleBasedModel(name, inputs, rules,
//		processor.WithObserver(collector))
//	...
//	collector.RecordModelRun(m.Status().String(), time.Since(start))
//
// # Export
//
// Metrics are exposed over HTTP with Handler while watching, or written to
// a file for the node_exporter textfile collector with WriteTextfile after
// a one-shot run:
//
//	# HELP ecoimpact_engine_rule_executions_total Total number of rule executions
//	# TYPE ecoimpact_engine_rule_executions_total counter
//	ecoimpact_engine_rule_executions_total{kind="cell",rule="depth class",status="success"} 1
//
// # Cardinality Management
//
// Rule names come from input files. After 1000 distinct names further rules
// are recorded under the "other" label.
package metrics

package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys of EcoImpact spans.
const (
	AttrInputFile = attribute.Key("ecoimpact.input_file")
	AttrModel     = attribute.Key("ecoimpact.model")
	AttrPartition = attribute.Key("ecoimpact.partition")
	AttrRunID     = attribute.Key("ecoimpact.run_id")
	AttrStatus    = attribute.Key("ecoimpact.status")

	AttrPartitions = attribute.Key("ecoimpact.partitions")
	AttrSucceeded  = attribute.Key("ecoimpact.partitions.succeeded")
	AttrFailed     = attribute.Key("ecoimpact.partitions.failed")
	AttrCancelled  = attribute.Key("ecoimpact.partitions.cancelled")

	AttrRule     = attribute.Key("ecoimpact.rule")
	AttrRuleKind = attribute.Key("ecoimpact.rule.kind")
	AttrWave     = attribute.Key("ecoimpact.rule.wave")
	AttrBelowMin = attribute.Key("ecoimpact.rule.cells_below_min")
	AttrAboveMax = attribute.Key("ecoimpact.rule.cells_above_max")
)

// SetModelAttributes records the parsed model on a run span.
func SetModelAttributes(span trace.Span, model string, partitions int) {
	span.SetAttributes(
		AttrModel.String(model),
		AttrPartitions.Int(partitions),
	)
}

// SetOutcomeAttributes records the partition counts of a finished batch.
func SetOutcomeAttributes(span trace.Span, succeeded, failed, cancelled int) {
	span.SetAttributes(
		AttrSucceeded.Int(succeeded),
		AttrFailed.Int(failed),
		AttrCancelled.Int(cancelled),
	)
}

// SetPartitionAttributes identifies the partition a span belongs to.
func SetPartitionAttributes(span trace.Span, partition, runID string) {
	attrs := []attribute.KeyValue{AttrRunID.String(runID)}
	if partition != "" {
		attrs = append(attrs, AttrPartition.String(partition))
	}
	span.SetAttributes(attrs...)
}

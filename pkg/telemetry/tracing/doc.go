// Package tracing exports OpenTelemetry spans for model runs.
//
// A call to application.Run produces one trace:
//
//	ecoimpact.run                 input file, model, partition counts
//	└── ecoimpact.partition       partition suffix, run id, status
//	    └── ecoimpact.rule        rule name, kind, wave, cell warnings
//
// Rule spans are created after the fact from processor.RuleEvent values by
// RuleObserver, using the measured rule duration as the span length.
//
// Spans are exported over OTLP gRPC in batches. When tracing is disabled a
// no-op tracer is used and RuleObserver is never registered, so a run pays
// nothing for the spans it does not export:
//
//	tracer, err := tracing.New(&cfg.Tracing, buildVersion)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	app.SetTracer(tracer)
//
// # Sampling
//
// Three strategies are supported: always, never and ratio. Every sampler is
// wrapped in ParentBased so rule spans follow the decision taken for the
// batch span.
package tracing

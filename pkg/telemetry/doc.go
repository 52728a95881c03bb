// Package telemetry groups the observability packages of EcoImpact.
//
// # Components
//
//   - logging: structured slog logging with run, model and partition context
//   - metrics: Prometheus rule, model and partition metrics, served over HTTP
//     while watching or written to a node_exporter textfile after a run
//   - tracing: OpenTelemetry spans for batches, partitions and rules
//   - health: liveness and readiness endpoints served next to the metrics
//
// The packages are independent; cmd/ecoimpact wires them into an
// application.Application:
//
//	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level})
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	app := application.New(cfg, logger, store, collector)
//
//	tracer, err := tracing.New(&cfg.Tracing, buildVersion)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//	app.SetTracer(tracer)
package telemetry

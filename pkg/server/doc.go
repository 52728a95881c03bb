// Package server runs the HTTP listener used while watching a model.
//
// The listener serves the Prometheus metrics endpoint and the health
// endpoints. It starts with the watch loop and stops when its context is
// cancelled:
//
//	mux := http.NewServeMux()
//	mux.Handle(cfg.Metrics.Path, collector.Handler())
//	health.Register(mux, checker, info)
//
//	srv := server.New(cfg.Metrics.ListenAddress, mux, logger)
//	go srv.Start(ctx)
//
// Every handler is wrapped in panic recovery and request logging at debug
// level; scrapes are frequent and uninteresting when they succeed.
package server

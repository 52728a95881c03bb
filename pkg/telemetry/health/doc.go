// Package health provides the health endpoints served next to the metrics
// endpoint while EcoImpact watches an input file.
//
// # Endpoints
//
//   - /health: Liveness probe - the process is running
//   - /ready: Readiness probe - every registered check passes
//   - /version: Build information - version, commit, build time
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("runstore", health.StoreCheck(store))
//	checker.RegisterCheck("watcher", health.WatcherCheck(watcher))
//	checker.RegisterCheck("last_run", tracker.Check)
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, health.VersionInfo{Version: "0.1.0"})
//
// # Last Run
//
// A RunTracker remembers the outcome of the latest model run. Its check
// fails while the latest run failed, so a probe reports a watched model
// that keeps failing after a change to its input.
package health

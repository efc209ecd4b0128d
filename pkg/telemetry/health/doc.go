// Package health reports whether a long-running t3dport process is alive and
// whether its last import succeeded.
//
// Two probes are served:
//
//   - /healthz: liveness, always 200 while the process runs
//   - /readyz: readiness, runs every registered check and answers 503 when
//     any of them fails
//
// The watch and schedule commands register two checks: "store" pings the
// asset store and "last_import" fails while the most recent import returned
// an error.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("store", health.PingCheck(store))
//	tracker := health.NewRunTracker()
//	checker.RegisterCheck("last_import", tracker.Check)
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, health.VersionInfo{Version: "0.1.0"})
package health

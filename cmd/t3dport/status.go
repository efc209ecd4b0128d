package main

import (
	"context"
	"errors"

	"forge-hq/t3dport/pkg/importer"
	"forge-hq/t3dport/pkg/server"
	"forge-hq/t3dport/pkg/telemetry/health"
)

// importJob runs one import and records its outcome for the readiness probe.
func (e *environment) importJob(imp *importer.Importer, req importer.Request, tracker *health.RunTracker) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		report, err := imp.Run(ctx, req)
		unresolved := 0
		if report != nil {
			unresolved = len(report.Unresolved)
		}
		tracker.Observe(unresolved, err)
		e.writeMetrics("")
		return err
	}
}

// startStatusServer serves /metrics and the health probes on addr until
// ctx is done. An empty addr disables the listener.
func (e *environment) startStatusServer(ctx context.Context, addr string, tracker *health.RunTracker) *server.Server {
	if addr == "" {
		return nil
	}

	srv := server.New(&server.Config{Address: addr}, e.logger)
	srv.Handle(e.cfg.Telemetry.Metrics.Path, e.metrics.Handler())

	checker := health.New(0)
	checker.RegisterCheck("store", health.PingCheck(e.store))
	checker.RegisterCheck("last_import", tracker.Check)
	health.Register(srv.Mux(), checker, health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
	})

	go func() {
		if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Error("status server failed", "address", addr, "error", err)
		}
	}()
	return srv
}

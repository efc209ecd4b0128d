// Package server runs the HTTP status listener of the long-running t3dport
// commands.
//
// The listener exposes the Prometheus registry on /metrics and the health
// probes of pkg/telemetry/health. It never serves import traffic; imports
// are triggered by the file watcher or the cron scheduler.
//
//	srv := server.New(&server.Config{Address: "127.0.0.1:9102"}, logger)
//	srv.Handle("/metrics", collector.Handler())
//	health.Register(srv.Mux(), checker, info)
//	go srv.Start(ctx)
package server

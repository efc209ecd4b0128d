// Package telemetry groups the observability packages of t3dport.
//
//   - logging: slog-based structured logging with run fields from the context
//   - metrics: Prometheus counters and histograms for runs, documents and passes
//   - tracing: OpenTelemetry spans per run, pass and document
//   - health: liveness and readiness probes for the watch and schedule commands
//
// Every component accepts a nil or disabled configuration and then does
// nothing, so importers built in tests need no telemetry setup.
package telemetry

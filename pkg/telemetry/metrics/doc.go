// Package metrics provides Prometheus metrics for import runs.
//
// The Collector records runs, documents, constructed objects, diagnostics
// and resolve passes. Metrics are exposed over HTTP with Handler (used by
// "t3dport watch") or written to a node_exporter textfile after one-shot
// runs with WriteToTextfile.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRun("scene", "success", time.Since(start))
package metrics

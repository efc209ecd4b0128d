// Package tracing provides OpenTelemetry spans for import runs.
//
// An import run opens an "import.run" span with one child per document
// ("import.document") and per resolve pass ("import.pass"). Spans are
// exported over OTLP gRPC to the configured collector.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "import.run",
//	    trace.WithAttributes(tracing.RunAttributes(runID, "scene", src, dest)...))
//	defer span.End()
//
// Sampling strategies are "always", "never" and "ratio". All samplers are
// parent based.
//
// A nil *Tracer and a disabled tracer both produce noop spans.
package tracing

package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys use the "t3dport.*" namespace.
const (
	AttrRunID       = "t3dport.run_id"
	AttrMode        = "t3dport.mode"
	AttrSource      = "t3dport.source"
	AttrDestination = "t3dport.destination"

	AttrDocument = "t3dport.document"
	AttrKind     = "t3dport.kind"
	AttrObject   = "t3dport.object"

	AttrPass       = "t3dport.pass"
	AttrIterations = "t3dport.pass.iterations"
	AttrResolved   = "t3dport.pass.resolved"

	AttrUnresolved  = "t3dport.unresolved"
	AttrDiagnostics = "t3dport.diagnostics"

	AttrErrorMessage = "error.message"
)

// RunAttributes returns the attributes of an import run span.
func RunAttributes(runID, mode, source, destination string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.String(AttrMode, mode),
		attribute.String(AttrSource, source),
		attribute.String(AttrDestination, destination),
	}
}

// DocumentAttributes returns the attributes of a document span.
func DocumentAttributes(document, kind, object string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrDocument, document),
		attribute.String(AttrKind, kind),
		attribute.String(AttrObject, object),
	}
}

// SetPassResult records the outcome of a resolve pass.
func SetPassResult(span trace.Span, pass string, iterations, resolved int) {
	span.SetAttributes(
		attribute.String(AttrPass, pass),
		attribute.Int(AttrIterations, iterations),
		attribute.Int(AttrResolved, resolved),
	)
}

// SetRunResult records the outcome of a run.
func SetRunResult(span trace.Span, unresolved, diagnostics int) {
	span.SetAttributes(
		attribute.Int(AttrUnresolved, unresolved),
		attribute.Int(AttrDiagnostics, diagnostics),
	)
}

package logging

import (
	"context"
)

// Context keys for run log fields.
type contextKey string

const (
	// RunIDKey is the context key for import run IDs.
	RunIDKey contextKey = "run_id"

	// ModeKey is the context key for the import mode.
	ModeKey contextKey = "mode"

	// DocumentKey is the context key for the document being parsed.
	DocumentKey contextKey = "document"

	// PassKey is the context key for the resolve pass name.
	PassKey contextKey = "pass"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if v, ok := ctx.Value(RunIDKey).(string); ok {
		return v
	}
	return ""
}

// WithMode adds the import mode to the context.
func WithMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, ModeKey, mode)
}

// GetMode retrieves the import mode from the context.
func GetMode(ctx context.Context) string {
	if v, ok := ctx.Value(ModeKey).(string); ok {
		return v
	}
	return ""
}

// WithDocument adds the current document path to the context.
func WithDocument(ctx context.Context, document string) context.Context {
	return context.WithValue(ctx, DocumentKey, document)
}

// GetDocument retrieves the current document path from the context.
func GetDocument(ctx context.Context) string {
	if v, ok := ctx.Value(DocumentKey).(string); ok {
		return v
	}
	return ""
}

// WithPass adds the current resolve pass to the context.
func WithPass(ctx context.Context, pass string) context.Context {
	return context.WithValue(ctx, PassKey, pass)
}

// GetPass retrieves the current resolve pass from the context.
func GetPass(ctx context.Context) string {
	if v, ok := ctx.Value(PassKey).(string); ok {
		return v
	}
	return ""
}

// Attrs returns the run fields of ctx as slog key/value pairs, for
// components that log through a plain *slog.Logger.
func Attrs(ctx context.Context) []any {
	return extractContextFields(ctx)
}

func extractContextFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}

	var fields []any
	if v := GetRunID(ctx); v != "" {
		fields = append(fields, string(RunIDKey), v)
	}
	if v := GetMode(ctx); v != "" {
		fields = append(fields, string(ModeKey), v)
	}
	if v := GetDocument(ctx); v != "" {
		fields = append(fields, string(DocumentKey), v)
	}
	if v := GetPass(ctx); v != "" {
		fields = append(fields, string(PassKey), v)
	}
	return fields
}

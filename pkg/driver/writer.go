package driver

import (
	"context"
	"errors"
	"log/slog"

	"forge-hq/t3dport/pkg/assets"
)

// Product is a typed model built by a driver and committed to the store in
// the hooks phase of an import.
type Product interface {
	// Target returns the store object the product is written to.
	Target() *assets.Object

	// Commit writes the product's properties and links.
	Commit(ctx context.Context, w *Writer) error
}

// Writer applies properties and links to one store object. Unsupported
// property names are logged and skipped; the first other failure is kept
// and stops further writes.
type Writer struct {
	ctx    context.Context
	store  assets.Store
	obj    *assets.Object
	logger *slog.Logger

	written     int
	unsupported []string
	err         error
}

// NewWriter creates a writer for obj.
func NewWriter(ctx context.Context, store assets.Store, obj *assets.Object, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{ctx: ctx, store: store, obj: obj, logger: logger}
}

// For returns a writer for another object sharing w's context, store and
// logger.
func (w *Writer) For(obj *assets.Object) *Writer {
	return NewWriter(w.ctx, w.store, obj, w.logger)
}

// Set applies a property.
func (w *Writer) Set(name, value string) {
	if w.err != nil {
		return
	}
	w.check(name, w.store.ApplyProperty(w.ctx, w.obj, name, value))
}

// Link points slot at target. A nil target is skipped.
func (w *Writer) Link(slot string, target *assets.Object) {
	if w.err != nil || target == nil {
		return
	}
	w.check(slot, w.store.Link(w.ctx, w.obj, slot, target))
}

// Store returns the store being written.
func (w *Writer) Store() assets.Store {
	return w.store
}

// Context returns the writer's context.
func (w *Writer) Context() context.Context {
	return w.ctx
}

// Written returns the number of successful writes.
func (w *Writer) Written() int {
	return w.written
}

// Unsupported returns the property names the store rejected.
func (w *Writer) Unsupported() []string {
	return w.unsupported
}

// Err returns the first failure that was not an unsupported property.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) check(name string, err error) {
	switch {
	case err == nil:
		w.written++
	case errors.Is(err, assets.ErrUnsupportedProperty):
		w.unsupported = append(w.unsupported, name)
		w.logger.Debug("unsupported property",
			"kind", w.obj.Kind,
			"path", w.obj.Path(),
			"property", name,
		)
	default:
		w.err = err
	}
}

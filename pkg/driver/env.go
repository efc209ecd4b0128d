package driver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/resolver"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

// Env is what block drivers need from the import that runs them. One Env
// is shared by every driver of a run; Location and Document change per
// document.
type Env struct {
	Resolver    *resolver.Resolver[*assets.Object]
	Store       assets.Store
	Destination string
	Logger      *slog.Logger
	Diagnostics *t3derrors.ErrorList

	// Location is the dot-separated location of the current document, used
	// for references without one.
	Location string

	// Document is the path of the current document, for diagnostics.
	Document string
}

// NewEnv creates an environment over a fresh resolver.
func NewEnv(store assets.Store, destination string, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default().With("component", "driver")
	}
	return &Env{
		Resolver:    resolver.New[*assets.Object](),
		Store:       store,
		Destination: destination,
		Logger:      logger,
		Diagnostics: t3derrors.NewErrorList(),
	}
}

// ForDocument returns a copy of e positioned on document at location. The
// copy shares the resolver, store and diagnostics.
func (e *Env) ForDocument(document, location string) *Env {
	c := *e
	c.Document = document
	c.Location = location
	return &c
}

// PackagePath returns the store location for a dot-separated location.
func (e *Env) PackagePath(location string) string {
	return assets.PackagePath(e.Destination, location)
}

// Require registers obligation on ref. For kinds that are never built by
// the importer (static meshes and textures) the store is consulted at once
// and an existing object resolves the reference.
func (e *Env) Require(ctx context.Context, ref resolver.Reference, obligation resolver.Obligation[*assets.Object]) {
	e.Resolver.Register(ref, obligation)
	if e.Resolver.IsResolved(ref) || !lookupOnRegister(ref.Kind()) {
		return
	}
	if obj, ok := e.Existing(ctx, ref); ok {
		e.Resolver.Resolve(ref, obj)
	}
}

// RequireRaw parses raw and registers obligation on it. References without
// a kind get defaultKind. A malformed reference is logged and dropped; the
// consumer is never notified.
func (e *Env) RequireRaw(ctx context.Context, raw, defaultKind string, obligation resolver.Obligation[*assets.Object]) (resolver.Reference, bool) {
	ref, err := resolver.ParseReference(raw, e.Location)
	if err != nil {
		e.Logger.Warn("unable to parse resource reference",
			"reference", raw,
			"document", e.Document,
			"error", err,
		)
		return resolver.Reference{}, false
	}
	ref = ref.WithDefaultKind(defaultKind)
	e.Require(ctx, ref, obligation)
	return ref, true
}

// Existing looks ref up in the store. Objects of an incompatible kind do
// not count.
func (e *Env) Existing(ctx context.Context, ref resolver.Reference) (*assets.Object, bool) {
	obj, err := e.Store.Lookup(ctx, e.PackagePath(ref.Location()), ref.Name())
	if err != nil {
		if !errors.Is(err, assets.ErrNotFound) {
			e.Logger.Warn("store lookup failed", "reference", ref.Key(), "error", err)
		}
		return nil, false
	}
	if !assets.Compatible(ref.Kind(), obj.Kind) {
		e.Logger.Debug("existing object has incompatible kind",
			"reference", ref.Key(),
			"kind", obj.Kind,
		)
		return nil, false
	}
	return obj, true
}

// Report records a diagnostic for the current document and logs it.
func (e *Env) Report(err *t3derrors.Error) {
	if err == nil {
		return
	}
	if err.Document == "" {
		err.Document = e.Document
	}
	e.Diagnostics.Add(err)

	level := slog.LevelWarn
	if err.Type == t3derrors.ErrorTypeUnknownKind {
		level = slog.LevelDebug
	}
	e.Logger.Log(context.Background(), level, err.Message,
		"type", string(err.Type),
		"document", err.Document,
		"line", err.Line,
		"object", err.Object,
	)
}

func lookupOnRegister(kind string) bool {
	return kind == "StaticMesh" || strings.HasPrefix(kind, "Texture")
}

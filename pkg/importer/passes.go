package importer

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/driver/instance"
	"forge-hq/t3dport/pkg/driver/material"
	"forge-hq/t3dport/pkg/resolver"
	"forge-hq/t3dport/pkg/t3d"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
	"forge-hq/t3dport/pkg/telemetry/logging"
	"forge-hq/t3dport/pkg/telemetry/tracing"
)

const (
	passMaterials = "materials"
	passInstances = "instances"
	passExisting  = "existing"
	passHooks     = "hooks"
)

// instanceDocument is an instance document read once and kept across
// drain passes.
type instanceDocument struct {
	path    string
	content string
	header  *instance.Header
}

// readDocument reads the document for ref. A missing or unreadable
// document is recorded as an IO diagnostic.
func (r *run) readDocument(ref resolver.Reference) (string, string, bool) {
	path := documentPath(r.req.Source, ref, r.extension)
	data, err := r.src.ReadFile(path)
	if err != nil {
		r.metrics.RecordDocument(r.req.Mode.String(), "failed")
		r.env.Report(t3derrors.IO(err, "Unable to load %s '%s'", ref.Kind(), path).At(path, 0).For(ref.Name()))
		return path, "", false
	}
	r.report.Documents++
	return path, string(data), true
}

// reportParseError records err when it is a document diagnostic and
// returns it otherwise.
func (r *run) reportParseError(env *driver.Env, err error) error {
	var derr *t3derrors.Error
	if errors.As(err, &derr) {
		r.metrics.RecordDocument(r.req.Mode.String(), "failed")
		env.Report(derr)
		return nil
	}
	return err
}

// materialPass builds every pending material once. Documents that turn out
// to be material instances are retyped for the instance pass.
func (r *run) materialPass(ctx context.Context) error {
	ctx, span := r.tracer.Start(logging.WithPass(ctx, passMaterials), "import.pass."+passMaterials)
	defer span.End()

	resolved := 0
	for _, ref := range r.env.Resolver.Pending(material.Kind) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.attempted[ref.Key()] {
			continue
		}
		r.attempted[ref.Key()] = true

		ok, err := r.buildMaterial(ctx, ref)
		if err != nil {
			tracing.SetError(span, err)
			return err
		}
		if ok {
			resolved++
		}
	}

	r.report.Passes[passMaterials]++
	r.metrics.RecordPass(passMaterials, 1, resolved)
	tracing.SetPassResult(span, passMaterials, 1, resolved)
	return nil
}

func (r *run) buildMaterial(ctx context.Context, ref resolver.Reference) (bool, error) {
	path, content, ok := r.readDocument(ref)
	if !ok {
		return false, nil
	}

	ctx, span := r.tracer.Start(logging.WithDocument(ctx, path), "import.document",
		trace.WithAttributes(tracing.DocumentAttributes(path, ref.Kind(), ref.Name())...))
	defer span.End()

	env := r.env.ForDocument(path, ref.Location())
	mat, err := material.Parse(ctx, t3d.NewCursor(content), env, ref)
	switch {
	case errors.Is(err, material.ErrReclassify):
		moved := r.env.Resolver.Retype(ref, instance.Kind)
		r.metrics.RecordDocument(r.req.Mode.String(), "reclassified")
		r.logger.DebugContext(ctx, "material document is an instance", "reference", moved.Key())
		return false, nil
	case err != nil:
		tracing.SetError(span, err)
		return false, r.reportParseError(env, err)
	}

	r.metrics.RecordDocument(r.req.Mode.String(), "parsed")
	r.materials = append(r.materials, mat)
	r.env.Resolver.Resolve(ref, mat.Object)
	return true, nil
}

// instancePass drains the pending instances. An instance waits for a parent
// that is itself a pending instance; once the drain stalls, instances that
// failed to build no longer hold their children back, so the drain runs
// again while the failed set grows.
func (r *run) instancePass(ctx context.Context) error {
	ctx, span := r.tracer.Start(logging.WithPass(ctx, passInstances), "import.pass."+passInstances)
	defer span.End()

	candidates := func() []resolver.Reference {
		return r.env.Resolver.Pending(instance.Kind)
	}

	passes, resolved := 0, 0
	for {
		failed := len(r.failed)
		stats, err := r.env.Resolver.Drain(ctx, candidates, r.attemptInstance)
		passes += stats.Passes
		resolved += len(stats.Resolved)
		if err != nil {
			tracing.SetError(span, err)
			return err
		}
		if len(r.failed) == failed {
			break
		}
	}

	r.report.Passes[passInstances] += passes
	r.metrics.RecordPass(passInstances, passes, resolved)
	tracing.SetPassResult(span, passInstances, passes, resolved)
	return nil
}

func (r *run) attemptInstance(ctx context.Context, ref resolver.Reference) (*assets.Object, bool) {
	if r.failed[ref.Key()] {
		return nil, false
	}

	doc, ok := r.instanceDocument(ref)
	if !ok {
		r.failed[ref.Key()] = true
		return nil, false
	}

	if parent := doc.header.Parent; !parent.IsZero() && !r.env.Resolver.IsResolved(parent) {
		if parent.Kind() == instance.Kind && r.env.Resolver.IsPending(parent) && !r.failed[parent.Key()] {
			return nil, false
		}
		if obj, ok := r.env.Existing(ctx, parent); ok {
			r.env.Resolver.Resolve(parent, obj)
		}
	}

	ctx, span := r.tracer.Start(logging.WithDocument(ctx, doc.path), "import.document",
		trace.WithAttributes(tracing.DocumentAttributes(doc.path, ref.Kind(), ref.Name())...))
	defer span.End()

	env := r.env.ForDocument(doc.path, ref.Location())
	inst, err := instance.Parse(ctx, t3d.NewCursor(doc.content), env, ref)
	if err != nil {
		tracing.SetError(span, err)
		if ctx.Err() == nil {
			r.failed[ref.Key()] = true
			if perr := r.reportParseError(env, err); perr != nil {
				env.Report(t3derrors.Wrap(t3derrors.ErrorTypeIO, perr, "failed to build %s", ref.Key()).For(ref.Name()))
			}
		}
		return nil, false
	}

	r.metrics.RecordDocument(r.req.Mode.String(), "parsed")
	r.instances = append(r.instances, inst)
	return inst.Object, true
}

// instanceDocument reads and caches the document and header of ref. A
// document whose header names a material is retyped for the material pass.
func (r *run) instanceDocument(ref resolver.Reference) (*instanceDocument, bool) {
	if doc, ok := r.documents[ref.Key()]; ok {
		return doc, true
	}

	path, content, ok := r.readDocument(ref)
	if !ok {
		return nil, false
	}

	env := r.env.ForDocument(path, ref.Location())
	header, err := instance.ParseHeader(t3d.NewCursor(content), ref.Location())
	if err != nil {
		if errors.Is(err, driver.ErrUnexpectedClass) && isMaterialClass(header) {
			r.env.Resolver.Retype(ref, material.Kind)
			r.metrics.RecordDocument(r.req.Mode.String(), "reclassified")
			return nil, false
		}
		r.reportParseError(env, err)
		return nil, false
	}

	doc := &instanceDocument{path: path, content: content, header: header}
	r.documents[ref.Key()] = doc
	return doc, true
}

func isMaterialClass(h *instance.Header) bool {
	return h != nil && (h.Class == "Material" || h.Class == "DecalMaterial")
}

// existingPass binds the references the importer never builds to objects
// already in the store.
func (r *run) existingPass(ctx context.Context) error {
	ctx, span := r.tracer.Start(logging.WithPass(ctx, passExisting), "import.pass."+passExisting)
	defer span.End()

	resolved := 0
	for _, ref := range r.env.Resolver.UnresolvedList() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !isExistingKind(ref.Kind()) {
			continue
		}
		if obj, ok := r.env.Existing(ctx, ref); ok && r.env.Resolver.Resolve(ref, obj) {
			resolved++
		}
	}

	r.report.Passes[passExisting]++
	r.metrics.RecordPass(passExisting, 1, resolved)
	tracing.SetPassResult(span, passExisting, 1, resolved)
	return nil
}

func isExistingKind(kind string) bool {
	switch kind {
	case "StaticMesh", "Material", "DecalMaterial":
		return true
	}
	return strings.HasPrefix(kind, "Texture")
}

// hooks commits and finalizes the products: materials first, then
// instances, then placed actors. A product that fails to commit is
// recorded and the others still run.
func (r *run) hooks(ctx context.Context) error {
	ctx, span := r.tracer.Start(logging.WithPass(ctx, passHooks), "import.pass."+passHooks)
	defer span.End()

	committed := 0
	for _, group := range [][]driver.Product{r.materials, r.instances, r.actors} {
		for _, p := range group {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.commit(ctx, p); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.env.Report(t3derrors.Wrap(t3derrors.ErrorTypeIO, err, "failed to commit %s", p.Target().Path()).
					For(p.Target().Name))
				continue
			}
			r.report.Constructed[p.Target().Kind]++
			committed++
		}
	}

	r.report.Passes[passHooks]++
	r.metrics.RecordPass(passHooks, 1, committed)
	tracing.SetPassResult(span, passHooks, 1, committed)
	return nil
}

func (r *run) commit(ctx context.Context, p driver.Product) error {
	obj := p.Target()
	w := driver.NewWriter(ctx, r.store, obj, r.env.Logger)
	if err := p.Commit(ctx, w); err != nil {
		return err
	}
	return r.store.Finalize(ctx, obj)
}

package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/driver/material"
	"forge-hq/t3dport/pkg/driver/scene"
	"forge-hq/t3dport/pkg/resolver"
	"forge-hq/t3dport/pkg/source"
	"forge-hq/t3dport/pkg/t3d"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
	"forge-hq/t3dport/pkg/telemetry/logging"
	"forge-hq/t3dport/pkg/telemetry/metrics"
	"forge-hq/t3dport/pkg/telemetry/tracing"
)

const (
	// DefaultLevelFile is the level document read in scene mode.
	DefaultLevelFile = "PersistentLevel.T3D"

	// DefaultExtension is the extension of T3D documents.
	DefaultExtension = ".T3D"
)

// Request describes one import run.
type Request struct {
	Mode Mode

	// Source is the directory holding the T3D export.
	Source string

	// Destination is the store path objects are created under.
	Destination string
}

// Importer runs imports against a store. An Importer can run any number
// of imports, one at a time; each run gets its own resolver.
type Importer struct {
	store     assets.Store
	src       source.Source
	logger    *slog.Logger
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	progress  ProgressReporter
	reporter  Reporter
	levelFile string
	extension string
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) { i.logger = logger }
}

// WithMetrics records run metrics in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(i *Importer) { i.metrics = c }
}

// WithTracer records spans for runs, passes and documents.
func WithTracer(t *tracing.Tracer) Option {
	return func(i *Importer) { i.tracer = t }
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(i *Importer) { i.progress = p }
}

// WithReporter sets where unresolved references are reported. The default
// logs them.
func WithReporter(r Reporter) Option {
	return func(i *Importer) { i.reporter = r }
}

// WithLevelFile overrides the level document name.
func WithLevelFile(name string) Option {
	return func(i *Importer) { i.levelFile = name }
}

// WithExtension overrides the document extension.
func WithExtension(ext string) Option {
	return func(i *Importer) { i.extension = ext }
}

// New creates an importer writing to store and reading from src.
func New(store assets.Store, src source.Source, opts ...Option) *Importer {
	i := &Importer{
		store:     store,
		src:       src,
		levelFile: DefaultLevelFile,
		extension: DefaultExtension,
	}
	for _, opt := range opts {
		opt(i)
	}

	if i.logger == nil {
		i.logger = slog.Default().With("component", "importer")
	}
	if i.progress == nil {
		i.progress = noopProgress{}
	}
	if i.reporter == nil {
		i.reporter = &LogReporter{Logger: i.logger}
	}
	return i
}

// run is the state of one Run call.
type run struct {
	*Importer

	req    Request
	env    *driver.Env
	report *Report
	logger *slog.Logger

	materials []driver.Product
	instances []driver.Product
	actors    []driver.Product

	// attempted holds the material references the material pass has tried.
	attempted map[string]bool

	// documents caches instance documents across drain passes; failed
	// holds instances that cannot be built.
	documents map[string]*instanceDocument
	failed    map[string]bool
}

// Run imports req. Local problems are recorded in the report's
// diagnostics; an error is returned only when the run could not complete,
// in which case the report holds what was done so far.
func (i *Importer) Run(ctx context.Context, req Request) (*Report, error) {
	req.Source = NormalizeSource(req.Source)
	req.Destination = NormalizeDestination(req.Destination)

	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithMode(ctx, req.Mode.String())

	ctx, span := i.tracer.Start(ctx, "import.run",
		trace.WithAttributes(tracing.RunAttributes(runID, req.Mode.String(), req.Source, req.Destination)...))
	defer span.End()

	logger := i.logger.With("run_id", runID, "mode", req.Mode.String())
	r := &run{
		Importer:  i,
		req:       req,
		env:       driver.NewEnv(i.store, req.Destination, logger.With("component", "driver")),
		report:    newReport(runID, req),
		logger:    logger,
		attempted: make(map[string]bool),
		documents: make(map[string]*instanceDocument),
		failed:    make(map[string]bool),
	}

	logger.InfoContext(ctx, "import started",
		"source", req.Source,
		"destination", req.Destination,
	)

	err := r.execute(ctx)
	r.report.collect(r.env)
	r.report.Duration = time.Since(r.report.StartedAt)

	status := "success"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = "cancelled"
	case err != nil:
		status = "error"
	}

	i.metrics.RecordRun(req.Mode.String(), status, r.report.Duration)
	i.metrics.SetUnresolved(req.Mode.String(), len(r.report.Unresolved))
	for _, d := range r.report.Diagnostics.Errors {
		i.metrics.RecordDiagnostic(string(d.Type))
	}
	for kind, n := range r.report.Constructed {
		i.metrics.RecordConstructed(kind, n)
	}

	tracing.SetRunResult(span, len(r.report.Unresolved), r.report.Diagnostics.Count())
	tracing.SetStatus(span, err)

	if err != nil {
		logger.WarnContext(ctx, "import stopped", "status", status, "error", err)
		return r.report, err
	}

	if rerr := i.reporter.ReportUnresolved(ctx, r.report.Unresolved); rerr != nil {
		logger.WarnContext(ctx, "failed to report unresolved references", "error", rerr)
	}

	logger.InfoContext(ctx, "import finished",
		"documents", r.report.Documents,
		"constructed", r.report.TotalConstructed(),
		"unresolved", len(r.report.Unresolved),
		"diagnostics", r.report.Diagnostics.Count(),
		"duration", r.report.Duration,
	)
	return r.report, nil
}

func (r *run) execute(ctx context.Context) error {
	var err error
	switch r.req.Mode {
	case ModeScene:
		err = r.executeScene(ctx)
	case ModeMesh, ModeMaterial, ModeMaterialInstance:
		err = r.executeBatch(ctx)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMode, r.req.Mode)
	}
	return err
}

func (r *run) executeScene(ctx context.Context) error {
	r.progress.Start(sceneSteps)
	defer r.progress.Finish()

	// Load the level document
	doc := source.Join(r.req.Source, r.levelFile)
	data, err := r.src.ReadFile(doc)
	if err != nil {
		r.metrics.RecordDocument(r.req.Mode.String(), "failed")
		ioErr := t3derrors.IO(err, "Unable to load level file %s", doc).At(doc, 0)
		r.env.Diagnostics.Add(ioErr)
		return ioErr
	}
	r.report.Documents++
	r.progress.Update(1)

	// Parse the level. A malformed level is recorded and leaves nothing to
	// place.
	docCtx, span := r.tracer.Start(ctx, "import.document",
		trace.WithAttributes(tracing.DocumentAttributes(doc, "Level", r.levelFile)...))
	level, err := scene.ParseLevel(logging.WithDocument(docCtx, doc), t3d.NewCursor(string(data)), r.env.ForDocument(doc, ""))
	tracing.SetStatus(span, err)
	span.End()
	if level != nil {
		r.actors = level.Products
		for class, n := range level.Skipped {
			r.report.Skipped[class] += n
		}
	}
	var derr *t3derrors.Error
	switch {
	case errors.As(err, &derr):
		r.metrics.RecordDocument(r.req.Mode.String(), "failed")
		r.env.Report(derr)
	case err != nil:
		r.metrics.RecordDocument(r.req.Mode.String(), "failed")
		return err
	default:
		r.metrics.RecordDocument(r.req.Mode.String(), "parsed")
	}
	r.progress.Update(2)

	return r.resolveAndCommit(ctx, 2, sceneSteps)
}

func (r *run) executeBatch(ctx context.Context) error {
	r.progress.Start(batchSteps)
	defer r.progress.Finish()

	// Scan the source tree
	files, err := r.src.ListFiles(r.req.Source, r.extension)
	if err != nil {
		return t3derrors.IO(err, "Unable to list %s", r.req.Source)
	}
	r.progress.Update(1)

	// Register one placeholder per document
	kind := r.req.Mode.ResourceKind()
	for _, rel := range files {
		ref := documentReference(kind, rel)
		r.env.Resolver.Register(ref, nil)
		r.logger.DebugContext(ctx, "registered document", "reference", ref.Key())
	}
	r.progress.Update(2)

	return r.resolveAndCommit(ctx, 2, batchSteps)
}

// resolveAndCommit runs the resolve passes and hooks, advancing progress
// from step to total.
func (r *run) resolveAndCommit(ctx context.Context, step, total int64) error {
	// Build materials and instances until neither finds new work
	for {
		if err := r.materialPass(ctx); err != nil {
			return err
		}
		if err := r.instancePass(ctx); err != nil {
			return err
		}
		if !r.hasUnattemptedMaterials() {
			break
		}
	}
	r.progress.Update(step + (total-step)/3)

	// Bind what already exists
	if err := r.existingPass(ctx); err != nil {
		return err
	}
	r.progress.Update(step + 2*(total-step)/3)

	// Commit products
	if err := r.hooks(ctx); err != nil {
		return err
	}
	r.progress.Update(total)
	return nil
}

func (r *run) hasUnattemptedMaterials() bool {
	for _, ref := range r.env.Resolver.Pending(material.Kind) {
		if !r.attempted[ref.Key()] {
			return true
		}
	}
	return false
}

// documentReference builds the reference of a scanned document from its
// slash-separated path relative to the source root.
func documentReference(kind, rel string) resolver.Reference {
	rel = rel[:len(rel)-len(path.Ext(rel))]
	dir, name := "", rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		dir, name = rel[:i], rel[i+1:]
	}
	return resolver.NewReference(kind, strings.ReplaceAll(dir, "/", "."), name)
}

// documentPath returns where the document for ref lives under root.
func documentPath(root string, ref resolver.Reference, ext string) string {
	rel := ref.Name() + ext
	if dir := ref.Dir(); dir != "" {
		rel = dir + "/" + rel
	}
	return source.Join(root, rel)
}

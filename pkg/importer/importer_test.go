package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/config"
	"forge-hq/t3dport/pkg/driver/instance"
	"forge-hq/t3dport/pkg/source"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
	"forge-hq/t3dport/pkg/telemetry/metrics"
)

// memSource serves documents from a map keyed by slash path.
type memSource struct {
	files map[string]string
	fail  map[string]bool
}

func (s *memSource) ReadFile(name string) ([]byte, error) {
	if s.fail[name] {
		return nil, fmt.Errorf("read %s: permission denied", name)
	}
	content, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, source.ErrNotExist)
	}
	return []byte(content), nil
}

func (s *memSource) ListFiles(root, ext string) ([]string, error) {
	var files []string
	for name := range s.files {
		rel, ok := strings.CutPrefix(name, root+"/")
		if ok && strings.EqualFold(path.Ext(rel), ext) {
			files = append(files, rel)
		}
	}
	for name := range s.fail {
		if rel, ok := strings.CutPrefix(name, root+"/"); ok {
			files = append(files, rel)
		}
	}
	sort.Strings(files)
	return files, nil
}

// recordingReporter keeps the entries it is given.
type recordingReporter struct {
	entries []UnresolvedEntry
	calls   int
}

func (r *recordingReporter) ReportUnresolved(ctx context.Context, entries []UnresolvedEntry) error {
	r.calls++
	r.entries = append([]UnresolvedEntry(nil), entries...)
	return nil
}

// recordingProgress keeps the progress calls it receives.
type recordingProgress struct {
	total    int64
	updates  []int64
	finished bool
}

func (p *recordingProgress) Start(total int64)    { p.total = total }
func (p *recordingProgress) Update(current int64) { p.updates = append(p.updates, current) }
func (p *recordingProgress) Finish()              { p.finished = true }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestImporter(store assets.Store, src source.Source, opts ...Option) *Importer {
	return New(store, src, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func create(t *testing.T, store assets.Store, kind, location, name string) *assets.Object {
	t.Helper()
	obj, err := store.LocateOrCreate(context.Background(), kind, location, name)
	if err != nil {
		t.Fatalf("LocateOrCreate(%s) error = %v", name, err)
	}
	return obj
}

func instanceDoc(name, parent string) string {
	return fmt.Sprintf("Begin Object Class=MaterialInstanceConstant Name=%s\n   Parent=%s\nEnd Object\n", name, parent)
}

const testMaterial = `Begin Object Class=Material Name=M_Rock
   Begin Object Class=MaterialExpressionConstant Name=MaterialExpressionConstant_0
      R=0.500000
      EditorX=-100
      EditorY=20
   End Object
   DiffuseColor=(Expression=MaterialExpressionConstant'MaterialExpressionConstant_0')
   TwoSided=True
End Object
`

const testLevel = `Begin Object Class=Level Name=PersistentLevel
   Begin Object Class=StaticMeshActor Name=StaticMeshActor_0
      Begin Object Class=StaticMeshComponent Name=StaticMeshComponent0
         StaticMesh=StaticMesh'Props.SM_Rock'
      End Object
      Location=(X=10.000000,Y=0.000000,Z=0.000000)
   End Object
   Begin Object Class=StaticMeshActor Name=StaticMeshActor_1
      Begin Object Class=StaticMeshComponent Name=StaticMeshComponent0
         StaticMesh=StaticMesh'Props.SM_Missing'
      End Object
   End Object
End Object
`

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"scene", ModeScene, false},
		{"Map", ModeScene, false},
		{"mesh", ModeMesh, false},
		{"StaticMesh", ModeMesh, false},
		{"material", ModeMaterial, false},
		{"material-instance", ModeMaterialInstance, false},
		{"MaterialInstanceConstant", ModeMaterialInstance, false},
		{"mic", ModeMaterialInstance, false},
		{"texture", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownMode) {
				t.Errorf("ParseMode(%q) error = %v, want ErrUnknownMode", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, source, destination string
	}{
		{`C:\Exports\Forest\`, "C:/Exports/Forest", "C:/Exports/Forest"},
		{"/Maps/Forest/", "/Maps/Forest", "Maps/Forest"},
		{"Maps", "Maps", "Maps"},
		{"", "", ""},
	}

	for _, tt := range tests {
		if got := NormalizeSource(tt.in); got != tt.source {
			t.Errorf("NormalizeSource(%q) = %q, want %q", tt.in, got, tt.source)
		}
		if got := NormalizeDestination(tt.in); got != tt.destination {
			t.Errorf("NormalizeDestination(%q) = %q, want %q", tt.in, got, tt.destination)
		}
	}
}

func TestDocumentReference(t *testing.T) {
	tests := []struct {
		rel, location, name string
	}{
		{"a/b.T3D", "a", "b"},
		{"a/c/d.t3d", "a.c", "d"},
		{"top.T3D", "", "top"},
	}

	for _, tt := range tests {
		ref := documentReference("StaticMesh", tt.rel)
		if ref.Location() != tt.location || ref.Name() != tt.name || ref.Kind() != "StaticMesh" {
			t.Errorf("documentReference(%q) = %v, want (%s, %s)", tt.rel, ref, tt.location, tt.name)
		}
	}
}

func TestBatchScan(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"a/b.T3D", "a/c/d.T3D", "a/notes.txt"} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("Begin Object Class=StaticMesh Name=x\nEnd Object\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store := assets.NewMemoryStore(assets.DefaultSchema)
	mesh := create(t, store, "StaticMesh", "/Game/Dest/a", "b")

	reporter := &recordingReporter{}
	imp := newTestImporter(store, source.NewOSSource(), WithReporter(reporter))

	report, err := imp.Run(context.Background(), Request{Mode: ModeMesh, Source: root + "/", Destination: "/Dest/"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []UnresolvedEntry{
		{Kind: "StaticMesh", Location: "a.c", Name: "d", Path: "/Game/Dest/a/c/d.d"},
	}
	if fmt.Sprint(report.Unresolved) != fmt.Sprint(want) {
		t.Errorf("Unresolved = %v, want %v", report.Unresolved, want)
	}
	if reporter.calls != 1 || len(reporter.entries) != 1 {
		t.Errorf("reporter got %d calls with %v", reporter.calls, reporter.entries)
	}
	if mesh.Finalized != 0 {
		t.Errorf("existing mesh finalized %d times, want 0", mesh.Finalized)
	}
	if report.Destination != "Dest" {
		t.Errorf("Destination = %q, want Dest", report.Destination)
	}
}

func TestSceneEndToEnd(t *testing.T) {
	store := assets.NewMemoryStore(assets.DefaultSchema)
	rock := create(t, store, "StaticMesh", "/Game/Imported/Props", "SM_Rock")

	src := &memSource{files: map[string]string{"export/PersistentLevel.T3D": testLevel}}
	reporter := &recordingReporter{}
	progress := &recordingProgress{}
	imp := newTestImporter(store, src, WithReporter(reporter), WithProgress(progress))

	report, err := imp.Run(context.Background(), Request{Mode: ModeScene, Source: "export", Destination: "Imported"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := report.Constructed["StaticMeshActor"]; got != 2 {
		t.Errorf("Constructed[StaticMeshActor] = %d, want 2", got)
	}
	if report.Documents != 1 {
		t.Errorf("Documents = %d, want 1", report.Documents)
	}

	want := UnresolvedEntry{Kind: "StaticMesh", Location: "Props", Name: "SM_Missing", Path: "/Game/Imported/Props/SM_Missing.SM_Missing"}
	if len(report.Unresolved) != 1 || report.Unresolved[0] != want {
		t.Errorf("Unresolved = %v, want [%v]", report.Unresolved, want)
	}
	if len(reporter.entries) != 1 || reporter.entries[0].String() != "Failed to find StaticMesh '/Game/Imported/Props/SM_Missing.SM_Missing'" {
		t.Errorf("reported %v", reporter.entries)
	}

	actors, err := store.Objects(context.Background(), "StaticMeshActor")
	if err != nil {
		t.Fatalf("Objects() error = %v", err)
	}
	linked := 0
	for _, a := range actors {
		if a.Finalized != 1 {
			t.Errorf("%s finalized %d times, want 1", a.Name, a.Finalized)
		}
		if got, ok := a.Link("StaticMesh"); ok {
			linked++
			if got != rock.Path() {
				t.Errorf("%s StaticMesh = %q, want %q", a.Name, got, rock.Path())
			}
		}
	}
	if linked != 1 {
		t.Errorf("%d actors linked to a mesh, want 1", linked)
	}

	if progress.total != sceneSteps || !progress.finished {
		t.Errorf("progress total = %d finished = %v", progress.total, progress.finished)
	}
	if n := len(progress.updates); n == 0 || progress.updates[n-1] != sceneSteps {
		t.Errorf("progress updates = %v, want last %d", progress.updates, sceneSteps)
	}
}

func TestSceneMissingLevel(t *testing.T) {
	store := assets.NewMemoryStore(assets.DefaultSchema)
	imp := newTestImporter(store, &memSource{})

	report, err := imp.Run(context.Background(), Request{Mode: ModeScene, Source: "export", Destination: "Imported"})
	if !t3derrors.Is(err, t3derrors.ErrorTypeIO) {
		t.Fatalf("Run() error = %v, want io error", err)
	}
	if report == nil || !report.Diagnostics.HasErrorType(t3derrors.ErrorTypeIO) {
		t.Errorf("report diagnostics missing io error: %+v", report)
	}
	if store.Count() != 0 {
		t.Errorf("store has %d objects, want 0", store.Count())
	}
}

func TestSceneMalformedLevel(t *testing.T) {
	store := assets.NewMemoryStore(assets.DefaultSchema)
	src := &memSource{files: map[string]string{"export/PersistentLevel.T3D": "Begin Object Class=Foo Name=Bar\nEnd Object\n"}}

	report, err := newTestImporter(store, src).Run(context.Background(), Request{Mode: ModeScene, Source: "export", Destination: "Imported"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.Diagnostics.HasErrorType(t3derrors.ErrorTypeStructural) {
		t.Error("malformed level not reported as structural")
	}
	if report.TotalConstructed() != 0 {
		t.Errorf("TotalConstructed() = %d, want 0", report.TotalConstructed())
	}
}

func TestMaterialBatchIsIdempotent(t *testing.T) {
	stores := map[string]func(t *testing.T) assets.Store{
		"memory": func(t *testing.T) assets.Store {
			return assets.NewMemoryStore(assets.DefaultSchema)
		},
		"sqlite": func(t *testing.T) assets.Store {
			store, err := assets.NewSQLiteStore(&assets.SQLiteConfig{
				Path:        filepath.Join(t.TempDir(), "assets.db"),
				Driver:      assets.DriverModernc,
				WALMode:     true,
				BusyTimeout: 5 * time.Second,
				Schema:      assets.DefaultSchema,
			})
			if err != nil {
				t.Fatalf("NewSQLiteStore() error = %v", err)
			}
			t.Cleanup(func() { store.Close() })
			return store
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			src := &memSource{files: map[string]string{"export/Props/M_Rock.T3D": testMaterial}}
			imp := newTestImporter(store, src)
			req := Request{Mode: ModeMaterial, Source: "export", Destination: "Imported"}

			var snapshots []map[string]string
			for run := 0; run < 2; run++ {
				report, err := imp.Run(ctx, req)
				if err != nil {
					t.Fatalf("Run() #%d error = %v", run, err)
				}
				if got := report.Constructed["Material"]; got != 1 {
					t.Errorf("run %d Constructed[Material] = %d, want 1", run, got)
				}
				if len(report.Unresolved) != 0 {
					t.Errorf("run %d Unresolved = %v", run, report.Unresolved)
				}

				objs, err := store.Objects(ctx, "Material")
				if err != nil {
					t.Fatalf("Objects() error = %v", err)
				}
				if len(objs) != 1 {
					t.Fatalf("run %d has %d materials, want 1", run, len(objs))
				}
				snapshots = append(snapshots, maps.Clone(objs[0].Properties))
			}

			if len(snapshots[0]) == 0 {
				t.Fatal("material has no properties")
			}
			if fmt.Sprint(snapshots[0]) != fmt.Sprint(snapshots[1]) {
				t.Errorf("properties changed between runs:\n%v\n%v", snapshots[0], snapshots[1])
			}
		})
	}
}

func TestInstanceChain(t *testing.T) {
	store := assets.NewMemoryStore(assets.DefaultSchema)
	create(t, store, "Material", "/Game/Imported/Props", "M_Base")

	src := &memSource{files: map[string]string{
		"export/Props/MI_A.T3D": instanceDoc("MI_A", "MaterialInstanceConstant'Props.MI_B'"),
		"export/Props/MI_B.T3D": instanceDoc("MI_B", "MaterialInstanceConstant'Props.MI_C'"),
		"export/Props/MI_C.T3D": instanceDoc("MI_C", "Material'Props.M_Base'"),
	}}

	report, err := newTestImporter(store, src).Run(context.Background(),
		Request{Mode: ModeMaterialInstance, Source: "export", Destination: "Imported"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := report.Passes[passInstances]; got < 1 || got > 3 {
		t.Errorf("Passes[instances] = %d, want at most 3", got)
	}
	if got := report.Constructed[instance.Kind]; got != 3 {
		t.Errorf("Constructed[%s] = %d, want 3", instance.Kind, got)
	}
	if len(report.Unresolved) != 0 {
		t.Errorf("Unresolved = %v, want none", report.Unresolved)
	}

	parents := map[string]string{
		"MI_A": "/Game/Imported/Props/MI_B.MI_B",
		"MI_B": "/Game/Imported/Props/MI_C.MI_C",
		"MI_C": "/Game/Imported/Props/M_Base.M_Base",
	}
	for name, want := range parents {
		obj, err := store.Lookup(context.Background(), "/Game/Imported/Props", name)
		if err != nil {
			t.Fatalf("Lookup(%s) error = %v", name, err)
		}
		if got, _ := obj.Link("Parent"); got != want {
			t.Errorf("%s Parent = %q, want %q", name, got, want)
		}
	}
}

func TestInstanceMutualParents(t *testing.T) {
	store := assets.NewMemoryStore(assets.DefaultSchema)
	src := &memSource{files: map[string]string{
		"export/Props/MI_X.T3D": instanceDoc("MI_X", "MaterialInstanceConstant'Props.MI_Y'"),
		"export/Props/MI_Y.T3D": instanceDoc("MI_Y", "MaterialInstanceConstant'Props.MI_X'"),
	}}

	report, err := newTestImporter(store, src).Run(context.Background(),
		Request{Mode: ModeMaterialInstance, Source: "export", Destination: "Imported"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var names []string
	for _, e := range report.Unresolved {
		if e.Kind != instance.Kind {
			t.Errorf("unresolved kind = %q, want %s", e.Kind, instance.Kind)
		}
		names = append(names, e.Name)
	}
	if strings.Join(names, ",") != "MI_X,MI_Y" {
		t.Errorf("unresolved = %v, want MI_X,MI_Y", names)
	}
	if report.TotalConstructed() != 0 {
		t.Errorf("TotalConstructed() = %d, want 0", report.TotalConstructed())
	}
}

func TestMaterialReclassifiedAsInstance(t *testing.T) {
	store := assets.NewMemoryStore(assets.DefaultSchema)
	create(t, store, "Material", "/Game/Imported/Props", "M_Base")
	src := &memSource{files: map[string]string{
		"export/Props/MI_Rock.T3D": instanceDoc("MI_Rock", "Material'Props.M_Base'"),
	}}

	report, err := newTestImporter(store, src).Run(context.Background(),
		Request{Mode: ModeMaterial, Source: "export", Destination: "Imported"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := report.Constructed[instance.Kind]; got != 1 {
		t.Errorf("Constructed[%s] = %d, want 1", instance.Kind, got)
	}
	if got := report.Constructed["Material"]; got != 0 {
		t.Errorf("Constructed[Material] = %d, want 0", got)
	}
	if len(report.Unresolved) != 0 {
		t.Errorf("Unresolved = %v, want none", report.Unresolved)
	}

	obj, err := store.Lookup(context.Background(), "/Game/Imported/Props", "MI_Rock")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if obj.Kind != instance.Kind {
		t.Errorf("Kind = %q, want %s", obj.Kind, instance.Kind)
	}
}

func TestBatchSkipsUnreadableDocument(t *testing.T) {
	store := assets.NewMemoryStore(assets.DefaultSchema)
	src := &memSource{
		files: map[string]string{"export/Props/M_Rock.T3D": testMaterial},
		fail:  map[string]bool{"export/Props/M_Bad.T3D": true},
	}

	report, err := newTestImporter(store, src).Run(context.Background(),
		Request{Mode: ModeMaterial, Source: "export", Destination: "Imported"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !report.Diagnostics.HasErrorType(t3derrors.ErrorTypeIO) {
		t.Error("unreadable document not reported")
	}
	if got := report.Constructed["Material"]; got != 1 {
		t.Errorf("Constructed[Material] = %d, want 1", got)
	}
	if len(report.Unresolved) != 1 || report.Unresolved[0].Name != "M_Bad" {
		t.Errorf("Unresolved = %v, want M_Bad", report.Unresolved)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := assets.NewMemoryStore(assets.DefaultSchema)
	src := &memSource{files: map[string]string{"export/Props/M_Rock.T3D": testMaterial}}

	report, err := newTestImporter(store, src).Run(ctx, Request{Mode: ModeMaterial, Source: "export", Destination: "Imported"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if report == nil {
		t.Fatal("Run() returned no partial report")
	}
	if report.TotalConstructed() != 0 {
		t.Errorf("TotalConstructed() = %d, want 0", report.TotalConstructed())
	}
}

func TestRunRecordsMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, registry)

	store := assets.NewMemoryStore(assets.DefaultSchema)
	src := &memSource{files: map[string]string{"export/Props/M_Rock.T3D": testMaterial}}
	imp := newTestImporter(store, src, WithMetrics(collector))

	if _, err := imp.Run(context.Background(), Request{Mode: ModeMaterial, Source: "export", Destination: "Imported"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if n, err := testutil.GatherAndCount(registry, "test_runs_total"); err != nil || n != 1 {
		t.Errorf("runs_total series = %d (err %v), want 1", n, err)
	}
	if n, err := testutil.GatherAndCount(registry, "test_constructed_objects_total"); err != nil || n != 1 {
		t.Errorf("constructed_objects_total series = %d (err %v), want 1", n, err)
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &LogReporter{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	err := r.ReportUnresolved(context.Background(), []UnresolvedEntry{
		{Kind: "Texture2D", Location: "Props", Name: "T_Rock", Path: "/Game/Imported/Props/T_Rock.T_Rock"},
	})
	if err != nil {
		t.Fatalf("ReportUnresolved() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Failed to find Texture2D '/Game/Imported/Props/T_Rock.T_Rock'") {
		t.Errorf("log = %q", buf.String())
	}
}

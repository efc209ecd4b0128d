package scene

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/resolver"
	"forge-hq/t3dport/pkg/t3d"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

const testLevel = `Begin Object Class=Level Name=PersistentLevel
   Begin Object Class=StaticMeshActor Name=StaticMeshActor_0 Archetype=StaticMeshActor'Engine.Default__StaticMeshActor'
      Begin Object Class=StaticMeshComponent Name=StaticMeshComponent0 ObjName=StaticMeshComponent_12
         StaticMesh=StaticMesh'Props.Rocks.SM_Rock'
         Begin Object Class=LightingChannels Name=Channels
         End Object
      End Object
      Location=(X=10.000000,Y=20.000000,Z=30.000000)
      DrawScale=2.000000
      DrawScale3D=(X=1.000000,Y=2.000000,Z=3.000000)
      Layer="Rocks"
   End Object
   Begin Object Class=Emitter Name=Emitter_0
      Begin Object Class=ParticleSystemComponent Name=ParticleSystemComponent0
      End Object
   End Object
   Begin Object Class=PointLight Name=PointLight_0
      Begin Object Class=PointLightComponent Name=PointLightComponent0
         Radius=1024.000000
         Brightness=2.000000
         LightColor=(B=255,G=128,R=64,A=0)
      End Object
      Location=(X=0.000000,Y=0.000000,Z=100.000000)
   End Object
   Begin Object Class=SpotLight Name=SpotLight_0
      Begin Object Class=SpotLightComponent Name=SpotLightComponent0
         InnerConeAngle=10.000000
         OuterConeAngle=44.000000
      End Object
      Rotation=(Pitch=-16384,Yaw=0,Roll=0)
      DrawScale3D=(X=-1.000000,Y=1.000000,Z=1.000000)
   End Object
   Begin Object Class=Brush Name=Brush_0
      CsgOper=CSG_Subtract
      Begin Brush Name=Model_1
         Begin PolyList
            Begin Polygon Texture=Walls.M_Brick Link=3
               VERTEX   +00000.000000,+00000.000000,+00000.000000
               VERTEX   +00000.000000,+00100.000000,+00000.000000
               VERTEX   +00100.000000,+00100.000000,+00000.000000
            End Polygon
            Begin Polygon Texture=Walls.M_Broken
               VERTEX   +00000.000000,+00000.000000,+00000.000000
               VERTEX   +00001.000000,+00001.000000,+00001.000000
            End Polygon
         End PolyList
      End Brush
      Location=(X=5.000000,Y=0.000000,Z=0.000000)
   End Object
   Begin Object Class=SoundCue Name=A_Wind
      FirstNode=SoundNodeWave'Ambient.Wind'
   End Object
End Object
`

func parseTestLevel(t *testing.T, store *assets.MemoryStore) (*Level, *driver.Env) {
	t.Helper()
	env := driver.NewEnv(store, "Imported", nil).ForDocument("PersistentLevel.T3D", "")
	level, err := ParseLevel(context.Background(), t3d.NewCursor(testLevel), env)
	if err != nil {
		t.Fatalf("ParseLevel() error = %v", err)
	}
	return level, env
}

func commit(t *testing.T, store assets.Store, p driver.Product) {
	t.Helper()
	w := driver.NewWriter(context.Background(), store, p.Target(), nil)
	if err := p.Commit(context.Background(), w); err != nil {
		t.Fatalf("Commit(%s) error = %v", p.Target().Name, err)
	}
}

func TestParseLevel(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemoryStore(assets.DefaultSchema)
	mesh, err := store.LocateOrCreate(ctx, "StaticMesh", "/Game/Imported/Props/Rocks", "SM_Rock")
	if err != nil {
		t.Fatalf("LocateOrCreate() error = %v", err)
	}

	level, env := parseTestLevel(t, store)

	if got := len(level.Products); got != 5 {
		t.Fatalf("len(Products) = %d, want 5", got)
	}
	if got := level.Skipped["Emitter"]; got != 1 {
		t.Errorf("Skipped[Emitter] = %d, want 1", got)
	}
	if !env.Diagnostics.HasErrorType(t3derrors.ErrorTypeUnknownKind) {
		t.Error("no unknown_kind diagnostic for the emitter")
	}

	for _, p := range level.Products {
		if got, want := p.Target().Location, "/Game/Imported/PersistentLevel"; got != want {
			t.Errorf("%s location = %q, want %q", p.Target().Name, got, want)
		}
	}

	pl, ok := level.Products[0].(*Placement)
	if !ok {
		t.Fatalf("Products[0] = %T, want *Placement", level.Products[0])
	}
	if pl.StaticMesh != mesh {
		t.Error("existing static mesh was not bound at registration")
	}
	if want := (t3d.Vector{X: 10, Y: 20, Z: 30}); pl.Location != want {
		t.Errorf("Location = %v, want %v", pl.Location, want)
	}
	if want := (t3d.Vector{X: 2, Y: 4, Z: 6}); pl.Scale != want {
		t.Errorf("Scale = %v, want %v", pl.Scale, want)
	}
	if len(pl.Layers) != 1 || pl.Layers[0] != "Rocks" {
		t.Errorf("Layers = %v, want [Rocks]", pl.Layers)
	}

	light := level.Products[1].(*PointLight)
	if light.Radius != 1024 {
		t.Errorf("Radius = %v, want 1024", light.Radius)
	}
	if light.Intensity != 10000 {
		t.Errorf("Intensity = %v, want 10000", light.Intensity)
	}
	if want := (t3d.Color{R: 64, G: 128, B: 255}); light.LightColor != want {
		t.Errorf("LightColor = %v, want %v", light.LightColor, want)
	}

	spot := level.Products[2].(*SpotLight)
	if math.Abs(spot.Rotation.Pitch-90) > 1e-3 {
		t.Errorf("spot Pitch = %v, want 90", spot.Rotation.Pitch)
	}
	if spot.InnerConeAngle != 10 || spot.OuterConeAngle != 44 {
		t.Errorf("cone angles = %v, %v, want 10, 44", spot.InnerConeAngle, spot.OuterConeAngle)
	}

	brush := level.Products[3].(*Brush)
	if !brush.Subtractive {
		t.Error("Subtractive = false, want true")
	}
	if len(brush.Polys) != 1 || brush.Dropped != 1 {
		t.Fatalf("len(Polys) = %d, Dropped = %d, want 1, 1", len(brush.Polys), brush.Dropped)
	}
	if brush.Polys[0].Link != 3 {
		t.Errorf("Link = %d, want 3", brush.Polys[0].Link)
	}
	if want := (t3d.Vector{Z: 1}); brush.Polys[0].Normal != want {
		t.Errorf("Normal = %v, want %v", brush.Polys[0].Normal, want)
	}

	if _, ok := level.Products[4].(*SoundCue); !ok {
		t.Errorf("Products[4] = %T, want *SoundCue", level.Products[4])
	}
}

func TestParseLevelRegistersReferences(t *testing.T) {
	store := assets.NewMemoryStore(assets.DefaultSchema)
	_, env := parseTestLevel(t, store)

	want := []string{
		"StaticMesh'Props.Rocks.SM_Rock'",
		"Material'Walls.M_Brick'",
		"Material'Walls.M_Broken'",
		"SoundNodeWave'Ambient.Wind'",
	}
	var got []string
	for ref := range env.Resolver.Unresolved() {
		got = append(got, ref.Key())
	}
	if len(got) != len(want) {
		t.Fatalf("Unresolved() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Unresolved()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBrushTextureFollowsPolygon(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemoryStore(assets.DefaultSchema)
	level, env := parseTestLevel(t, store)

	brick, err := store.LocateOrCreate(ctx, "Material", "/Game/Imported/Walls", "M_Brick")
	if err != nil {
		t.Fatalf("LocateOrCreate() error = %v", err)
	}
	env.Resolver.Resolve(resolver.NewReference("Material", "Walls", "M_Brick"), brick)

	brush := level.Products[3].(*Brush)
	commit(t, store, brush)

	if got, _ := brush.Object.Link("Polys[0].Material"); got != brick.Path() {
		t.Errorf("Polys[0].Material = %q, want %q", got, brick.Path())
	}
	if got, _ := brush.Object.Property("BrushType"); got != "Brush_Subtract" {
		t.Errorf("BrushType = %q, want Brush_Subtract", got)
	}
	if _, ok := brush.Object.Property("Polys[1].Base"); ok {
		t.Error("dropped polygon was committed")
	}
}

func TestCommitPlacement(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemoryStore(assets.DefaultSchema)
	mesh, _ := store.LocateOrCreate(ctx, "StaticMesh", "/Game/Imported/Props/Rocks", "SM_Rock")
	level, _ := parseTestLevel(t, store)

	pl := level.Products[0].(*Placement)
	commit(t, store, pl)

	props := map[string]string{
		"Location": "X=10,Y=20,Z=30",
		"Scale":    "X=2,Y=4,Z=6",
		"Layers":   "Rocks",
	}
	for name, want := range props {
		if got, _ := pl.Object.Property(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if got, _ := pl.Object.Link("StaticMesh"); got != mesh.Path() {
		t.Errorf("StaticMesh link = %q, want %q", got, mesh.Path())
	}
}

func TestParseLevelReimportResetsActors(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemoryStore(assets.DefaultSchema)

	obj, err := store.LocateOrCreate(ctx, "PointLight", "/Game/Imported/PersistentLevel", "PointLight_0")
	if err != nil {
		t.Fatalf("LocateOrCreate() error = %v", err)
	}
	if err := store.ApplyProperty(ctx, obj, "Layers", "Stale"); err != nil {
		t.Fatalf("ApplyProperty() error = %v", err)
	}

	parseTestLevel(t, store)

	if _, ok := obj.Property("Layers"); ok {
		t.Error("stale property survived re-import")
	}
}

func TestParseLevelHeader(t *testing.T) {
	env := driver.NewEnv(assets.NewMemoryStore(nil), "Imported", nil)
	_, err := ParseLevel(context.Background(), t3d.NewCursor("Begin Object Class=Level Name=Other\nEnd Object"), env)
	if !t3derrors.Is(err, t3derrors.ErrorTypeStructural) {
		t.Errorf("ParseLevel() error = %v, want structural", err)
	}
}

func TestParseLevelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := driver.NewEnv(assets.NewMemoryStore(nil), "Imported", nil)
	_, err := ParseLevel(ctx, t3d.NewCursor(testLevel), env)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ParseLevel() error = %v, want context.Canceled", err)
	}
}

func TestPrePivot(t *testing.T) {
	const doc = `Begin Object Class=Level Name=PersistentLevel
Begin Object Class=StaticMeshActor Name=StaticMeshActor_1
Location=(X=100.000000,Y=0.000000,Z=0.000000)
PrePivot=(X=10.000000,Y=0.000000,Z=0.000000)
Rotation=(Pitch=0,Yaw=16384,Roll=0)
End Object
End Object`

	env := driver.NewEnv(assets.NewMemoryStore(nil), "Imported", nil)
	level, err := ParseLevel(context.Background(), t3d.NewCursor(doc), env)
	if err != nil {
		t.Fatalf("ParseLevel() error = %v", err)
	}

	pl := level.Products[0].(*Placement)
	// yaw 90 turns the pivot offset onto +Y
	if math.Abs(pl.Location.X-100) > 1e-3 || math.Abs(pl.Location.Y+10) > 1e-3 {
		t.Errorf("Location = %v, want X=100,Y=-10", pl.Location)
	}
}

func TestCommitLightOnlyWritesParsedProperties(t *testing.T) {
	const doc = `Begin Object Class=Level Name=PersistentLevel
Begin Object Class=PointLight Name=PointLight_1
Begin Object Class=PointLightComponent Name=PointLightComponent0
Brightness=2.000000
End Object
End Object
Begin Object Class=SpotLight Name=SpotLight_1
Begin Object Class=SpotLightComponent Name=SpotLightComponent0
OuterConeAngle=30.000000
End Object
End Object
End Object`

	store := assets.NewMemoryStore(assets.DefaultSchema)
	env := driver.NewEnv(store, "Imported", nil)
	level, err := ParseLevel(context.Background(), t3d.NewCursor(doc), env)
	if err != nil {
		t.Fatalf("ParseLevel() error = %v", err)
	}
	if got := len(level.Products); got != 2 {
		t.Fatalf("len(Products) = %d, want 2", got)
	}

	tests := []struct {
		name    string
		product driver.Product
		want    map[string]string
		absent  []string
	}{
		{
			name:    "point light",
			product: level.Products[0],
			want:    map[string]string{"Intensity": "10000"},
			absent:  []string{"AttenuationRadius", "LightColor"},
		},
		{
			name:    "spot light",
			product: level.Products[1],
			want:    map[string]string{"OuterConeAngle": "30"},
			absent:  []string{"AttenuationRadius", "Intensity", "LightColor", "InnerConeAngle"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commit(t, store, tt.product)
			obj := tt.product.Target()
			for name, want := range tt.want {
				if got, _ := obj.Property(name); got != want {
					t.Errorf("%s = %q, want %q", name, got, want)
				}
			}
			for _, name := range tt.absent {
				if got, ok := obj.Property(name); ok {
					t.Errorf("%s = %q, want unset", name, got)
				}
			}
		})
	}
}

func TestParseLevelLogsUnknownActorProperties(t *testing.T) {
	const doc = `Begin Object Class=Level Name=PersistentLevel
Begin Object Class=StaticMeshActor Name=StaticMeshActor_1
Weird=thing
End Object
Begin Object Class=PointLight Name=PointLight_1
Flicker=True
End Object
End Object`

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	env := driver.NewEnv(assets.NewMemoryStore(nil), "Imported", logger)

	if _, err := ParseLevel(context.Background(), t3d.NewCursor(doc), env); err != nil {
		t.Fatalf("ParseLevel() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"property=Weird", "object=StaticMeshActor_1", "property=Flicker", "object=PointLight_1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if env.Diagnostics.HasErrors() {
		t.Errorf("unknown properties produced diagnostics: %v", env.Diagnostics.ToError())
	}
}

func TestBrushReportsMalformedPolygonVectors(t *testing.T) {
	const doc = `Begin Object Class=Level Name=PersistentLevel
Begin Object Class=Brush Name=Brush_1
Begin Brush Name=Model_2
Begin PolyList
Begin Polygon
VERTEX   +00000.000000,+00000.000000,+00000.000000
VERTEX   +00000.000000,bogus,+00000.000000
VERTEX   +00100.000000,+00100.000000,+00000.000000
NORMAL   +00000.000000,+00000.000000,+00001.000000
End Polygon
End PolyList
End Brush
End Object
End Object`

	env := driver.NewEnv(assets.NewMemoryStore(nil), "Imported", nil)
	if _, err := ParseLevel(context.Background(), t3d.NewCursor(doc), env); err != nil {
		t.Fatalf("ParseLevel() error = %v", err)
	}

	structural := env.Diagnostics.ByType(t3derrors.ErrorTypeStructural)
	if len(structural) != 1 {
		t.Fatalf("structural diagnostics = %d, want 1", len(structural))
	}
	if msg := structural[0].Error(); !strings.Contains(msg, "VERTEX") {
		t.Errorf("diagnostic = %q, want it to name VERTEX", msg)
	}
	if structural[0].Object != "Brush_1" {
		t.Errorf("diagnostic object = %q, want Brush_1", structural[0].Object)
	}
}

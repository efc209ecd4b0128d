package instance

import (
	"context"
	"testing"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/resolver"
	"forge-hq/t3dport/pkg/t3d"
)

const rockInstance = `Begin Object Class=MaterialInstanceConstant Name=MI_Rock
   Begin Object Class=LightmassParameters Name=Lightmass
   End Object
   ScalarParameterValues(1)=(ParameterName="Roughness",ParameterValue=0.750000,ExpressionGUID=(A=1))
   TextureParameterValues(0)=(ParameterName="Diffuse",ParameterValue=Texture2D'Props.Textures.T_Rock_D',ExpressionGUID=(A=2))
   VectorParameterValues(0)=(ParameterName="Tint",ParameterValue=(R=1.000000,G=0.500000,B=0.000000,A=1.000000))
   Parent=Material'Props.M_Rock'
   bHasStaticPermutationResource=True
End Object
`

func TestParseHeader(t *testing.T) {
	cur := t3d.NewCursor(rockInstance)

	h, err := ParseHeader(cur, "Props")
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if h.Name != "MI_Rock" {
		t.Errorf("Name = %q, want MI_Rock", h.Name)
	}
	if got, want := h.Parent.Key(), "Material'Props.M_Rock'"; got != want {
		t.Errorf("Parent = %q, want %q", got, want)
	}
	if cur.Index() != 0 {
		t.Errorf("cursor not rewound, Index() = %d", cur.Index())
	}

	h, err = ParseHeader(t3d.NewCursor("Begin Object Class=MaterialInstanceConstant Name=MI_Orphan\nEnd Object"), "")
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if !h.Parent.IsZero() {
		t.Errorf("Parent = %v, want zero", h.Parent)
	}

	if _, err := ParseHeader(t3d.NewCursor("Begin Object Class=Material Name=M_Rock"), ""); err == nil {
		t.Error("ParseHeader(Material) error = nil, want error")
	}
}

func TestParseInstance(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemoryStore(assets.DefaultSchema)
	tex, err := store.LocateOrCreate(ctx, "Texture2D", "/Game/Imported/Props/Textures", "T_Rock_D")
	if err != nil {
		t.Fatalf("LocateOrCreate() error = %v", err)
	}

	env := driver.NewEnv(store, "Imported", nil).ForDocument("Props/MI_Rock.T3D", "Props")
	mic, err := Parse(ctx, t3d.NewCursor(rockInstance), env, resolver.NewReference(Kind, "Props", "MI_Rock"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(mic.Scalars) != 2 {
		t.Fatalf("len(Scalars) = %d, want 2", len(mic.Scalars))
	}
	if got := mic.Scalars[1]; got.Name != "Roughness" || got.Value != 0.75 {
		t.Errorf("Scalars[1] = %+v, want Roughness 0.75", got)
	}
	if len(mic.Textures) != 1 || mic.Textures[0].Value != tex || mic.Textures[0].Name != "Diffuse" {
		t.Errorf("Textures = %+v, want Diffuse bound to the existing texture", mic.Textures)
	}
	if want := (t3d.Color{R: 1, G: 0.5, A: 1}); len(mic.Vectors) != 1 || mic.Vectors[0].Value != want {
		t.Errorf("Vectors = %+v, want Tint %v", mic.Vectors, want)
	}

	parentRef := resolver.NewReference("Material", "Props", "M_Rock")
	if !env.Resolver.IsPending(parentRef) {
		t.Fatal("parent reference not registered")
	}
	parent, _ := store.LocateOrCreate(ctx, "Material", "/Game/Imported/Props", "M_Rock")
	env.Resolver.Resolve(parentRef, parent)

	w := driver.NewWriter(ctx, store, mic.Target(), nil)
	if err := mic.Commit(ctx, w); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	obj := mic.Object
	props := map[string]string{
		"ScalarParameterValues[0].ParameterName":  "",
		"ScalarParameterValues[1].ParameterName":  "Roughness",
		"ScalarParameterValues[1].ParameterValue": "0.75",
		"TextureParameterValues[0].ParameterName": "Diffuse",
		"VectorParameterValues[0].ParameterValue": "(R=1,G=0.5,B=0,A=1)",
	}
	for name, want := range props {
		if got, _ := obj.Property(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if got, _ := obj.Link("Parent"); got != parent.Path() {
		t.Errorf("Parent link = %q, want %q", got, parent.Path())
	}
	if got, _ := obj.Link("TextureParameterValues[0].ParameterValue"); got != tex.Path() {
		t.Errorf("texture link = %q, want %q", got, tex.Path())
	}
}

func TestParseInstanceResetsParameters(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemoryStore(assets.DefaultSchema)
	env := driver.NewEnv(store, "Imported", nil)
	ref := resolver.NewReference(Kind, "Props", "MI_Rock")

	first, err := Parse(ctx, t3d.NewCursor(rockInstance), env, ref)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := first.Commit(ctx, driver.NewWriter(ctx, store, first.Target(), nil)); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	second, err := Parse(ctx, t3d.NewCursor("Begin Object Class=MaterialInstanceConstant Name=MI_Rock\nEnd Object"), env, ref)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(second.Object.Properties) != 0 {
		t.Errorf("Properties = %v after re-import, want none", second.Object.Properties)
	}
}

func TestIndexedParameter(t *testing.T) {
	tests := []struct {
		line      string
		wantIndex int
		wantValue string
		wantOK    bool
	}{
		{"ScalarParameterValues(3)=(ParameterValue=1)", 3, "(ParameterValue=1)", true},
		{"ScalarParameterValues(x)=(ParameterValue=1)", 0, "", false},
		{"ScalarParameterValues=(ParameterValue=1)", 0, "", false},
		{"ScalarParameterValues(2)", 0, "", false},
		{"VectorParameterValues(0)=()", 0, "", false},
	}
	for _, tt := range tests {
		i, value, ok := indexedParameter(tt.line, "ScalarParameterValues")
		if i != tt.wantIndex || value != tt.wantValue || ok != tt.wantOK {
			t.Errorf("indexedParameter(%q) = %d, %q, %v, want %d, %q, %v",
				tt.line, i, value, ok, tt.wantIndex, tt.wantValue, tt.wantOK)
		}
	}
}

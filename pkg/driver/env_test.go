package driver

import (
	"context"
	"testing"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/resolver"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

func newTestEnv(t *testing.T) (*Env, *assets.MemoryStore) {
	t.Helper()
	store := assets.NewMemoryStore(assets.DefaultSchema)
	return NewEnv(store, "Imported", nil), store
}

func TestEnvRequireLooksUpMeshesAndTextures(t *testing.T) {
	ctx := context.Background()
	env, store := newTestEnv(t)

	mesh, err := store.LocateOrCreate(ctx, "StaticMesh", env.PackagePath("Props.Rocks"), "SM_Rock")
	if err != nil {
		t.Fatalf("LocateOrCreate() error = %v", err)
	}

	var got *assets.Object
	env.Require(ctx, resolver.NewReference("StaticMesh", "Props.Rocks", "SM_Rock"), func(obj *assets.Object) {
		got = obj
	})
	if got != mesh {
		t.Errorf("obligation got %v, want existing mesh", got)
	}

	ref := resolver.NewReference("Texture2D", "Props.Rocks", "T_Missing")
	env.Require(ctx, ref, func(*assets.Object) {
		t.Error("obligation fired for a missing texture")
	})
	if !env.Resolver.IsPending(ref) {
		t.Error("missing texture is not pending")
	}
}

func TestEnvRequireLeavesMaterialsPending(t *testing.T) {
	ctx := context.Background()
	env, store := newTestEnv(t)

	if _, err := store.LocateOrCreate(ctx, "Material", env.PackagePath("Props"), "M_Rock"); err != nil {
		t.Fatalf("LocateOrCreate() error = %v", err)
	}

	ref := resolver.NewReference("Material", "Props", "M_Rock")
	env.Require(ctx, ref, nil)
	if !env.Resolver.IsPending(ref) {
		t.Error("material resolved at registration, want pending until the existing-asset pass")
	}
}

func TestEnvExistingChecksKind(t *testing.T) {
	ctx := context.Background()
	env, store := newTestEnv(t)

	if _, err := store.LocateOrCreate(ctx, "SoundCue", env.PackagePath("Props"), "Rock"); err != nil {
		t.Fatalf("LocateOrCreate() error = %v", err)
	}

	if _, ok := env.Existing(ctx, resolver.NewReference("StaticMesh", "Props", "Rock")); ok {
		t.Error("Existing() found a SoundCue for a StaticMesh reference")
	}
	if _, ok := env.Existing(ctx, resolver.NewReference("SoundCue", "Props", "Rock")); !ok {
		t.Error("Existing() did not find the SoundCue")
	}
}

func TestEnvRequireRaw(t *testing.T) {
	ctx := context.Background()
	env, _ := newTestEnv(t)
	env = env.ForDocument("Maps/Level.T3D", "Maps")

	ref, ok := env.RequireRaw(ctx, "Rock", "StaticMesh", nil)
	if !ok {
		t.Fatal("RequireRaw() ok = false, want true")
	}
	if got, want := ref.Key(), "StaticMesh'Maps.Rock'"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}

	if _, ok := env.RequireRaw(ctx, "", "StaticMesh", nil); ok {
		t.Error("RequireRaw(\"\") ok = true, want false")
	}
}

func TestEnvReport(t *testing.T) {
	env, _ := newTestEnv(t)
	doc := env.ForDocument("Materials/M_Rock.T3D", "Materials")

	doc.Report(t3derrors.UnknownKind("skipping %s", "Emitter"))
	doc.Report(nil)

	if got := env.Diagnostics.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	if got := env.Diagnostics.ByType(t3derrors.ErrorTypeUnknownKind)[0].Document; got != "Materials/M_Rock.T3D" {
		t.Errorf("Document = %q, want Materials/M_Rock.T3D", got)
	}
}

package assets

import "strings"

// Schema lists the property names each kind accepts. Kinds absent from the
// schema accept every property. Indexed names such as "Expressions[2].EditorX"
// are checked by their root "Expressions".
type Schema map[string]map[string]bool

// NewSchema builds a schema from kind → property names.
func NewSchema(kinds map[string][]string) Schema {
	s := make(Schema, len(kinds))
	for kind, props := range kinds {
		set := make(map[string]bool, len(props))
		for _, p := range props {
			set[p] = true
		}
		s[kind] = set
	}
	return s
}

// Allows reports whether kind accepts property name.
func (s Schema) Allows(kind, name string) bool {
	if name == "" {
		return false
	}
	if s == nil {
		return true
	}
	props, ok := s[kind]
	if !ok {
		return true
	}
	return props[propertyRoot(name)]
}

func propertyRoot(name string) string {
	if i := strings.IndexAny(name, "[."); i >= 0 {
		return name[:i]
	}
	return name
}

// DefaultSchema describes the target object kinds the importer writes.
var DefaultSchema = NewSchema(map[string][]string{
	"Material": {
		"BaseColor", "Specular", "Normal", "EmissiveColor", "Opacity", "OpacityMask",
		"MaterialDomain", "BlendMode", "DecalBlendMode", "TwoSided", "OpacityMaskClipValue",
		"bUsedWithStaticLighting", "bUsedWithSkeletalMesh", "bUsedWithParticleSprites",
		"bUsedWithMeshParticles", "bUsedWithFoliage", "bUsedWithDecals", "bUsedAsSpecialEngineMaterial",
		"bUsedWithBeamTrails", "bUsedWithFluidSurfaces", "bUsedWithSplineMeshes",
		"bUsedWithInstancedMeshParticles", "Wireframe", "bDisableDepthTest", "bIsMasked",
		"bTangentSpaceNormal", "PhysMaterial", "Expressions", "EditorComments",
	},
	"MaterialInstanceConstant": {
		"Parent", "TextureParameterValues", "ScalarParameterValues", "VectorParameterValues",
	},
	"StaticMeshActor": {
		"Location", "Rotation", "Scale", "Layers", "StaticMesh",
	},
	"PointLight": {
		"Location", "Rotation", "Layers", "AttenuationRadius", "Intensity", "LightColor",
	},
	"SpotLight": {
		"Location", "Rotation", "Layers", "AttenuationRadius", "Intensity", "LightColor",
		"InnerConeAngle", "OuterConeAngle",
	},
	"Brush": {
		"Location", "Layers", "BrushType", "Polys",
	},
	"SoundCue": {
		"FirstNode",
	},
	"Texture2D": {
		"CompressionSettings", "VerticalImages", "HorizontalImages",
	},
	"TextureCube": {
		"CompressionSettings",
	},
})

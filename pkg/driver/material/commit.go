package material

import (
	"context"
	"fmt"
	"strconv"

	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/t3d"
)

// Commit implements driver.Product.
func (m *Material) Commit(ctx context.Context, w *driver.Writer) error {
	m.fixNormalMaps(w)
	m.sizeFlipBooks()

	for _, p := range m.Properties {
		w.Set(p.Name, p.Value)
	}
	if m.Decal {
		w.Set("MaterialDomain", "MD_DeferredDecal")
		w.Set("BlendMode", "BLEND_Translucent")
		w.Set("DecalBlendMode", "DBM_DBuffer_Color")
	}

	for _, in := range m.Inputs {
		w.Set(in.Name, in.Format())
	}
	for i, e := range m.Expressions {
		e.write(w, "Expressions["+strconv.Itoa(i)+"]")
	}
	for i, c := range m.Comments {
		c.write(w, "EditorComments["+strconv.Itoa(i)+"]")
	}

	if err := w.Err(); err != nil {
		return fmt.Errorf("failed to write material %s: %w", m.Object.Path(), err)
	}
	return nil
}

// fixNormalMaps turns normal map textures sampled through their alpha
// channel into default textures with a linear color sampler.
func (m *Material) fixNormalMaps(w *driver.Writer) {
	check := func(in *Input) {
		e := in.Expression
		if in.MaskA < 1 || e == nil || e.Texture == nil || !isTextureExpression(e.Class) {
			return
		}
		if compression, _ := e.Texture.Property("CompressionSettings"); compression != "TC_Normalmap" {
			return
		}
		w.For(e.Texture).Set("CompressionSettings", "TC_Default")
		e.SamplerType = "SAMPLERTYPE_LinearColor"
	}

	for _, in := range m.Inputs {
		check(in)
	}
	for _, e := range m.Expressions {
		for _, in := range e.Inputs {
			check(in)
		}
	}
}

// sizeFlipBooks copies the image grid of flip book textures into the row
// and column constants.
func (m *Material) sizeFlipBooks() {
	for _, e := range m.Expressions {
		if e.flipRows == nil || e.Texture == nil {
			continue
		}
		if v, ok := e.Texture.Property("VerticalImages"); ok {
			e.flipRows.R, _ = t3d.ParseFloat(v)
		}
		if v, ok := e.Texture.Property("HorizontalImages"); ok {
			e.flipCols.R, _ = t3d.ParseFloat(v)
		}
	}
}

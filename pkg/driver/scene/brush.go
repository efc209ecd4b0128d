package scene

import (
	"context"
	"strconv"
	"strings"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/t3d"
)

// Brush is a CSG brush with its polygons.
type Brush struct {
	Actor

	Subtractive bool
	Polys       []*t3d.Poly

	// Dropped counts degenerate polygons.
	Dropped int

	textures map[*t3d.Poly]*assets.Object
}

var brushProperties = actorProperties.Only("Location", "Layer")

// Commit implements driver.Product.
func (b *Brush) Commit(ctx context.Context, w *driver.Writer) error {
	b.commitActor(w)
	if b.Subtractive {
		w.Set("BrushType", "Brush_Subtract")
	} else {
		w.Set("BrushType", "Brush_Add")
	}

	for i, poly := range b.Polys {
		prefix := "Polys[" + strconv.Itoa(i) + "]"
		w.Set(prefix+".Base", poly.Base.String())
		w.Set(prefix+".Normal", poly.Normal.String())
		w.Set(prefix+".TextureU", poly.TextureU.String())
		w.Set(prefix+".TextureV", poly.TextureV.String())
		w.Set(prefix+".Link", strconv.Itoa(poly.Link))

		vertices := make([]string, len(poly.Vertices))
		for j, v := range poly.Vertices {
			vertices[j] = "(" + v.String() + ")"
		}
		w.Set(prefix+".Vertices", strings.Join(vertices, ","))
		w.Link(prefix+".Material", b.textures[poly])
	}
	return w.Err()
}

func (p *parser) parseBrush(ctx context.Context, actor Actor) driver.Product {
	b := &Brush{Actor: actor, textures: make(map[*t3d.Poly]*assets.Object)}

	for p.cur.Next() && !p.cur.IsEndObject() {
		switch {
		case p.cur.IsBeginBlock("Brush "):
			p.parseBrushModel(ctx, b)
		case p.cur.Line() == "CsgOper=CSG_Subtract":
			b.Subtractive = true
		case p.applyActor(brushProperties, &b.Actor):
		case p.cur.IsAnyBegin():
			p.cur.SkipToMatchingEnd()
		default:
			p.unhandled(b.Name)
		}
	}
	return b
}

func (p *parser) parseBrushModel(ctx context.Context, b *Brush) {
	for p.cur.Next() && !p.cur.IsEndBlock("Brush") {
		switch {
		case p.cur.IsBeginBlock("PolyList"):
			p.parsePolyList(ctx, b)
		case p.cur.IsAnyBegin():
			p.cur.SkipToMatchingEnd()
		}
	}
}

func (p *parser) parsePolyList(ctx context.Context, b *Brush) {
	for p.cur.Next() && !p.cur.IsEndBlock("PolyList") {
		if !p.cur.IsBeginBlock("Polygon") {
			continue
		}
		line := p.cur.LineNumber()
		poly := &t3d.Poly{}

		if texture, ok := p.cur.Value(" Texture=", t3d.AnyOffset); ok && texture != "" {
			p.env.RequireRaw(ctx, "Material'"+texture+"'", "Material", func(obj *assets.Object) {
				b.textures[poly] = obj
			})
		}
		poly.Link = polyLink(p.cur.Line())

		gotBase := p.parsePolygon(b.Name, poly)
		if !gotBase && len(poly.Vertices) > 0 {
			poly.Base = poly.Vertices[0]
		}

		if err := poly.Finalize(); err != nil {
			b.Dropped++
			p.env.Logger.Debug("dropping polygon",
				"brush", b.Name,
				"document", p.env.Document,
				"line", line,
				"error", err,
			)
			continue
		}
		b.Polys = append(b.Polys, poly)
	}
}

// parsePolygon reads the sub-lines of one polygon and reports whether an
// ORIGIN was given. Malformed vectors are reported against object and keep
// their partial value.
func (p *parser) parsePolygon(object string, poly *t3d.Poly) bool {
	gotBase := false
	vector := func(command, rest string) t3d.Vector {
		v, err := t3d.ParseVector(rest)
		if err != nil {
			p.malformed(object, command, err)
		}
		return v
	}

	for p.cur.Next() && !p.cur.IsEndBlock("Polygon") {
		if rest, ok := p.cur.HasCommand("ORIGIN"); ok {
			poly.Base = vector("ORIGIN", rest)
			gotBase = true
		} else if rest, ok := p.cur.HasCommand("VERTEX"); ok {
			poly.Vertices = append(poly.Vertices, vector("VERTEX", rest))
		} else if rest, ok := p.cur.HasCommand("TEXTUREU"); ok {
			poly.TextureU = vector("TEXTUREU", rest)
		} else if rest, ok := p.cur.HasCommand("TEXTUREV"); ok {
			poly.TextureV = vector("TEXTUREV", rest)
		} else if rest, ok := p.cur.HasCommand("NORMAL"); ok {
			poly.Normal = vector("NORMAL", rest)
		}
	}
	return gotBase
}

// polyLink reads the case-insensitive LINK= value of a polygon header.
func polyLink(line string) int {
	i := strings.Index(strings.ToUpper(line), "LINK=")
	if i < 0 {
		return 0
	}
	value, _ := t3d.ValueAfter(line[i:], line[i:i+5], 0)
	n, err := t3d.ParseInt(value)
	if err != nil {
		return 0
	}
	return n
}

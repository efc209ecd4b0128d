package scene

import (
	"context"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/resolver"
	"forge-hq/t3dport/pkg/t3d"
)

// Placement is a static mesh placed in the level.
type Placement struct {
	Actor

	MeshRef    resolver.Reference
	StaticMesh *assets.Object

	PrePivot    t3d.Vector
	hasPrePivot bool
}

var placementProperties = actorProperties

// Commit implements driver.Product.
func (pl *Placement) Commit(ctx context.Context, w *driver.Writer) error {
	pl.commitActor(w)
	w.Set("Rotation", pl.Rotation.String())
	w.Set("Scale", pl.Scale.String())
	w.Link("StaticMesh", pl.StaticMesh)
	return w.Err()
}

func (p *parser) parsePlacement(ctx context.Context, actor Actor) driver.Product {
	pl := &Placement{Actor: actor}

	for p.cur.Next() && !p.cur.IsEndObject() {
		if class, ok := p.cur.IsBeginObject(); ok {
			if class == "StaticMeshComponent" {
				p.parseMeshComponent(ctx, pl)
			} else {
				p.cur.SkipToMatchingEnd()
			}
			continue
		}
		if p.applyActor(placementProperties, &pl.Actor) {
			continue
		}
		if value, ok := p.cur.Property("PrePivot="); ok {
			v, err := t3d.ParseVector(value)
			if err != nil {
				p.malformed(pl.Name, "PrePivot", err)
			}
			pl.PrePivot = v
			pl.hasPrePivot = true
		} else {
			p.unhandled(pl.Name)
		}
	}

	if pl.hasPrePivot {
		pl.Location = pl.Location.Sub(pl.Rotation.RotateVector(pl.PrePivot))
	}
	return pl
}

func (p *parser) parseMeshComponent(ctx context.Context, pl *Placement) {
	for p.cur.Next() && p.cur.SkipNestedObjects() && !p.cur.IsEndObject() {
		value, ok := p.cur.Property("StaticMesh=")
		if !ok {
			continue
		}
		ref, ok := p.env.RequireRaw(ctx, value, "StaticMesh", func(obj *assets.Object) {
			pl.StaticMesh = obj
		})
		if ok {
			pl.MeshRef = ref
		}
	}
}

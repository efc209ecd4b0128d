package scene

import (
	"context"

	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/t3d"
)

// Light holds the component properties shared by point and spot lights.
// Only properties present in the component block are committed.
type Light struct {
	Radius     float64
	Intensity  float64
	LightColor t3d.Color

	hasRadius, hasIntensity, hasColor bool
}

// PointLight is an omnidirectional light.
type PointLight struct {
	Actor
	Light
}

// SpotLight is a cone light. Its rotation is derived from the legacy
// rotation scaled by DrawScale3D.X.
type SpotLight struct {
	Actor
	Light

	InnerConeAngle float64
	OuterConeAngle float64

	hasInnerCone, hasOuterCone bool

	legacyRotation t3d.Rotator
	drawScale3D    t3d.Vector
}

var pointLightProperties = actorProperties.Only("Location", "Rotation", "Layer")

var spotLightProperties = actorProperties.Only("Location", "Layer")

var lightComponentProperties = driver.PropertyTable[*Light]{
	"Radius": func(l *Light, value string) error {
		f, err := t3d.ParseFloat(value)
		l.Radius = f
		l.hasRadius = true
		return err
	},
	"Brightness": func(l *Light, value string) error {
		f, err := t3d.ParseFloat(value)
		l.Intensity = f * t3d.IntensityMultiplier
		l.hasIntensity = true
		return err
	},
	"LightColor": func(l *Light, value string) error {
		c, err := t3d.ParseColor(value)
		l.LightColor = c
		l.hasColor = true
		return err
	},
}

var spotComponentProperties = driver.PropertyTable[*SpotLight]{
	"InnerConeAngle": func(s *SpotLight, value string) error {
		f, err := t3d.ParseFloat(value)
		s.InnerConeAngle = f
		s.hasInnerCone = true
		return err
	},
	"OuterConeAngle": func(s *SpotLight, value string) error {
		f, err := t3d.ParseFloat(value)
		s.OuterConeAngle = f
		s.hasOuterCone = true
		return err
	},
}

func isLightComponent(class string) bool {
	return class == "SpotLightComponent" || class == "PointLightComponent"
}

func (l *Light) commitLight(w *driver.Writer) {
	if l.hasRadius {
		w.Set("AttenuationRadius", t3dFloat(l.Radius))
	}
	if l.hasIntensity {
		w.Set("Intensity", t3dFloat(l.Intensity))
	}
	if l.hasColor {
		w.Set("LightColor", l.LightColor.String())
	}
}

// Commit implements driver.Product.
func (pl *PointLight) Commit(ctx context.Context, w *driver.Writer) error {
	pl.commitActor(w)
	w.Set("Rotation", pl.Rotation.String())
	pl.commitLight(w)
	return w.Err()
}

// Commit implements driver.Product.
func (sl *SpotLight) Commit(ctx context.Context, w *driver.Writer) error {
	sl.commitActor(w)
	w.Set("Rotation", sl.Rotation.String())
	sl.commitLight(w)
	if sl.hasInnerCone {
		w.Set("InnerConeAngle", t3dFloat(sl.InnerConeAngle))
	}
	if sl.hasOuterCone {
		w.Set("OuterConeAngle", t3dFloat(sl.OuterConeAngle))
	}
	return w.Err()
}

func (p *parser) parsePointLight(ctx context.Context, actor Actor) driver.Product {
	pl := &PointLight{Actor: actor}

	for p.cur.Next() && !p.cur.IsEndObject() {
		if class, ok := p.cur.IsBeginObject(); ok {
			if isLightComponent(class) {
				p.parseLightComponent(&pl.Light, nil, pl.Name)
			} else {
				p.cur.SkipToMatchingEnd()
			}
			continue
		}
		if !p.applyActor(pointLightProperties, &pl.Actor) {
			p.unhandled(pl.Name)
		}
	}
	return pl
}

func (p *parser) parseSpotLight(ctx context.Context, actor Actor) driver.Product {
	sl := &SpotLight{Actor: actor, drawScale3D: t3d.Vector{X: 1, Y: 1, Z: 1}}

	for p.cur.Next() && !p.cur.IsEndObject() {
		if class, ok := p.cur.IsBeginObject(); ok {
			if isLightComponent(class) {
				p.parseLightComponent(&sl.Light, sl, sl.Name)
			} else {
				p.cur.SkipToMatchingEnd()
			}
			continue
		}
		if p.applyActor(spotLightProperties, &sl.Actor) {
			continue
		}
		if value, ok := p.cur.Property("Rotation="); ok {
			r, err := t3d.ParseRotation(value)
			if err != nil {
				p.malformed(sl.Name, "Rotation", err)
			}
			sl.legacyRotation = r
		} else if value, ok := p.cur.Property("DrawScale3D="); ok {
			v, err := t3d.ParseVector(value)
			if err != nil {
				p.malformed(sl.Name, "DrawScale3D", err)
			}
			sl.drawScale3D = v
		} else {
			p.unhandled(sl.Name)
		}
	}

	sl.Rotation = sl.legacyRotation.Vector().Scale(sl.drawScale3D.X).Rotation()
	return sl
}

// parseLightComponent reads a light component block. spot is nil for point
// lights.
func (p *parser) parseLightComponent(l *Light, spot *SpotLight, object string) {
	for p.cur.Next() && p.cur.SkipNestedBlocks() && !p.cur.IsEndObject() {
		name, value, ok := p.cur.SplitProperty()
		if !ok {
			continue
		}
		handled, err := lightComponentProperties.Apply(l, name, value)
		if !handled && spot != nil {
			_, err = spotComponentProperties.Apply(spot, name, value)
		}
		if err != nil {
			p.malformed(object, name, err)
		}
	}
}

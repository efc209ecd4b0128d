package scene

import (
	"context"
	"strings"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/t3d"
)

// LevelLocation is the location every actor of a level is placed at.
const LevelLocation = "PersistentLevel"

// Actor holds the properties shared by every placed object.
type Actor struct {
	Object *assets.Object
	Class  string
	Name   string

	Location t3d.Vector
	Rotation t3d.Rotator
	Scale    t3d.Vector
	Layers   []string
}

func newActor(obj *assets.Object, class, name string) Actor {
	return Actor{
		Object: obj,
		Class:  class,
		Name:   name,
		Scale:  t3d.Vector{X: 1, Y: 1, Z: 1},
	}
}

// Target implements driver.Product.
func (a *Actor) Target() *assets.Object {
	return a.Object
}

func (a *Actor) commitActor(w *driver.Writer) {
	w.Set("Location", a.Location.String())
	if len(a.Layers) > 0 {
		w.Set("Layers", strings.Join(a.Layers, ","))
	}
}

// actorProperties is the full actor table. Kinds take the subset they
// honor.
var actorProperties = driver.PropertyTable[*Actor]{
	"Location": func(a *Actor, value string) error {
		v, err := t3d.ParseVector(value)
		a.Location = v
		return err
	},
	"Rotation": func(a *Actor, value string) error {
		r, err := t3d.ParseRotation(value)
		a.Rotation = r
		return err
	},
	"DrawScale": func(a *Actor, value string) error {
		s, err := t3d.ParseFloat(value)
		if err != nil {
			return err
		}
		a.Scale = a.Scale.Scale(s)
		return nil
	},
	"DrawScale3D": func(a *Actor, value string) error {
		v, err := t3d.ParseVector(value)
		if err != nil {
			return err
		}
		a.Scale = a.Scale.Mul(v)
		return nil
	},
	"Layer": func(a *Actor, value string) error {
		a.Layers = append(a.Layers, t3d.Unquote(value))
		return nil
	},
}

// applyActor applies the current line to a through table. It reports
// whether the line was an actor property. Malformed values are reported
// and the partial value kept.
func (p *parser) applyActor(table driver.PropertyTable[*Actor], a *Actor) bool {
	name, value, ok := p.cur.SplitProperty()
	if !ok {
		return false
	}
	handled, err := table.Apply(a, name, value)
	if err != nil {
		p.malformed(a.Name, name, err)
	}
	return handled
}

// unhandled logs a property line of object that no table knows about.
// Lines that are not properties are ignored.
func (p *parser) unhandled(object string) {
	name, _, ok := p.cur.SplitProperty()
	if !ok {
		return
	}
	p.env.Logger.Debug("unimplemented handling",
		"property", name,
		"line", p.cur.LineNumber(),
		"document", p.env.Document,
		"object", object,
	)
}

// spawn locates or creates the store object of an actor and clears what a
// previous import left on it.
func (p *parser) spawn(ctx context.Context, class, name string) (*assets.Object, error) {
	obj, err := p.env.Store.LocateOrCreate(ctx, class, p.env.PackagePath(LevelLocation), name)
	if err != nil {
		return nil, err
	}
	if err := p.env.Store.Reset(ctx, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

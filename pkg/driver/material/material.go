package material

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/resolver"
	"forge-hq/t3dport/pkg/t3d"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

// ErrReclassify is returned by Parse when the document holds a material
// instance. The caller retypes the reference and imports it as one.
var ErrReclassify = errors.New("document is a MaterialInstanceConstant")

// Kind is the store kind of materials and decal materials.
const Kind = "Material"

// Material is a material graph built from one document.
type Material struct {
	Object *assets.Object
	Ref    resolver.Reference
	Class  string
	Decal  bool

	// Inputs holds the material inputs (BaseColor, Normal, ...) in document
	// order.
	Inputs      []*Input
	Properties  []Property
	Expressions []*Expression
	Comments    []*Expression

	// Unsupported lists the legacy node classes that were dropped.
	Unsupported []string
}

// Target implements driver.Product.
func (m *Material) Target() *assets.Object {
	return m.Object
}

// Input returns the named material input, or nil.
func (m *Material) Input(name string) *Input {
	for _, in := range m.Inputs {
		if in.Name == name {
			return in
		}
	}
	return nil
}

// Expression returns the first expression with the given name, or nil.
func (m *Material) Expression(name string) *Expression {
	for _, e := range slices.Concat(m.Expressions, m.Comments) {
		if e.Name == name {
			return e
		}
	}
	return nil
}

type parser struct {
	cur   *t3d.Cursor
	env   *driver.Env
	mat   *Material
	local *resolver.Resolver[*Expression]
	state driver.State
}

// Parse reads a material document for ref. The document must start with a
// Material or DecalMaterial object. A MaterialInstanceConstant yields
// ErrReclassify; other classes are unsupported. An existing material is
// cleared before it is filled again.
func Parse(ctx context.Context, cur *t3d.Cursor, env *driver.Env, ref resolver.Reference) (*Material, error) {
	h, err := driver.ReadHeader(cur)
	if err != nil {
		return nil, err
	}

	switch h.Class {
	case "Material", "DecalMaterial":
	case "MaterialInstanceConstant":
		return nil, ErrReclassify
	default:
		return nil, t3derrors.Unsupported("Trying to import %s as material is not supported (%s)", h.Class, ref.Key()).
			At(env.Document, h.Line).For(h.Name)
	}

	obj, err := env.Store.LocateOrCreate(ctx, Kind, env.PackagePath(ref.Location()), ref.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to create material %s: %w", ref.Key(), err)
	}
	if err := env.Store.Reset(ctx, obj); err != nil {
		return nil, fmt.Errorf("failed to reset material %s: %w", ref.Key(), err)
	}

	p := &parser{
		cur:   cur,
		env:   env,
		local: resolver.New[*Expression](),
		state: driver.InBody,
		mat: &Material{
			Object: obj,
			Ref:    ref,
			Class:  h.Class,
			Decal:  h.Class == "DecalMaterial",
		},
	}

	for cur.Next() && !cur.IsEndObject() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if class, ok := cur.IsBeginObject(); ok {
			p.state = driver.InNestedBlock
			p.parseExpressionBlock(ctx, class)
			p.state = driver.InBody
			continue
		}
		p.parseMaterialProperty()
	}
	p.state = driver.Done

	for _, e := range p.mat.Expressions {
		if e.flipBook {
			p.expandFlipBook(e)
		}
	}

	for missing := range p.local.Unresolved() {
		env.Report(t3derrors.New(t3derrors.ErrorTypeUnresolved,
			"missing expression %s in material %s", missing.Key(), obj.Path()).For(h.Name))
	}

	return p.mat, nil
}

func (p *parser) parseMaterialProperty() {
	for _, mi := range materialInputs {
		if _, ok := p.cur.Property(mi.key); ok {
			if mi.target != "" {
				p.mat.Inputs = append(p.mat.Inputs, p.parseInput(mi.target))
			}
			return
		}
	}

	name, value, ok := p.cur.SplitProperty()
	if ok && name != "PreviewMesh" {
		p.mat.Properties = append(p.mat.Properties, Property{Name: name, Value: value})
	}
}

// parseInput reads the masks and expression reference of an input from
// the current line.
func (p *parser) parseInput(name string) *Input {
	in := &Input{Name: name}

	masks := []struct {
		key string
		dst *int
	}{
		{",Mask=", &in.Mask},
		{",MaskR=", &in.MaskR},
		{",MaskG=", &in.MaskG},
		{",MaskB=", &in.MaskB},
		{",MaskA=", &in.MaskA},
	}
	for _, m := range masks {
		if value, ok := p.cur.Value(m.key, t3d.AnyOffset); ok {
			*m.dst, _ = t3d.ParseInt(value)
		}
	}

	if raw, ok := p.cur.Value("(Expression=", t3d.AnyOffset); ok {
		ref, err := resolver.ParseReference(raw, "")
		if err != nil {
			p.env.Logger.Warn("unable to parse expression reference",
				"reference", raw,
				"document", p.env.Document,
				"line", p.cur.LineNumber(),
			)
			return in
		}
		in.Ref = ref
		p.local.Register(ref, func(e *Expression) {
			in.Expression = e
		})
	}
	return in
}

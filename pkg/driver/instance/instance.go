package instance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/resolver"
	"forge-hq/t3dport/pkg/t3d"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

// Kind is the class and store kind of material instances.
const Kind = "MaterialInstanceConstant"

// maxParameterIndex bounds the parameter arrays a document can grow.
const maxParameterIndex = 1024

// Instance is a material instance built from one document.
type Instance struct {
	Object *assets.Object
	Ref    resolver.Reference

	ParentRef resolver.Reference
	Parent    *assets.Object

	Textures []*TextureParameter
	Scalars  []*ScalarParameter
	Vectors  []*VectorParameter
}

// TextureParameter overrides a texture parameter of the parent.
type TextureParameter struct {
	Name     string
	ValueRef resolver.Reference
	Value    *assets.Object
}

// ScalarParameter overrides a scalar parameter of the parent.
type ScalarParameter struct {
	Name  string
	Value float64
}

// VectorParameter overrides a vector parameter of the parent.
type VectorParameter struct {
	Name  string
	Value t3d.Color
}

// Target implements driver.Product.
func (m *Instance) Target() *assets.Object {
	return m.Object
}

// Commit implements driver.Product.
func (m *Instance) Commit(ctx context.Context, w *driver.Writer) error {
	w.Link("Parent", m.Parent)

	for i, p := range m.Textures {
		prefix := "TextureParameterValues[" + strconv.Itoa(i) + "]"
		w.Set(prefix+".ParameterName", p.Name)
		w.Link(prefix+".ParameterValue", p.Value)
	}
	for i, p := range m.Scalars {
		prefix := "ScalarParameterValues[" + strconv.Itoa(i) + "]"
		w.Set(prefix+".ParameterName", p.Name)
		w.Set(prefix+".ParameterValue", strconv.FormatFloat(p.Value, 'f', -1, 64))
	}
	for i, p := range m.Vectors {
		prefix := "VectorParameterValues[" + strconv.Itoa(i) + "]"
		w.Set(prefix+".ParameterName", p.Name)
		w.Set(prefix+".ParameterValue", p.Value.String())
	}

	if err := w.Err(); err != nil {
		return fmt.Errorf("failed to write material instance %s: %w", m.Object.Path(), err)
	}
	return nil
}

// Header is what the importer needs to know about an instance document
// before constructing it.
type Header struct {
	driver.Header

	// Parent is zero when the document names no parent.
	Parent resolver.Reference
}

// ParseHeader reads the header of an instance document and scans its body
// for the parent reference. The cursor is rewound afterwards, so Parse can
// run on the same cursor. On error the header read so far is returned.
func ParseHeader(cur *t3d.Cursor, location string) (*Header, error) {
	start := cur.Checkpoint()
	defer cur.Rewind(start)

	h, err := driver.ReadHeader(cur, Kind)
	header := &Header{Header: h}
	if err != nil {
		return header, err
	}

	for cur.Next() && cur.SkipNestedObjects() && !cur.IsEndObject() {
		if raw, ok := cur.Property("Parent="); ok {
			if ref, err := parentReference(raw, location); err == nil {
				header.Parent = ref
			}
			break
		}
	}
	return header, nil
}

// Parse reads an instance document for ref. An existing instance has its
// parameters cleared before they are read again.
func Parse(ctx context.Context, cur *t3d.Cursor, env *driver.Env, ref resolver.Reference) (*Instance, error) {
	h, err := driver.ReadHeader(cur, Kind)
	if err != nil {
		return nil, err
	}

	obj, err := env.Store.LocateOrCreate(ctx, Kind, env.PackagePath(ref.Location()), ref.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to create material instance %s: %w", ref.Key(), err)
	}
	if err := env.Store.Reset(ctx, obj); err != nil {
		return nil, fmt.Errorf("failed to reset material instance %s: %w", ref.Key(), err)
	}

	mic := &Instance{Object: obj, Ref: ref}
	for cur.Next() && cur.SkipNestedObjects() && !cur.IsEndObject() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := cur.Line()

		if i, value, ok := indexedParameter(line, "TextureParameterValues"); ok {
			if !checkIndex(env, cur, h, i) {
				continue
			}
			mic.Textures = grow(mic.Textures, i)
			p := mic.Textures[i]
			if name, ok := t3d.ValueAfter(value, "ParameterName=", t3d.AnyOffset); ok {
				p.Name = t3d.Unquote(name)
			}
			if raw, ok := t3d.ValueAfter(value, "ParameterValue=", t3d.AnyOffset); ok {
				if texRef, ok := env.RequireRaw(ctx, raw, "Texture2D", func(tex *assets.Object) {
					p.Value = tex
				}); ok {
					p.ValueRef = texRef
				}
			}
			continue
		}

		if i, value, ok := indexedParameter(line, "ScalarParameterValues"); ok {
			if !checkIndex(env, cur, h, i) {
				continue
			}
			mic.Scalars = grow(mic.Scalars, i)
			p := mic.Scalars[i]
			if name, ok := t3d.ValueAfter(value, "ParameterName=", t3d.AnyOffset); ok {
				p.Name = t3d.Unquote(name)
			}
			if raw, ok := t3d.ValueAfter(value, "ParameterValue=", t3d.AnyOffset); ok {
				p.Value, _ = t3d.ParseFloat(raw)
			}
			continue
		}

		if i, value, ok := indexedParameter(line, "VectorParameterValues"); ok {
			if !checkIndex(env, cur, h, i) {
				continue
			}
			mic.Vectors = grow(mic.Vectors, i)
			p := mic.Vectors[i]
			if name, ok := t3d.ValueAfter(value, "ParameterName=", t3d.AnyOffset); ok {
				p.Name = t3d.Unquote(name)
			}
			if raw, ok := t3d.ValueAfter(value, "ParameterValue=", t3d.AnyOffset); ok {
				p.Value, _ = t3d.ParseColor(raw)
			}
			continue
		}

		if raw, ok := cur.Property("Parent="); ok {
			parent, err := parentReference(raw, env.Location)
			if err != nil {
				env.Logger.Warn("unable to parse resource reference",
					"reference", raw,
					"document", env.Document,
					"error", err,
				)
				continue
			}
			mic.ParentRef = parent
			env.Require(ctx, parent, func(obj *assets.Object) {
				mic.Parent = obj
			})
			continue
		}

		env.Logger.Debug("unimplemented handling",
			"line", line,
			"document", env.Document,
			"object", h.Name,
		)
	}

	return mic, nil
}

func parentReference(raw, location string) (resolver.Reference, error) {
	ref, err := resolver.ParseReference(raw, location)
	if err != nil {
		return resolver.Reference{}, err
	}
	return ref.WithDefaultKind("Material"), nil
}

// indexedParameter matches "<key>(<i>)=<value>".
func indexedParameter(line, key string) (int, string, bool) {
	rest, ok := strings.CutPrefix(line, key+"(")
	if !ok {
		return 0, "", false
	}
	index, value, ok := strings.Cut(rest, ")=")
	if !ok {
		return 0, "", false
	}
	i, err := strconv.Atoi(index)
	if err != nil {
		return 0, "", false
	}
	return i, value, true
}

func checkIndex(env *driver.Env, cur *t3d.Cursor, h driver.Header, i int) bool {
	if i >= 0 && i < maxParameterIndex {
		return true
	}
	env.Report(t3derrors.Structural("parameter index %d out of range", i).At(env.Document, cur.LineNumber()).For(h.Name))
	return false
}

func grow[T any](s []*T, i int) []*T {
	for len(s) <= i {
		s = append(s, new(T))
	}
	return s
}

package material

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/resolver"
	"forge-hq/t3dport/pkg/t3d"
)

// Property is a raw property carried over unchanged.
type Property struct {
	Name  string
	Value string
}

// Input connects a material or expression input to an expression output.
type Input struct {
	Name        string
	Expression  *Expression
	OutputIndex int

	Mask, MaskR, MaskG, MaskB, MaskA int

	// Ref is the expression reference read from the document, zero when the
	// input is not connected.
	Ref resolver.Reference
}

// Format renders the input as a T3D struct value.
func (in *Input) Format() string {
	var sb strings.Builder
	sb.WriteString("(Expression=")
	if in.Expression != nil {
		sb.WriteString(in.Expression.Class + "'" + in.Expression.Name + "'")
	} else {
		sb.WriteString("None")
	}
	if in.OutputIndex != 0 {
		sb.WriteString(",OutputIndex=" + strconv.Itoa(in.OutputIndex))
	}
	for _, m := range []struct {
		key string
		val int
	}{
		{"Mask", in.Mask}, {"MaskR", in.MaskR}, {"MaskG", in.MaskG}, {"MaskB", in.MaskB}, {"MaskA", in.MaskA},
	} {
		if m.val != 0 {
			sb.WriteString("," + m.key + "=" + strconv.Itoa(m.val))
		}
	}
	sb.WriteString(")")
	return sb.String()
}

// Expression is one node of a material graph.
type Expression struct {
	Class string
	Name  string

	EditorX, EditorY int
	SizeX            int

	Properties []Property
	Inputs     []*Input

	// Texture nodes.
	TextureRef  resolver.Reference
	Texture     *assets.Object
	SamplerType string

	// Function call nodes. FunctionInputs is indexed by input position.
	Function       string
	FunctionInputs map[int]*Input

	// Constant, Constant3Vector and Constant4Vector nodes.
	R         float64
	Constant  t3d.Color
	Collapsed bool

	flipBook           bool
	flipRows, flipCols *Expression
}

// Input returns the named input, or nil.
func (e *Expression) Input(name string) *Input {
	for _, in := range e.Inputs {
		if in.Name == name {
			return in
		}
	}
	return nil
}

// Property returns the value of a carried-over property.
func (e *Expression) Property(name string) (string, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// IsComment reports whether e is an editor comment.
func (e *Expression) IsComment() bool {
	return e.Class == classComment
}

func (e *Expression) setInput(in *Input) {
	for i, have := range e.Inputs {
		if have.Name == in.Name {
			e.Inputs[i] = in
			return
		}
	}
	e.Inputs = append(e.Inputs, in)
}

// write commits e under prefix, for example "Expressions[3]".
func (e *Expression) write(w *driver.Writer, prefix string) {
	w.Set(prefix+".Class", e.Class)
	w.Set(prefix+".Name", e.Name)
	w.Set(prefix+".EditorX", strconv.Itoa(e.EditorX))
	w.Set(prefix+".EditorY", strconv.Itoa(e.EditorY))
	if e.IsComment() && e.SizeX != 0 {
		w.Set(prefix+".SizeX", strconv.Itoa(e.SizeX))
	}

	for _, p := range e.Properties {
		w.Set(prefix+"."+p.Name, p.Value)
	}
	for _, in := range e.Inputs {
		w.Set(prefix+"."+in.Name, in.Format())
	}

	if e.Texture != nil {
		w.Link(prefix+".Texture", e.Texture)
		w.Set(prefix+".SamplerType", e.SamplerType)
	}

	if e.Function != "" {
		w.Set(prefix+".MaterialFunction", e.Function)
		for _, i := range slices.Sorted(maps.Keys(e.FunctionInputs)) {
			w.Set(prefix+".FunctionInputs["+strconv.Itoa(i)+"]", e.FunctionInputs[i].Format())
		}
	}

	switch e.Class {
	case classConstant:
		w.Set(prefix+".R", formatFloat(e.R))
	case classConstant3Vector, classConstant4Vector:
		w.Set(prefix+".Constant", e.Constant.String())
	}
	if e.Collapsed {
		w.Set(prefix+".bCollapsed", "True")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

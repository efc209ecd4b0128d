package material

import (
	"context"
	"slices"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/resolver"
	"forge-hq/t3dport/pkg/t3d"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

// parseExpressionBlock handles one nested expression object. The current
// line is its Begin Object header; afterwards it is the matching End.
func (p *parser) parseExpressionBlock(ctx context.Context, class string) {
	line := p.cur.LineNumber()
	name, _ := p.cur.Value(" Name=", t3d.AnyOffset)

	legacy := ""
	if renamed, ok := renames[class]; ok {
		legacy, class = class, renamed
	}

	if unsupported[class] {
		p.mat.Unsupported = append(p.mat.Unsupported, class)
		p.env.Report(t3derrors.Unsupported(
			"Importer does not support material node type %s on %s, you will have to fix it manually",
			class, p.mat.Object.Path(),
		).At(p.env.Document, line).For(name))
		p.cur.SkipToMatchingEnd()
		return
	}

	nodeClass := class
	if class == classFlipBookSample {
		nodeClass = classTextureSample
	}
	if !isKnownExpression(nodeClass) {
		p.env.Report(t3derrors.UnknownKind("Couldn't find material node class for '%s' %s", class, p.mat.Ref.Key()).
			At(p.env.Document, line).For(name))
		p.cur.SkipToMatchingEnd()
		return
	}
	if name == "" {
		p.env.Report(t3derrors.Structural("%s header has no Name=", class).At(p.env.Document, line))
		p.cur.SkipToMatchingEnd()
		return
	}

	start := p.cur.Checkpoint()
	expr := p.parseExpression(ctx, nodeClass, name)

	if legacy == classLightVector {
		expr.Function = LightVectorFunction
	}

	if expr.TextureRef.Kind() == "TextureCube" && class == classTextureSample {
		p.env.Logger.Debug("reparsing texture sample as cube sample",
			"expression", name,
			"document", p.env.Document,
		)
		legacy, class = class, classTextureSampleCube
		p.cur.Rewind(start)
		expr = p.parseExpression(ctx, class, name)
	}

	if expr.IsComment() {
		expr.EditorX -= expr.SizeX
		p.mat.Comments = append(p.mat.Comments, expr)
	} else {
		p.mat.Expressions = append(p.mat.Expressions, expr)
	}
	expr.flipBook = class == classFlipBookSample

	if legacy != "" {
		p.local.Resolve(resolver.NewReference(legacy, "", name), expr)
	}
	p.local.Resolve(resolver.NewReference(class, "", name), expr)
}

// parseExpression reads the body of an expression of class. The cursor
// must be on the header line.
func (p *parser) parseExpression(ctx context.Context, class, name string) *Expression {
	e := &Expression{Class: class, Name: name}
	inputs := expressionInputs[class]

	for p.cur.Next() && p.cur.SkipNestedBlocks() && !p.cur.IsEndObject() {
		if value, ok := p.cur.Property("Texture="); ok {
			ref, ok := p.env.RequireRaw(ctx, value, "Texture2D", func(tex *assets.Object) {
				e.Texture = tex
				compression, _ := tex.Property("CompressionSettings")
				e.SamplerType = SamplerType(compression)
			})
			if ok {
				e.TextureRef = ref
			}
			continue
		}

		prop, value, ok := p.cur.SplitProperty()
		if !ok || skippedExpressionProperties[prop] {
			continue
		}

		if prop == "ParameterName" {
			value = t3d.Unquote(value)
		}
		if class == classDesaturation && prop == "Percent" {
			prop = "Fraction"
		}

		switch {
		case prop == "EditorX":
			e.EditorX, _ = t3d.ParseInt(value)
		case prop == "EditorY":
			e.EditorY, _ = t3d.ParseInt(value)
		case class == classComment && prop == "SizeX":
			e.SizeX, _ = t3d.ParseInt(value)
		case class == classConstant && prop == "R":
			e.R, _ = t3d.ParseFloat(value)
		case class == classConstant3Vector || class == classConstant4Vector:
			p.setConstant(e, class, prop, value)
		case slices.Contains(inputs, prop):
			e.setInput(p.parseInput(prop))
		default:
			e.Properties = append(e.Properties, Property{Name: prop, Value: value})
		}
	}

	e.EditorX = -e.EditorX
	e.EditorX += e.EditorX / 2
	return e
}

func (p *parser) setConstant(e *Expression, class, prop, value string) {
	f, _ := t3d.ParseFloat(value)
	switch prop {
	case "R":
		e.Constant.R = f
	case "G":
		e.Constant.G = f
	case "B":
		e.Constant.B = f
	case "A":
		if class == classConstant4Vector {
			e.Constant.A = f
		}
	default:
		e.Properties = append(e.Properties, Property{Name: prop, Value: value})
	}
}

// expandFlipBook adds the FlipBook function call and its row and column
// constants in front of a flip book sample, and rewires the sample's
// coordinates through the call.
func (p *parser) expandFlipBook(sample *Expression) {
	fn := &Expression{
		Class:          classFunctionCall,
		Name:           sample.Name + "_FlipBook",
		Function:       FlipBookFunction,
		FunctionInputs: make(map[int]*Input),
	}
	rows := &Expression{Class: classConstant, Name: sample.Name + "_Rows", Collapsed: true}
	cols := &Expression{Class: classConstant, Name: sample.Name + "_Cols", Collapsed: true}

	fn.EditorY = sample.EditorY
	rows.EditorY = fn.EditorY
	cols.EditorY = rows.EditorY + 64

	fn.EditorX = sample.EditorX - 304
	rows.EditorX = fn.EditorX - 80
	cols.EditorX = rows.EditorX

	fn.FunctionInputs[1] = &Input{Name: "Rows", Expression: rows}
	fn.FunctionInputs[2] = &Input{Name: "Columns", Expression: cols}
	if coords := sample.Input("Coordinates"); coords != nil && coords.Expression != nil {
		fn.FunctionInputs[4] = &Input{Name: "UVs", Expression: coords.Expression, OutputIndex: coords.OutputIndex}
	}

	sample.setInput(&Input{Name: "Coordinates", Expression: fn, OutputIndex: 2})
	sample.flipRows, sample.flipCols = rows, cols

	p.mat.Expressions = append(p.mat.Expressions, rows, cols, fn)
}

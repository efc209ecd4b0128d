package scene

import (
	"context"
	"fmt"

	"forge-hq/t3dport/pkg/driver"
	"forge-hq/t3dport/pkg/t3d"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

const levelHeader = "Begin Object Class=Level Name=PersistentLevel"

// Level is the result of parsing a level document.
type Level struct {
	// Products holds the placed actors in document order.
	Products []driver.Product

	// Skipped counts nested objects of unknown classes by class.
	Skipped map[string]int
}

type parser struct {
	cur   *t3d.Cursor
	env   *driver.Env
	state driver.State
}

// ParseLevel parses a level document. The first line must be the
// PersistentLevel header; anything else is a structural error that aborts
// the level. Objects of unknown classes are skipped and reported.
func ParseLevel(ctx context.Context, cur *t3d.Cursor, env *driver.Env) (*Level, error) {
	p := &parser{cur: cur, env: env, state: driver.ExpectHeader}

	if !cur.Next() || cur.Line() != levelHeader {
		return nil, t3derrors.Structural("expected %q", levelHeader).At(env.Document, cur.LineNumber())
	}
	p.state = driver.InBody

	level := &Level{Skipped: make(map[string]int)}
	for cur.Next() && !cur.IsEndObject() {
		class, ok := cur.IsBeginObject()
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return level, err
		}

		p.state = driver.InNestedBlock
		product, err := p.parseActor(ctx, class)
		p.state = driver.InBody
		if err != nil {
			return level, err
		}
		if product == nil {
			level.Skipped[class]++
			continue
		}
		level.Products = append(level.Products, product)
	}

	p.state = driver.Done
	return level, nil
}

// parseActor dispatches on class. It returns nil for skipped objects and
// an error only for store failures.
func (p *parser) parseActor(ctx context.Context, class string) (driver.Product, error) {
	line := p.cur.LineNumber()
	name, _ := p.cur.Value(" Name=", t3d.AnyOffset)

	parse, ok := actorDrivers[class]
	if !ok {
		p.env.Report(t3derrors.UnknownKind("skipping object of class %s", class).At(p.env.Document, line).For(name))
		p.cur.SkipToMatchingEnd()
		return nil, nil
	}
	if name == "" {
		p.env.Report(t3derrors.Structural("%s header has no Name=", class).At(p.env.Document, line))
		p.cur.SkipToMatchingEnd()
		return nil, nil
	}

	obj, err := p.spawn(ctx, class, name)
	if err != nil {
		p.cur.SkipToMatchingEnd()
		return nil, fmt.Errorf("failed to create %s %s: %w", class, name, err)
	}
	return parse(p, ctx, newActor(obj, class, name)), nil
}

type actorDriver func(p *parser, ctx context.Context, actor Actor) driver.Product

var actorDrivers map[string]actorDriver

func init() {
	actorDrivers = map[string]actorDriver{
		"StaticMeshActor": (*parser).parsePlacement,
		"PointLight":      (*parser).parsePointLight,
		"SpotLight":       (*parser).parseSpotLight,
		"Brush":           (*parser).parseBrush,
		"SoundCue":        (*parser).parseSoundCue,
	}
}

func (p *parser) malformed(object, property string, err error) {
	p.env.Report(t3derrors.Wrap(t3derrors.ErrorTypeStructural, err, "malformed %s", property).
		At(p.env.Document, p.cur.LineNumber()).For(object))
}

package scene

import (
	"context"
	"strconv"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
)

// SoundCue is a sound cue placed in the level.
type SoundCue struct {
	Actor

	FirstNode *assets.Object
}

// Commit implements driver.Product.
func (s *SoundCue) Commit(ctx context.Context, w *driver.Writer) error {
	w.Link("FirstNode", s.FirstNode)
	return w.Err()
}

func (p *parser) parseSoundCue(ctx context.Context, actor Actor) driver.Product {
	cue := &SoundCue{Actor: actor}

	for p.cur.Next() && p.cur.SkipNestedBlocks() && !p.cur.IsEndObject() {
		if value, ok := p.cur.Property("FirstNode="); ok {
			p.env.RequireRaw(ctx, value, "SoundNode", func(obj *assets.Object) {
				cue.FirstNode = obj
			})
		}
	}
	return cue
}

func t3dFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

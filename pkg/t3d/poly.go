package t3d

import "errors"

// ErrDegeneratePoly is returned by Poly.Finalize for polygons that cannot
// form a face.
var ErrDegeneratePoly = errors.New("degenerate polygon")

// Poly is one polygon of a brush poly list.
type Poly struct {
	Base     Vector
	Normal   Vector
	TextureU Vector
	TextureV Vector
	Vertices []Vector
	Link     int
}

// Finalize validates the polygon and computes its normal when none was
// given. A polygon with fewer than three vertices, or whose vertices are all
// collinear, is degenerate.
func (p *Poly) Finalize() error {
	if len(p.Vertices) < 3 {
		return ErrDegeneratePoly
	}

	if !p.Normal.IsZero() {
		n, ok := p.Normal.Normal()
		if !ok {
			return ErrDegeneratePoly
		}
		p.Normal = n
		return nil
	}

	for i := 2; i < len(p.Vertices); i++ {
		side1 := p.Vertices[1].Sub(p.Vertices[0])
		side2 := p.Vertices[i].Sub(p.Vertices[0])
		if n, ok := side2.Cross(side1).Normal(); ok {
			p.Normal = n
			return nil
		}
	}
	return ErrDegeneratePoly
}

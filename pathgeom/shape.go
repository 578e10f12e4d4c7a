package pathgeom

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape is a filled outline: one outer ring, counter-clockwise, and any
// number of clockwise holes inside it.
type Shape struct {
	Outer Ring
	Holes []Ring
}

// VertexCount is the number of outline points across the outer ring and
// holes.
func (s Shape) VertexCount() int {
	n := len(s.Outer)
	for _, h := range s.Holes {
		n += len(h)
	}
	return n
}

// ToShapes groups the rings of one path into shapes. Rings wound the same way
// as the first ring are solid; the others are holes, each assigned to the
// smallest solid ring containing it. A hole that fits in no solid ring is
// filled as a solid of its own.
func ToShapes(rings []Ring) []Shape {
	if len(rings) == 0 {
		return nil
	}
	reference := rings[0].Area() > 0

	var solids []Ring
	var holes []Ring
	for _, r := range rings {
		if r.Area() == 0 {
			continue
		}
		if (r.Area() > 0) == reference || len(rings) == 1 {
			solids = append(solids, r)
		} else {
			holes = append(holes, r)
		}
	}

	shapes := make([]Shape, len(solids))
	for i, s := range solids {
		shapes[i].Outer = orient(s, true)
	}

	for _, h := range holes {
		best := -1
		var bestArea float32
		for i, s := range shapes {
			if !s.Outer.Contains(h[0]) {
				continue
			}
			area := math32.Abs(s.Outer.Area())
			if best < 0 || area < bestArea {
				best, bestArea = i, area
			}
		}
		if best < 0 {
			shapes = append(shapes, Shape{Outer: orient(h, true)})
			continue
		}
		shapes[best].Holes = append(shapes[best].Holes, orient(h, false))
	}
	return shapes
}

// orient returns r wound counter-clockwise when ccw is set, clockwise
// otherwise.
func orient(r Ring, ccw bool) Ring {
	if (r.Area() > 0) != ccw {
		return r.reversed()
	}
	return slices.Clone(r)
}

// FlipY mirrors rings vertically, turning SVG's y-down coordinates into a
// y-up frame. Winding is reversed as a side effect.
func FlipY(rings []Ring) []Ring {
	out := make([]Ring, len(rings))
	for i, r := range rings {
		out[i] = make(Ring, len(r))
		for j, p := range r {
			out[i][j] = mgl32.Vec2{p.X(), -p.Y()}
		}
	}
	return out
}

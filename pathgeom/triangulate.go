package pathgeom

import (
	"cmp"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Triangulate fills a shape with triangles by ear clipping. Holes are first
// joined to the outer ring with bridge edges. Indices refer to the outer ring
// followed by each hole in order, the layout used by Shape.Points.
func Triangulate(s Shape) []uint32 {
	verts := s.Points()
	if len(s.Outer) < 3 {
		return nil
	}

	polygon := make([]int, len(s.Outer))
	for i := range polygon {
		polygon[i] = i
	}

	type hole struct {
		offset, n, right int
	}
	var holes []hole
	offset := len(s.Outer)
	for _, h := range s.Holes {
		right := 0
		for i, p := range h {
			if p.X() > h[right].X() {
				right = i
			}
		}
		holes = append(holes, hole{offset: offset, n: len(h), right: right})
		offset += len(h)
	}
	// Bridge the right-most holes first so later bridges never cross them.
	slices.SortFunc(holes, func(a, b hole) int {
		return cmp.Compare(verts[b.offset+b.right].X(), verts[a.offset+a.right].X())
	})
	for _, h := range holes {
		polygon = bridgeHole(verts, polygon, h.offset, h.n, h.right)
	}

	return earClip(verts, polygon)
}

// Points returns the outline points in triangulation order.
func (s Shape) Points() []mgl32.Vec2 {
	pts := make([]mgl32.Vec2, 0, s.VertexCount())
	pts = append(pts, s.Outer...)
	for _, h := range s.Holes {
		pts = append(pts, h...)
	}
	return pts
}

// bridgeHole splices a hole into the polygon through a mutually visible
// vertex pair, found by casting a ray from the hole's right-most vertex.
func bridgeHole(verts []mgl32.Vec2, polygon []int, offset, n, right int) []int {
	m := verts[offset+right]

	bestX := math32.Inf(1)
	bridge := -1
	var hit mgl32.Vec2
	for i := range polygon {
		a, b := verts[polygon[i]], verts[polygon[(i+1)%len(polygon)]]
		if a.Y() == b.Y() {
			continue
		}
		if (m.Y() < a.Y()) == (m.Y() < b.Y()) && m.Y() != a.Y() && m.Y() != b.Y() {
			continue
		}
		x := a.X() + (m.Y()-a.Y())*(b.X()-a.X())/(b.Y()-a.Y())
		if x < m.X() || x >= bestX {
			continue
		}
		bestX = x
		hit = mgl32.Vec2{x, m.Y()}
		switch {
		case a.ApproxEqual(hit):
			bridge = i
		case b.ApproxEqual(hit):
			bridge = (i + 1) % len(polygon)
		case a.X() > b.X():
			bridge = i
		default:
			bridge = (i + 1) % len(polygon)
		}
	}

	if bridge < 0 {
		bridge = nearestVertex(verts, polygon, m)
	} else if p := verts[polygon[bridge]]; !p.ApproxEqual(hit) {
		// A reflex vertex inside the triangle m, hit, p would hide p; take
		// the one closest in angle to the ray instead.
		bestAngle := math32.Inf(1)
		for i := range polygon {
			v := verts[polygon[i]]
			if i == bridge || !isReflex(verts, polygon, i) || !inTriangle(v, m, hit, p) {
				continue
			}
			angle := math32.Atan2(math32.Abs(v.Y()-m.Y()), v.X()-m.X())
			if angle < bestAngle {
				bestAngle = angle
				bridge = i
			}
		}
	}

	merged := make([]int, 0, len(polygon)+n+2)
	merged = append(merged, polygon[:bridge+1]...)
	for k := 0; k <= n; k++ {
		merged = append(merged, offset+(right+k)%n)
	}
	merged = append(merged, polygon[bridge])
	merged = append(merged, polygon[bridge+1:]...)
	return merged
}

func nearestVertex(verts []mgl32.Vec2, polygon []int, p mgl32.Vec2) int {
	best := 0
	bestDist := math32.Inf(1)
	for i, idx := range polygon {
		if d := verts[idx].Sub(p).LenSqr(); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func cross(a, b, c mgl32.Vec2) float32 {
	return (b.X()-a.X())*(c.Y()-b.Y()) - (b.Y()-a.Y())*(c.X()-b.X())
}

func isReflex(verts []mgl32.Vec2, polygon []int, i int) bool {
	n := len(polygon)
	a := verts[polygon[(i+n-1)%n]]
	b := verts[polygon[i]]
	c := verts[polygon[(i+1)%n]]
	return cross(a, b, c) < 0
}

// inTriangle reports whether p lies inside or on triangle abc, whatever its
// winding.
func inTriangle(p, a, b, c mgl32.Vec2) bool {
	d1 := cross(a, b, p)
	d2 := cross(b, c, p)
	d3 := cross(c, a, p)
	neg := d1 < 0 || d2 < 0 || d3 < 0
	pos := d1 > 0 || d2 > 0 || d3 > 0
	return !(neg && pos)
}

const earEpsilon = 1e-9

func earClip(verts []mgl32.Vec2, polygon []int) []uint32 {
	remaining := slices.Clone(polygon)
	indices := make([]uint32, 0, 3*(len(polygon)-2))

	for len(remaining) > 3 {
		n := len(remaining)
		clipped := false
		for i := range n {
			ia, ib, ic := remaining[(i+n-1)%n], remaining[i], remaining[(i+1)%n]
			a, b, c := verts[ia], verts[ib], verts[ic]
			if cross(a, b, c) <= earEpsilon {
				continue
			}
			if blocksEar(verts, remaining, a, b, c) {
				continue
			}
			indices = append(indices, uint32(ia), uint32(ib), uint32(ic))
			remaining = slices.Delete(remaining, i, i+1)
			clipped = true
			break
		}
		if !clipped {
			// Only degenerate or self-touching corners are left; drop the
			// flattest one so the loop terminates.
			worst := 0
			worstCross := math32.Inf(1)
			for i := range n {
				c := math32.Abs(cross(verts[remaining[(i+n-1)%n]], verts[remaining[i]], verts[remaining[(i+1)%n]]))
				if c < worstCross {
					worst, worstCross = i, c
				}
			}
			remaining = slices.Delete(remaining, worst, worst+1)
		}
	}
	if len(remaining) == 3 {
		indices = append(indices, uint32(remaining[0]), uint32(remaining[1]), uint32(remaining[2]))
	}
	return indices
}

func blocksEar(verts []mgl32.Vec2, remaining []int, a, b, c mgl32.Vec2) bool {
	for _, idx := range remaining {
		p := verts[idx]
		if p.ApproxEqual(a) || p.ApproxEqual(b) || p.ApproxEqual(c) {
			continue
		}
		if inTriangle(p, a, b, c) {
			return true
		}
	}
	return false
}

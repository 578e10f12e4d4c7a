package pathgeom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCurveSegments is the number of line segments per curve.
const DefaultCurveSegments = 12

// Ring is a closed polyline. The closing edge from the last point back to the
// first is implicit.
type Ring []mgl32.Vec2

// Flatten approximates every curve of the path with segments straight lines
// and returns one ring per subpath. Subpaths are closed implicitly, as a
// filled outline is.
func Flatten(p Path, segments int) []Ring {
	if segments < 1 {
		segments = DefaultCurveSegments
	}

	var rings []Ring
	var ring Ring
	var cur mgl32.Vec2

	flush := func() {
		ring = ring.clean()
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
		ring = nil
	}

	for _, op := range p {
		switch op.Cmd {
		case MoveTo:
			flush()
			cur = op.End()
			ring = Ring{cur}
		case LineTo:
			cur = op.End()
			ring = append(ring, cur)
		case CubeTo:
			p0, p1, p2, p3 := cur, op.Points[0], op.Points[1], op.Points[2]
			for i := 1; i <= segments; i++ {
				ring = append(ring, cubicAt(p0, p1, p2, p3, float32(i)/float32(segments)))
			}
			cur = p3
		case QuadTo:
			p0, p1, p2 := cur, op.Points[0], op.Points[1]
			for i := 1; i <= segments; i++ {
				ring = append(ring, quadAt(p0, p1, p2, float32(i)/float32(segments)))
			}
			cur = p2
		case ArcTo:
			ring = append(ring, flattenArc(cur, op.End(), op.Arc, segments)...)
			cur = op.End()
		case Close:
			cur = op.End()
			flush()
			ring = Ring{cur}
		}
	}
	flush()
	return rings
}

func cubicAt(p0, p1, p2, p3 mgl32.Vec2, t float32) mgl32.Vec2 {
	u := 1 - t
	return p0.Mul(u * u * u).
		Add(p1.Mul(3 * u * u * t)).
		Add(p2.Mul(3 * u * t * t)).
		Add(p3.Mul(t * t * t))
}

func quadAt(p0, p1, p2 mgl32.Vec2, t float32) mgl32.Vec2 {
	u := 1 - t
	return p0.Mul(u * u).Add(p1.Mul(2 * u * t)).Add(p2.Mul(t * t))
}

// flattenArc samples an endpoint-parameterised elliptical arc, excluding
// its start point.
func flattenArc(start, end mgl32.Vec2, arc Arc, segments int) []mgl32.Vec2 {
	rx, ry := math32.Abs(arc.Rx), math32.Abs(arc.Ry)
	if rx == 0 || ry == 0 || start.ApproxEqual(end) {
		return []mgl32.Vec2{end}
	}

	phi := mgl32.DegToRad(arc.Rotation)
	sinPhi, cosPhi := math32.Sincos(phi)

	// Endpoint to centre conversion.
	dx, dy := (start.X()-end.X())/2, (start.Y()-end.Y())/2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	// Scale up radii that are too small to span the endpoints.
	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math32.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := math32.Sqrt(math32.Max(0, num/den))
	if arc.Large == arc.Sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx

	cx := cosPhi*cx1 - sinPhi*cy1 + (start.X()+end.X())/2
	cy := sinPhi*cx1 + cosPhi*cy1 + (start.Y()+end.Y())/2

	theta0 := vectorAngle(1, 0, (x1-cx1)/rx, (y1-cy1)/ry)
	dtheta := vectorAngle((x1-cx1)/rx, (y1-cy1)/ry, (-x1-cx1)/rx, (-y1-cy1)/ry)
	if !arc.Sweep && dtheta > 0 {
		dtheta -= 2 * math32.Pi
	} else if arc.Sweep && dtheta < 0 {
		dtheta += 2 * math32.Pi
	}

	points := make([]mgl32.Vec2, 0, segments)
	for i := 1; i < segments; i++ {
		theta := theta0 + dtheta*float32(i)/float32(segments)
		sin, cos := math32.Sincos(theta)
		x := rx * cos
		y := ry * sin
		points = append(points, mgl32.Vec2{cosPhi*x - sinPhi*y + cx, sinPhi*x + cosPhi*y + cy})
	}
	return append(points, end)
}

func vectorAngle(ux, uy, vx, vy float32) float32 {
	return math32.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}

// clean drops repeated points, including a closing point equal to the first.
func (r Ring) clean() Ring {
	if len(r) == 0 {
		return r
	}
	out := Ring{r[0]}
	for _, p := range r[1:] {
		if !p.ApproxEqualThreshold(out[len(out)-1], 1e-5) {
			out = append(out, p)
		}
	}
	for len(out) > 1 && out[len(out)-1].ApproxEqualThreshold(out[0], 1e-5) {
		out = out[:len(out)-1]
	}
	return out
}

// Area is the signed shoelace area; positive for counter-clockwise rings in
// a y-up frame.
func (r Ring) Area() float32 {
	var a float32
	for i := range r {
		p, q := r[i], r[(i+1)%len(r)]
		a += p.X()*q.Y() - q.X()*p.Y()
	}
	return a / 2
}

// Contains reports whether p lies inside the ring by the even-odd rule.
func (r Ring) Contains(p mgl32.Vec2) bool {
	inside := false
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a.Y() > p.Y()) != (b.Y() > p.Y()) {
			x := (b.X()-a.X())*(p.Y()-a.Y())/(b.Y()-a.Y()) + a.X()
			if p.X() < x {
				inside = !inside
			}
		}
	}
	return inside
}

func (r Ring) reversed() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

package pathgeom

import (
	"github.com/go-gl/mathgl/mgl32"
)

type ExtrudeOptions struct {
	Depth float32
	// Steps is the number of wall segments along the depth.
	Steps int
}

// Mesh is an indexed triangle list. Triangles wind counter-clockwise when
// seen from outside.
type Mesh struct {
	Positions []mgl32.Vec3
	Indices   []uint32
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (mgl32.Vec3, mgl32.Vec3, mgl32.Vec3) {
	return m.Positions[m.Indices[3*i]], m.Positions[m.Indices[3*i+1]], m.Positions[m.Indices[3*i+2]]
}

func (m *Mesh) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi := m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := range 3 {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Center translates the mesh so its bounding box is centred on the origin.
func (m *Mesh) Center() {
	lo, hi := m.Bounds()
	offset := lo.Add(hi).Mul(0.5)
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Sub(offset)
	}
}

func (m *Mesh) Scale(s float32) {
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Mul(s)
	}
}

// Radius is the distance from the origin to the farthest vertex.
func (m *Mesh) Radius() float32 {
	var r float32
	for _, p := range m.Positions {
		r = max(r, p.Len())
	}
	return r
}

// Extrude sweeps each shape along +Z from 0 to Depth. Caps close both ends
// and the walls follow every outline edge.
func Extrude(shapes []Shape, opts ExtrudeOptions) Mesh {
	steps := max(opts.Steps, 1)
	var mesh Mesh

	for _, shape := range shapes {
		pts := shape.Points()
		n := uint32(len(pts))
		base := uint32(len(mesh.Positions))

		for layer := 0; layer <= steps; layer++ {
			z := opts.Depth * float32(layer) / float32(steps)
			for _, p := range pts {
				mesh.Positions = append(mesh.Positions, mgl32.Vec3{p.X(), p.Y(), z})
			}
		}

		caps := Triangulate(shape)
		back := base
		front := base + uint32(steps)*n
		for i := 0; i+2 < len(caps); i += 3 {
			a, b, c := caps[i], caps[i+1], caps[i+2]
			mesh.Indices = append(mesh.Indices,
				back+a, back+c, back+b,
				front+a, front+b, front+c,
			)
		}

		ringStart := uint32(0)
		rings := append([]Ring{shape.Outer}, shape.Holes...)
		for _, ring := range rings {
			rn := uint32(len(ring))
			for i := range rn {
				ci := ringStart + i
				cj := ringStart + (i+1)%rn
				for layer := range uint32(steps) {
					v00 := base + layer*n + ci
					v01 := base + layer*n + cj
					v10 := base + (layer+1)*n + ci
					v11 := base + (layer+1)*n + cj
					mesh.Indices = append(mesh.Indices, v00, v01, v11, v00, v11, v10)
				}
			}
			ringStart += rn
		}
	}
	return mesh
}

package raster

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawSphere ray-casts an analytic sphere, one sample per pixel centre. It
// returns the number of pixels that passed the depth test.
func (f *Frame) DrawSphere(cam Camera, env *Environment, center mgl32.Vec3, radius float32, m Material) int {
	screen, depth, ok := cam.Project(center, f.Width, f.Height)
	if !ok || depth+radius < cam.Near {
		return 0
	}
	// Off-axis spheres project to ellipses; the margin covers the stretch.
	r := cam.PixelRadius(radius, math32.Max(depth-radius, cam.Near), f.Height)*1.15 + 1
	x0, x1 := clampSpan(screen.X()-r, screen.X()+r, f.Width)
	y0, y1 := clampSpan(screen.Y()-r, screen.Y()+r, f.Height)

	opacity := m.Opacity
	if opacity <= 0 {
		opacity = 1
	}
	oc := cam.Eye.Sub(center)
	c := oc.Dot(oc) - radius*radius

	drawn := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dir := cam.Ray(float32(x)+0.5, float32(y)+0.5, f.Width, f.Height)
			b := oc.Dot(dir)
			disc := b*b - c
			if disc < 0 {
				continue
			}
			t := -b - math32.Sqrt(disc)
			if t <= 0 {
				continue
			}
			hit := cam.Eye.Add(dir.Mul(t))
			d := cam.ViewDepth(hit)
			i := y*f.Width + x
			if d < cam.Near || d >= f.Depth[i] {
				continue
			}
			n := hit.Sub(center).Mul(1 / radius)
			f.write(i, Shade(env, m, n, dir.Mul(-1)), d, opacity)
			drawn++
		}
	}
	return drawn
}

// DrawMesh rasterises an indexed triangle list transformed by model. Faces
// pointing away from the eye are culled and each face is flat shaded.
func (f *Frame) DrawMesh(cam Camera, env *Environment, model mgl32.Mat4, positions []mgl32.Vec3, indices []uint32, m Material) int {
	world := make([]mgl32.Vec3, len(positions))
	for i, p := range positions {
		world[i] = model.Mul4x1(p.Vec4(1)).Vec3()
	}

	opacity := m.Opacity
	if opacity <= 0 {
		opacity = 1
	}

	drawn := 0
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := world[indices[t]], world[indices[t+1]], world[indices[t+2]]
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Len() == 0 || normal.Dot(a.Sub(cam.Eye)) >= 0 {
			continue
		}
		normal = normal.Normalize()

		sa, wa, okA := cam.Project(a, f.Width, f.Height)
		sb, wb, okB := cam.Project(b, f.Width, f.Height)
		sc, wc, okC := cam.Project(c, f.Width, f.Height)
		if !okA || !okB || !okC || wa < cam.Near || wb < cam.Near || wc < cam.Near {
			continue
		}

		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		color := Shade(env, m, normal, cam.Eye.Sub(centroid).Normalize())
		drawn += f.fillTriangle(sa, sb, sc, wa, wb, wc, color, opacity)
	}
	return drawn
}

// fillTriangle covers pixel centres inside the screen triangle. Depth is
// interpolated through 1/w so it stays perspective correct.
func (f *Frame) fillTriangle(a, b, c mgl32.Vec2, wa, wb, wc float32, color mgl32.Vec3, opacity float32) int {
	area := edge(a, b, c)
	if math32.Abs(area) < 1e-9 {
		return 0
	}
	x0, x1 := clampSpan(min(a.X(), b.X(), c.X()), max(a.X(), b.X(), c.X()), f.Width)
	y0, y1 := clampSpan(min(a.Y(), b.Y(), c.Y()), max(a.Y(), b.Y(), c.Y()), f.Height)

	drawn := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			p := mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}
			l0 := edge(b, c, p) / area
			l1 := edge(c, a, p) / area
			l2 := edge(a, b, p) / area
			if l0 < 0 || l1 < 0 || l2 < 0 {
				continue
			}
			depth := 1 / (l0/wa + l1/wb + l2/wc)
			i := y*f.Width + x
			if depth >= f.Depth[i] {
				continue
			}
			f.write(i, color, depth, opacity)
			drawn++
		}
	}
	return drawn
}

// DrawCircleOutline draws the silhouette of a sphere on top of everything,
// ignoring depth.
func (f *Frame) DrawCircleOutline(cam Camera, center mgl32.Vec3, radius float32, color mgl32.Vec3) {
	screen, depth, ok := cam.Project(center, f.Width, f.Height)
	if !ok || depth < cam.Near {
		return
	}
	r := cam.PixelRadius(radius, depth, f.Height)
	steps := max(16, int(2*math32.Pi*r))
	for k := range steps {
		angle := 2 * math32.Pi * float32(k) / float32(steps)
		x := int(screen.X() + r*math32.Cos(angle))
		y := int(screen.Y() + r*math32.Sin(angle))
		if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
			continue
		}
		f.Color[y*f.Width+x] = color
	}
}

func edge(a, b, p mgl32.Vec2) float32 {
	return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
}

// clampSpan converts a float range to pixel indices [lo, hi) inside size.
func clampSpan(lo, hi float32, size int) (int, int) {
	l := max(int(math32.Floor(lo)), 0)
	h := min(int(math32.Ceil(hi))+1, size)
	return l, h
}

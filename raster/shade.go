package raster

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type Material struct {
	Albedo    mgl32.Vec3
	Roughness float32
	Metalness float32
	Opacity   float32
}

// Light is a distant light. Direction points from the scene toward it.
type Light struct {
	Direction mgl32.Vec3
	Radiance  mgl32.Vec3
}

type Environment struct {
	Ambient mgl32.Vec3
	Lights  []Light
}

// Shade evaluates Lambert diffuse plus normalised Blinn-Phong specular for
// each light, and a Schlick rim that stands in for environment reflections.
// n is the surface normal and v points from the surface to the eye.
func Shade(env *Environment, m Material, n, v mgl32.Vec3) mgl32.Vec3 {
	metal := mgl32.Clamp(m.Metalness, 0, 1)
	rough := mgl32.Clamp(m.Roughness, 0.02, 1)
	diffuseColor := m.Albedo.Mul(1 - metal)
	specColor := lerp(mgl32.Vec3{0.04, 0.04, 0.04}, m.Albedo, metal)

	shininess := mgl32.Clamp(2/(rough*rough*rough*rough)-2, 1, 2048)
	norm := (shininess + 8) / (8 * math32.Pi)

	color := mul(diffuseColor, env.Ambient)
	for _, l := range env.Lights {
		nl := n.Dot(l.Direction)
		if nl <= 0 {
			continue
		}
		h := l.Direction.Add(v).Normalize()
		spec := math32.Pow(math32.Max(n.Dot(h), 0), shininess) * norm
		lit := diffuseColor.Add(specColor.Mul(spec))
		color = color.Add(mul(lit, l.Radiance).Mul(nl))
	}

	nv := mgl32.Clamp(n.Dot(v), 0, 1)
	f := math32.Pow(1-nv, 5)
	fresnel := specColor.Add(mgl32.Vec3{1, 1, 1}.Sub(specColor).Mul(f))
	color = color.Add(mul(fresnel, env.Ambient).Mul(1 - rough))
	return color
}

func mul(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

package raster

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera. Depth everywhere in this package is the
// view depth, the distance along Forward.
type Camera struct {
	Eye     mgl32.Vec3
	Forward mgl32.Vec3
	Near    float32
	Far     float32
	// YScale is cot(fovY/2), the projection's vertical focal factor.
	YScale float32

	viewProj mgl32.Mat4
	inverse  mgl32.Mat4
}

// NewCamera builds a camera at eye looking at target. fovY is in radians.
func NewCamera(eye, target, up mgl32.Vec3, fovY, aspect, near, far float32) Camera {
	view := mgl32.LookAtV(eye, target, up)
	proj := mgl32.Perspective(fovY, aspect, near, far)
	viewProj := proj.Mul4(view)
	return Camera{
		Eye:      eye,
		Forward:  target.Sub(eye).Normalize(),
		Near:     near,
		Far:      far,
		YScale:   1 / math32.Tan(fovY/2),
		viewProj: viewProj,
		inverse:  viewProj.Inv(),
	}
}

// Project maps a world point to pixel coordinates on a width×height frame.
// It fails for points behind the eye.
func (c Camera) Project(p mgl32.Vec3, width, height int) (mgl32.Vec2, float32, bool) {
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 1e-6 {
		return mgl32.Vec2{}, 0, false
	}
	x := (clip.X()/w + 1) / 2 * float32(width)
	y := (1 - clip.Y()/w) / 2 * float32(height)
	return mgl32.Vec2{x, y}, w, true
}

// Ray returns the unit direction from the eye through pixel position (x, y).
func (c Camera) Ray(x, y float32, width, height int) mgl32.Vec3 {
	nx := x/float32(width)*2 - 1
	ny := 1 - y/float32(height)*2
	near := c.inverse.Mul4x1(mgl32.Vec4{nx, ny, -1, 1})
	far := c.inverse.Mul4x1(mgl32.Vec4{nx, ny, 1, 1})
	pn := near.Vec3().Mul(1 / near.W())
	pf := far.Vec3().Mul(1 / far.W())
	return pf.Sub(pn).Normalize()
}

// ViewDepth is the distance of p along the viewing direction.
func (c Camera) ViewDepth(p mgl32.Vec3) float32 {
	return p.Sub(c.Eye).Dot(c.Forward)
}

// PixelRadius approximates the on-screen radius of a sphere at view depth.
func (c Camera) PixelRadius(radius, depth float32, height int) float32 {
	if depth <= 0 {
		return 0
	}
	return radius * c.YScale * float32(height) / 2 / depth
}

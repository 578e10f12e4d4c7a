package connectors

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the perspective camera looking down -Z at the origin.
type Camera struct {
	Position mgl32.Vec3
	// Fov is the vertical field of view in degrees.
	Fov    float32
	Near   float32
	Far    float32
	Aspect float32
}

func DefaultCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 0, 30},
		Fov:      17.5,
		Near:     10,
		Far:      40,
		Aspect:   1,
	}
}

// Viewport is the size, in world units, of the visible plane through the
// origin.
type Viewport struct {
	Width, Height float32
}

func (c *Camera) Viewport() Viewport {
	distance := c.Position.Len()
	h := 2 * math32.Tan(mgl32.DegToRad(c.Fov)/2) * distance
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return Viewport{Width: h * aspect, Height: h}
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection() mgl32.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

// PointerTarget maps a normalised pointer to the point it covers on the
// z = 0 plane.
func PointerTarget(pointer mgl32.Vec2, viewport Viewport) mgl32.Vec3 {
	return mgl32.Vec3{
		pointer.X() * viewport.Width / 2,
		pointer.Y() * viewport.Height / 2,
		0,
	}
}

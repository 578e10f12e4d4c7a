package connectors

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPointerTarget(t *testing.T) {
	viewport := Viewport{Width: 20, Height: 20}

	assert.Equal(t, mgl32.Vec3{5, 5, 0}, PointerTarget(mgl32.Vec2{0.5, 0.5}, viewport))
	assert.Equal(t, mgl32.Vec3{}, PointerTarget(mgl32.Vec2{}, viewport))
	assert.Equal(t, mgl32.Vec3{-10, 10, 0}, PointerTarget(mgl32.Vec2{-1, 1}, viewport))
}

func TestCamera_Viewport(t *testing.T) {
	cam := DefaultCamera()
	vp := cam.Viewport()

	// 2·tan(8.75°)·30
	assert.InDelta(t, 9.235, vp.Height, 1e-2)
	assert.InDelta(t, vp.Height, vp.Width, 1e-6)

	cam.Aspect = 2
	assert.InDelta(t, 2*vp.Height, cam.Viewport().Width, 1e-4)

	cam.Aspect = 0
	assert.InDelta(t, vp.Height, cam.Viewport().Width, 1e-6, "unknown aspect counts as square")
}

func TestCamera_ProjectsOriginToCentre(t *testing.T) {
	cam := DefaultCamera()
	clip := cam.Projection().Mul4(cam.View()).Mul4x1(mgl32.Vec4{0, 0, 0, 1})

	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-6)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-6)
	assert.InDelta(t, 30, clip.W(), 1e-4)
}

func TestCamera_ViewportEdgeProjectsToEdge(t *testing.T) {
	cam := DefaultCamera()
	cam.Aspect = 1.5
	edge := PointerTarget(mgl32.Vec2{1, 1}, cam.Viewport())
	clip := cam.Projection().Mul4(cam.View()).Mul4x1(edge.Vec4(1))

	assert.InDelta(t, 1, clip.X()/clip.W(), 1e-3)
	assert.InDelta(t, 1, clip.Y()/clip.W(), 1e-3)
}

package connectors

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestInput_Edges(t *testing.T) {
	input := &Input{}

	input.Press(MouseButtonLeft)
	input.Press(MouseButtonLeft)
	assert.True(t, input.JustPressed[MouseButtonLeft])
	assert.True(t, input.Pressed[MouseButtonLeft])

	input.BeginFrame()
	assert.False(t, input.JustPressed[MouseButtonLeft])
	assert.True(t, input.Pressed[MouseButtonLeft], "mouse buttons stay down until released")

	input.Press(MouseButtonLeft)
	assert.False(t, input.JustPressed[MouseButtonLeft], "holding is not a new click")

	input.Release(MouseButtonLeft)
	assert.True(t, input.JustReleased[MouseButtonLeft])
	input.Release(MouseButtonLeft)

	input.Press(KeyQ)
	input.CharBuffer = append(input.CharBuffer, 'q')
	input.BeginFrame()
	assert.False(t, input.Pressed[KeyQ])
	assert.Empty(t, input.CharBuffer)
}

func TestInput_SetPointerCell(t *testing.T) {
	input := &Input{}

	input.SetPointerCell(4, 2, 10, 5)
	assert.InDelta(t, -0.1, input.Pointer.X(), 1e-6)
	assert.InDelta(t, 0, input.Pointer.Y(), 1e-6)
	assert.Equal(t, 4, input.MouseX)

	input.SetPointerCell(0, 0, 1, 1)
	assert.Equal(t, mgl32.Vec2{0, 0}, input.Pointer)

	input.SetPointerCell(3, 3, 0, 0)
	assert.Equal(t, mgl32.Vec2{0, 0}, input.Pointer, "an empty grid keeps the last pointer")
	assert.Equal(t, 3, input.MouseX)
}

package connectors

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	KeyA int = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyCtrlC
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
)

type InputModule struct{}

// Input is the per-frame view of the user's devices. Keys in a terminal have
// no release events, so a key counts as pressed only for the frame its event
// arrived in; mouse buttons report both edges.
type Input struct {
	Pressed [256]bool

	JustPressed  [256]bool
	JustReleased [256]bool

	// Pointer is the normalised pointer position, x and y in [-1, 1] with y
	// pointing up. It keeps its last value when the pointer leaves.
	Pointer mgl32.Vec2
	// MouseX and MouseY are in presenter cells.
	MouseX, MouseY int

	WindowWidth, WindowHeight int
	Resized                   bool
	CharBuffer                []rune
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputFrameSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func inputFrameSystem(input *Input) {
	input.BeginFrame()
}

// BeginFrame drops the edge flags of the previous frame.
func (input *Input) BeginFrame() {
	input.JustPressed = [256]bool{}
	input.JustReleased = [256]bool{}
	input.CharBuffer = nil
	input.Resized = false

	for key := range MouseButtonLeft {
		input.Pressed[key] = false
	}
}

func (input *Input) Press(key int) {
	if !input.Pressed[key] {
		input.JustPressed[key] = true
	}
	input.Pressed[key] = true
}

func (input *Input) Release(key int) {
	if input.Pressed[key] {
		input.JustReleased[key] = true
	}
	input.Pressed[key] = false
}

// SetPointerCell converts a cell position on a w×h grid to the normalised
// pointer, sampling the cell centre.
func (input *Input) SetPointerCell(x, y, w, h int) {
	input.MouseX, input.MouseY = x, y
	if w <= 0 || h <= 0 {
		return
	}
	nx := (float32(x)+0.5)/float32(w)*2 - 1
	ny := 1 - (float32(y)+0.5)/float32(h)*2
	input.Pointer = mgl32.Vec2{mgl32.Clamp(nx, -1, 1), mgl32.Clamp(ny, -1, 1)}
}

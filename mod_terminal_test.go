package connectors

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term, err := NewTerminal(screen)
	require.NoError(t, err)
	screen.SetSize(w, h)
	t.Cleanup(func() { term.Close() })
	return term, screen
}

func TestTerminal_SizeLeavesRoomForHUD(t *testing.T) {
	term, _ := newSimTerminal(t, 80, 25)
	w, h := term.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 48, h, "two pixels per cell above the status row")
}

func TestTerminal_PresentHalfBlocks(t *testing.T) {
	term, screen := newSimTerminal(t, 4, 3)
	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	frame.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	frame.SetRGBA(0, 1, color.RGBA{0, 0, 255, 255})

	require.NoError(t, term.Present(frame, "hi"))

	r, _, style, _ := screen.GetContent(0, 0)
	assert.Equal(t, '▀', r)
	fg, bg, _ := style.Decompose()
	fr, fgG, fb := fg.RGB()
	br, bgG, bb := bg.RGB()
	assert.Equal(t, [3]int32{255, 0, 0}, [3]int32{fr, fgG, fb}, "top pixel is the foreground")
	assert.Equal(t, [3]int32{0, 0, 255}, [3]int32{br, bgG, bb}, "bottom pixel is the background")

	h, _, _, _ := screen.GetContent(0, 2)
	i, _, _, _ := screen.GetContent(1, 2)
	blank, _, _, _ := screen.GetContent(3, 2)
	assert.Equal(t, "hi ", string([]rune{h, i, blank}))
}

func TestTerminal_HandleKeys(t *testing.T) {
	term, _ := newSimTerminal(t, 10, 5)
	input := &Input{}

	term.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), input)
	term.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), input)
	term.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'D', tcell.ModNone), input)
	term.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), input)

	assert.True(t, input.JustPressed[KeyQ])
	assert.True(t, input.JustPressed[KeySpace])
	assert.True(t, input.JustPressed[KeyD])
	assert.True(t, input.JustPressed[KeyEscape])
	assert.Equal(t, []rune{'q', ' ', 'D'}, input.CharBuffer)

	input.BeginFrame()
	assert.False(t, input.Pressed[KeyQ], "keys last one frame")
}

func TestTerminal_HandleMouse(t *testing.T) {
	term, _ := newSimTerminal(t, 4, 3)
	input := &Input{}

	term.HandleEvent(tcell.NewEventMouse(1, 0, tcell.Button1, tcell.ModNone), input)
	assert.True(t, input.JustPressed[MouseButtonLeft])
	assert.InDelta(t, -0.25, input.Pointer.X(), 1e-6)
	assert.InDelta(t, 0.5, input.Pointer.Y(), 1e-6)

	input.BeginFrame()
	term.HandleEvent(tcell.NewEventMouse(3, 2, tcell.ButtonNone, tcell.ModNone), input)
	assert.True(t, input.JustReleased[MouseButtonLeft])
	assert.Equal(t, mgl32.Vec2{-0.25, 0.5}, input.Pointer, "the status row does not move the pointer")

	term.HandleEvent(tcell.NewEventMouse(0, 0, tcell.Button2, tcell.ModNone), input)
	assert.True(t, input.Pressed[MouseButtonRight])
}

func TestTerminal_HandleResize(t *testing.T) {
	term, _ := newSimTerminal(t, 4, 3)
	input := &Input{}

	term.HandleEvent(tcell.NewEventResize(100, 40), input)
	assert.True(t, input.Resized)
	assert.Equal(t, 100, input.WindowWidth)
	assert.Equal(t, 40, input.WindowHeight)
}

func TestTerminal_DrainPolledEvents(t *testing.T) {
	term, screen := newSimTerminal(t, 10, 5)
	input := &Input{}

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	assert.Eventually(t, func() bool {
		term.Drain(input)
		return input.Pressed[KeyX]
	}, time.Second, 5*time.Millisecond)
}

func TestTerminalModule(t *testing.T) {
	term, _ := newSimTerminal(t, 30, 12)
	app := NewAppBuilder().UseModule(InputModule{}, TerminalModule{Terminal: term}).Build()

	input, ok := Resource[Input](app)
	require.True(t, ok)
	assert.Equal(t, 30, input.WindowWidth)
	assert.Equal(t, 12, input.WindowHeight)

	require.NoError(t, app.Close())
	require.NoError(t, term.Close(), "closing twice is harmless")

	assert.Panics(t, func() { NewAppBuilder().UseModule(TerminalModule{}).Build() })
}

package connectors

import (
	"fmt"
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// hudRows is the number of text rows below the picture.
const hudRows = 1

// Terminal presents frames with half-block glyphs, two pixels per cell, and
// turns terminal events into Input. Events are read on their own goroutine
// and drained once per frame.
type Terminal struct {
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}
	once   sync.Once
}

// NewTerminal takes over the screen. A nil screen opens the real terminal.
func NewTerminal(screen tcell.Screen) (*Terminal, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("create terminal screen: %w", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()
	screen.Clear()

	term := &Terminal{
		screen: screen,
		events: make(chan tcell.Event, 256),
		quit:   make(chan struct{}),
	}
	go term.poll()
	return term, nil
}

func (term *Terminal) poll() {
	for {
		ev := term.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case term.events <- ev:
		case <-term.quit:
			return
		}
	}
}

// Close restores the terminal.
func (term *Terminal) Close() error {
	term.once.Do(func() {
		close(term.quit)
		term.screen.Fini()
	})
	return nil
}

func (term *Terminal) Size() (int, int) {
	w, h := term.screen.Size()
	return w, max(h-hudRows, 0) * 2
}

func (term *Terminal) Present(frame *image.RGBA, status string) error {
	w, h := term.screen.Size()
	rows := h - hudRows
	b := frame.Bounds()
	for y := range rows {
		for x := range w {
			top := frame.RGBAAt(b.Min.X+x, b.Min.Y+2*y)
			bottom := frame.RGBAAt(b.Min.X+x, b.Min.Y+2*y+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			term.screen.SetContent(x, y, '▀', nil, style)
		}
	}

	hud := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(150, 150, 165)).
		Background(tcell.NewRGBColor(20, 22, 34))
	text := []rune(status)
	for y := max(rows, 0); y < h; y++ {
		for x := range w {
			r := ' '
			if y == max(rows, 0) && x < len(text) {
				r = text[x]
			}
			term.screen.SetContent(x, y, r, nil, hud)
		}
	}
	term.screen.Show()
	return nil
}

// HandleEvent applies one terminal event to input.
func (term *Terminal) HandleEvent(ev tcell.Event, input *Input) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape:
			input.Press(KeyEscape)
		case tcell.KeyCtrlC:
			input.Press(KeyCtrlC)
		case tcell.KeyEnter:
			input.Press(KeyEnter)
		case tcell.KeyTab:
			input.Press(KeyTab)
		case tcell.KeyRune:
			r := ev.Rune()
			input.CharBuffer = append(input.CharBuffer, r)
			switch {
			case r == ' ':
				input.Press(KeySpace)
			case r >= 'a' && r <= 'z':
				input.Press(KeyA + int(r-'a'))
			case r >= 'A' && r <= 'Z':
				input.Press(KeyA + int(r-'A'))
			}
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		w, h := term.screen.Size()
		rows := h - hudRows
		if y < rows {
			input.SetPointerCell(x, y, w, rows)
		}
		buttons := ev.Buttons()
		setButton(input, MouseButtonLeft, buttons&tcell.Button1 != 0)
		setButton(input, MouseButtonRight, buttons&tcell.Button2 != 0)
		setButton(input, MouseButtonMiddle, buttons&tcell.Button3 != 0)

	case *tcell.EventResize:
		term.screen.Sync()
		input.WindowWidth, input.WindowHeight = ev.Size()
		input.Resized = true
	}
}

func setButton(input *Input, button int, down bool) {
	if down {
		input.Press(button)
	} else {
		input.Release(button)
	}
}

// Drain applies every event that arrived since the last frame.
func (term *Terminal) Drain(input *Input) int {
	n := 0
	for {
		select {
		case ev := <-term.events:
			term.HandleEvent(ev, input)
			n++
		default:
			return n
		}
	}
}

type TerminalModule struct {
	Terminal *Terminal
}

func (m TerminalModule) Install(app *App, cmd *Commands) {
	if m.Terminal == nil {
		panic("TerminalModule needs a Terminal")
	}
	cmd.AddResources(m.Terminal)
	if input, ok := Resource[Input](app); ok {
		input.WindowWidth, input.WindowHeight = m.Terminal.screen.Size()
	}
	app.UseSystem(
		System(terminalInputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func terminalInputSystem(term *Terminal, input *Input) {
	term.Drain(input)
}

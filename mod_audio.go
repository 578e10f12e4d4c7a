package connectors

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const chimeSampleRate = beep.SampleRate(44100)

// Chime plays a short tone whenever the palette advances. Without a working
// speaker it stays silent and only counts.
type Chime struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	lastClicks  int
	// Played counts chimes requested, heard or not.
	Played int
}

func NewChime(volume float32) *Chime {
	return &Chime{
		mixer:  &beep.Mixer{},
		volume: float64(volume),
	}
}

// Initialize opens the speaker. Failure leaves the chime silent.
func (c *Chime) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(chimeSampleRate, chimeSampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Play queues a tone pitched by the accent index, a major third apart.
func (c *Chime) Play(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Played++
	if !c.initialized {
		return
	}
	freq := 523.25 * math.Pow(2, float64(index%12)*4/12)
	duration := chimeSampleRate.N(220 * time.Millisecond)
	tone := beep.Take(duration, newChimeTone(chimeSampleRate, freq, c.volume, duration))

	speaker.Lock()
	c.mixer.Add(tone)
	speaker.Unlock()
}

func (c *Chime) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	c.initialized = false
	return nil
}

// chimeTone is a sine with a fast attack and exponential decay.
type chimeTone struct {
	sr     beep.SampleRate
	freq   float64
	volume float64
	length int
	pos    int
}

func newChimeTone(sr beep.SampleRate, freq, volume float64, length int) *chimeTone {
	return &chimeTone{sr: sr, freq: freq, volume: volume, length: length}
}

func (g *chimeTone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		attack := math.Min(1, float64(g.pos)/(0.005*float64(g.sr)))
		decay := math.Exp(-6 * float64(g.pos) / float64(g.length))
		v := g.volume * attack * decay * math.Sin(2*math.Pi*g.freq*t)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *chimeTone) Err() error {
	return nil
}

type AudioModule struct {
	Enabled bool
	Volume  float32
}

func (m AudioModule) Install(app *App, cmd *Commands) {
	chime := NewChime(m.Volume)
	if m.Enabled {
		if err := chime.Initialize(); err != nil {
			app.Logger().Warnf("audio unavailable, chime disabled: %v", err)
		}
	}
	cmd.AddResources(chime)
	app.UseSystem(
		System(chimeSystem).
			InStage(Finale).
			RunAlways(),
	)
}

func chimeSystem(chime *Chime, palette *Palette) {
	if palette.Clicks == chime.lastClicks {
		return
	}
	chime.lastClicks = palette.Clicks
	chime.Play(palette.Index)
}

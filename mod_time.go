package connectors

import (
	"time"
)

type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration
	Frame   uint64
	// Fixed replaces the wall-clock delta when non-zero.
	Fixed time.Duration
}

// DeltaSeconds is the last frame delta in seconds. It is not clamped.
func (t *Time) DeltaSeconds() float32 {
	return float32(t.Dt.Seconds())
}

// FramePacer sleeps at the end of a frame so frames start no more often than
// Target apart.
type FramePacer struct {
	Target     time.Duration
	frameStart time.Time
	sleep      func(time.Duration)
}

type TimeModule struct {
	// FPS caps the frame rate; zero runs unpaced.
	FPS   int
	Fixed time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	pacer := &FramePacer{sleep: time.Sleep}
	if mod.FPS > 0 {
		pacer.Target = time.Second / time.Duration(mod.FPS)
	}
	cmd.AddResources(
		&Time{Time: time.Now(), Fixed: mod.Fixed},
		pacer,
	)
	app.UseSystem(
		System(timeSystem).
			InStage(PreUpdate).
			RunAlways(),
	).UseSystem(
		System(framePacerSystem).
			InStage(Finale).
			RunAlways(),
	)
}

func timeSystem(timeResource *Time, pacer *FramePacer) {
	now := time.Now()
	pacer.frameStart = now

	if timeResource.Fixed > 0 {
		timeResource.Dt = timeResource.Fixed
	} else {
		timeResource.Dt = now.Sub(timeResource.Time)
	}
	timeResource.Time = now
	timeResource.Elapsed += timeResource.Dt
	timeResource.Frame++
}

func framePacerSystem(pacer *FramePacer) {
	if pacer.Target <= 0 || pacer.frameStart.IsZero() {
		return
	}
	if remaining := pacer.Target - time.Since(pacer.frameStart); remaining > 0 {
		pacer.sleep(remaining)
	}
}

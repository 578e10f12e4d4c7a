package connectors

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedInput presses keys on the given frames, counting from one.
type scriptedInput struct {
	presses map[int][]int
}

func (s scriptedInput) Install(app *App, cmd *Commands) {
	frame := 0
	app.UseSystem(
		System(func(input *Input) {
			frame++
			for _, key := range s.presses[frame] {
				input.Press(key)
			}
		}).
			InStage(Prelude).
			RunAlways(),
	)
}

func headlessConfig() *Config {
	cfg := DefaultConfig()
	cfg.Shape = "sphere"
	return cfg
}

func newHeadlessScene(t *testing.T, cfg *Config, opts SceneOptions) *App {
	t.Helper()
	if opts.Fixed == 0 {
		opts.Fixed = time.Second / 60
	}
	app := NewScene(cfg, opts)
	t.Cleanup(func() { app.Close() })
	return app
}

func capture(app *App) Snapshot {
	clock, _ := Resource[Time](app)
	palette, _ := Resource[Palette](app)
	return CaptureSnapshot(app.Commands(), clock, palette)
}

func TestRestoringImpulse(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{-2, 0, 1}, RestoringImpulse(mgl32.Vec3{10, 0, -5}, 0.2))
	assert.Equal(t, mgl32.Vec3{}, RestoringImpulse(mgl32.Vec3{}, 0.2))
}

func TestConnectorSystem_ImpulseAndColour(t *testing.T) {
	app := NewAppBuilder().Build()
	cfg := DefaultConfig()
	app.addResources(&Time{Dt: time.Second / 60}, cfg)
	cmd := app.Commands()

	tr := NewTransform(mgl32.Vec3{5, 0, 0})
	target := MustParseColor("#444")
	full := cmd.AddEntity(
		&ConnectorComponent{Target: target},
		&DisplayColorComponent{Color: White},
		&tr,
		&RigidBodyComponent{Mass: 1},
	)
	partial := cmd.AddEntity(&ConnectorComponent{Target: target}, &tr, &RigidBodyComponent{Mass: 1})
	app.FlushCommands()

	ConnectorSystem(cmd, &Time{Dt: time.Second / 60}, cfg)

	MakeQuery2[ConnectorComponent, RigidBodyComponent](cmd).Map(func(eid EntityId, _ *ConnectorComponent, rb *RigidBodyComponent) bool {
		switch eid {
		case full:
			assert.Equal(t, mgl32.Vec3{-1, 0, 0}, rb.Velocity)
		case partial:
			assert.Equal(t, mgl32.Vec3{}, rb.Velocity, "entities missing a component are skipped")
		}
		return true
	})
	MakeQuery1[DisplayColorComponent](cmd).Map(func(eid EntityId, d *DisplayColorComponent) bool {
		assert.Less(t, d.Color.Distance(target), White.Distance(target))
		return true
	})
}

func TestConnectorSystem_DeltaClampedForEasing(t *testing.T) {
	run := func(dt time.Duration) Color {
		app := NewAppBuilder().Build()
		cmd := app.Commands()
		cmd.AddEntity(
			&ConnectorComponent{Target: Black},
			&DisplayColorComponent{Color: White},
			ptrTo(NewTransform(mgl32.Vec3{})),
			&RigidBodyComponent{},
		)
		app.FlushCommands()
		ConnectorSystem(cmd, &Time{Dt: dt}, DefaultConfig())

		var c Color
		MakeQuery1[DisplayColorComponent](cmd).Map(func(_ EntityId, d *DisplayColorComponent) bool {
			c = d.Color
			return true
		})
		return c
	}
	assert.Equal(t, run(100*time.Millisecond), run(5*time.Second))
}

func TestPointerSystem(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()
	eid := SpawnPointer(cmd, 1)
	app.FlushCommands()

	camera := &Camera{Position: mgl32.Vec3{0, 0, 30}, Fov: 17.5, Near: 10, Far: 40, Aspect: 1}
	input := &Input{Pointer: mgl32.Vec2{0.5, 0.5}}
	PointerSystem(cmd, input, camera)

	_, rb := bodyOf(t, cmd, eid)
	next, ok := rb.NextKinematicTranslation()
	require.True(t, ok)
	assert.Equal(t, PointerTarget(input.Pointer, camera.Viewport()), next)
	assert.Zero(t, next.Z())
}

func TestGeometrySystem(t *testing.T) {
	server := NewAssetServer(nil)
	ready, err := server.Precompute(LogoSVG, DefaultLogoOptions())
	require.NoError(t, err)

	app := NewAppBuilder().Build()
	cmd := app.Commands()
	logo := cmd.AddEntity(&MeshComponent{Geometry: ready})
	unknown := cmd.AddEntity(&MeshComponent{Geometry: "nothing"})
	app.FlushCommands()

	GeometrySystem(cmd, server)

	MakeQuery1[MeshComponent](cmd).Map(func(eid EntityId, m *MeshComponent) bool {
		switch eid {
		case logo:
			assert.Equal(t, GeometryReady, m.State)
		case unknown:
			assert.Equal(t, GeometryPending, m.State)
		}
		return true
	})
}

func TestNewScene_FirstFrame(t *testing.T) {
	app := newHeadlessScene(t, headlessConfig(), SceneOptions{})
	app.Step()

	snap := capture(app)
	require.Len(t, snap.Bodies, ConnectorCount)
	for i, b := range snap.Bodies {
		assert.Equal(t, i, b.Index, "bodies are listed in display order")
		assert.Equal(t, "sphere", b.Kind)
	}
	assert.Equal(t, uint64(1), snap.Frame)
	assert.Equal(t, StateRunning, app.State())
	assert.Equal(t, 5, MakeQuery1[LightComponent](app.Commands()).Count())
	assert.Equal(t, 1, MakeQuery1[PointerComponent](app.Commands()).Count())
}

func TestNewScene_BodiesGatherAtTheOrigin(t *testing.T) {
	app := newHeadlessScene(t, headlessConfig(), SceneOptions{})
	app.Step()
	start := capture(app)

	for range 300 {
		app.Step()
	}
	end := capture(app)

	assert.Less(t, end.MeanDistance(), start.MeanDistance())
	assert.Less(t, end.MeanDistance(), float32(4))
	for _, b := range end.Bodies {
		assert.Equal(t, MustParseColor(b.Material.Color).Hex(), b.Color, "display colours settle on the material colour")
	}
}

func TestNewScene_SameSeedIsDeterministic(t *testing.T) {
	run := func() Snapshot {
		app := newHeadlessScene(t, headlessConfig(), SceneOptions{})
		for range 30 {
			app.Step()
		}
		return capture(app)
	}
	a, b := run(), run()
	require.Len(t, b.Bodies, len(a.Bodies))
	for i := range a.Bodies {
		assert.Equal(t, a.Bodies[i].Position, b.Bodies[i].Position)
	}
}

func TestNewScene_ClickAdvancesPalette(t *testing.T) {
	app := newHeadlessScene(t, headlessConfig(), SceneOptions{
		Modules: []Module{scriptedInput{presses: map[int][]int{3: {MouseButtonLeft}}}},
	})
	app.Step()
	before := capture(app)

	for range 3 {
		app.Step()
	}
	after := capture(app)

	assert.Equal(t, 1, after.AccentIndex)
	assert.Equal(t, "#ffcc00", after.Accent)
	require.Len(t, after.Bodies, ConnectorCount)
	assert.NotEqual(t, before.Bodies[0].ID, after.Bodies[0].ID, "bodies are respawned for the new accent")
	assert.Equal(t, "#ffcc00", after.Bodies[6].Material.Color)

	chime, ok := Resource[Chime](app)
	require.True(t, ok)
	assert.Equal(t, 1, chime.Played)
}

func TestNewScene_ClickKeepsUnchangedColours(t *testing.T) {
	const clickFrame = 241
	app := newHeadlessScene(t, headlessConfig(), SceneOptions{
		Modules: []Module{scriptedInput{presses: map[int][]int{clickFrame: {MouseButtonLeft}}}},
	})
	for range clickFrame - 1 {
		app.Step()
	}
	before := capture(app)
	for _, b := range before.Bodies {
		require.Equal(t, MustParseColor(b.Material.Color).Hex(), b.Color, "body %d settled", b.Index)
	}

	app.Step()
	app.Step()
	after := capture(app)
	require.Equal(t, 1, after.AccentIndex)
	require.Len(t, after.Bodies, ConnectorCount)

	for i, b := range after.Bodies {
		if b.Material.Accent {
			assert.NotEqual(t, b.Material.Color, before.Bodies[i].Material.Color)
			continue
		}
		assert.Equal(t, before.Bodies[i].Color, b.Color, "body %d keeps its colour", i)
	}
	assert.NotEqual(t, "#ffcc00", after.Bodies[6].Color, "accent bodies ease rather than swap")
}

func TestNewScene_PauseFreezesBodies(t *testing.T) {
	app := newHeadlessScene(t, headlessConfig(), SceneOptions{
		Modules: []Module{scriptedInput{presses: map[int][]int{2: {KeySpace}, 8: {KeySpace}}}},
	})
	for range 3 {
		app.Step()
	}
	require.Equal(t, StatePaused, app.State())
	paused := capture(app)

	for range 4 {
		app.Step()
	}
	still := capture(app)
	for i := range paused.Bodies {
		assert.Equal(t, paused.Bodies[i].Position, still.Bodies[i].Position)
	}
	assert.Equal(t, paused.Frame+4, still.Frame, "time keeps running while paused")

	app.Step()
	app.Step()
	assert.Equal(t, StateRunning, app.State())
	moved := capture(app)
	assert.NotEqual(t, still.Bodies[0].Position, moved.Bodies[0].Position)
}

func TestNewScene_QuitKey(t *testing.T) {
	app := newHeadlessScene(t, headlessConfig(), SceneOptions{
		Modules: []Module{scriptedInput{presses: map[int][]int{4: {KeyQ}}}},
	})
	for range 10 {
		app.Step()
	}
	assert.True(t, app.Done())

	clock, _ := Resource[Time](app)
	assert.Equal(t, uint64(4), clock.Frame)
}

func TestNewScene_LogoBodiesGetMeshes(t *testing.T) {
	app := newHeadlessScene(t, DefaultConfig(), SceneOptions{})
	server, ok := Resource[AssetServer](app)
	require.True(t, ok)
	server.Wait()

	app.Step()
	app.Step()

	snap := capture(app)
	require.Len(t, snap.Bodies, ConnectorCount)
	for _, b := range snap.Bodies {
		assert.Equal(t, "logo", b.Kind)
		assert.Equal(t, "ready", b.Geometry)
	}
}

func TestNewScene_RendersToPresenter(t *testing.T) {
	presenter := &HeadlessPresenter{Width: 32, Height: 24}
	app := newHeadlessScene(t, headlessConfig(), SceneOptions{Presenter: presenter})

	for range 3 {
		app.Step()
	}

	assert.Equal(t, 3, presenter.Frames)
	require.NotNil(t, presenter.Last)
	assert.Equal(t, 32, presenter.Last.Bounds().Dx())
	assert.Equal(t, 24, presenter.Last.Bounds().Dy())
	assert.Contains(t, presenter.Status, "accent 1/4")

	renderer, ok := Resource[SceneRenderer](app)
	require.True(t, ok)
	assert.Equal(t, 3, renderer.Frames)
	assert.Zero(t, renderer.Failures)
}

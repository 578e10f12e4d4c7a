package connectors

import (
	"errors"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPresenter struct{}

func (failingPresenter) Size() (int, int)                  { return 8, 8 }
func (failingPresenter) Present(*image.RGBA, string) error { return errors.New("gone") }

func newRenderCommands(t *testing.T) (*App, *Commands) {
	t.Helper()
	app := NewAppBuilder().Build()
	return app, app.Commands()
}

func TestEnsureSinglePresenter(t *testing.T) {
	app := NewAppBuilder().Build()

	ensureSinglePresenter(app, "terminal")
	assert.NotPanics(t, func() { ensureSinglePresenter(app, "terminal") })
	assert.PanicsWithValue(t, "Multiple presenters installed: terminal and headless", func() {
		ensureSinglePresenter(app, "headless")
	})
	assert.Panics(t, func() { ensureSinglePresenter(nil, "x") })
}

func TestRenderModule_RequiresPresenter(t *testing.T) {
	assert.Panics(t, func() { NewAppBuilder().UseModule(RenderModule{}).Build() })
}

func TestRenderModule_SecondPresenterPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewAppBuilder().UseModule(
			RenderModule{Presenter: &HeadlessPresenter{Width: 4, Height: 4}},
			RenderModule{Presenter: failingPresenter{}},
		).Build()
	})
}

func TestSceneRenderer_DrawsBodyOverBackground(t *testing.T) {
	app, cmd := newRenderCommands(t)
	tr := NewTransform(mgl32.Vec3{})
	cmd.AddEntity(
		&ConnectorComponent{Material: MaterialSpec{Color: "white", Roughness: 0.1, Opacity: 1}},
		&DisplayColorComponent{Color: White},
		&tr,
		&ColliderComponent{Radius: 1},
	)
	spawnLightformers(cmd, DefaultLightformers())
	app.FlushCommands()

	settings := DefaultConfig().Render
	presenter := &HeadlessPresenter{Width: 24, Height: 24}
	renderer := NewSceneRenderer(presenter, settings)
	require.True(t, renderer.Draw(cmd, DefaultCamera(), nil))

	out := renderer.Output()
	require.NotNil(t, out)
	bg := MustParseColor(settings.Background).Colorful()
	r, g, b := bg.RGB255()
	corner := out.RGBAAt(0, 0)
	assert.Equal(t, [3]uint8{r, g, b}, [3]uint8{corner.R, corner.G, corner.B}, "empty pixels keep the background colour")

	centre := out.RGBAAt(12, 12)
	assert.NotEqual(t, [3]uint8{r, g, b}, [3]uint8{centre.R, centre.G, centre.B})
}

func TestSceneRenderer_EmptyPresenter(t *testing.T) {
	_, cmd := newRenderCommands(t)
	renderer := NewSceneRenderer(&HeadlessPresenter{}, DefaultConfig().Render)
	assert.False(t, renderer.Draw(cmd, DefaultCamera(), nil))
}

func TestRenderSystem_PresenterFailureIsCounted(t *testing.T) {
	logger := &captureLogger{}
	app, cmd := newRenderCommands(t)
	app.addResources(logger)
	palette, err := NewPalette(DefaultAccents, LayoutBalanced)
	require.NoError(t, err)

	renderer := NewSceneRenderer(failingPresenter{}, DefaultConfig().Render)
	RenderSystem(cmd, renderer, DefaultCamera(), NewAssetServer(nil), palette, &Time{})

	assert.Equal(t, 1, renderer.Failures)
	assert.Zero(t, renderer.Frames)
	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "gone")
}

func TestRenderControlSystem_Toggles(t *testing.T) {
	renderer := NewSceneRenderer(&HeadlessPresenter{}, DefaultConfig().Render)
	input := &Input{}

	input.Press(KeyD)
	input.Press(KeyH)
	renderControlSystem(input, renderer)
	assert.True(t, renderer.Settings.DebugColliders)
	assert.False(t, renderer.Settings.HUD)

	input.BeginFrame()
	renderControlSystem(input, renderer)
	assert.True(t, renderer.Settings.DebugColliders, "nothing changes without a key press")
}

func TestSceneRenderer_Status(t *testing.T) {
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	app.Step()
	palette, err := NewPalette(DefaultAccents, LayoutBalanced)
	require.NoError(t, err)
	palette.Advance()

	renderer := NewSceneRenderer(&HeadlessPresenter{}, DefaultConfig().Render)
	status := renderer.Status(app.Commands(), palette, &Time{Dt: 20_000_000})
	assert.Contains(t, status, "accent 2/4 #ffcc00")
	assert.Contains(t, status, "50 fps")
	assert.NotContains(t, status, "PAUSED")
}

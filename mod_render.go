package connectors

import (
	"cmp"
	"fmt"
	"image"
	"slices"

	"github.com/gekko3d/connectors/raster"
	"github.com/go-gl/mathgl/mgl32"
)

// Presenter shows finished frames somewhere.
type Presenter interface {
	// Size is the drawable area in pixels.
	Size() (width, height int)
	Present(frame *image.RGBA, status string) error
}

type RenderModule struct {
	Presenter Presenter
	// Name identifies the presenter; it defaults to its type name.
	Name     string
	Settings RenderConfig
}

// SceneRenderer owns the frame buffers. Frames are rendered at Supersample
// times the presenter size and resolved down.
type SceneRenderer struct {
	Settings RenderConfig
	Frames   int
	Failures int

	presenter  Presenter
	frame      *raster.Frame
	output     *image.RGBA
	background Color
}

func NewSceneRenderer(presenter Presenter, settings RenderConfig) *SceneRenderer {
	bg, err := ParseColor(settings.Background)
	if err != nil {
		bg = Black
	}
	settings.Supersample = max(settings.Supersample, 1)
	if settings.Exposure <= 0 {
		settings.Exposure = 1
	}
	return &SceneRenderer{
		Settings:   settings,
		presenter:  presenter,
		frame:      raster.NewFrame(0, 0),
		background: bg,
	}
}

func (m RenderModule) Install(app *App, cmd *Commands) {
	if m.Presenter == nil {
		panic("RenderModule needs a Presenter")
	}
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("%T", m.Presenter)
	}
	ensureSinglePresenter(app, name)

	cmd.AddResources(NewSceneRenderer(m.Presenter, m.Settings))
	app.UseSystem(
		System(renderControlSystem).
			InStage(PreUpdate).
			RunAlways(),
	).UseSystem(
		System(RenderSystem).
			InStage(Render).
			RunAlways(),
	)
}

func renderControlSystem(input *Input, renderer *SceneRenderer) {
	if input.JustPressed[KeyD] {
		renderer.Settings.DebugColliders = !renderer.Settings.DebugColliders
	}
	if input.JustPressed[KeyH] {
		renderer.Settings.HUD = !renderer.Settings.HUD
	}
}

// RenderSystem draws the scene and hands it to the presenter. A failing
// presenter is logged and the frame dropped.
func RenderSystem(cmd *Commands, renderer *SceneRenderer, camera *Camera, server *AssetServer, palette *Palette, t *Time) {
	if !renderer.Draw(cmd, camera, server) {
		return
	}
	status := ""
	if renderer.Settings.HUD {
		status = renderer.Status(cmd, palette, t)
	}
	if err := renderer.presenter.Present(renderer.output, status); err != nil {
		renderer.Failures++
		cmd.Logger().Warnf("present frame %d: %v", renderer.Frames, err)
		return
	}
	renderer.Frames++
}

type drawItem struct {
	eid      EntityId
	position mgl32.Vec3
	model    mgl32.Mat4
	radius   float32
	material raster.Material
	mesh     *MeshComponent
	depth    float32
}

// Draw renders into the output image. It reports false when the presenter
// has no area to draw into.
func (r *SceneRenderer) Draw(cmd *Commands, camera *Camera, server *AssetServer) bool {
	w, h := r.presenter.Size()
	if w <= 0 || h <= 0 {
		return false
	}
	ss := r.Settings.Supersample
	r.frame.Resize(w*ss, h*ss)
	if r.output == nil || r.output.Bounds().Dx() != w || r.output.Bounds().Dy() != h {
		r.output = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	camera.Aspect = float32(w) / float32(h)
	cam := raster.NewCamera(camera.Position, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0},
		mgl32.DegToRad(camera.Fov), camera.Aspect, camera.Near, camera.Far)
	env := r.environment(cmd)

	bg := r.background.Vec3()
	r.frame.Clear(bg)

	items := r.collect(cmd, cam)
	for _, item := range items {
		r.drawItem(cam, env, server, item)
	}

	if r.Settings.AO {
		r.frame.AmbientOcclusion(2*ss, 0.5, 1.5)
	}
	if r.Settings.DebugColliders {
		outline := mgl32.Vec3{0.2, 1, 0.4}
		MakeQuery2[TransformComponent, ColliderComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, col *ColliderComponent) bool {
			r.frame.DrawCircleOutline(cam, tr.Position, col.Radius, outline)
			return true
		})
	}
	r.frame.Resolve(r.output, r.Settings.Exposure, bg)
	return true
}

// Output is the last resolved frame.
func (r *SceneRenderer) Output() *image.RGBA {
	return r.output
}

func (r *SceneRenderer) environment(cmd *Commands) *raster.Environment {
	a := r.Settings.Ambient
	env := &raster.Environment{Ambient: mgl32.Vec3{a, a, a}}
	MakeQuery1[LightComponent](cmd).Map(func(eid EntityId, l *LightComponent) bool {
		env.Lights = append(env.Lights, raster.Light{
			Direction: l.Direction(),
			Radiance:  l.Radiance().Vec3(),
		})
		return true
	})
	return env
}

// collect gathers the connector bodies: opaque ones first, then translucent
// ones far to near so blending sees what is behind them.
func (r *SceneRenderer) collect(cmd *Commands, cam raster.Camera) []drawItem {
	radii := make(map[EntityId]float32)
	MakeQuery2[ConnectorComponent, ColliderComponent](cmd).Map(func(eid EntityId, _ *ConnectorComponent, col *ColliderComponent) bool {
		radii[eid] = col.Radius
		return true
	})

	var items []drawItem
	MakeQuery4[ConnectorComponent, TransformComponent, DisplayColorComponent, MeshComponent](cmd).Map(
		func(eid EntityId, conn *ConnectorComponent, tr *TransformComponent, display *DisplayColorComponent, mesh *MeshComponent) bool {
			radius, ok := radii[eid]
			if !ok {
				radius = 1
			}
			opacity := float32(1)
			if conn.Material.Transparent {
				opacity = conn.Material.Opacity
			}
			items = append(items, drawItem{
				eid:      eid,
				position: tr.Position,
				model:    tr.Matrix(),
				radius:   radius,
				mesh:     mesh,
				depth:    cam.ViewDepth(tr.Position),
				material: raster.Material{
					Albedo:    display.Color.Vec3(),
					Roughness: conn.Material.Roughness,
					Metalness: conn.Material.Metalness,
					Opacity:   opacity,
				},
			})
			return true
		}, MeshComponent{})

	slices.SortStableFunc(items, func(a, b drawItem) int {
		ta, tb := a.material.Opacity < 1, b.material.Opacity < 1
		switch {
		case ta && !tb:
			return 1
		case !ta && tb:
			return -1
		case ta && tb:
			return cmp.Compare(b.depth, a.depth)
		}
		return 0
	})
	return items
}

func (r *SceneRenderer) drawItem(cam raster.Camera, env *raster.Environment, server *AssetServer, item drawItem) {
	if item.mesh != nil && item.mesh.State == GeometryReady && server != nil {
		if asset, ok := server.Geometry(item.mesh.Geometry); ok && asset.Mesh != nil {
			r.frame.DrawMesh(cam, env, item.model, asset.Mesh.Positions, asset.Mesh.Indices, item.material)
			return
		}
	}
	r.frame.DrawSphere(cam, env, item.position, item.radius, item.material)
}

// Status is the one-line HUD.
func (r *SceneRenderer) Status(cmd *Commands, palette *Palette, t *Time) string {
	state := ""
	if cmd.State() == StatePaused {
		state = " [PAUSED]"
	}
	fps := float32(0)
	if dt := t.DeltaSeconds(); dt > 0 {
		fps = 1 / dt
	}
	return fmt.Sprintf(" accent %d/%d %s  %3.0f fps%s   click: palette  space: pause  d: colliders  h: hud  q: quit",
		palette.Index+1, len(palette.Accents), palette.Accent(), fps, state)
}

// HeadlessPresenter keeps the last frame in memory instead of showing it.
type HeadlessPresenter struct {
	Width, Height int
	Frames        int
	Last          *image.RGBA
	Status        string
}

func (p *HeadlessPresenter) Size() (int, int) {
	return p.Width, p.Height
}

func (p *HeadlessPresenter) Present(frame *image.RGBA, status string) error {
	if p.Last == nil || p.Last.Bounds() != frame.Bounds() {
		p.Last = image.NewRGBA(frame.Bounds())
	}
	copy(p.Last.Pix, frame.Pix)
	p.Status = status
	p.Frames++
	return nil
}

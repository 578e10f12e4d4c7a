package connectors

import (
	"fmt"
	"io"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	StateRunning State = iota
	StatePaused
	StateQuit
)

// RestoringImpulse is the impulse applied every frame to a body at p. It
// points at the origin and grows with the distance.
func RestoringImpulse(p mgl32.Vec3, strength float32) mgl32.Vec3 {
	return p.Mul(-strength)
}

// ConnectorsModule owns the palette, the composer, the pointer body and the
// lightformers, and the systems tying them to input and physics.
type ConnectorsModule struct {
	Config *Config
}

func (m ConnectorsModule) Install(app *App, cmd *Commands) {
	cfg := m.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	palette, err := NewPalette(cfg.Palette.Accents, cfg.Palette.Layout)
	if err != nil {
		panic(fmt.Sprintf("connectors: %v", err))
	}
	kind, err := ParseBodyKind(cfg.Shape)
	if err != nil {
		panic(fmt.Sprintf("connectors: %v", err))
	}

	server, ok := Resource[AssetServer](app)
	if !ok {
		server = NewAssetServer(app.Logger())
		cmd.AddResources(server)
	}
	if _, ok := Resource[Camera](app); !ok {
		cmd.AddResources(cfg.NewCamera())
	}

	composer := NewComposer(cfg.Seed, cfg.Spread, cfg.BodyParams(), kind)
	if kind == KindLogo {
		composer.Geometry = server.RequestGeometry(LogoSVG, DefaultLogoOptions())
	}
	cmd.AddResources(cfg, palette, composer)

	spawnLightformers(cmd, DefaultLightformers())
	SpawnPointer(cmd, cfg.Physics.PointerRadius)

	app.UseSystem(
		System(controlSystem).
			InStage(PreUpdate).
			RunAlways(),
	).UseSystem(
		System(paletteClickSystem).
			InStage(PreUpdate).
			RunAlways(),
	).UseSystem(
		System(composerSystem).
			InStage(PreUpdate).
			RunAlways(),
	).UseSystem(
		System(PointerSystem).
			InStage(PostUpdate).
			InState(OnExecute(StateRunning)),
	).UseSystem(
		System(ConnectorSystem).
			InStage(PostUpdate).
			InState(OnExecute(StateRunning)),
	).UseSystem(
		System(GeometrySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func controlSystem(cmd *Commands, input *Input) {
	if input.JustPressed[KeyQ] || input.JustPressed[KeyEscape] || input.JustPressed[KeyCtrlC] {
		cmd.Quit()
		return
	}
	if !input.JustPressed[KeySpace] {
		return
	}
	switch cmd.State() {
	case StateRunning:
		cmd.Logger().Infof("paused")
		cmd.ChangeState(StatePaused)
	case StatePaused:
		cmd.Logger().Infof("resumed")
		cmd.ChangeState(StateRunning)
	}
}

func paletteClickSystem(input *Input, palette *Palette) {
	if input.JustPressed[MouseButtonLeft] {
		palette.Advance()
	}
}

func composerSystem(cmd *Commands, composer *Composer, palette *Palette) {
	if composer.Sync(cmd, palette) {
		cmd.Logger().Infof("accent %d (%s): spawned %d bodies", palette.Index, palette.Accent(), len(composer.Entities()))
	}
}

// PointerSystem moves the pointer body to the spot under the mouse on the
// z = 0 plane.
func PointerSystem(cmd *Commands, input *Input, camera *Camera) {
	target := PointerTarget(input.Pointer, camera.Viewport())
	MakeQuery2[PointerComponent, RigidBodyComponent](cmd).Map(func(eid EntityId, _ *PointerComponent, rb *RigidBodyComponent) bool {
		rb.SetNextKinematicTranslation(target)
		return true
	})
}

// ConnectorSystem pulls every body toward the origin and eases its display
// colour toward its material colour. Bodies still waiting for a flush miss
// one of the components and are not visited.
func ConnectorSystem(cmd *Commands, t *Time, cfg *Config) {
	delta := ClampDelta(t.DeltaSeconds(), cfg.Physics.MaxDelta)
	strength := cfg.Physics.ImpulseStrength
	smooth := cfg.Easing.SmoothTime

	MakeQuery4[ConnectorComponent, TransformComponent, RigidBodyComponent, DisplayColorComponent](cmd).Map(
		func(eid EntityId, conn *ConnectorComponent, tr *TransformComponent, rb *RigidBodyComponent, display *DisplayColorComponent) bool {
			rb.ApplyImpulse(RestoringImpulse(tr.Translation(), strength))
			DampColor(&display.Color, &display.vel, conn.Target, smooth, delta)
			return true
		})
}

// GeometrySystem copies the build state of shared meshes onto the bodies
// still waiting for theirs.
func GeometrySystem(cmd *Commands, server *AssetServer) {
	MakeQuery1[MeshComponent](cmd).Map(func(eid EntityId, mesh *MeshComponent) bool {
		if mesh.State != GeometryPending {
			return true
		}
		if asset, ok := server.Geometry(mesh.Geometry); ok && asset.State != GeometryPending {
			mesh.State = asset.State
		}
		return true
	})
}

// SceneOptions selects how a scene is driven and shown.
type SceneOptions struct {
	// Presenter receives frames; nil runs without rendering.
	Presenter Presenter
	// Log receives log lines; nil discards them.
	Log io.Writer
	// Fixed replaces the wall-clock delta and disables frame pacing.
	Fixed time.Duration
	// Modules are installed after the engine basics and before the scene,
	// the place for input sources such as the terminal.
	Modules []Module
}

// NewScene assembles the app: engine modules, physics, the connectors scene,
// rendering and audio.
func NewScene(cfg *Config, opts SceneOptions) *App {
	fps := cfg.FPS
	if opts.Fixed > 0 {
		fps = 0
	}
	builder := NewAppBuilder().
		UseStates(StateRunning, StateQuit).
		UseModule(
			LoggingModule{Prefix: "connectors", Debug: cfg.Log.Debug, Output: opts.Log},
			TimeModule{FPS: fps, Fixed: opts.Fixed},
			InputModule{},
		).
		UseModule(opts.Modules...).
		UseModule(
			AssetServerModule{},
			PhysicsModule{World: cfg.NewPhysicsWorld()},
			SpatialGridModule{CellSize: cfg.Physics.CellSize},
			ConnectorsModule{Config: cfg},
		)
	if opts.Presenter != nil {
		builder.UseModule(RenderModule{Presenter: opts.Presenter, Settings: cfg.Render})
	}
	builder.UseModule(AudioModule{Enabled: cfg.Audio.Enabled && opts.Presenter != nil && opts.Fixed == 0, Volume: cfg.Audio.Volume})
	return builder.Build()
}

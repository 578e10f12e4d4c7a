package connectors

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSeed            = 1
	DefaultFPS             = 30
	DefaultSpread          = 10
	DefaultImpulseStrength = 0.2
	DefaultMaxDelta        = 0.1
	DefaultSmoothTime      = 0.2
)

type Config struct {
	Seed int64 `yaml:"seed"`
	FPS  int   `yaml:"fps"`
	// Shape is "logo" or "sphere".
	Shape string `yaml:"shape"`
	// Spread is the edge of the cube unplaced bodies are sampled in.
	Spread  float32       `yaml:"spread"`
	Palette PaletteConfig `yaml:"palette"`
	Physics PhysicsConfig `yaml:"physics"`
	Easing  EasingConfig  `yaml:"easing"`
	Camera  CameraConfig  `yaml:"camera"`
	Render  RenderConfig  `yaml:"render"`
	Audio   AudioConfig   `yaml:"audio"`
	Log     LogConfig     `yaml:"log"`
}

type PaletteConfig struct {
	Accents []string `yaml:"accents"`
	Layout  Layout   `yaml:"layout"`
}

type PhysicsConfig struct {
	ImpulseStrength  float32 `yaml:"impulse_strength"`
	LinearDamping    float32 `yaml:"linear_damping"`
	AngularDamping   float32 `yaml:"angular_damping"`
	Friction         float32 `yaml:"friction"`
	Restitution      float32 `yaml:"restitution"`
	Radius           float32 `yaml:"radius"`
	PointerRadius    float32 `yaml:"pointer_radius"`
	MaxDelta         float32 `yaml:"max_delta"`
	SolverIterations int     `yaml:"solver_iterations"`
	CellSize         float32 `yaml:"cell_size"`
}

type EasingConfig struct {
	SmoothTime float32 `yaml:"smooth_time"`
}

type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Fov      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

type RenderConfig struct {
	Supersample    int     `yaml:"supersample"`
	Background     string  `yaml:"background"`
	Ambient        float32 `yaml:"ambient"`
	AO             bool    `yaml:"ao"`
	Exposure       float32 `yaml:"exposure"`
	DebugColliders bool    `yaml:"debug_colliders"`
	HUD            bool    `yaml:"hud"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float32 `yaml:"volume"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		Seed:   DefaultSeed,
		FPS:    DefaultFPS,
		Shape:  "logo",
		Spread: DefaultSpread,
		Palette: PaletteConfig{
			Accents: append([]string(nil), DefaultAccents...),
			Layout:  LayoutBalanced,
		},
		Physics: PhysicsConfig{
			ImpulseStrength:  DefaultImpulseStrength,
			LinearDamping:    4,
			AngularDamping:   1,
			Friction:         0.1,
			Restitution:      0,
			Radius:           1,
			PointerRadius:    1,
			MaxDelta:         DefaultMaxDelta,
			SolverIterations: 4,
			CellSize:         2,
		},
		Easing: EasingConfig{SmoothTime: DefaultSmoothTime},
		Camera: CameraConfig{
			Position: [3]float32{0, 0, 30},
			Fov:      17.5,
			Near:     10,
			Far:      40,
		},
		Render: RenderConfig{
			Supersample: 2,
			Background:  "#141622",
			Ambient:     0.35,
			AO:          true,
			Exposure:    1.4,
			HUD:         true,
		},
		Audio: AudioConfig{Enabled: true, Volume: 0.3},
	}
}

// LoadConfig reads a YAML file on top of the defaults, so a file only needs
// the keys it changes.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func WriteConfig(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := ParseBodyKind(c.Shape); err != nil {
		errs = append(errs, err)
	}
	if c.Spread < 0 {
		errs = append(errs, fmt.Errorf("spread must not be negative, got %g", c.Spread))
	}
	if c.FPS < 0 {
		errs = append(errs, fmt.Errorf("fps must not be negative, got %d", c.FPS))
	}
	if _, err := NewPalette(c.Palette.Accents, c.Palette.Layout); err != nil {
		errs = append(errs, err)
	}

	p := c.Physics
	if p.Radius <= 0 || p.PointerRadius <= 0 {
		errs = append(errs, errors.New("physics radii must be positive"))
	}
	if p.LinearDamping < 0 || p.AngularDamping < 0 {
		errs = append(errs, errors.New("physics damping must not be negative"))
	}
	if p.Friction < 0 || p.Restitution < 0 || p.Restitution > 1 {
		errs = append(errs, errors.New("physics friction must be >= 0 and restitution in [0, 1]"))
	}
	if p.MaxDelta <= 0 {
		errs = append(errs, fmt.Errorf("physics max_delta must be positive, got %g", p.MaxDelta))
	}
	if c.Easing.SmoothTime <= 0 {
		errs = append(errs, fmt.Errorf("easing smooth_time must be positive, got %g", c.Easing.SmoothTime))
	}

	cam := c.Camera
	if cam.Fov <= 0 || cam.Fov >= 180 {
		errs = append(errs, fmt.Errorf("camera fov must be in (0, 180), got %g", cam.Fov))
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		errs = append(errs, fmt.Errorf("camera planes must satisfy 0 < near < far, got %g/%g", cam.Near, cam.Far))
	}

	if c.Render.Supersample < 1 || c.Render.Supersample > 4 {
		errs = append(errs, fmt.Errorf("render supersample must be in [1, 4], got %d", c.Render.Supersample))
	}
	if _, err := ParseColor(c.Render.Background); err != nil {
		errs = append(errs, err)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio volume must be in [0, 1], got %g", c.Audio.Volume))
	}
	return errors.Join(errs...)
}

// NewCamera builds the scene camera from the config.
func (c *Config) NewCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3(c.Camera.Position),
		Fov:      c.Camera.Fov,
		Near:     c.Camera.Near,
		Far:      c.Camera.Far,
		Aspect:   1,
	}
}

// NewPhysicsWorld builds a zero-gravity world stepping at most MaxDelta.
func (c *Config) NewPhysicsWorld() *PhysicsWorld {
	world := NewPhysicsWorld()
	world.MaxStep = c.Physics.MaxDelta
	if c.Physics.SolverIterations > 0 {
		world.SolverIterations = c.Physics.SolverIterations
	}
	return world
}

func (c *Config) BodyParams() BodyParams {
	return BodyParams{
		Radius:         c.Physics.Radius,
		LinearDamping:  c.Physics.LinearDamping,
		AngularDamping: c.Physics.AngularDamping,
		Friction:       c.Physics.Friction,
		Restitution:    c.Physics.Restitution,
		Density:        1,
	}
}

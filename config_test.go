package connectors

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, float32(0.2), cfg.Physics.ImpulseStrength)
	assert.Equal(t, float32(0.1), cfg.Physics.MaxDelta)
	assert.Equal(t, float32(0.2), cfg.Easing.SmoothTime)
	assert.Equal(t, "logo", cfg.Shape)
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 42\nshape: sphere\nphysics:\n  linear_damping: 2\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "sphere", cfg.Shape)
	assert.Equal(t, float32(2), cfg.Physics.LinearDamping)
	assert.Equal(t, float32(1), cfg.Physics.AngularDamping, "keys missing from the file keep their defaults")
	assert.Equal(t, DefaultAccents, cfg.Palette.Accents)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("seed: [1, 2"), 0644))
	_, err = LoadConfig(broken)
	assert.ErrorContains(t, err, "parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("fps: -1\n"), 0644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "fps must not be negative")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Palette.Layout = LayoutOriginal
	cfg.Camera.Position = [3]float32{0, 1, 25}

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWriteConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConfig(&buf, DefaultConfig()))

	assert.Contains(t, buf.String(), "impulse_strength: 0.2")
	assert.Contains(t, buf.String(), "  layout: balanced")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shape = "cube"
	cfg.Physics.Radius = 0
	cfg.Camera.Near = 50
	cfg.Render.Background = "nope"
	cfg.Audio.Volume = 2

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"cube", "radii", "near < far", "nope", "volume"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestConfig_Builders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physics.MaxDelta = 0.05
	cfg.Physics.SolverIterations = 8

	cam := cfg.NewCamera()
	assert.Equal(t, mgl32.Vec3{0, 0, 30}, cam.Position)
	assert.Equal(t, float32(17.5), cam.Fov)

	world := cfg.NewPhysicsWorld()
	assert.Equal(t, float32(0.05), world.MaxStep)
	assert.Equal(t, 8, world.SolverIterations)
	assert.Equal(t, mgl32.Vec3{}, world.Gravity)

	params := cfg.BodyParams()
	assert.Equal(t, float32(4), params.LinearDamping)
	assert.Equal(t, float32(1), params.Density)
}

package connectors

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type BodyType int

const (
	// BodyDynamic bodies are moved by velocity, impulses and contacts.
	BodyDynamic BodyType = iota
	// BodyKinematicPosition bodies are moved by setting their next
	// translation. They push dynamic bodies but are never pushed back.
	BodyKinematicPosition
	BodyFixed
)

func (t BodyType) String() string {
	switch t {
	case BodyDynamic:
		return "dynamic"
	case BodyKinematicPosition:
		return "kinematic"
	case BodyFixed:
		return "fixed"
	}
	return "unknown"
}

type ColliderShape int

const (
	ShapeSphere ColliderShape = iota
)

type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform(position mgl32.Vec3) TransformComponent {
	return TransformComponent{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Translation is the body's current world-space position.
func (tr *TransformComponent) Translation() mgl32.Vec3 {
	return tr.Position
}

// Matrix composes translation, rotation and scale into a model matrix.
func (tr *TransformComponent) Matrix() mgl32.Mat4 {
	scale := tr.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	rot := tr.Rotation
	if rot.Len() == 0 {
		rot = mgl32.QuatIdent()
	}
	return mgl32.Translate3D(tr.Position.X(), tr.Position.Y(), tr.Position.Z()).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

type RigidBodyComponent struct {
	Type            BodyType
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
	// Mass of a dynamic body. Zero means derive it from the collider.
	Mass           float32
	LinearDamping  float32
	AngularDamping float32
	GravityScale   float32

	nextTranslation mgl32.Vec3
	hasNext         bool
}

func (rb *RigidBodyComponent) IsDynamic() bool {
	return rb.Type == BodyDynamic
}

// ApplyImpulse changes the velocity of a dynamic body by impulse/mass.
// Kinematic and fixed bodies ignore impulses.
func (rb *RigidBodyComponent) ApplyImpulse(impulse mgl32.Vec3) {
	if !rb.IsDynamic() {
		return
	}
	if rb.Mass > 0 {
		rb.Velocity = rb.Velocity.Add(impulse.Mul(1.0 / rb.Mass))
	} else {
		rb.Velocity = rb.Velocity.Add(impulse)
	}
}

// SetNextKinematicTranslation schedules where a kinematic body should be at
// the end of the next physics step. It has no effect on other body types.
func (rb *RigidBodyComponent) SetNextKinematicTranslation(position mgl32.Vec3) {
	if rb.Type != BodyKinematicPosition {
		return
	}
	rb.nextTranslation = position
	rb.hasNext = true
}

// NextKinematicTranslation returns the pending target, if any.
func (rb *RigidBodyComponent) NextKinematicTranslation() (mgl32.Vec3, bool) {
	return rb.nextTranslation, rb.hasNext
}

func (rb *RigidBodyComponent) InvMass() float32 {
	if !rb.IsDynamic() || rb.Mass <= 0 {
		return 0
	}
	return 1 / rb.Mass
}

type ColliderComponent struct {
	Shape       ColliderShape
	Radius      float32
	Friction    float32
	Restitution float32
	Density     float32
}

// SphereMass returns the mass of a solid sphere.
func SphereMass(radius, density float32) float32 {
	if density <= 0 {
		density = 1
	}
	return density * 4.0 / 3.0 * math.Pi * radius * radius * radius
}

// sphereInvInertia is the inverse of the scalar moment of inertia 2/5·m·r².
func sphereInvInertia(mass, radius float32) float32 {
	if mass <= 0 || radius <= 0 {
		return 0
	}
	return 1 / (0.4 * mass * radius * radius)
}

type PhysicsWorld struct {
	Gravity mgl32.Vec3
	// MaxStep caps the variable time step, in seconds.
	MaxStep          float32
	SolverIterations int
	// Slop is the penetration depth tolerated without positional correction.
	Slop float32
	// Correction is the fraction of the remaining penetration resolved per step.
	Correction float32
	Paused     bool
}

func NewPhysicsWorld() *PhysicsWorld {
	return &PhysicsWorld{
		Gravity:          mgl32.Vec3{0, 0, 0},
		MaxStep:          0.1,
		SolverIterations: 4,
		Slop:             0.005,
		Correction:       0.8,
	}
}

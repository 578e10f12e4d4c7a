package connectors

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

type BodyKind int

const (
	KindSphere BodyKind = iota
	KindLogo
)

func (k BodyKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindLogo:
		return "logo"
	}
	return "unknown"
}

// ParseBodyKind accepts "sphere" and "logo"; empty means logo.
func ParseBodyKind(s string) (BodyKind, error) {
	switch s {
	case "", "logo":
		return KindLogo, nil
	case "sphere":
		return KindSphere, nil
	}
	return KindSphere, fmt.Errorf("unknown body shape %q", s)
}

// BodySpec is one body to spawn. A nil Position is sampled when the entity
// is created and never re-rolled afterwards.
type BodySpec struct {
	Position *mgl32.Vec3
	Material MaterialSpec
	Kind     BodyKind
}

// ConnectorComponent marks a palette body. Target is the parsed material
// colour the display colour eases toward.
type ConnectorComponent struct {
	Index    int
	Material MaterialSpec
	Target   Color
	Kind     BodyKind
}

// DisplayColorComponent is the colour actually drawn. vel is the spring
// state of each channel.
type DisplayColorComponent struct {
	Color Color
	vel   [3]float32
}

// PointerComponent marks the kinematic body that follows the mouse.
type PointerComponent struct{}

// MeshComponent refers to a shared geometry asset. While State is Pending
// the body is drawn as a sphere.
type MeshComponent struct {
	Geometry AssetId
	State    GeometryState
}

type BodyParams struct {
	Radius         float32
	LinearDamping  float32
	AngularDamping float32
	Friction       float32
	Restitution    float32
	Density        float32
}

// Composer builds the connector bodies from the palette. It remembers which
// accent index the live bodies were built for and leaves them alone until
// the index changes.
type Composer struct {
	Spread   float32
	Params   BodyParams
	Kind     BodyKind
	Geometry AssetId

	rng      *rand.Rand
	entities []EntityId
	builtFor int
	built    bool
}

func NewComposer(seed int64, spread float32, params BodyParams, kind BodyKind) *Composer {
	return &Composer{
		Spread: spread,
		Params: params,
		Kind:   kind,
		rng:    rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15)),
	}
}

// SamplePosition draws a point uniformly from the cube of edge Spread
// centred on the origin.
func (c *Composer) SamplePosition() mgl32.Vec3 {
	half := c.Spread / 2
	sample := func() float32 {
		return (c.rng.Float32()*2 - 1) * half
	}
	return mgl32.Vec3{sample(), sample(), sample()}
}

// Specs lists the bodies for the palette's current index, in display order.
func (c *Composer) Specs(palette *Palette) []BodySpec {
	materials := palette.Specs()
	specs := make([]BodySpec, len(materials))
	for i, m := range materials {
		specs[i] = BodySpec{Material: m, Kind: c.Kind}
	}
	return specs
}

// Sync rebuilds the bodies when the palette index differs from the one they
// were built for. It reports whether anything was rebuilt.
func (c *Composer) Sync(cmd *Commands, palette *Palette) bool {
	defer func() { palette.Changed = false }()
	if c.built && c.builtFor == palette.Index {
		return false
	}

	c.Replace(cmd, palette.Index, c.Specs(palette))
	return true
}

// Replace removes the live bodies and spawns specs in their place, recorded
// as built for the accent index. A replacement keeps the displayed colour of
// the body it replaces at the same display index, so only changed materials
// visibly ease.
func (c *Composer) Replace(cmd *Commands, index int, specs []BodySpec) []EntityId {
	carried := make([]DisplayColorComponent, len(c.entities))
	for i, eid := range c.entities {
		carried[i] = displayColorOf(cmd, eid)
		cmd.RemoveEntity(eid)
	}
	c.entities = c.entities[:0]
	for i, spec := range specs {
		display := DisplayColorComponent{Color: White}
		if i < len(carried) {
			display = carried[i]
		}
		c.entities = append(c.entities, c.spawn(cmd, i, spec, display))
	}
	c.built = true
	c.builtFor = index
	return slices.Clone(c.entities)
}

// Spawn queues one connector entity. New bodies start white and ease toward
// their material colour.
func (c *Composer) Spawn(cmd *Commands, index int, spec BodySpec) EntityId {
	return c.spawn(cmd, index, spec, DisplayColorComponent{Color: White})
}

func (c *Composer) spawn(cmd *Commands, index int, spec BodySpec, display DisplayColorComponent) EntityId {
	position := c.SamplePosition()
	if spec.Position != nil {
		position = *spec.Position
	}
	target, err := ParseColor(spec.Material.Color)
	if err != nil {
		cmd.Logger().Warnf("body %d: %v, using white", index, err)
		target = White
	}

	tr := NewTransform(position)
	p := c.Params
	components := []any{
		&ConnectorComponent{Index: index, Material: spec.Material, Target: target, Kind: spec.Kind},
		&display,
		&tr,
		&RigidBodyComponent{
			Type:           BodyDynamic,
			LinearDamping:  p.LinearDamping,
			AngularDamping: p.AngularDamping,
		},
		&ColliderComponent{
			Shape:       ShapeSphere,
			Radius:      p.Radius,
			Friction:    p.Friction,
			Restitution: p.Restitution,
			Density:     p.Density,
		},
		ptrTo(sphereAABB(position, p.Radius)),
	}
	if spec.Kind == KindLogo && c.Geometry != "" {
		components = append(components, &MeshComponent{Geometry: c.Geometry, State: GeometryPending})
	}
	return cmd.AddEntity(components...)
}

// displayColorOf returns the flushed display colour of eid, or white when the
// entity has none yet.
func displayColorOf(cmd *Commands, eid EntityId) DisplayColorComponent {
	for _, c := range cmd.GetAllComponents(eid) {
		if display, ok := c.(DisplayColorComponent); ok {
			return display
		}
	}
	return DisplayColorComponent{Color: White}
}

// Entities returns the live connector ids in display order.
func (c *Composer) Entities() []EntityId {
	return slices.Clone(c.entities)
}

// BuiltFor returns the accent index of the live bodies.
func (c *Composer) BuiltFor() (int, bool) {
	return c.builtFor, c.built
}

// SpawnPointer queues the kinematic pointer body at the origin. It has a
// collider but no mesh.
func SpawnPointer(cmd *Commands, radius float32) EntityId {
	tr := NewTransform(mgl32.Vec3{})
	return cmd.AddEntity(
		&PointerComponent{},
		&tr,
		&RigidBodyComponent{Type: BodyKinematicPosition},
		&ColliderComponent{Shape: ShapeSphere, Radius: radius},
		ptrTo(sphereAABB(tr.Position, radius)),
	)
}

func ptrTo[T any](v T) *T {
	return &v
}

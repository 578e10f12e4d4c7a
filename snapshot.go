package connectors

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

type BodySnapshot struct {
	ID              EntityId     `json:"id"`
	Index           int          `json:"index"`
	Kind            string       `json:"kind"`
	Material        MaterialSpec `json:"material"`
	Position        mgl32.Vec3   `json:"position"`
	Rotation        mgl32.Quat   `json:"rotation"`
	Velocity        mgl32.Vec3   `json:"velocity"`
	AngularVelocity mgl32.Vec3   `json:"angular_velocity"`
	Color           string       `json:"color"`
	Geometry        string       `json:"geometry,omitempty"`
}

// Snapshot is the state of the scene at the end of a frame.
type Snapshot struct {
	Frame       uint64         `json:"frame"`
	Elapsed     float64        `json:"elapsed"`
	AccentIndex int            `json:"accent_index"`
	Accent      string         `json:"accent"`
	Layout      Layout         `json:"layout"`
	Pointer     mgl32.Vec3     `json:"pointer"`
	Bodies      []BodySnapshot `json:"bodies"`
}

func CaptureSnapshot(cmd *Commands, t *Time, palette *Palette) Snapshot {
	snap := Snapshot{
		Frame:       t.Frame,
		Elapsed:     t.Elapsed.Seconds(),
		AccentIndex: palette.Index,
		Accent:      palette.Accent(),
		Layout:      palette.Layout,
	}

	MakeQuery2[PointerComponent, TransformComponent](cmd).Map(func(eid EntityId, _ *PointerComponent, tr *TransformComponent) bool {
		snap.Pointer = tr.Position
		return false
	})

	MakeQuery4[ConnectorComponent, TransformComponent, RigidBodyComponent, DisplayColorComponent](cmd).Map(
		func(eid EntityId, conn *ConnectorComponent, tr *TransformComponent, rb *RigidBodyComponent, display *DisplayColorComponent) bool {
			body := BodySnapshot{
				ID:              eid,
				Index:           conn.Index,
				Kind:            conn.Kind.String(),
				Material:        conn.Material,
				Position:        tr.Position,
				Rotation:        tr.Rotation,
				Velocity:        rb.Velocity,
				AngularVelocity: rb.AngularVelocity,
				Color:           display.Color.Hex(),
			}
			for _, c := range cmd.GetAllComponents(eid) {
				if mesh, ok := c.(MeshComponent); ok {
					body.Geometry = mesh.State.String()
				}
			}
			snap.Bodies = append(snap.Bodies, body)
			return true
		})
	return snap
}

func SaveSnapshot(path string, snap Snapshot) error {
	bytes, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0644)
}

func LoadSnapshot(path string) (Snapshot, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(bytes, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return snap, nil
}

// RestoreSnapshot replaces the live bodies with the saved ones: same
// places, velocities and displayed colours. Entity ids are new.
func RestoreSnapshot(cmd *Commands, composer *Composer, palette *Palette, snap Snapshot) ([]EntityId, error) {
	if snap.AccentIndex < 0 || snap.AccentIndex >= len(palette.Accents) {
		return nil, fmt.Errorf("snapshot accent index %d outside palette of %d", snap.AccentIndex, len(palette.Accents))
	}
	specs := make([]BodySpec, len(snap.Bodies))
	for i, b := range snap.Bodies {
		kind, err := ParseBodyKind(b.Kind)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", b.ID, err)
		}
		specs[i] = BodySpec{Position: ptrTo(b.Position), Material: b.Material, Kind: kind}
	}

	palette.Index = snap.AccentIndex
	ids := composer.Replace(cmd, palette.Index, specs)

	p := composer.Params
	for i, eid := range ids {
		b := snap.Bodies[i]
		color, err := ParseColor(b.Color)
		if err != nil {
			color = White
		}
		tr := TransformComponent{Position: b.Position, Rotation: b.Rotation, Scale: mgl32.Vec3{1, 1, 1}}
		cmd.AddComponents(eid,
			&tr,
			&RigidBodyComponent{
				Type:            BodyDynamic,
				Velocity:        b.Velocity,
				AngularVelocity: b.AngularVelocity,
				LinearDamping:   p.LinearDamping,
				AngularDamping:  p.AngularDamping,
			},
			&DisplayColorComponent{Color: color},
		)
	}
	return ids, nil
}

// MeanDistance is the average distance of the bodies from the origin.
func (s Snapshot) MeanDistance() float32 {
	if len(s.Bodies) == 0 {
		return 0
	}
	var sum float32
	for _, b := range s.Bodies {
		sum += b.Position.Len()
	}
	return sum / float32(len(s.Bodies))
}

func (s Snapshot) MaxSpeed() float32 {
	var top float32
	for _, b := range s.Bodies {
		top = max(top, b.Velocity.Len())
	}
	return top
}

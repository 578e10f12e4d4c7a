package connectors

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type LightForm uint32

const (
	LightFormCircle LightForm = iota
	LightFormRing
	LightFormRect
)

// LightComponent is an emissive card placed around the scene. Cards light
// the bodies the way an environment map would: from a direction, with a
// strength that grows with intensity and area.
type LightComponent struct {
	Form      LightForm
	Color     Color
	Intensity float32
	Position  mgl32.Vec3
	Scale     float32
}

// Direction is the unit vector from the origin toward the card.
func (l LightComponent) Direction() mgl32.Vec3 {
	if l.Position.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return l.Position.Normalize()
}

// Radiance estimates the light reaching the origin from the card.
func (l LightComponent) Radiance() Color {
	d2 := l.Position.Dot(l.Position)
	area := l.Scale * l.Scale
	if l.Form == LightFormRing {
		area *= 0.3
	}
	k := l.Intensity * area / (4 * math32.Pi * math32.Max(d2, 1))
	return Color{l.Color.R * k, l.Color.G * k, l.Color.B * k}
}

// DefaultLightformers is the studio rig: a strong key above and behind, two
// dim fills to the left, a wide soft card to the right and a blue ring rim
// light. The whole rig is tilted as one group.
func DefaultLightformers() []LightComponent {
	group := mgl32.AnglesToQuat(-math32.Pi/3, 0, 1, mgl32.XYZ)
	cards := []LightComponent{
		{Form: LightFormCircle, Color: White, Intensity: 100, Position: mgl32.Vec3{0, 5, -9}, Scale: 2},
		{Form: LightFormCircle, Color: White, Intensity: 2, Position: mgl32.Vec3{-5, 1, -1}, Scale: 2},
		{Form: LightFormCircle, Color: White, Intensity: 2, Position: mgl32.Vec3{-5, -1, -1}, Scale: 2},
		{Form: LightFormCircle, Color: White, Intensity: 2, Position: mgl32.Vec3{10, 1, 0}, Scale: 8},
		{Form: LightFormRing, Color: MustParseColor("#4060ff"), Intensity: 80, Position: mgl32.Vec3{10, 10, 0}, Scale: 10},
	}
	for i := range cards {
		cards[i].Position = group.Rotate(cards[i].Position)
	}
	return cards
}

func spawnLightformers(cmd *Commands, lights []LightComponent) {
	for _, l := range lights {
		cmd.AddEntity(l)
	}
}

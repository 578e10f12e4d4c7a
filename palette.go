package connectors

import (
	"errors"
	"fmt"
)

// DefaultAccents is the accent cycle, in click order.
var DefaultAccents = []string{"#ff4060", "#ffcc00", "#20ffa0", "#4060ff"}

// ConnectorCount is the number of bodies in every material layout.
const ConnectorCount = 18

type Layout string

const (
	// LayoutBalanced keeps three accent bodies out of eighteen.
	LayoutBalanced Layout = "balanced"
	// LayoutOriginal tints six bodies, including the translucent one.
	LayoutOriginal Layout = "original"
)

func (l Layout) Valid() bool {
	return l == LayoutBalanced || l == LayoutOriginal
}

// MaterialSpec describes the surface of one body. It is a plain value;
// regenerating the list for the same accent index yields equal specs.
type MaterialSpec struct {
	Color       string  `json:"color"`
	Roughness   float32 `json:"roughness"`
	Metalness   float32 `json:"metalness,omitempty"`
	Accent      bool    `json:"accent,omitempty"`
	Transparent bool    `json:"transparent,omitempty"`
	Opacity     float32 `json:"opacity"`
}

// Palette holds the accent index for the session. Advance is the only way the
// index changes.
type Palette struct {
	Accents []string
	Index   int
	Layout  Layout
	// Changed is set by Advance and cleared once the scene was rebuilt.
	Changed bool
	Clicks  int
}

func NewPalette(accents []string, layout Layout) (*Palette, error) {
	if len(accents) == 0 {
		return nil, errors.New("palette needs at least one accent")
	}
	for _, a := range accents {
		if _, err := ParseColor(a); err != nil {
			return nil, err
		}
	}
	if layout == "" {
		layout = LayoutBalanced
	}
	if !layout.Valid() {
		return nil, fmt.Errorf("unknown palette layout %q", layout)
	}
	return &Palette{Accents: append([]string(nil), accents...), Layout: layout}, nil
}

// Advance moves to the next accent, wrapping around.
func (p *Palette) Advance() {
	p.Index = (p.Index + 1) % len(p.Accents)
	p.Changed = true
	p.Clicks++
}

func (p *Palette) Accent() string {
	return p.Accents[p.Index]
}

func (p *Palette) Specs() []MaterialSpec {
	return MaterialSpecs(p.Layout, p.Accents, p.Index)
}

// MaterialSpecs returns the ordered body materials for an accent index. The
// result depends on nothing but its arguments.
func MaterialSpecs(layout Layout, accents []string, index int) []MaterialSpec {
	accent := accents[index%len(accents)]
	original := layout == LayoutOriginal

	solid := func(color string, roughness, metalness float32) MaterialSpec {
		return MaterialSpec{Color: color, Roughness: roughness, Metalness: metalness, Opacity: 1}
	}
	tinted := func(roughness float32) MaterialSpec {
		return MaterialSpec{Color: accent, Roughness: roughness, Accent: true, Opacity: 1}
	}
	pick := func(fallback MaterialSpec, roughness float32) MaterialSpec {
		if original {
			return tinted(roughness)
		}
		return fallback
	}

	translucent := pick(solid("white", 0.1, 0), 0.1)
	translucent.Transparent = true
	translucent.Opacity = 0.5

	return []MaterialSpec{
		solid("#444", 0.1, 0.1),
		solid("#444", 0.1, 0.1),
		solid("#444", 0.1, 0.1),
		solid("white", 0.1, 0.1),
		solid("white", 0.1, 0.1),
		solid("white", 0.1, 0.1),
		tinted(0.1),
		tinted(0.1),
		tinted(0.1),
		solid("#444", 0.1, 0),
		solid("#444", 0.3, 0),
		solid("#444", 0.3, 0),
		solid("white", 0.1, 0),
		solid("white", 0.2, 0),
		solid("white", 0.1, 0),
		translucent,
		pick(solid("#444", 0.3, 0), 0.3),
		pick(solid("white", 0.1, 0), 0.1),
	}
}

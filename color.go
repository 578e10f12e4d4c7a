package connectors

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// Color is a linear-light RGB triple. Material colours are written as CSS
// strings and converted on parse.
type Color struct {
	R, G, B float32
}

var (
	White = Color{1, 1, 1}
	Black = Color{0, 0, 0}
)

var namedColors = map[string]string{
	"white": "#ffffff",
	"black": "#000000",
	"red":   "#ff0000",
	"green": "#008000",
	"blue":  "#0000ff",
	"gray":  "#808080",
	"grey":  "#808080",
}

// ParseColor accepts #rgb, #rrggbb and a few CSS colour names.
func ParseColor(s string) (Color, error) {
	hex := strings.ToLower(strings.TrimSpace(s))
	if named, ok := namedColors[hex]; ok {
		hex = named
	}
	if len(hex) == 4 && hex[0] == '#' {
		hex = string([]byte{'#', hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return FromColorful(c), nil
}

func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func FromColorful(c colorful.Color) Color {
	r, g, b := c.LinearRgb()
	return Color{float32(r), float32(g), float32(b)}
}

// Colorful converts back to gamma-encoded sRGB.
func (c Color) Colorful() colorful.Color {
	return colorful.LinearRgb(float64(c.R), float64(c.G), float64(c.B)).Clamped()
}

func (c Color) Hex() string {
	return c.Colorful().Hex()
}

func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Distance is the Euclidean distance in linear RGB.
func (c Color) Distance(o Color) float32 {
	return c.Vec3().Sub(o.Vec3()).Len()
}

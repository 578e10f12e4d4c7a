package connectors

import (
	_ "embed"

	"github.com/gekko3d/connectors/pathgeom"
)

// LogoSVG is the connector outline: a bar frame around two rounded slots.
//
//go:embed assets/logo.svg
var LogoSVG string

// LogoScale shrinks the 304×141 outline to roughly the size of a unit sphere.
const LogoScale = 0.008

// DefaultLogoOptions extrudes the outline 100 units deep in two wall steps,
// without bevel, then centres and scales it.
func DefaultLogoOptions() pathgeom.Options {
	return pathgeom.Options{
		CurveSegments: pathgeom.DefaultCurveSegments,
		Extrude:       pathgeom.ExtrudeOptions{Depth: 100, Steps: 2},
		FlipY:         true,
		Center:        true,
		Scale:         LogoScale,
	}
}

package pathgeom

import (
	"fmt"
)

// Options controls how an SVG document becomes a mesh.
type Options struct {
	CurveSegments int
	Extrude       ExtrudeOptions
	// FlipY converts from SVG's y-down frame so the outline reads upright.
	FlipY bool
	// Center moves the bounding box centre to the origin before scaling.
	Center bool
	Scale  float32
}

// Stats summarises a built mesh.
type Stats struct {
	Paths     int
	Shapes    int
	Holes     int
	Vertices  int
	Triangles int
	Min, Max  [3]float32
}

// Build runs the whole pipeline: extract paths, parse, flatten, group into
// shapes, extrude, centre and scale.
func Build(svg string, opts Options) (Mesh, Stats, error) {
	ds, err := ExtractPaths(svg)
	if err != nil {
		return Mesh{}, Stats{}, err
	}

	stats := Stats{Paths: len(ds)}
	var shapes []Shape
	for i, d := range ds {
		path, err := ParsePath(d)
		if err != nil {
			return Mesh{}, Stats{}, fmt.Errorf("path %d: %w", i, err)
		}
		rings := Flatten(path, opts.CurveSegments)
		if opts.FlipY {
			rings = FlipY(rings)
		}
		shapes = append(shapes, ToShapes(rings)...)
	}
	if len(shapes) == 0 {
		return Mesh{}, Stats{}, fmt.Errorf("svg outlines enclose no area")
	}

	mesh := Extrude(shapes, opts.Extrude)
	if opts.Center {
		mesh.Center()
	}
	if opts.Scale != 0 && opts.Scale != 1 {
		mesh.Scale(opts.Scale)
	}

	stats.Shapes = len(shapes)
	for _, s := range shapes {
		stats.Holes += len(s.Holes)
	}
	stats.Vertices = len(mesh.Positions)
	stats.Triangles = mesh.TriangleCount()
	lo, hi := mesh.Bounds()
	stats.Min, stats.Max = lo, hi
	return mesh, stats, nil
}

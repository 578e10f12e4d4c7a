// Package raster draws lit spheres and triangle meshes into a linear-light
// frame with a depth buffer, then post-processes and resolves it to sRGB.
package raster

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Frame holds linear colour and view depth per pixel. Empty pixels have
// infinite depth.
type Frame struct {
	Width, Height int
	Color         []mgl32.Vec3
	Depth         []float32
}

func NewFrame(width, height int) *Frame {
	f := &Frame{}
	f.Resize(width, height)
	return f
}

// Resize reallocates the buffers when the size changed. Contents are
// undefined until the next Clear.
func (f *Frame) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == f.Width && height == f.Height && f.Color != nil {
		return
	}
	f.Width, f.Height = width, height
	f.Color = make([]mgl32.Vec3, width*height)
	f.Depth = make([]float32, width*height)
}

func (f *Frame) Clear(background mgl32.Vec3) {
	inf := math32.Inf(1)
	for i := range f.Color {
		f.Color[i] = background
		f.Depth[i] = inf
	}
}

func (f *Frame) At(x, y int) mgl32.Vec3 {
	return f.Color[y*f.Width+x]
}

func (f *Frame) DepthAt(x, y int) float32 {
	return f.Depth[y*f.Width+x]
}

// Covered counts the pixels something was drawn into.
func (f *Frame) Covered() int {
	n := 0
	for _, d := range f.Depth {
		if !math32.IsInf(d, 1) {
			n++
		}
	}
	return n
}

// write stores an opaque sample, or blends a translucent one over what is
// there without touching depth.
func (f *Frame) write(i int, c mgl32.Vec3, depth, opacity float32) {
	if opacity >= 1 {
		f.Color[i] = c
		f.Depth[i] = depth
		return
	}
	f.Color[i] = f.Color[i].Mul(1 - opacity).Add(c.Mul(opacity))
}

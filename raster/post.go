package raster

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

var aoKernel = [8][2]float32{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{0.7, 0.7}, {-0.7, 0.7}, {0.7, -0.7}, {-0.7, -0.7},
}

// AmbientOcclusion darkens pixels whose neighbours, within radius pixels,
// sit closer to the eye. Neighbours more than reach in front are ignored so
// silhouettes against distant bodies stay clean.
func (f *Frame) AmbientOcclusion(radius int, strength, reach float32) {
	if radius <= 0 || strength <= 0 {
		return
	}
	const bias = 0.02
	occlusion := make([]float32, len(f.Depth))
	for y := range f.Height {
		for x := range f.Width {
			d := f.Depth[y*f.Width+x]
			if math32.IsInf(d, 1) {
				continue
			}
			var hits, samples float32
			for _, scale := range [2]float32{1, 0.5} {
				for _, k := range aoKernel {
					sx := x + int(k[0]*float32(radius)*scale)
					sy := y + int(k[1]*float32(radius)*scale)
					if sx < 0 || sy < 0 || sx >= f.Width || sy >= f.Height {
						continue
					}
					samples++
					diff := d - f.Depth[sy*f.Width+sx]
					if diff > bias && diff < reach {
						hits++
					}
				}
			}
			if samples > 0 {
				occlusion[y*f.Width+x] = hits / samples * strength
			}
		}
	}
	for i, o := range occlusion {
		if o > 0 {
			f.Color[i] = f.Color[i].Mul(1 - mgl32.Clamp(o, 0, 1))
		}
	}
}

// ACES is Narkowicz's fit of the ACES filmic curve.
func ACES(x float32) float32 {
	x = math32.Max(x, 0)
	return mgl32.Clamp((x*(2.51*x+0.03))/(x*(2.43*x+0.59)+0.14), 0, 1)
}

// Resolve tone maps the frame, encodes it to sRGB and scales it into dst.
// Empty pixels take background unmapped so the backdrop keeps its exact
// colour.
func (f *Frame) Resolve(dst *image.RGBA, exposure float32, background mgl32.Vec3) {
	src := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	bg := encode(background)
	for y := range f.Height {
		for x := range f.Width {
			i := y*f.Width + x
			if math32.IsInf(f.Depth[i], 1) && f.Color[i] == background {
				src.SetRGBA(x, y, bg)
				continue
			}
			c := f.Color[i].Mul(exposure)
			src.SetRGBA(x, y, encode(mgl32.Vec3{ACES(c[0]), ACES(c[1]), ACES(c[2])}))
		}
	}

	if dst.Bounds().Size() == src.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
		return
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}

func encode(c mgl32.Vec3) color.RGBA {
	r, g, b := colorful.LinearRgb(float64(c[0]), float64(c[1]), float64(c[2])).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

package gradient

import (
	"image"
	"math"

	"github.com/gogpu/gg"
)

// Light shifts the apparent highlight origin of a texture.
// X and Y are in [-1, 1]; (0, 0) centers the highlight.
type Light struct {
	X, Y float64
}

// DefaultTextureSize is the edge length of generated matcaps.
const DefaultTextureSize = 256

// lightReach is how far (as a fraction of the half extent) a light offset of
// 1 moves the highlight.
const lightReach = 0.5

// ColorAt returns the gradient color at position t in [0, 100].
//
// The stop list is interpreted in place: the bracketing pair is the stop with
// the greatest position <= t and the stop with the smallest position >= t,
// with ties going to the earlier stop in the list. Outside the covered range
// the nearest stop's color is used.
func ColorAt(stops []Stop, t float64) gg.RGBA {
	lo, hi := -1, -1
	for i, s := range stops {
		if s.Position <= t && (lo < 0 || s.Position > stops[lo].Position) {
			lo = i
		}
		if s.Position >= t && (hi < 0 || s.Position < stops[hi].Position) {
			hi = i
		}
	}

	switch {
	case lo < 0 && hi < 0:
		return gg.Transparent
	case lo < 0:
		return toRGBA(stops[hi])
	case hi < 0:
		return toRGBA(stops[lo])
	}

	a, b := stops[lo], stops[hi]
	span := b.Position - a.Position
	if span <= 0 {
		return toRGBA(a)
	}
	return toRGBA(a).Lerp(toRGBA(b), (t-a.Position)/span)
}

func toRGBA(s Stop) gg.RGBA {
	c := s.Color.Clamped()
	return gg.RGB(c.R, c.G, c.B)
}

// Generate renders def into a size x size matcap.
// The result depends only on its arguments.
func Generate(def Definition, light Light, size int) *image.RGBA {
	return Render(def, light, size).ToImage()
}

// Render is Generate returning the gg pixmap, for callers that want to save
// or further draw into it.
func Render(def Definition, light Light, size int) *gg.Pixmap {
	if size <= 0 {
		size = DefaultTextureSize
	}
	pm := gg.NewPixmap(size, size)

	half := float64(size) / 2
	// Highlight origin in pixel space; +Y light moves the highlight up.
	hx := half + clampUnit(light.X)*half*lightReach
	hy := half - clampUnit(light.Y)*half*lightReach

	// Radial falloff reaches 100 at the farthest corner from the highlight.
	radius := math.Max(
		math.Max(math.Hypot(hx, hy), math.Hypot(float64(size)-hx, hy)),
		math.Max(math.Hypot(hx, float64(size)-hy), math.Hypot(float64(size)-hx, float64(size)-hy)),
	)

	// Linear ramp runs from the highlight away through the center; a centered
	// light ramps top to bottom.
	dx, dy := half-hx, half-hy
	if l := math.Hypot(dx, dy); l > 1e-9 {
		dx, dy = dx/l, dy/l
	} else {
		dx, dy = 0, 1
	}
	extent := projectedExtent(float64(size), hx, hy, dx, dy)

	for y := 0; y < size; y++ {
		py := float64(y) + 0.5
		for x := 0; x < size; x++ {
			px := float64(x) + 0.5
			var t float64
			switch def.Shape {
			case Linear:
				t = ((px-hx)*dx + (py-hy)*dy) / extent * 100
			default:
				t = math.Hypot(px-hx, py-hy) / radius * 100
			}
			pm.SetPixel(x, y, ColorAt(def.Stops, clampPosition(t)))
		}
	}
	return pm
}

// projectedExtent is the largest distance of any texture corner from the
// highlight along (dx, dy).
func projectedExtent(size, hx, hy, dx, dy float64) float64 {
	extent := 0.0
	for _, c := range [4][2]float64{{0, 0}, {size, 0}, {0, size}, {size, size}} {
		if d := (c[0]-hx)*dx + (c[1]-hy)*dy; d > extent {
			extent = d
		}
	}
	if extent <= 0 {
		return size
	}
	return extent
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

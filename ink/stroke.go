// Package ink holds the freehand drawing model of a note: strokes, the
// gesture state machine that produces them, undo/redo history, eraser
// hit-testing, the strokes.paths codec and a raster renderer.
package ink

import (
	"image/color"
	"math"
)

type Point struct {
	X, Y float64
}

func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// within reports whether q lies strictly closer than r to p.
func (p Point) within(q Point, r float64) bool {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx+dy*dy < r*r
}

// Stroke is one continuous pen gesture. Points keep drawing order and are
// not modified once the stroke has been committed to a Canvas.
type Stroke struct {
	Points []Point
	Color  uint32 // ARGB
	Width  float64
}

func (s Stroke) Clone() Stroke {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	return Stroke{Points: pts, Color: s.Color, Width: s.Width}
}

func (s Stroke) IsDot() bool {
	return len(s.Points) == 1
}

// Bounds returns the box covering every point, grown by half the width.
func (s Stroke) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	if len(s.Points) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, minY = s.Points[0].X, s.Points[0].Y
	maxX, maxY = minX, minY
	for _, p := range s.Points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	half := s.Width / 2
	return minX - half, minY - half, maxX + half, maxY + half, true
}

func (s Stroke) Equal(o Stroke) bool {
	if s.Color != o.Color || s.Width != o.Width || len(s.Points) != len(o.Points) {
		return false
	}
	for i := range s.Points {
		if s.Points[i] != o.Points[i] {
			return false
		}
	}
	return true
}

// ARGB packs 8-bit channels into the 0xAARRGGBB layout used on disk.
func ARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// NRGBA converts an ARGB value to a non-premultiplied color.
func NRGBA(argb uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
		A: uint8(argb >> 24),
	}
}

const (
	Black uint32 = 0xFF000000
	White uint32 = 0xFFFFFFFF
	Blue  uint32 = 0xFF0000FF
	Red   uint32 = 0xFFFF0000
	Green uint32 = 0xFF00FF00
)

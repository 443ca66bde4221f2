package plot

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

const circleSegments = 32

// points converts a length in typographic points to pixels.
func points(pt, dpi float64) float64 {
	return pt * dpi / 72
}

// vec is a position in pixel space.
type vec struct {
	x, y float64
}

// canvas wraps an RGBA image and a reusable anti-aliasing rasterizer.
type canvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

func newCanvas(w, h int) *canvas {
	return &canvas{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		z:   vector.NewRasterizer(w, h),
	}
}

// paint composites the current path in c and starts a fresh one.
func (cv *canvas) paint(c color.Color) {
	cv.z.Draw(cv.img, cv.img.Bounds(), image.NewUniform(c), image.Point{})
	size := cv.img.Bounds().Size()
	cv.z.Reset(size.X, size.Y)
}

func (cv *canvas) polygon(pts []vec) {
	if len(pts) < 3 {
		return
	}
	cv.z.MoveTo(float32(pts[0].x), float32(pts[0].y))
	for _, p := range pts[1:] {
		cv.z.LineTo(float32(p.x), float32(p.y))
	}
	cv.z.ClosePath()
}

// segment adds a quad of the given width around a-b. All quads share the
// same orientation so overlapping coverage never cancels out.
func (cv *canvas) segment(a, b vec, width float64) {
	dx, dy := b.x-a.x, b.y-a.y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2

	cv.polygon([]vec{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	})
}

func (cv *canvas) circle(center vec, radius float64) {
	pts := make([]vec, circleSegments)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = vec{center.x + radius*math.Cos(theta), center.y + radius*math.Sin(theta)}
	}
	cv.polygon(pts)
}

// rect adds an axis-aligned rectangle.
func (cv *canvas) rect(r image.Rectangle) {
	cv.polygon([]vec{
		{float64(r.Min.X), float64(r.Min.Y)},
		{float64(r.Max.X), float64(r.Min.Y)},
		{float64(r.Max.X), float64(r.Max.Y)},
		{float64(r.Min.X), float64(r.Max.Y)},
	})
}

// outline adds the four edges of r as strokes of the given width.
func (cv *canvas) outline(r image.Rectangle, width float64) {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	half := width / 2

	cv.segment(vec{x0 - half, y0}, vec{x1 + half, y0}, width)
	cv.segment(vec{x1, y0}, vec{x1, y1}, width)
	cv.segment(vec{x1 + half, y1}, vec{x0 - half, y1}, width)
	cv.segment(vec{x0, y1}, vec{x0, y0}, width)
}

// clipSegment clips a-b to the rectangle [min, max] (Liang-Barsky). The
// boolean is false when nothing of the segment is inside.
func clipSegment(a, b, min, max vec) (vec, vec, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := b.x-a.x, b.y-a.y

	edges := [4][2]float64{
		{-dx, a.x - min.x},
		{dx, max.x - a.x},
		{-dy, a.y - min.y},
		{dy, max.y - a.y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}

	return vec{a.x + t0*dx, a.y + t0*dy}, vec{a.x + t1*dx, a.y + t1*dy}, true
}

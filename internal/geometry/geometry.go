// Package geometry provides the shape primitives packed around the hidden word.
package geometry

import (
	"math"
	"math/rand"
)

// Point represents a 2D point or vector.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dot returns the dot product of two vectors.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the 2D cross product (scalar).
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Overlaps reports whether two boxes share interior area or touch.
// It is only used as a cheap pre-check, so touching boxes count.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX &&
		r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// BoundsOf returns the bounding box of a point set.
// An empty set yields the zero Rect.
func BoundsOf(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	return r
}

// Polygon is an ordered, implicitly closed ring of points.
// Edges wrap from the last point back to the first.
type Polygon []Point

// Bounds returns the bounding box of the ring.
func (p Polygon) Bounds() Rect {
	return BoundsOf(p)
}

// Edge returns the i-th edge, wrapping at the end of the ring.
func (p Polygon) Edge(i int) (Point, Point) {
	return p[i], p[(i+1)%len(p)]
}

// IsConvex reports whether the ring turns in one direction only.
// Collinear and repeated points are ignored; rings with fewer than
// three points are treated as convex.
func (p Polygon) IsConvex() bool {
	n := len(p)
	if n < 4 {
		return true
	}
	sign := 0
	for i := 0; i < n; i++ {
		a, b := p.Edge(i)
		_, c := p.Edge((i + 1) % n)
		cross := b.Sub(a).Cross(c.Sub(b))
		switch {
		case cross > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case cross < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return true
}

// Canvas is the drawable extent used for random placement.
type Canvas struct {
	Width  float64
	Height float64
}

// Sampler draws uniform random values for shape construction.
type Sampler struct {
	rng    *rand.Rand
	canvas Canvas
}

// NewSampler creates a Sampler over the given canvas.
// Pass a seeded *rand.Rand for reproducible output.
func NewSampler(rng *rand.Rand, canvas Canvas) *Sampler {
	return &Sampler{rng: rng, canvas: canvas}
}

// Rand exposes the underlying generator so that callers share one stream.
func (s *Sampler) Rand() *rand.Rand {
	return s.rng
}

// Uniform returns a value in [lo, hi). If hi <= lo, lo is returned.
func (s *Sampler) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Float64()*(hi-lo)
}

// X returns a uniform horizontal canvas coordinate.
func (s *Sampler) X() float64 {
	return s.Uniform(0, s.canvas.Width)
}

// Y returns a uniform vertical canvas coordinate.
func (s *Sampler) Y() float64 {
	return s.Uniform(0, s.canvas.Height)
}

// Intn returns a uniform index in [0, n).
func (s *Sampler) Intn(n int) int {
	return s.rng.Intn(n)
}

package collision

import (
	"math"

	"github.com/kyiku/hiddenword-back/internal/geometry"
)

// Obstacle is a polygon prepared for repeated shape tests.
// Its bounds and convexity are computed once.
type Obstacle struct {
	ring   geometry.Polygon
	bounds geometry.Rect
	convex bool
}

// Prepare wraps a polygon for use with CollidesObstacle.
func Prepare(p geometry.Polygon) Obstacle {
	return Obstacle{
		ring:   p,
		bounds: p.Bounds(),
		convex: p.IsConvex(),
	}
}

// Polygon returns the wrapped ring.
func (o Obstacle) Polygon() geometry.Polygon { return o.ring }

// Bounds returns the bounding box of the ring.
func (o Obstacle) Bounds() geometry.Rect { return o.bounds }

// Empty reports whether the ring has no points.
func (o Obstacle) Empty() bool { return len(o.ring) == 0 }

// CollidesPolygon reports whether a shape overlaps a polygon.
func CollidesPolygon(s geometry.Shape, p geometry.Polygon) bool {
	return CollidesObstacle(s, Prepare(p))
}

// CollidesObstacle reports whether a shape overlaps a prepared polygon.
// Convex rings use the separating-axis test. Non-convex rings, such as
// sampled glyph outlines, use edge crossing plus containment, which gives
// the same answer as SAT on convex input.
func CollidesObstacle(s geometry.Shape, o Obstacle) bool {
	if o.Empty() || !s.Bounds().Overlaps(o.bounds) {
		return false
	}

	var ring geometry.Polygon
	switch s := s.(type) {
	case geometry.Circle:
		return circlePolygon(s, o.ring)
	case geometry.Rectangle:
		ring = s.Polygon()
	case geometry.Triangle:
		ring = s.Polygon()
	default:
		return false
	}

	if o.convex {
		return !separated(ring, o.ring)
	}
	return ringsOverlap(ring, o.ring)
}

// separated runs the separating-axis test over the edge normals of both
// rings. Zero-length edges contribute no axis. Rings with no area also
// contribute their edge directions so that collinear input is still
// resolved exactly.
func separated(a, b geometry.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}

	tested := false
	for _, ring := range [2]geometry.Polygon{a, b} {
		flat := signedArea(ring) == 0
		for i := range ring {
			p, q := ring.Edge(i)
			dir := q.Sub(p)
			if dir.X == 0 && dir.Y == 0 {
				continue
			}
			tested = true
			if separatedOnAxis(a, b, geometry.Point{X: -dir.Y, Y: dir.X}) {
				return true
			}
			if flat && separatedOnAxis(a, b, dir) {
				return true
			}
		}
	}

	if !tested {
		// both rings collapse to a single point
		return a[0] != b[0]
	}
	return false
}

func separatedOnAxis(a, b geometry.Polygon, axis geometry.Point) bool {
	minA, maxA := project(a, axis)
	minB, maxB := project(b, axis)
	return maxA <= minB || maxB <= minA
}

func project(ring geometry.Polygon, axis geometry.Point) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range ring {
		d := p.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

func signedArea(ring geometry.Polygon) float64 {
	var sum float64
	for i := range ring {
		p, q := ring.Edge(i)
		sum += p.Cross(q)
	}
	return sum / 2
}

// circlePolygon reports a hit when the center lies inside the ring or any
// edge passes closer to the center than the radius. A circle without
// positive radius collides with nothing.
func circlePolygon(c geometry.Circle, ring geometry.Polygon) bool {
	r := c.Radius()
	if r <= 0 || len(ring) == 0 {
		return false
	}
	if containsPoint(ring, c.Center) {
		return true
	}
	for i := range ring {
		p, q := ring.Edge(i)
		if segmentDistance(c.Center, p, q) < r {
			return true
		}
	}
	return false
}

// ringsOverlap reports whether any edges cross or one ring holds a vertex
// of the other.
func ringsOverlap(a, b geometry.Polygon) bool {
	for i := range a {
		p1, p2 := a.Edge(i)
		for j := range b {
			q1, q2 := b.Edge(j)
			if segmentsIntersect(p1, p2, q1, q2) {
				return true
			}
		}
	}
	return containsPoint(b, a[0]) || containsPoint(a, b[0])
}

// containsPoint is the even-odd ray casting test.
func containsPoint(ring geometry.Polygon, pt geometry.Point) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) &&
			pt.X < (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

func segmentDistance(pt, a, b geometry.Point) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return pt.Distance(a)
	}
	t := clamp(pt.Sub(a).Dot(ab)/lenSq, 0, 1)
	closest := geometry.Point{X: a.X + t*ab.X, Y: a.Y + t*ab.Y}
	return pt.Distance(closest)
}

// segmentsIntersect includes touching and collinear overlap.
func segmentsIntersect(p1, p2, q1, q2 geometry.Point) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func orientation(a, b, c geometry.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func onSegment(a, b, p geometry.Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

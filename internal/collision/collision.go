// Package collision decides overlap between packable shapes and between a
// shape and an arbitrary polygon. All functions are pure.
package collision

import (
	"github.com/kyiku/hiddenword-back/internal/geometry"
)

// Collides reports whether two shapes overlap. It is symmetric.
// Touching boundaries do not count as a collision.
func Collides(a, b geometry.Shape) bool {
	switch a := a.(type) {
	case geometry.Circle:
		switch b := b.(type) {
		case geometry.Circle:
			return circleCircle(a, b)
		case geometry.Rectangle:
			return circleRect(a, b)
		case geometry.Triangle:
			return circlePolygon(a, b.Polygon())
		}
	case geometry.Rectangle:
		switch b := b.(type) {
		case geometry.Circle:
			return circleRect(b, a)
		case geometry.Rectangle:
			return rectRect(a, b)
		case geometry.Triangle:
			return !separated(a.Polygon(), b.Polygon())
		}
	case geometry.Triangle:
		switch b := b.(type) {
		case geometry.Circle:
			return circlePolygon(b, a.Polygon())
		case geometry.Rectangle:
			return !separated(a.Polygon(), b.Polygon())
		case geometry.Triangle:
			return !separated(a.Polygon(), b.Polygon())
		}
	}
	return false
}

// CollidesWithSet reports whether s collides with any member of any set.
// It stops at the first hit.
func CollidesWithSet(s geometry.Shape, sets ...[]geometry.Shape) bool {
	for _, set := range sets {
		for _, other := range set {
			if Collides(s, other) {
				return true
			}
		}
	}
	return false
}

func circleCircle(a, b geometry.Circle) bool {
	if a.Radius() <= 0 || b.Radius() <= 0 {
		return false
	}
	return a.Center.Distance(b.Center) < a.Radius()+b.Radius()
}

func rectRect(a, b geometry.Rectangle) bool {
	ab, bb := a.Bounds(), b.Bounds()
	return ab.MinX < bb.MaxX && bb.MinX < ab.MaxX &&
		ab.MinY < bb.MaxY && bb.MinY < ab.MaxY
}

// circleRect clamps the center onto the box and compares the remaining
// distance with the radius.
func circleRect(c geometry.Circle, r geometry.Rectangle) bool {
	b := r.Bounds()
	closestX := clamp(c.Center.X, b.MinX, b.MaxX)
	closestY := clamp(c.Center.Y, b.MinY, b.MaxY)
	dx := c.Center.X - closestX
	dy := c.Center.Y - closestY
	rad := c.Radius()
	return dx*dx+dy*dy < rad*rad
}

// clamp limits value to the range [min, max].
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

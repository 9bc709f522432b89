// Package region builds the exclusion region of a target word: one polygon
// per letter plus a sparse set of boundary markers.
package region

import (
	"github.com/kyiku/hiddenword-back/internal/collision"
	"github.com/kyiku/hiddenword-back/internal/geometry"
)

// Marker fields left at zero fall back to these.
const (
	DefaultLetterSpacing  = 17
	DefaultMarkerEvery    = 15
	DefaultMarkerDiameter = 2.5
)

// GlyphSource supplies sampled glyph outlines. Implementations own font
// loading and sampling density.
type GlyphSource interface {
	// Contour returns the ordered outline samples of r drawn with its
	// baseline origin at (x, y). All contours of the glyph are concatenated.
	Contour(r rune, x, y, fontSize float64) []geometry.Point
	// Width returns the bounding box width of r at fontSize.
	Width(r rune, fontSize float64) float64
}

// Options positions the word on the canvas.
type Options struct {
	X             float64
	Y             float64
	FontSize      float64
	LetterSpacing float64
	// MarkerEvery keeps one boundary marker per this many contour points.
	MarkerEvery    int
	MarkerDiameter float64
}

// DefaultOptions returns the default layout: size 200 at (50, 400), spacing 17.
func DefaultOptions() Options {
	return Options{
		X:              50,
		Y:              400,
		FontSize:       200,
		LetterSpacing:  DefaultLetterSpacing,
		MarkerEvery:    DefaultMarkerEvery,
		MarkerDiameter: DefaultMarkerDiameter,
	}
}

// Letter is one character of the word and its exclusion polygon.
type Letter struct {
	Rune    rune
	OffsetX float64
	Polygon geometry.Polygon

	obstacle collision.Obstacle
}

// Region is the exclusion region of a word. It is immutable once built.
type Region struct {
	word    string
	letters []Letter
	markers []geometry.Circle
}

// Build samples every character of word and lays the letters out left to
// right. Duplicated characters get distinct entries.
//
// Glyphs with several contours (B, 8, o ...) produce one concatenated ring,
// so their holes are bridged by phantom edges. This imprecision is accepted.
func Build(word string, opts Options, src GlyphSource) *Region {
	every := opts.MarkerEvery
	if every <= 0 {
		every = DefaultMarkerEvery
	}
	diameter := opts.MarkerDiameter
	if diameter <= 0 {
		diameter = DefaultMarkerDiameter
	}

	r := &Region{word: word}
	offsetX := 0.0
	for _, ch := range word {
		var pts []geometry.Point
		if src != nil {
			pts = src.Contour(ch, opts.X+offsetX, opts.Y, opts.FontSize)
		}
		poly := geometry.Polygon(pts)

		r.letters = append(r.letters, Letter{
			Rune:     ch,
			OffsetX:  offsetX,
			Polygon:  poly,
			obstacle: collision.Prepare(poly),
		})

		for i, p := range pts {
			if i%every == 0 {
				r.markers = append(r.markers, geometry.Circle{Center: p, Diameter: diameter})
			}
		}

		width := 0.0
		if src != nil {
			width = src.Width(ch, opts.FontSize)
		}
		offsetX += width + opts.LetterSpacing
	}
	return r
}

// Word returns the word the region was built from.
func (r *Region) Word() string { return r.word }

// Letters returns the letters in word order.
func (r *Region) Letters() []Letter { return r.letters }

// Polygons returns one polygon per letter.
func (r *Region) Polygons() []geometry.Polygon {
	polys := make([]geometry.Polygon, len(r.letters))
	for i, l := range r.letters {
		polys[i] = l.Polygon
	}
	return polys
}

// Markers returns the boundary marker circles.
func (r *Region) Markers() []geometry.Circle { return r.markers }

// MarkerShapes returns the markers as a shape set for CollidesWithSet.
func (r *Region) MarkerShapes() []geometry.Shape {
	shapes := make([]geometry.Shape, len(r.markers))
	for i, m := range r.markers {
		shapes[i] = m
	}
	return shapes
}

// Collides reports whether s overlaps any letter polygon.
func (r *Region) Collides(s geometry.Shape) bool {
	for _, l := range r.letters {
		if collision.CollidesObstacle(s, l.obstacle) {
			return true
		}
	}
	return false
}

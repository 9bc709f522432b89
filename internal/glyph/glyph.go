// Package glyph samples TrueType glyph outlines into ordered point lists.
//
// Source implements region.GlyphSource on top of golang.org/x/image/font/sfnt.
// Outlines are flattened and resampled along their arc length so that the
// point density matches the configured sample factor.
package glyph

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/kyiku/hiddenword-back/internal/geometry"
)

// DefaultSampleFactor is the number of samples per unit of outline length.
const DefaultSampleFactor = 5

const (
	curveThreshold = 0.1
	maxCurveSplits = 8
)

// ErrNoFont is returned when the font data is empty.
var ErrNoFont = errors.New("glyph: no font data")

// Source samples glyph outlines of one parsed font.
// It is safe for concurrent use.
type Source struct {
	font         *sfnt.Font
	sampleFactor float64
	logger       *slog.Logger

	mu  sync.Mutex
	buf sfnt.Buffer
}

// Option configures a Source.
type Option func(*Source)

// WithSampleFactor sets the number of samples per unit of outline length.
// Non-positive values are ignored.
func WithSampleFactor(f float64) Option {
	return func(s *Source) {
		if f > 0 {
			s.sampleFactor = f
		}
	}
}

// WithLogger sets the logger used to report missing glyphs.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// New parses TrueType or OpenType font data.
func New(data []byte, opts ...Option) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrNoFont
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: failed to parse font: %w", err)
	}

	s := &Source{
		font:         f,
		sampleFactor: DefaultSampleFactor,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Default returns a Source over the embedded Go Regular font.
func Default(opts ...Option) (*Source, error) {
	return New(goregular.TTF, opts...)
}

// Load reads a font file from disk. An empty path selects the embedded font.
func Load(path string, opts ...Option) (*Source, error) {
	if path == "" {
		return Default(opts...)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("glyph: failed to read font %s: %w", path, err)
	}
	return New(data, opts...)
}

// Name returns the full font name, or "" when the font has none.
func (s *Source) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.font.Name(&s.buf, sfnt.NameIDFull)
	if err != nil {
		return ""
	}
	return name
}

// SampleFactor returns the configured sample density.
func (s *Source) SampleFactor() float64 { return s.sampleFactor }

// Contour returns the outline samples of r with the glyph origin on the
// baseline at (x, y). The Y axis grows downward. Every contour of the glyph
// is appended to the same list in font order. Runes without an outline
// yield nil.
func (s *Source) Contour(r rune, x, y, size float64) []geometry.Point {
	if size <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	segments, err := s.loadSegments(r, size)
	if err != nil {
		s.logger.Debug("glyph: no outline", "rune", string(r), "error", err)
		return nil
	}

	var pts []geometry.Point
	for _, contour := range flatten(segments) {
		for _, p := range resample(contour, 1/s.sampleFactor) {
			pts = append(pts, geometry.Pt(x+p.X, y+p.Y))
		}
	}
	return pts
}

// Width returns the width of the glyph's bounding box at size. Glyphs
// without an outline report their advance instead.
func (s *Source) Width(r rune, size float64) float64 {
	if size <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.font.GlyphIndex(&s.buf, r)
	if err != nil || idx == 0 {
		return 0
	}
	ppem := fixed.Int26_6(size * 64)

	bounds, advance, err := s.font.GlyphBounds(&s.buf, idx, ppem, font.HintingNone)
	if err != nil {
		return 0
	}
	if w := toFloat(bounds.Max.X - bounds.Min.X); w > 0 {
		return w
	}
	return toFloat(advance)
}

func (s *Source) loadSegments(r rune, size float64) (sfnt.Segments, error) {
	idx, err := s.font.GlyphIndex(&s.buf, r)
	if err != nil {
		return nil, err
	}
	if idx == 0 {
		return nil, fmt.Errorf("glyph: rune %q not in font", r)
	}
	return s.font.LoadGlyph(&s.buf, idx, fixed.Int26_6(size*64), nil)
}

// flatten converts sfnt segments into closed polylines, one per contour.
func flatten(segments sfnt.Segments) [][]geometry.Point {
	var (
		contours [][]geometry.Point
		current  []geometry.Point
		pen      geometry.Point
	)
	lineTo := func(p geometry.Point) {
		current = append(current, p)
		pen = p
	}

	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if len(current) > 0 {
				contours = append(contours, current)
			}
			current = nil
			lineTo(toPoint(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			lineTo(toPoint(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			traceQuad(lineTo, pen, toPoint(seg.Args[0]), toPoint(seg.Args[1]), 0)
		case sfnt.SegmentOpCubeTo:
			traceCube(lineTo, pen, toPoint(seg.Args[0]), toPoint(seg.Args[1]), toPoint(seg.Args[2]), 0)
		}
	}
	if len(current) > 0 {
		contours = append(contours, current)
	}
	return contours
}

func traceQuad(lineTo func(geometry.Point), from, ctrl, to geometry.Point, depth int) {
	if depth >= maxCurveSplits || withinThreshold(from, to, ctrl) {
		lineTo(to)
		return
	}
	a := midpoint(from, ctrl)
	b := midpoint(ctrl, to)
	mid := midpoint(a, b)
	traceQuad(lineTo, from, a, mid, depth+1)
	traceQuad(lineTo, mid, b, to, depth+1)
}

func traceCube(lineTo func(geometry.Point), from, c1, c2, to geometry.Point, depth int) {
	if depth >= maxCurveSplits || (withinThreshold(from, c2, c1) && withinThreshold(c1, to, c2)) {
		lineTo(to)
		return
	}
	a := midpoint(from, c1)
	b := midpoint(c1, c2)
	c := midpoint(c2, to)
	ab := midpoint(a, b)
	bc := midpoint(b, c)
	mid := midpoint(ab, bc)
	traceCube(lineTo, from, a, ab, mid, depth+1)
	traceCube(lineTo, mid, bc, c, to, depth+1)
}

// withinThreshold reports whether p lies within curveThreshold of the line
// through a and b.
func withinThreshold(a, b, p geometry.Point) bool {
	d := b.Sub(a)
	n := d.Cross(p.Sub(a))
	return n*n <= curveThreshold*curveThreshold*d.Dot(d)
}

// resample walks the closed polyline and emits a point every step units of
// arc length, starting at the first vertex.
func resample(ring []geometry.Point, step float64) []geometry.Point {
	if len(ring) == 0 || step <= 0 {
		return ring
	}

	out := []geometry.Point{ring[0]}
	carry := 0.0
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		segLen := a.Distance(b)
		if segLen == 0 {
			continue
		}
		t := step - carry
		for ; t < segLen; t += step {
			f := t / segLen
			out = append(out, geometry.Pt(a.X+(b.X-a.X)*f, a.Y+(b.Y-a.Y)*f))
		}
		carry = segLen - (t - step)
	}

	// drop the sample that lands back on the start
	if len(out) > 1 && out[len(out)-1].Distance(out[0]) < step/2 {
		out = out[:len(out)-1]
	}
	return out
}

func midpoint(a, b geometry.Point) geometry.Point {
	return geometry.Pt((a.X+b.X)/2, (a.Y+b.Y)/2)
}

func toPoint(p fixed.Point26_6) geometry.Point {
	return geometry.Pt(toFloat(p.X), toFloat(p.Y))
}

func toFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64.0
}

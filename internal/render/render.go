// Package render rasterizes scenes with golang.org/x/image/vector.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"math/rand"

	"golang.org/x/image/vector"

	"github.com/kyiku/hiddenword-back/internal/depth"
	"github.com/kyiku/hiddenword-back/internal/geometry"
	"github.com/kyiku/hiddenword-back/internal/palette"
	"github.com/kyiku/hiddenword-back/internal/placement"
	"github.com/kyiku/hiddenword-back/internal/scene"
)

// Debug overlay colors.
var (
	LetterColor = color.NRGBA{R: 232, G: 201, B: 23, A: 100}
	MarkerColor = color.NRGBA{G: 0x80, A: 0xff}
)

const circleSegments = 32

// Options controls how a scene is drawn.
type Options struct {
	Background color.Color
	Gradient   palette.Gradient
	Parallax   depth.Order
	MinSize    float64
	MaxSize    float64
	// Offset is the global pan. Each shape moves by Offset scaled with its
	// parallax modifier.
	Offset geometry.Point
	// Disco draws every shape in a fresh random color.
	Disco bool
	// Rand feeds disco colors. A nil Rand disables them.
	Rand *rand.Rand
	// Debug draws the letter polygons and boundary markers on top.
	Debug bool
}

// OptionsFor derives draw options from a generated scene. Disco colors are
// seeded with the seed the scene was actually generated with.
func OptionsFor(sc *scene.Scene) Options {
	s := sc.Settings
	opts := Options{
		Background: s.Background,
		Gradient:   s.Gradient,
		Parallax:   s.Parallax,
		MinSize:    s.MinSize,
		MaxSize:    s.MaxSize,
	}
	if s.ColorMode == palette.ModeDisco {
		opts.Disco = true
		opts.Rand = rand.New(rand.NewSource(sc.Seed))
	}
	return opts
}

// Scene draws sc onto a new canvas sized after its settings.
func Scene(sc *scene.Scene, opts Options) *image.NRGBA {
	w := int(math.Ceil(sc.Settings.Canvas.Width))
	h := int(math.Ceil(sc.Settings.Canvas.Height))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	r := NewRenderer(dst)
	r.Fill(opts.Background)
	r.Shapes(sc.Shapes, opts)
	if opts.Debug && sc.Region != nil {
		for _, p := range sc.Region.Polygons() {
			r.Polygon(p, LetterColor)
		}
		for _, m := range sc.Region.Markers() {
			r.Shape(m, MarkerColor, geometry.Point{})
		}
	}
	return dst
}

// EncodePNG draws sc and writes it as PNG.
func EncodePNG(w io.Writer, sc *scene.Scene, opts Options) error {
	if err := png.Encode(w, Scene(sc, opts)); err != nil {
		return fmt.Errorf("render: failed to encode png: %w", err)
	}
	return nil
}

// Renderer fills shapes onto a destination image.
type Renderer struct {
	dst  draw.Image
	rast *vector.Rasterizer
}

// NewRenderer creates a Renderer drawing on dst.
func NewRenderer(dst draw.Image) *Renderer {
	b := dst.Bounds()
	return &Renderer{dst: dst, rast: vector.NewRasterizer(b.Dx(), b.Dy())}
}

// Fill paints the whole destination. A nil color leaves it untouched.
func (r *Renderer) Fill(c color.Color) {
	if c == nil {
		return
	}
	draw.Draw(r.dst, r.dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Shapes draws accepted shapes in slice order with gradient, parallax and
// disco applied.
func (r *Renderer) Shapes(shapes []placement.Placed, opts Options) {
	for _, p := range shapes {
		c := p.Color
		if opts.Disco && opts.Rand != nil {
			c = palette.RandomColor(opts.Rand)
		}
		if c == nil {
			c = color.White
		}
		c = opts.Gradient.Apply(c, p.Size(), opts.MinSize, opts.MaxSize)

		m := depth.Modifier(opts.Parallax, p.Size(), opts.MinSize, opts.MaxSize)
		r.Shape(p.Shape, c, geometry.Pt(opts.Offset.X*m, opts.Offset.Y*m))
	}
}

// Shape fills one shape translated by off.
func (r *Renderer) Shape(s geometry.Shape, c color.Color, off geometry.Point) {
	switch s := s.(type) {
	case geometry.Circle:
		r.fill(circleRing(s), c, off)
	case geometry.Rectangle:
		r.fill(s.Polygon(), c, off)
	case geometry.Triangle:
		r.fill(s.Polygon(), c, off)
	}
}

// Polygon fills a ring with the nonzero rule.
func (r *Renderer) Polygon(p geometry.Polygon, c color.Color) {
	r.fill(p, c, geometry.Point{})
}

func (r *Renderer) fill(ring geometry.Polygon, c color.Color, off geometry.Point) {
	if len(ring) < 3 {
		return
	}
	b := r.dst.Bounds()
	r.rast.Reset(b.Dx(), b.Dy())
	r.rast.DrawOp = draw.Over

	r.rast.MoveTo(float32(ring[0].X+off.X), float32(ring[0].Y+off.Y))
	for _, p := range ring[1:] {
		r.rast.LineTo(float32(p.X+off.X), float32(p.Y+off.Y))
	}
	r.rast.ClosePath()
	r.rast.Draw(r.dst, b, image.NewUniform(c), image.Point{})
}

func circleRing(c geometry.Circle) geometry.Polygon {
	rad := c.Radius()
	if rad <= 0 {
		return nil
	}
	ring := make(geometry.Polygon, circleSegments)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / circleSegments
		ring[i] = geometry.Pt(c.Center.X+rad*math.Cos(a), c.Center.Y+rad*math.Sin(a))
	}
	return ring
}

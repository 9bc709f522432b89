package geometry

// Default ranges for parameters left unset by the caller.
const (
	DefaultMinDiameter = 1
	DefaultMaxDiameter = 30

	DefaultMinRectSide = 1
	DefaultMaxRectSide = 25

	DefaultMinTriangleSide = 2
	DefaultMaxTriangleSide = 33

	// EquilateralHeight is sqrt(3)/2, the height of a unit equilateral triangle.
	EquilateralHeight = 0.8660254037844386

	// UpsideDownBias is added on top of the triangle height to a defaulted
	// anchor y of an upside-down triangle.
	UpsideDownBias = 7
)

// TriangleMode selects how unset triangle vertices are generated.
type TriangleMode string

// Triangle modes.
const (
	TriangleEquilateral           TriangleMode = "equilateral"
	TriangleEquilateralUpsideDown TriangleMode = "equilateral-upsidedown"
	TriangleRandom                TriangleMode = "random"
)

// params collects constructor arguments. A nil pointer means "use the default",
// so an explicit zero is a real value.
type params struct {
	x, y     *float64
	diameter *float64
	width    *float64
	height   *float64
	maxSide  *float64
	vx, vy   [3]*float64
}

// Option configures a shape constructor.
type Option func(*params)

// WithPosition sets the circle center, the rectangle top-left corner or the
// triangle anchor vertex.
func WithPosition(x, y float64) Option {
	return func(p *params) {
		p.x, p.y = &x, &y
	}
}

// WithX sets only the horizontal position.
func WithX(x float64) Option {
	return func(p *params) { p.x = &x }
}

// WithY sets only the vertical position.
func WithY(y float64) Option {
	return func(p *params) { p.y = &y }
}

// WithDiameter sets the circle diameter.
func WithDiameter(d float64) Option {
	return func(p *params) { p.diameter = &d }
}

// WithWidth sets the rectangle width.
func WithWidth(w float64) Option {
	return func(p *params) { p.width = &w }
}

// WithHeight sets the rectangle height.
func WithHeight(h float64) Option {
	return func(p *params) { p.height = &h }
}

// WithSize sets both rectangle sides.
func WithSize(w, h float64) Option {
	return func(p *params) { p.width, p.height = &w, &h }
}

// WithMaxSide sets the triangle side length parameter.
func WithMaxSide(s float64) Option {
	return func(p *params) { p.maxSide = &s }
}

// WithVertex sets triangle vertex i (0, 1 or 2). Vertex 0 is the anchor.
// Out of range indices are ignored.
func WithVertex(i int, x, y float64) Option {
	return func(p *params) {
		if i < 0 || i > 2 {
			return
		}
		p.vx[i], p.vy[i] = &x, &y
	}
}

// WithVertexX sets only the x coordinate of triangle vertex i.
func WithVertexX(i int, x float64) Option {
	return func(p *params) {
		if i >= 0 && i <= 2 {
			p.vx[i] = &x
		}
	}
}

// WithVertexY sets only the y coordinate of triangle vertex i.
func WithVertexY(i int, y float64) Option {
	return func(p *params) {
		if i >= 0 && i <= 2 {
			p.vy[i] = &y
		}
	}
}

func applyOptions(opts []Option) *params {
	p := &params{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func valueOr(v *float64, def func() float64) float64 {
	if v != nil {
		return *v
	}
	return def()
}

// NewCircle builds a circle. Unset position is uniform over the canvas and
// an unset diameter is uniform in [1, 30).
func NewCircle(s *Sampler, opts ...Option) Circle {
	p := applyOptions(opts)
	return Circle{
		Center: Point{
			X: valueOr(p.x, s.X),
			Y: valueOr(p.y, s.Y),
		},
		Diameter: valueOr(p.diameter, func() float64 {
			return s.Uniform(DefaultMinDiameter, DefaultMaxDiameter)
		}),
	}
}

// NewRectangle builds a rectangle. One shared draw in [1, 25) is used for
// every unset side, so a fully defaulted rectangle is a square.
func NewRectangle(s *Sampler, opts ...Option) Rectangle {
	p := applyOptions(opts)
	side := s.Uniform(DefaultMinRectSide, DefaultMaxRectSide)
	shared := func() float64 { return side }
	return Rectangle{
		Width:  valueOr(p.width, shared),
		Height: valueOr(p.height, shared),
		Min: Point{
			X: valueOr(p.x, s.X),
			Y: valueOr(p.y, s.Y),
		},
	}
}

// NewTriangle builds a triangle in the given mode. Unknown modes fall back
// to equilateral. An unset side length is uniform in [2, 33).
//
// Vertex 0 (the anchor) defaults to a random canvas point. The other two
// vertices are derived from the anchor according to the mode unless
// supplied explicitly, coordinate by coordinate.
func NewTriangle(s *Sampler, mode TriangleMode, opts ...Option) Triangle {
	p := applyOptions(opts)
	if p.vx[0] == nil {
		p.vx[0] = p.x
	}
	if p.vy[0] == nil {
		p.vy[0] = p.y
	}

	side := valueOr(p.maxSide, func() float64 {
		return s.Uniform(DefaultMinTriangleSide, DefaultMaxTriangleSide)
	})
	height := EquilateralHeight * side

	anchor := Point{X: valueOr(p.vx[0], s.X), Y: valueOr(p.vy[0], s.Y)}
	t := Triangle{MaxSide: side, Mode: mode}

	var dx2, dy2, dx3, dy3 func() float64
	switch mode {
	case TriangleRandom:
		within := func() float64 { return s.Uniform(-side, side) }
		dx2, dy2, dx3, dy3 = within, within, within, within
	case TriangleEquilateralUpsideDown:
		dx2, dy2 = constant(side/2), constant(-height)
		dx3, dy3 = constant(-side/2), constant(-height)
	default:
		t.Mode = TriangleEquilateral
		dx2, dy2 = constant(side/2), constant(height)
		dx3, dy3 = constant(-side/2), constant(height)
	}

	t.Vertices[0] = anchor
	t.Vertices[1] = Point{
		X: valueOr(p.vx[1], offset(anchor.X, dx2)),
		Y: valueOr(p.vy[1], offset(anchor.Y, dy2)),
	}
	t.Vertices[2] = Point{
		X: valueOr(p.vx[2], offset(anchor.X, dx3)),
		Y: valueOr(p.vy[2], offset(anchor.Y, dy3)),
	}

	if t.Mode == TriangleEquilateralUpsideDown && p.vy[0] == nil {
		t.Vertices[0].Y += height + UpsideDownBias
	}
	return t
}

func constant(v float64) func() float64 {
	return func() float64 { return v }
}

func offset(base float64, delta func() float64) func() float64 {
	return func() float64 { return base + delta() }
}

package geometry

// Kind identifies a Shape variant.
type Kind int

// Shape kinds.
const (
	KindCircle Kind = iota
	KindRectangle
	KindTriangle
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindRectangle:
		return "rectangle"
	case KindTriangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// Shape is the closed set of packable primitives.
// Only Circle, Rectangle and Triangle implement it.
type Shape interface {
	Kind() Kind
	// Size is the depth-ordering metric, not a measured area.
	Size() float64
	Bounds() Rect
	sealed()
}

// Circle is defined by its center and diameter.
type Circle struct {
	Center   Point
	Diameter float64
}

// Kind implements Shape.
func (Circle) Kind() Kind { return KindCircle }

// Size returns the diameter.
func (c Circle) Size() float64 { return c.Diameter }

// Radius returns half the diameter.
func (c Circle) Radius() float64 { return c.Diameter / 2 }

// Bounds implements Shape.
func (c Circle) Bounds() Rect {
	r := c.Radius()
	return Rect{MinX: c.Center.X - r, MinY: c.Center.Y - r, MaxX: c.Center.X + r, MaxY: c.Center.Y + r}
}

func (Circle) sealed() {}

// Rectangle is defined by its top-left corner, width and height.
type Rectangle struct {
	Min    Point
	Width  float64
	Height float64
}

// Kind implements Shape.
func (Rectangle) Kind() Kind { return KindRectangle }

// Size returns the width.
func (r Rectangle) Size() float64 { return r.Width }

// Bounds implements Shape.
func (r Rectangle) Bounds() Rect {
	return Rect{MinX: r.Min.X, MinY: r.Min.Y, MaxX: r.Min.X + r.Width, MaxY: r.Min.Y + r.Height}
}

// Polygon returns the four corners, clockwise in screen coordinates.
func (r Rectangle) Polygon() Polygon {
	return Polygon{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Min.X + r.Width, Y: r.Min.Y},
		{X: r.Min.X + r.Width, Y: r.Min.Y + r.Height},
		{X: r.Min.X, Y: r.Min.Y + r.Height},
	}
}

func (Rectangle) sealed() {}

// Triangle is defined by three vertices and the side length it was built with.
type Triangle struct {
	Vertices [3]Point
	// MaxSide is the construction parameter reported by Size.
	MaxSide float64
	Mode    TriangleMode
}

// Kind implements Shape.
func (Triangle) Kind() Kind { return KindTriangle }

// Size returns the max side length used at construction.
func (t Triangle) Size() float64 { return t.MaxSide }

// Bounds implements Shape.
func (t Triangle) Bounds() Rect { return BoundsOf(t.Vertices[:]) }

// Polygon returns the vertex ring.
func (t Triangle) Polygon() Polygon {
	return Polygon{t.Vertices[0], t.Vertices[1], t.Vertices[2]}
}

func (Triangle) sealed() {}

// Package placement packs random shapes around an exclusion region by
// rejection sampling with a bounded retry budget.
package placement

import (
	"context"
	"image/color"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/kyiku/hiddenword-back/internal/collision"
	"github.com/kyiku/hiddenword-back/internal/geometry"
)

// DefaultMaxRetries is the number of candidates tried per requested shape.
const DefaultMaxRetries = 200

// checkEvery is the number of candidates between context checks.
const checkEvery = 256

// ShapeType names a candidate generator.
type ShapeType string

// Shape types. Any other name generates a default circle.
const (
	TypeCircle              ShapeType = "circle"
	TypeSquare              ShapeType = "square"
	TypeTriangleEquilateral ShapeType = "triangle_equilateral"
	TypeTriangleUpsideDown  ShapeType = "triangle_equilateral-upsidedown"
	TypeTriangleRandom      ShapeType = "triangle_random"
)

// AllTypes lists every known shape type.
var AllTypes = []ShapeType{TypeCircle, TypeSquare, TypeTriangleEquilateral, TypeTriangleUpsideDown, TypeTriangleRandom}

// ParseTypes splits a comma separated list of type names.
func ParseTypes(s string) []ShapeType {
	var types []ShapeType
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			types = append(types, ShapeType(name))
		}
	}
	return types
}

// Mode is the acceptance policy.
type Mode int

const (
	// Exclusion rejects candidates that overlap the word.
	Exclusion Mode = iota
	// Classification accepts candidates anywhere except on the boundary
	// markers and colors them by whether they overlap the word.
	Classification
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Classification {
		return "classification"
	}
	return "exclusion"
}

// Status is the terminal state of a run.
type Status string

// Run states.
const (
	StatusCompleted Status = "completed"
	StatusExhausted Status = "exhausted"
	// StatusCanceled means the context ended before the run finished.
	StatusCanceled Status = "canceled"
)

// Region is the exclusion region a run packs around.
type Region interface {
	Collides(s geometry.Shape) bool
	MarkerShapes() []geometry.Shape
}

// ColorPolicy picks the color of an accepted shape.
type ColorPolicy interface {
	Pick(rng *rand.Rand, inside bool) color.RGBA
}

// Config controls one run.
type Config struct {
	Count      int
	Types      []ShapeType
	MinSize    float64
	MaxSize    float64
	Mode       Mode
	Canvas     geometry.Canvas
	MaxRetries int
}

// Placed is an accepted shape. Color is nil until a policy assigns one.
type Placed struct {
	Shape geometry.Shape
	Color color.Color
	// Inside reports whether the shape overlaps the word. Always false in
	// Exclusion mode.
	Inside bool
}

// Size returns the size metric of the shape.
func (p Placed) Size() float64 { return p.Shape.Size() }

// Result summarizes a finished run.
type Result struct {
	Shapes    []Placed
	Requested int
	Placed    int
	Attempts  int
	Status    Status
}

// Complete reports whether every requested shape was placed.
func (r Result) Complete() bool { return r.Status == StatusCompleted }

// Engine owns the accepted shape list during a run.
// It is not safe for concurrent use.
type Engine struct {
	cfg     Config
	region  Region
	sampler *geometry.Sampler
	colors  ColorPolicy
	logger  *slog.Logger

	placed   []Placed
	shapes   []geometry.Shape
	markers  []geometry.Shape
	attempts int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source. Use a seeded source for reproducible runs.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.sampler = geometry.NewSampler(rng, e.cfg.Canvas)
		}
	}
}

// WithColors sets the color policy applied to accepted shapes.
func WithColors(p ColorPolicy) Option {
	return func(e *Engine) { e.colors = p }
}

// WithLogger sets the logger that receives the exhaustion notice.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine for cfg. A nil region excludes nothing.
func NewEngine(cfg Config, region Region, opts ...Option) *Engine {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Count < 0 {
		cfg.Count = 0
	}

	e := &Engine{
		cfg:     cfg,
		region:  region,
		sampler: geometry.NewSampler(rand.New(rand.NewSource(time.Now().UnixNano())), cfg.Canvas),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	if region != nil && cfg.Mode == Classification {
		e.markers = region.MarkerShapes()
	}
	return e
}

// TryPlace spends up to MaxRetries candidates on one shape. The first
// accepted candidate is appended and returned, including one accepted on
// the last attempt.
func (e *Engine) TryPlace() (Placed, bool) {
	p, ok, _ := e.tryPlace(context.Background())
	return p, ok
}

func (e *Engine) tryPlace(ctx context.Context) (Placed, bool, error) {
	for budget := e.cfg.MaxRetries; budget > 0; budget-- {
		if e.attempts%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Placed{}, false, err
			}
		}
		candidate := e.candidate()
		e.attempts++

		if !e.accepts(candidate) {
			continue
		}

		p := Placed{Shape: candidate}
		if e.cfg.Mode == Classification && e.region != nil {
			p.Inside = e.region.Collides(candidate)
		}
		if e.colors != nil {
			p.Color = e.colors.Pick(e.sampler.Rand(), p.Inside)
		}
		e.placed = append(e.placed, p)
		e.shapes = append(e.shapes, candidate)
		return p, true, nil
	}
	return Placed{}, false, nil
}

// Run places shapes until Count is reached or one shape exhausts its
// budget, in which case the partial list is kept and the run stops.
func (e *Engine) Run() Result {
	res, _ := e.RunContext(context.Background())
	return res
}

// RunContext is Run bounded by ctx. When ctx ends the run stops with
// StatusCanceled, the partial result and ctx.Err().
func (e *Engine) RunContext(ctx context.Context) (Result, error) {
	status := StatusCompleted
	var err error
	for len(e.placed) < e.cfg.Count {
		_, ok, cerr := e.tryPlace(ctx)
		if cerr != nil {
			status, err = StatusCanceled, cerr
			e.logger.Info("placement: canceled",
				"placed", len(e.placed),
				"attempts", e.attempts,
				"err", cerr)
			break
		}
		if !ok {
			status = StatusExhausted
			e.logger.Info("placement: no room left",
				"placed", len(e.placed),
				"requested", e.cfg.Count,
				"attempts", e.attempts)
			break
		}
	}

	shapes := make([]Placed, len(e.placed))
	copy(shapes, e.placed)
	return Result{
		Shapes:    shapes,
		Requested: e.cfg.Count,
		Placed:    len(shapes),
		Attempts:  e.attempts,
		Status:    status,
	}, err
}

// PlacedCount returns the number of accepted shapes.
func (e *Engine) PlacedCount() int {
	return len(e.placed)
}

// Attempts returns the number of candidates generated so far.
func (e *Engine) Attempts() int {
	return e.attempts
}

// Reset clears all accepted shapes and the attempt counter.
func (e *Engine) Reset() {
	e.placed = e.placed[:0]
	e.shapes = e.shapes[:0]
	e.attempts = 0
}

func (e *Engine) accepts(s geometry.Shape) bool {
	switch e.cfg.Mode {
	case Classification:
		return !collision.CollidesWithSet(s, e.shapes, e.markers)
	default:
		if collision.CollidesWithSet(s, e.shapes) {
			return false
		}
		return e.region == nil || !e.region.Collides(s)
	}
}

// candidate draws a shape type uniformly from the configured list, then a
// size in [MinSize, MaxSize) and a canvas position.
func (e *Engine) candidate() geometry.Shape {
	s := e.sampler
	if len(e.cfg.Types) == 0 {
		return geometry.NewCircle(s)
	}

	t := e.cfg.Types[s.Intn(len(e.cfg.Types))]
	size := s.Uniform(e.cfg.MinSize, e.cfg.MaxSize)

	switch t {
	case TypeCircle:
		return geometry.NewCircle(s, geometry.WithDiameter(size))
	case TypeSquare:
		return geometry.NewRectangle(s, geometry.WithSize(size, size))
	case TypeTriangleEquilateral:
		return geometry.NewTriangle(s, geometry.TriangleEquilateral, geometry.WithMaxSide(size))
	case TypeTriangleUpsideDown:
		return geometry.NewTriangle(s, geometry.TriangleEquilateralUpsideDown, geometry.WithMaxSide(size))
	case TypeTriangleRandom:
		return geometry.NewTriangle(s, geometry.TriangleRandom, geometry.WithMaxSide(size))
	default:
		return geometry.NewCircle(s)
	}
}

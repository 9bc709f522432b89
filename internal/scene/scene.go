// Package scene runs one hidden word composition: it builds the exclusion
// region, packs shapes around it and orders them for drawing.
package scene

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/kyiku/hiddenword-back/internal/depth"
	"github.com/kyiku/hiddenword-back/internal/geometry"
	"github.com/kyiku/hiddenword-back/internal/palette"
	"github.com/kyiku/hiddenword-back/internal/placement"
	"github.com/kyiku/hiddenword-back/internal/region"
)

// ErrInvalidSettings wraps every settings validation failure.
var ErrInvalidSettings = errors.New("scene: invalid settings")

// Settings drives one run.
type Settings struct {
	Word          string
	FontSize      float64
	TextOffsetX   float64
	TextOffsetY   float64
	LetterSpacing float64

	Canvas     geometry.Canvas
	ShapeCount int
	ShapeTypes []placement.ShapeType
	MinSize    float64
	MaxSize    float64
	MaxRetries int

	ColorMode  palette.Mode
	ShapeColor color.RGBA
	Background color.RGBA
	Gradient   palette.Gradient
	Parallax   depth.Order

	// Seed makes a run reproducible. Zero picks a time based seed.
	Seed int64
}

// DefaultSettings returns the defaults of the settings form.
func DefaultSettings() Settings {
	return Settings{
		Word:          "test",
		FontSize:      200,
		TextOffsetX:   50,
		TextOffsetY:   400,
		LetterSpacing: region.DefaultLetterSpacing,
		Canvas:        geometry.Canvas{Width: 1280, Height: 720},
		ShapeCount:    1000,
		ShapeTypes:    []placement.ShapeType{placement.TypeTriangleRandom},
		MinSize:       2,
		MaxSize:       30,
		MaxRetries:    placement.DefaultMaxRetries,
		ColorMode:     palette.ModeSingle,
		ShapeColor:    color.RGBA{R: 0xff, A: 0xff},
		Background:    color.RGBA{A: 0xff},
		Gradient:      palette.GradientNone,
		Parallax:      depth.Ascending,
	}
}

// PlacementMode returns Classification for the ishihara color mode and
// Exclusion otherwise.
func (s Settings) PlacementMode() placement.Mode {
	if s.ColorMode == palette.ModeIshihara {
		return placement.Classification
	}
	return placement.Exclusion
}

// Validate checks ranges.
func (s Settings) Validate() error {
	switch {
	case s.FontSize <= 0:
		return fmt.Errorf("%w: font size must be positive", ErrInvalidSettings)
	case s.Canvas.Width <= 0 || s.Canvas.Height <= 0:
		return fmt.Errorf("%w: canvas must be positive", ErrInvalidSettings)
	case s.ShapeCount < 0:
		return fmt.Errorf("%w: shape count must not be negative", ErrInvalidSettings)
	case s.MinSize < 0 || s.MaxSize < s.MinSize:
		return fmt.Errorf("%w: size range [%g, %g) is invalid", ErrInvalidSettings, s.MinSize, s.MaxSize)
	case s.MaxRetries < 0:
		return fmt.Errorf("%w: max retries must not be negative", ErrInvalidSettings)
	}
	return nil
}

// Scene is the output of one run.
type Scene struct {
	ID       uuid.UUID
	Settings Settings
	// Seed is the seed actually used.
	Seed    int64
	Region  *region.Region
	Shapes  []placement.Placed
	Result  placement.Result
	Created time.Time
}

// Generator builds scenes. It is safe for concurrent use when its glyph
// source is.
type Generator struct {
	glyphs region.GlyphSource
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger passed to every engine.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator creates a Generator sampling glyphs from src.
func NewGenerator(src region.GlyphSource, opts ...Option) *Generator {
	g := &Generator{
		glyphs: src,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs one composition. Exhausting the retry budget is not an
// error; the scene then holds the partial result. A context that ends during
// placement aborts the run with ctx.Err().
func (g *Generator) Generate(ctx context.Context, s Settings) (*Scene, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	r := region.Build(s.Word, region.Options{
		X:              s.TextOffsetX,
		Y:              s.TextOffsetY,
		FontSize:       s.FontSize,
		LetterSpacing:  s.LetterSpacing,
		MarkerEvery:    region.DefaultMarkerEvery,
		MarkerDiameter: region.DefaultMarkerDiameter,
	}, g.glyphs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engine := placement.NewEngine(placement.Config{
		Count:      s.ShapeCount,
		Types:      s.ShapeTypes,
		MinSize:    s.MinSize,
		MaxSize:    s.MaxSize,
		Mode:       s.PlacementMode(),
		Canvas:     s.Canvas,
		MaxRetries: s.MaxRetries,
	}, r,
		placement.WithRand(rng),
		placement.WithColors(palette.ForMode(s.ColorMode, s.ShapeColor)),
		placement.WithLogger(g.logger.With("word", s.Word)),
	)
	res, err := engine.RunContext(ctx)
	if err != nil {
		return nil, err
	}

	shapes := make([]placement.Placed, len(res.Shapes))
	copy(shapes, res.Shapes)
	depth.Sort(shapes, s.Parallax)

	return &Scene{
		ID:       uuid.New(),
		Settings: s,
		Seed:     seed,
		Region:   r,
		Shapes:   shapes,
		Result:   res,
		Created:  time.Now(),
	}, nil
}

package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kyiku/hiddenword-back/internal/depth"
	"github.com/kyiku/hiddenword-back/internal/geometry"
	"github.com/kyiku/hiddenword-back/internal/palette"
	"github.com/kyiku/hiddenword-back/internal/placement"
	"github.com/kyiku/hiddenword-back/internal/scene"
)

// Request limits.
const (
	MaxWordLength   = 64
	MaxShapeCount   = 20000
	MaxCanvasSide   = 4096
	MaxRetriesLimit = 5000
	MaxFontSize     = 1024
)

// SceneRequest overrides the server defaults for one scene. Nil fields keep
// the default, so an explicit zero is honored.
type SceneRequest struct {
	Word          *string  `json:"word"`
	FontSize      *float64 `json:"font_size"`
	TextOffsetX   *float64 `json:"text_offset_x"`
	TextOffsetY   *float64 `json:"text_offset_y"`
	LetterSpacing *float64 `json:"letter_spacing"`

	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	ShapeCount *int     `json:"shape_count"`
	ShapeTypes []string `json:"shape_types"`
	MinSize    *float64 `json:"min_size"`
	MaxSize    *float64 `json:"max_size"`
	MaxRetries *int     `json:"max_retries"`
	Seed       *int64   `json:"seed"`

	ColorMode  *string `json:"color_mode"`
	ShapeColor *string `json:"shape_color"`
	Background *string `json:"background"`
	Gradient   *string `json:"gradient"`
	Parallax   *string `json:"parallax"`

	// Letters includes the letter polygons in JSON output.
	Letters bool `json:"letters"`
	// Debug draws the letter polygons and markers onto PNG output.
	Debug   bool    `json:"debug"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Apply returns base with the request's fields applied.
func (r *SceneRequest) Apply(base scene.Settings) (scene.Settings, error) {
	s := base
	s.ShapeTypes = append([]placement.ShapeType(nil), base.ShapeTypes...)

	if r.Word != nil {
		s.Word = *r.Word
	}
	setFloat(&s.FontSize, r.FontSize)
	setFloat(&s.TextOffsetX, r.TextOffsetX)
	setFloat(&s.TextOffsetY, r.TextOffsetY)
	setFloat(&s.LetterSpacing, r.LetterSpacing)
	setFloat(&s.Canvas.Width, r.Width)
	setFloat(&s.Canvas.Height, r.Height)
	setFloat(&s.MinSize, r.MinSize)
	setFloat(&s.MaxSize, r.MaxSize)
	if r.ShapeCount != nil {
		s.ShapeCount = *r.ShapeCount
	}
	if r.MaxRetries != nil {
		s.MaxRetries = *r.MaxRetries
	}
	if r.Seed != nil {
		s.Seed = *r.Seed
	}
	if len(r.ShapeTypes) > 0 {
		s.ShapeTypes = placement.ParseTypes(strings.Join(r.ShapeTypes, ","))
	}

	var err error
	if r.ColorMode != nil {
		if s.ColorMode, err = palette.ParseMode(*r.ColorMode); err != nil {
			return s, err
		}
	}
	if r.ShapeColor != nil {
		if s.ShapeColor, err = palette.ParseColor(*r.ShapeColor); err != nil {
			return s, err
		}
	}
	if r.Background != nil {
		if s.Background, err = palette.ParseColor(*r.Background); err != nil {
			return s, err
		}
	}
	if r.Gradient != nil {
		if s.Gradient, err = palette.ParseGradient(*r.Gradient); err != nil {
			return s, err
		}
	}
	if r.Parallax != nil {
		if s.Parallax, err = depth.ParseOrder(*r.Parallax); err != nil {
			return s, err
		}
	}

	return s, checkLimits(s)
}

// Offset returns the requested parallax pan.
func (r *SceneRequest) Offset() geometry.Point {
	return geometry.Pt(r.OffsetX, r.OffsetY)
}

func checkLimits(s scene.Settings) error {
	switch {
	case len([]rune(s.Word)) > MaxWordLength:
		return fmt.Errorf("%w: word is longer than %d runes", scene.ErrInvalidSettings, MaxWordLength)
	case s.ShapeCount > MaxShapeCount:
		return fmt.Errorf("%w: shape count is above %d", scene.ErrInvalidSettings, MaxShapeCount)
	case s.Canvas.Width > MaxCanvasSide || s.Canvas.Height > MaxCanvasSide:
		return fmt.Errorf("%w: canvas side is above %d", scene.ErrInvalidSettings, MaxCanvasSide)
	case s.MaxRetries > MaxRetriesLimit:
		return fmt.Errorf("%w: max retries is above %d", scene.ErrInvalidSettings, MaxRetriesLimit)
	case s.FontSize > MaxFontSize:
		return fmt.Errorf("%w: font size is above %d", scene.ErrInvalidSettings, MaxFontSize)
	}
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func isParseError(err error) bool {
	return errors.Is(err, palette.ErrUnknownMode) ||
		errors.Is(err, palette.ErrInvalidColor) ||
		errors.Is(err, palette.ErrUnknownGradient) ||
		errors.Is(err, depth.ErrUnknownOrder)
}

package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Gradient selects how shape alpha depends on shape size.
type Gradient string

// Gradient modes, labelled as in the settings form.
const (
	GradientNone Gradient = "no"
	// GradientSmallTransparent fades small shapes: alpha runs 50..255 with size.
	GradientSmallTransparent Gradient = "yes"
	// GradientBigTransparent fades big shapes: alpha runs 255..50 with size.
	GradientBigTransparent Gradient = "yes, reversed"
)

const (
	minAlpha = 50
	maxAlpha = 255
)

// ErrUnknownGradient is returned by ParseGradient for unrecognized names.
var ErrUnknownGradient = errors.New("palette: unknown gradient mode")

// ParseGradient accepts the setting labels.
func ParseGradient(s string) (Gradient, error) {
	switch g := Gradient(strings.ToLower(strings.TrimSpace(s))); g {
	case "", GradientNone:
		return GradientNone, nil
	case GradientSmallTransparent, GradientBigTransparent:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGradient, s)
	}
}

// Alpha returns the alpha for a shape of size within [lo, hi]. Sizes
// outside the range are clamped. GradientNone returns ok == false.
func (g Gradient) Alpha(size, lo, hi float64) (alpha uint8, ok bool) {
	var from, to float64
	switch g {
	case GradientSmallTransparent:
		from, to = minAlpha, maxAlpha
	case GradientBigTransparent:
		from, to = maxAlpha, minAlpha
	default:
		return 0, false
	}
	if hi <= lo {
		return uint8(from), true
	}
	t := math.Max(0, math.Min(1, (size-lo)/(hi-lo)))
	return uint8(math.Round(from + t*(to-from))), true
}

// Apply returns c with the gradient alpha for size, as a non-premultiplied
// color. Without a gradient the color is returned unchanged.
func (g Gradient) Apply(c color.Color, size, lo, hi float64) color.Color {
	a, ok := g.Alpha(size, lo, hi)
	if !ok {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = a
	return n
}

// Package palette assigns colors to accepted shapes.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"strconv"
	"strings"
)

// Mode selects how shapes are colored.
type Mode string

// Color modes.
const (
	ModeSingle   Mode = "single"
	ModeRandom   Mode = "random"
	ModeDisco    Mode = "disco"
	ModeIshihara Mode = "ishihara"
)

// ErrUnknownMode is returned by ParseMode for unrecognized names.
var ErrUnknownMode = errors.New("palette: unknown color mode")

// ErrInvalidColor is returned by ParseColor for malformed input.
var ErrInvalidColor = errors.New("palette: invalid color")

// Ishihara plate colors. Shapes overlapping the word are drawn from
// IshiharaInside, all others from IshiharaOutside.
var (
	IshiharaInside = []color.RGBA{
		{R: 0xba, G: 0x9f, B: 0x58, A: 0xff},
		{R: 0xb2, G: 0x84, B: 0x49, A: 0xff},
		{R: 0xa4, G: 0x6c, B: 0x33, A: 0xff},
	}
	IshiharaOutside = []color.RGBA{
		{R: 0x9f, G: 0xae, B: 0x59, A: 0xff},
		{R: 0x59, G: 0x73, B: 0x2a, A: 0xff},
		{R: 0x4a, G: 0x5a, B: 0x1b, A: 0xff},
		{R: 0x41, G: 0x7b, B: 0x6f, A: 0xff},
		{R: 0x78, G: 0xa1, B: 0x75, A: 0xff},
	}
)

// Policy picks the color of one accepted shape. inside reports whether the
// shape overlaps the word.
type Policy interface {
	Pick(rng *rand.Rand, inside bool) color.RGBA
}

// Single colors every shape the same.
type Single struct {
	Color color.RGBA
}

// Pick implements Policy.
func (s Single) Pick(_ *rand.Rand, _ bool) color.RGBA { return s.Color }

// Random draws an opaque uniform RGB color per shape.
type Random struct{}

// Pick implements Policy.
func (Random) Pick(rng *rand.Rand, _ bool) color.RGBA { return RandomColor(rng) }

// Split draws from one palette for shapes inside the word and another for
// shapes outside it.
type Split struct {
	Inside  []color.RGBA
	Outside []color.RGBA
}

// Ishihara returns the red/green plate split.
func Ishihara() Split {
	return Split{Inside: IshiharaInside, Outside: IshiharaOutside}
}

// Pick implements Policy. An empty palette yields opaque black.
func (s Split) Pick(rng *rand.Rand, inside bool) color.RGBA {
	p := s.Outside
	if inside {
		p = s.Inside
	}
	if len(p) == 0 {
		return color.RGBA{A: 0xff}
	}
	return p[rng.Intn(len(p))]
}

// ForMode returns the policy for mode. Disco shapes get a random base color
// and are recolored by the renderer.
func ForMode(mode Mode, single color.RGBA) Policy {
	switch mode {
	case ModeRandom, ModeDisco:
		return Random{}
	case ModeIshihara:
		return Ishihara()
	default:
		return Single{Color: single}
	}
}

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSingle, ModeRandom, ModeDisco, ModeIshihara:
		return m, nil
	case "":
		return ModeSingle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// RandomColor returns an opaque color with uniform channels.
func RandomColor(rng *rand.Rand) color.RGBA {
	return color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 0xff}
}

var named = map[string]color.RGBA{
	"black": {A: 0xff},
	"white": {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"red":   {R: 0xff, A: 0xff},
	"green": {G: 0x80, A: 0xff},
	"blue":  {B: 0xff, A: 0xff},
}

// ParseColor accepts #RGB, #RRGGBB, #RRGGBBAA and a few CSS names.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[s]; ok {
		return c, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

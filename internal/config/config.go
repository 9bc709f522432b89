// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"time"

	"github.com/kyiku/hiddenword-back/internal/depth"
	"github.com/kyiku/hiddenword-back/internal/geometry"
	"github.com/kyiku/hiddenword-back/internal/glyph"
	"github.com/kyiku/hiddenword-back/internal/palette"
	"github.com/kyiku/hiddenword-back/internal/placement"
	"github.com/kyiku/hiddenword-back/internal/queue"
	"github.com/kyiku/hiddenword-back/internal/scene"
	"github.com/kyiku/hiddenword-back/internal/store"
)

// ErrInvalidValue is returned when an environment variable cannot be parsed.
var ErrInvalidValue = errors.New("invalid config value")

// Config holds the application configuration.
type Config struct {
	Port          string
	AllowedOrigin string
	FontPath      string
	SampleFactor  float64
	RateLimit     int
	RateWindow    time.Duration
	StoreSize     int
	StoreTTL      time.Duration
	MaxConcurrent int
	Timeout       time.Duration

	Word          string
	FontSize      float64
	TextOffsetX   float64
	TextOffsetY   float64
	LetterSpacing float64

	CanvasWidth  float64
	CanvasHeight float64
	ShapeCount   int
	ShapeMinSize float64
	ShapeMaxSize float64
	ShapeTypes   []placement.ShapeType
	MaxRetries   int
	Seed         int64

	ColorMode       palette.Mode
	ShapeColor      color.RGBA
	BackgroundColor color.RGBA
	GradientMode    palette.Gradient
	ParallaxMode    depth.Order
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		FontPath:      getEnv("HW_FONT_PATH", ""),
		SampleFactor:  p.float("HW_SAMPLE_FACTOR", glyph.DefaultSampleFactor),
		RateLimit:     p.int("HW_RATE_LIMIT", 30),
		RateWindow:    p.duration("HW_RATE_WINDOW", time.Minute),
		StoreSize:     p.int("HW_STORE_SIZE", store.DefaultCapacity),
		StoreTTL:      p.duration("HW_STORE_TTL", store.DefaultExpiry),
		MaxConcurrent: p.int("HW_MAX_CONCURRENT", queue.DefaultSlots),
		Timeout:       p.duration("HW_GENERATE_TIMEOUT", 30*time.Second),

		Word:          getEnv("HW_WORD", "test"),
		FontSize:      p.float("HW_FONT_SIZE", 200),
		TextOffsetX:   p.float("HW_TEXT_OFFSET_X", 50),
		TextOffsetY:   p.float("HW_TEXT_OFFSET_Y", 400),
		LetterSpacing: p.float("HW_LETTER_SPACING", 17),

		CanvasWidth:  p.float("HW_CANVAS_WIDTH", 1280),
		CanvasHeight: p.float("HW_CANVAS_HEIGHT", 720),
		ShapeCount:   p.int("HW_SHAPE_COUNT", 1000),
		ShapeMinSize: p.float("HW_SHAPE_MIN_SIZE", 2),
		ShapeMaxSize: p.float("HW_SHAPE_MAX_SIZE", 30),
		ShapeTypes:   placement.ParseTypes(getEnv("HW_SHAPE_TYPES", string(placement.TypeTriangleRandom))),
		MaxRetries:   p.int("HW_MAX_RETRIES", placement.DefaultMaxRetries),
		Seed:         p.int64("HW_SEED", 0),

		ColorMode:       p.mode("HW_COLOR_MODE", "single"),
		ShapeColor:      p.color("HW_SHAPE_COLOR", "#FF0000"),
		BackgroundColor: p.color("HW_BACKGROUND_COLOR", "#000000"),
		GradientMode:    p.gradient("HW_GRADIENT_MODE", "no"),
		ParallaxMode:    p.order("HW_PARALLAX_MODE", string(depth.Ascending)),
	}

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate port is a number
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.New("invalid port: must be a number")
	}
	if c.SampleFactor <= 0 {
		return errors.New("invalid sample factor: must be positive")
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return errors.New("invalid rate limit: must be positive")
	}
	if c.MaxConcurrent <= 0 {
		return errors.New("invalid max concurrent: must be positive")
	}
	if c.Timeout < 0 {
		return errors.New("invalid generate timeout: must not be negative")
	}
	if c.StoreSize <= 0 || c.StoreTTL < 0 {
		return errors.New("invalid scene store: size must be positive and ttl not negative")
	}

	return c.Settings().Validate()
}

// Settings returns the scene settings described by the configuration.
func (c *Config) Settings() scene.Settings {
	types := make([]placement.ShapeType, len(c.ShapeTypes))
	copy(types, c.ShapeTypes)

	return scene.Settings{
		Word:          c.Word,
		FontSize:      c.FontSize,
		TextOffsetX:   c.TextOffsetX,
		TextOffsetY:   c.TextOffsetY,
		LetterSpacing: c.LetterSpacing,
		Canvas:        geometry.Canvas{Width: c.CanvasWidth, Height: c.CanvasHeight},
		ShapeCount:    c.ShapeCount,
		ShapeTypes:    types,
		MinSize:       c.ShapeMinSize,
		MaxSize:       c.ShapeMaxSize,
		MaxRetries:    c.MaxRetries,
		ColorMode:     c.ColorMode,
		ShapeColor:    c.ShapeColor,
		Background:    c.BackgroundColor,
		Gradient:      c.GradientMode,
		Parallax:      c.ParallaxMode,
		Seed:          c.Seed,
	}
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser reads typed environment variables and keeps the first error.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, key, value, err)
	}
}

func (p *parser) float(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) int64(key string, def int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) color(key, def string) color.RGBA {
	raw := getEnv(key, def)
	c, err := palette.ParseColor(raw)
	if err != nil {
		p.fail(key, raw, err)
	}
	return c
}

func (p *parser) mode(key, def string) palette.Mode {
	raw := getEnv(key, def)
	m, err := palette.ParseMode(raw)
	if err != nil {
		p.fail(key, raw, err)
	}
	return m
}

func (p *parser) gradient(key, def string) palette.Gradient {
	raw := getEnv(key, def)
	g, err := palette.ParseGradient(raw)
	if err != nil {
		p.fail(key, raw, err)
	}
	return g
}

func (p *parser) order(key, def string) depth.Order {
	raw := getEnv(key, def)
	o, err := depth.ParseOrder(raw)
	if err != nil {
		p.fail(key, raw, err)
	}
	return o
}

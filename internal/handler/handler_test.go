package handler

import (
	"context"

	"github.com/kyiku/hiddenword-back/internal/geometry"
	"github.com/kyiku/hiddenword-back/internal/placement"
	"github.com/kyiku/hiddenword-back/internal/scene"
	"github.com/kyiku/hiddenword-back/internal/testutil"
)

// testDefaults returns small settings that complete quickly with box glyphs.
func testDefaults() scene.Settings {
	s := scene.DefaultSettings()
	s.Word = "hi"
	s.FontSize = 50
	s.TextOffsetX, s.TextOffsetY = 20, 120
	s.Canvas = geometry.Canvas{Width: 300, Height: 200}
	s.ShapeCount = 40
	s.ShapeTypes = []placement.ShapeType{placement.TypeCircle}
	s.MinSize, s.MaxSize = 2, 10
	s.Seed = 1
	return s
}

func testGenerator() SceneGenerator {
	return scene.NewGenerator(testutil.NewBoxGlyphs())
}

// generatorFunc adapts a function to SceneGenerator.
type generatorFunc func(ctx context.Context, s scene.Settings) (*scene.Scene, error)

func (f generatorFunc) Generate(ctx context.Context, s scene.Settings) (*scene.Scene, error) {
	return f(ctx, s)
}

func ptr[T any](v T) *T { return &v }

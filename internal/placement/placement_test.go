package placement

import (
	"bytes"
	"context"
	"image/color"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/hiddenword-back/internal/collision"
	"github.com/kyiku/hiddenword-back/internal/geometry"
	"github.com/kyiku/hiddenword-back/internal/palette"
	"github.com/kyiku/hiddenword-back/internal/region"
	"github.com/kyiku/hiddenword-back/internal/testutil"
)

// stubRegion rejects the first rejectFirst candidates, or all of them when
// rejectFirst is negative.
type stubRegion struct {
	rejectFirst int
	calls       int
}

func (r *stubRegion) Collides(geometry.Shape) bool {
	r.calls++
	return r.rejectFirst < 0 || r.calls <= r.rejectFirst
}

func (r *stubRegion) MarkerShapes() []geometry.Shape { return nil }

func seeded(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func wordRegion() *region.Region {
	return region.Build("ab", region.DefaultOptions(), testutil.NewBoxGlyphs())
}

func defaultConfig(count int) Config {
	return Config{
		Count:   count,
		Types:   AllTypes,
		MinSize: 2,
		MaxSize: 30,
		Canvas:  geometry.Canvas{Width: 1280, Height: 720},
	}
}

func TestEngine_Run(t *testing.T) {
	t.Run("正常系: 0個要求", func(t *testing.T) {
		e := NewEngine(defaultConfig(0), wordRegion(), seeded(1))

		res := e.Run()

		assert.Empty(t, res.Shapes)
		assert.Equal(t, 0, res.Attempts)
		assert.Equal(t, StatusCompleted, res.Status)
		assert.True(t, res.Complete())
	})

	t.Run("正常系: 全て配置", func(t *testing.T) {
		e := NewEngine(defaultConfig(200), wordRegion(), seeded(2))

		res := e.Run()

		assert.Equal(t, StatusCompleted, res.Status)
		assert.Equal(t, 200, res.Placed)
		assert.Equal(t, 200, res.Requested)
		assert.Len(t, res.Shapes, 200)
		assert.Equal(t, 200, e.PlacedCount())
		assert.GreaterOrEqual(t, res.Attempts, 200)
	})

	t.Run("異常系: 領域が全面を覆う", func(t *testing.T) {
		e := NewEngine(defaultConfig(5), &stubRegion{rejectFirst: -1}, seeded(3))

		res := e.Run()

		assert.Equal(t, StatusExhausted, res.Status)
		assert.False(t, res.Complete())
		assert.Equal(t, 0, res.Placed)
		assert.Equal(t, DefaultMaxRetries, res.Attempts)
	})
}

func TestEngine_NonOverlap(t *testing.T) {
	cfg := defaultConfig(400)
	cfg.Canvas = geometry.Canvas{Width: 500, Height: 500}
	e := NewEngine(cfg, wordRegion(), seeded(4))

	res := e.Run()
	require.NotEmpty(t, res.Shapes)

	for i := range res.Shapes {
		for j := i + 1; j < len(res.Shapes); j++ {
			require.False(t, collision.Collides(res.Shapes[i].Shape, res.Shapes[j].Shape),
				"shapes %d and %d overlap", i, j)
		}
	}
}

func TestEngine_ExclusionRespected(t *testing.T) {
	r := wordRegion()
	e := NewEngine(defaultConfig(500), r, seeded(5))

	res := e.Run()
	require.NotEmpty(t, res.Shapes)

	for _, p := range res.Shapes {
		assert.False(t, r.Collides(p.Shape))
		assert.False(t, p.Inside)
	}
}

func TestEngine_Classification(t *testing.T) {
	r := wordRegion()
	cfg := defaultConfig(1000)
	cfg.Mode = Classification
	e := NewEngine(cfg, r, seeded(6), WithColors(palette.Ishihara()))

	res := e.Run()
	require.NotEmpty(t, res.Shapes)

	inside := 0
	for _, p := range res.Shapes {
		c, ok := p.Color.(color.RGBA)
		require.True(t, ok)

		assert.Equal(t, r.Collides(p.Shape), p.Inside)
		if p.Inside {
			inside++
			assert.Contains(t, palette.IshiharaInside, c)
		} else {
			assert.Contains(t, palette.IshiharaOutside, c)
		}
		assert.False(t, collision.CollidesWithSet(p.Shape, r.MarkerShapes()))
	}
	assert.Greater(t, inside, 0)
}

func TestEngine_TerminationBound(t *testing.T) {
	cfg := defaultConfig(100)
	cfg.Canvas = geometry.Canvas{Width: 10, Height: 10}
	cfg.MaxRetries = 10
	e := NewEngine(cfg, nil, seeded(7))

	res := e.Run()

	assert.Equal(t, StatusExhausted, res.Status)
	assert.Less(t, res.Placed, 100)
	assert.LessOrEqual(t, res.Attempts, cfg.Count*cfg.MaxRetries)
	assert.GreaterOrEqual(t, res.Attempts, cfg.MaxRetries)
}

func TestEngine_RunContext(t *testing.T) {
	t.Run("正常系: 終わらないコンテキストはRunと同じ", func(t *testing.T) {
		a := NewEngine(defaultConfig(30), wordRegion(), seeded(4)).Run()
		b, err := NewEngine(defaultConfig(30), wordRegion(), seeded(4)).RunContext(context.Background())

		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("異常系: キャンセル済み", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e := NewEngine(defaultConfig(30), wordRegion(), seeded(5))

		res, err := e.RunContext(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StatusCanceled, res.Status)
		assert.Equal(t, 0, res.Attempts)
		assert.Empty(t, res.Shapes)
	})

	t.Run("異常系: 期限切れで配置中に止まる", func(t *testing.T) {
		cfg := defaultConfig(10)
		cfg.MaxRetries = 50_000_000
		e := NewEngine(cfg, &stubRegion{rejectFirst: -1}, seeded(6))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		res, err := e.RunContext(ctx)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, StatusCanceled, res.Status)
		assert.Less(t, time.Since(start), time.Second)
		assert.Less(t, res.Attempts, cfg.MaxRetries)
	})
}

func TestEngine_TryPlace(t *testing.T) {
	t.Run("正常系: 最後の試行で受理", func(t *testing.T) {
		r := &stubRegion{rejectFirst: DefaultMaxRetries - 1}
		e := NewEngine(defaultConfig(1), r, seeded(8))

		p, ok := e.TryPlace()

		require.True(t, ok)
		assert.NotNil(t, p.Shape)
		assert.Equal(t, DefaultMaxRetries, e.Attempts())
		assert.Equal(t, 1, e.PlacedCount())
	})

	t.Run("異常系: 予算を使い切る", func(t *testing.T) {
		r := &stubRegion{rejectFirst: DefaultMaxRetries}
		e := NewEngine(defaultConfig(1), r, seeded(9))

		_, ok := e.TryPlace()

		assert.False(t, ok)
		assert.Equal(t, DefaultMaxRetries, e.Attempts())
		assert.Equal(t, 0, e.PlacedCount())
	})

	t.Run("正常系: 色ポリシーなし", func(t *testing.T) {
		e := NewEngine(defaultConfig(1), nil, seeded(10))

		p, ok := e.TryPlace()

		require.True(t, ok)
		assert.Nil(t, p.Color)
	})
}

func TestEngine_Reproducible(t *testing.T) {
	run := func() Result {
		return NewEngine(defaultConfig(50), wordRegion(), seeded(11), WithColors(palette.Random{})).Run()
	}
	assert.Equal(t, run(), run())
}

func TestEngine_Reset(t *testing.T) {
	e := NewEngine(defaultConfig(10), nil, seeded(12))
	e.Run()
	require.Equal(t, 10, e.PlacedCount())

	e.Reset()

	assert.Equal(t, 0, e.PlacedCount())
	assert.Equal(t, 0, e.Attempts())
	assert.Equal(t, 10, e.Run().Placed)
}

func TestEngine_Candidate(t *testing.T) {
	tests := []struct {
		name  string
		types []ShapeType
		kind  geometry.Kind
	}{
		{name: "正常系: 円", types: []ShapeType{TypeCircle}, kind: geometry.KindCircle},
		{name: "正常系: 正方形", types: []ShapeType{TypeSquare}, kind: geometry.KindRectangle},
		{name: "正常系: 正三角形", types: []ShapeType{TypeTriangleEquilateral}, kind: geometry.KindTriangle},
		{name: "正常系: 逆三角形", types: []ShapeType{TypeTriangleUpsideDown}, kind: geometry.KindTriangle},
		{name: "正常系: ランダム三角形", types: []ShapeType{TypeTriangleRandom}, kind: geometry.KindTriangle},
		{name: "異常系: 未知の種類は円", types: []ShapeType{"hexagon"}, kind: geometry.KindCircle},
		{name: "異常系: 種類なしは円", types: nil, kind: geometry.KindCircle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig(1)
			cfg.Types = tt.types
			e := NewEngine(cfg, nil, seeded(13))

			for i := 0; i < 20; i++ {
				assert.Equal(t, tt.kind, e.candidate().Kind())
			}
		})
	}

	t.Run("正常系: 正方形の辺は範囲内", func(t *testing.T) {
		cfg := defaultConfig(1)
		cfg.Types = []ShapeType{TypeSquare}
		e := NewEngine(cfg, nil, seeded(14))

		for i := 0; i < 50; i++ {
			r, ok := e.candidate().(geometry.Rectangle)
			require.True(t, ok)
			assert.Equal(t, r.Width, r.Height)
			assert.GreaterOrEqual(t, r.Width, cfg.MinSize)
			assert.Less(t, r.Width, cfg.MaxSize)
		}
	})
}

func TestEngine_LogsExhaustion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	e := NewEngine(defaultConfig(3), &stubRegion{rejectFirst: -1}, seeded(15), WithLogger(logger))

	e.Run()

	assert.Contains(t, buf.String(), "no room left")
	assert.Contains(t, buf.String(), "attempts=200")
}

func TestParseTypes(t *testing.T) {
	assert.Equal(t, []ShapeType{TypeCircle, TypeSquare}, ParseTypes("circle, square"))
	assert.Equal(t, []ShapeType{TypeTriangleRandom}, ParseTypes("triangle_random,,"))
	assert.Empty(t, ParseTypes(""))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "exclusion", Exclusion.String())
	assert.Equal(t, "classification", Classification.String())
}

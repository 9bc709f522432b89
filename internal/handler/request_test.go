package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/hiddenword-back/internal/depth"
	"github.com/kyiku/hiddenword-back/internal/palette"
	"github.com/kyiku/hiddenword-back/internal/placement"
	"github.com/kyiku/hiddenword-back/internal/scene"
)

func TestSceneRequest_Apply(t *testing.T) {
	base := testDefaults()

	t.Run("正常系: 空のリクエストはデフォルトのまま", func(t *testing.T) {
		got, err := (&SceneRequest{}).Apply(base)
		require.NoError(t, err)
		assert.Equal(t, base, got)
	})

	t.Run("正常系: 各フィールドを上書き", func(t *testing.T) {
		req := &SceneRequest{
			Word:       ptr("wow"),
			FontSize:   ptr(80.0),
			Width:      ptr(640.0),
			ShapeTypes: []string{"square", " triangle_random "},
			Seed:       ptr(int64(9)),
			ColorMode:  ptr("ishihara"),
			ShapeColor: ptr("#00ff00"),
			Background: ptr("white"),
			Gradient:   ptr("yes"),
			Parallax:   ptr("small shapes in front"),
		}

		got, err := req.Apply(base)
		require.NoError(t, err)

		assert.Equal(t, "wow", got.Word)
		assert.Equal(t, 80.0, got.FontSize)
		assert.Equal(t, 640.0, got.Canvas.Width)
		assert.Equal(t, base.Canvas.Height, got.Canvas.Height)
		assert.Equal(t, []placement.ShapeType{placement.TypeSquare, placement.TypeTriangleRandom}, got.ShapeTypes)
		assert.Equal(t, int64(9), got.Seed)
		assert.Equal(t, palette.ModeIshihara, got.ColorMode)
		assert.Equal(t, uint8(0xff), got.ShapeColor.G)
		assert.Equal(t, uint8(0xff), got.Background.R)
		assert.Equal(t, palette.GradientSmallTransparent, got.Gradient)
		assert.Equal(t, depth.Descending, got.Parallax)
	})

	t.Run("境界値: 明示的な0は採用される", func(t *testing.T) {
		got, err := (&SceneRequest{ShapeCount: ptr(0), LetterSpacing: ptr(0.0), MinSize: ptr(0.0)}).Apply(base)
		require.NoError(t, err)
		assert.Equal(t, 0, got.ShapeCount)
		assert.Equal(t, 0.0, got.LetterSpacing)
		assert.Equal(t, 0.0, got.MinSize)
	})

	t.Run("正常系: 元の設定を変更しない", func(t *testing.T) {
		got, err := (&SceneRequest{}).Apply(base)
		require.NoError(t, err)
		got.ShapeTypes[0] = placement.TypeSquare
		assert.Equal(t, placement.TypeCircle, base.ShapeTypes[0])
	})
}

func TestSceneRequest_ApplyErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     SceneRequest
		wantErr error
	}{
		{name: "異常系: 不正な色", req: SceneRequest{ShapeColor: ptr("red-ish")}, wantErr: palette.ErrInvalidColor},
		{name: "異常系: 不正な背景色", req: SceneRequest{Background: ptr("#12")}, wantErr: palette.ErrInvalidColor},
		{name: "異常系: 不正なカラーモード", req: SceneRequest{ColorMode: ptr("rainbow")}, wantErr: palette.ErrUnknownMode},
		{name: "異常系: 不正なグラデーション", req: SceneRequest{Gradient: ptr("maybe")}, wantErr: palette.ErrUnknownGradient},
		{name: "異常系: 不正なパララックス", req: SceneRequest{Parallax: ptr("sideways")}, wantErr: depth.ErrUnknownOrder},
		{name: "境界値: 長すぎる単語", req: SceneRequest{Word: ptr(strings.Repeat("a", MaxWordLength+1))}, wantErr: scene.ErrInvalidSettings},
		{name: "境界値: 図形が多すぎる", req: SceneRequest{ShapeCount: ptr(MaxShapeCount + 1)}, wantErr: scene.ErrInvalidSettings},
		{name: "境界値: キャンバスが大きすぎる", req: SceneRequest{Height: ptr(float64(MaxCanvasSide + 1))}, wantErr: scene.ErrInvalidSettings},
		{name: "異常系: リトライ回数が多すぎる", req: SceneRequest{MaxRetries: ptr(MaxRetriesLimit + 1)}, wantErr: scene.ErrInvalidSettings},
		{name: "異常系: フォントサイズが大きすぎる", req: SceneRequest{FontSize: ptr(float64(MaxFontSize) + 0.5)}, wantErr: scene.ErrInvalidSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Apply(testDefaults())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("境界値: 上限ちょうどは許可", func(t *testing.T) {
		req := SceneRequest{
			Word:       ptr(strings.Repeat("a", MaxWordLength)),
			ShapeCount: ptr(MaxShapeCount),
			MaxRetries: ptr(MaxRetriesLimit),
			FontSize:   ptr(float64(MaxFontSize)),
		}
		_, err := req.Apply(testDefaults())
		assert.NoError(t, err)
	})
}

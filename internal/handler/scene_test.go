package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/hiddenword-back/internal/queue"
	"github.com/kyiku/hiddenword-back/internal/scene"
	"github.com/kyiku/hiddenword-back/internal/store"
	"github.com/kyiku/hiddenword-back/internal/testutil"
)

func TestSceneHandler_Generate(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		wantStatusCode int
		wantCode       string
		wantShapes     int
	}{
		{
			name:           "正常系: デフォルト設定",
			body:           map[string]interface{}{},
			wantStatusCode: http.StatusOK,
			wantShapes:     40,
		},
		{
			name:           "正常系: 単語と個数を上書き",
			body:           map[string]interface{}{"word": "ok", "shape_count": 5, "seed": 3},
			wantStatusCode: http.StatusOK,
			wantShapes:     5,
		},
		{
			name:           "境界値: 0個",
			body:           map[string]interface{}{"shape_count": 0},
			wantStatusCode: http.StatusOK,
			wantShapes:     0,
		},
		{
			name:           "異常系: フォントサイズ0",
			body:           map[string]interface{}{"font_size": 0},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantCode:       "INVALID_SETTINGS",
		},
		{
			name:           "異常系: 不正な色",
			body:           map[string]interface{}{"shape_color": "nope"},
			wantStatusCode: http.StatusBadRequest,
			wantCode:       testutil.ErrCodeInvalidRequest,
		},
		{
			name:           "異常系: 図形が多すぎる",
			body:           map[string]interface{}{"shape_count": MaxShapeCount + 1},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantCode:       "INVALID_SETTINGS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/scene", tt.body)

			h := NewSceneHandler(testGenerator(), testDefaults())
			err := h.Generate(tc.Context)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatusCode, tc.GetResponseCode())

			resp := tc.GetResponseBody()
			if tt.wantCode != "" {
				assert.Equal(t, true, resp["error"])
				assert.Equal(t, tt.wantCode, resp["code"])
				return
			}

			assert.Equal(t, false, resp["error"])
			doc, ok := resp["scene"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "completed", doc["status"])
			assert.Len(t, doc["shapes"], tt.wantShapes)
			assert.NotContains(t, doc, "letters")
		})
	}
}

func TestSceneHandler_GenerateLetters(t *testing.T) {
	tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/scene", map[string]interface{}{"letters": true, "shape_count": 0})

	h := NewSceneHandler(testGenerator(), testDefaults())
	require.NoError(t, h.Generate(tc.Context))

	doc := tc.GetResponseBody()["scene"].(map[string]interface{})
	assert.Len(t, doc["letters"], 2)
}

func TestSceneHandler_GenerateMalformed(t *testing.T) {
	tc := testutil.NewTestContext(http.MethodPost, "/api/scene", bytes.NewReader([]byte("{")))
	tc.Request.Header.Set("Content-Type", "application/json")

	h := NewSceneHandler(testGenerator(), testDefaults())
	require.NoError(t, h.Generate(tc.Context))

	assert.Equal(t, http.StatusBadRequest, tc.GetResponseCode())
	assert.Equal(t, testutil.ErrCodeInvalidRequest, tc.GetResponseBody()["code"])
}

func TestSceneHandler_GeneratorErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatusCode int
		wantCode       string
	}{
		{
			name:           "異常系: 内部エラー",
			err:            errors.New("boom"),
			wantStatusCode: http.StatusInternalServerError,
			wantCode:       testutil.ErrCodeInternalError,
		},
		{
			name:           "異常系: キャンセル",
			err:            context.Canceled,
			wantStatusCode: http.StatusServiceUnavailable,
			wantCode:       testutil.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := generatorFunc(func(context.Context, scene.Settings) (*scene.Scene, error) {
				return nil, tt.err
			})
			tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/scene", map[string]interface{}{})

			h := NewSceneHandler(gen, testDefaults())
			require.NoError(t, h.Generate(tc.Context))

			assert.Equal(t, tt.wantStatusCode, tc.GetResponseCode())
			assert.Equal(t, tt.wantCode, tc.GetResponseBody()["code"])
			assert.NotContains(t, tc.Recorder.Body.String(), "boom")
		})
	}
}

func TestSceneHandler_PNG(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "正常系: PNG生成", body: map[string]interface{}{}},
		{name: "正常系: デバッグ表示とパン", body: map[string]interface{}{"debug": true, "offset_x": 10, "color_mode": "disco"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/scene/png", tt.body)

			h := NewSceneHandler(testGenerator(), testDefaults())
			require.NoError(t, h.PNG(tc.Context))

			assert.Equal(t, http.StatusOK, tc.GetResponseCode())
			assert.Equal(t, "image/png", tc.Recorder.Header().Get("Content-Type"))
			assert.NotEmpty(t, tc.Recorder.Header().Get(HeaderSceneID))
			assert.Equal(t, "completed", tc.Recorder.Header().Get(HeaderSceneStatus))

			img := testutil.DecodePNG(tc.Recorder.Body.Bytes())
			require.NotNil(t, img)
			assert.Equal(t, 300, img.Bounds().Dx())
			assert.Equal(t, 200, img.Bounds().Dy())
		})
	}
}

func TestSceneHandler_PNGInvalid(t *testing.T) {
	tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/scene/png", map[string]interface{}{"width": 0})

	h := NewSceneHandler(testGenerator(), testDefaults())
	require.NoError(t, h.PNG(tc.Context))

	assert.Equal(t, http.StatusUnprocessableEntity, tc.GetResponseCode())
	assert.Empty(t, tc.Recorder.Header().Get(HeaderSceneID))
}

func TestSceneHandler_Stored(t *testing.T) {
	scenes := store.NewSceneStore(10, 0)
	h := NewSceneHandler(testGenerator(), testDefaults())
	h.SetStore(scenes)

	tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/scene", map[string]interface{}{"shape_count": 3})
	require.NoError(t, h.Generate(tc.Context))
	require.Equal(t, http.StatusOK, tc.GetResponseCode())
	id := tc.GetResponseBody()["scene"].(map[string]interface{})["id"].(string)
	require.Equal(t, 1, scenes.Count())

	tests := []struct {
		name           string
		id             string
		png            bool
		query          string
		wantStatusCode int
		wantCode       string
	}{
		{name: "正常系: JSONで取得", id: id, wantStatusCode: http.StatusOK},
		{name: "正常系: 文字ポリゴン付き", id: id, query: "?letters=true", wantStatusCode: http.StatusOK},
		{name: "正常系: PNGで取得", id: id, png: true, query: "?debug=1", wantStatusCode: http.StatusOK},
		{name: "異常系: 存在しないID", id: "00000000-0000-0000-0000-000000000001", wantStatusCode: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "異常系: 不正なID", id: "not-a-uuid", png: true, wantStatusCode: http.StatusBadRequest, wantCode: testutil.ErrCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(http.MethodGet, "/api/scene/"+tt.id+tt.query, nil)
			tc.Context.SetParamNames("id")
			tc.Context.SetParamValues(tt.id)

			var err error
			if tt.png {
				err = h.GetPNG(tc.Context)
			} else {
				err = h.Get(tc.Context)
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatusCode, tc.GetResponseCode())

			switch {
			case tt.wantCode != "":
				assert.Equal(t, tt.wantCode, tc.GetResponseBody()["code"])
			case tt.png:
				assert.Equal(t, id, tc.Recorder.Header().Get(HeaderSceneID))
				assert.NotNil(t, testutil.DecodePNG(tc.Recorder.Body.Bytes()))
			default:
				doc := tc.GetResponseBody()["scene"].(map[string]interface{})
				assert.Equal(t, id, doc["id"])
				assert.Len(t, doc["shapes"], 3)
				if tt.query != "" {
					assert.Len(t, doc["letters"], 2)
				}
			}
		})
	}
}

func TestSceneHandler_GetWithoutStore(t *testing.T) {
	h := NewSceneHandler(testGenerator(), testDefaults())

	tc := testutil.NewTestContext(http.MethodGet, "/api/scene/x", nil)
	tc.Context.SetParamNames("id")
	tc.Context.SetParamValues("3f1c8a0e-0000-4000-8000-000000000000")

	require.NoError(t, h.Get(tc.Context))
	assert.Equal(t, http.StatusNotFound, tc.GetResponseCode())
}

func TestSceneHandler_QueueCanceled(t *testing.T) {
	q := queue.NewWaitingQueue(1)
	release, err := q.Acquire(context.Background(), "busy", nil)
	require.NoError(t, err)
	defer release()

	h := NewSceneHandler(testGenerator(), testDefaults())
	h.SetQueue(q)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/scene", map[string]interface{}{})
	tc.Context.SetRequest(tc.Request.WithContext(ctx))

	require.NoError(t, h.Generate(tc.Context))
	assert.Equal(t, http.StatusServiceUnavailable, tc.GetResponseCode())
	assert.Equal(t, 0, q.Len())
}

func TestSceneHandler_QueueFree(t *testing.T) {
	q := queue.NewWaitingQueue(1)
	h := NewSceneHandler(testGenerator(), testDefaults())
	h.SetQueue(q)

	tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/scene", map[string]interface{}{"shape_count": 2})
	require.NoError(t, h.Generate(tc.Context))

	assert.Equal(t, http.StatusOK, tc.GetResponseCode())
	assert.Equal(t, 0, q.Running(), "生成後はスロットが解放されるべき")
}

func TestSceneHandler_Timeout(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, _ scene.Settings) (*scene.Scene, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	h := NewSceneHandler(gen, testDefaults())
	h.SetTimeout(10 * time.Millisecond)

	tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/scene/png", map[string]interface{}{})
	require.NoError(t, h.PNG(tc.Context))

	assert.Equal(t, http.StatusServiceUnavailable, tc.GetResponseCode())
}

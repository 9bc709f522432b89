// Package handler provides HTTP handlers for the API.
package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kyiku/hiddenword-back/internal/geometry"
	"github.com/kyiku/hiddenword-back/internal/render"
	"github.com/kyiku/hiddenword-back/internal/response"
	"github.com/kyiku/hiddenword-back/internal/scene"
)

// Headers set on PNG responses.
const (
	HeaderSceneID     = "X-Scene-Id"
	HeaderSceneStatus = "X-Scene-Status"
)

// SceneStoreInterface defines the interface for keeping generated scenes.
type SceneStoreInterface interface {
	Put(sc *scene.Scene)
	Get(id uuid.UUID) (*scene.Scene, bool)
}

// SceneHandler handles scene generation requests.
type SceneHandler struct {
	runner
	store SceneStoreInterface
}

// NewSceneHandler creates a new SceneHandler. Request bodies override
// defaults field by field.
func NewSceneHandler(generator SceneGenerator, defaults scene.Settings) *SceneHandler {
	return &SceneHandler{runner: newRunner(generator, defaults)}
}

// SetStore keeps every generated scene in store so Get and GetPNG can serve
// it again.
func (h *SceneHandler) SetStore(store SceneStoreInterface) {
	h.store = store
}

// Generate builds a scene and returns it as JSON.
func (h *SceneHandler) Generate(c echo.Context) error {
	req, sc, err := h.build(c)
	if err != nil {
		return h.fail(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"scene": sc.Document(scene.DocumentOptions{Letters: req.Letters}),
	})
}

// PNG builds a scene and returns it rendered as PNG.
func (h *SceneHandler) PNG(c echo.Context) error {
	req, sc, err := h.build(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.writePNG(c, sc, req.Debug, req.Offset())
}

// Get returns a stored scene as JSON. The letters query parameter includes
// the letter polygons.
func (h *SceneHandler) Get(c echo.Context) error {
	sc, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"scene": sc.Document(scene.DocumentOptions{Letters: queryBool(c, "letters")}),
	})
}

// GetPNG renders a stored scene. The debug query parameter draws the overlay.
func (h *SceneHandler) GetPNG(c echo.Context) error {
	sc, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.writePNG(c, sc, queryBool(c, "debug"), geometry.Point{})
}

func (h *SceneHandler) build(c echo.Context) (*SceneRequest, *scene.Scene, error) {
	var req SceneRequest
	if err := c.Bind(&req); err != nil {
		return nil, nil, errBadRequest
	}
	sc, err := h.generate(c.Request().Context(), &req, nil)
	if err != nil {
		return nil, nil, err
	}
	if h.store != nil {
		h.store.Put(sc)
	}
	return &req, sc, nil
}

// lookup finds the stored scene named by the id path parameter.
func (h *SceneHandler) lookup(c echo.Context) (*scene.Scene, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, errInvalidID
	}
	if h.store == nil {
		return nil, errNotFound
	}
	sc, ok := h.store.Get(id)
	if !ok {
		return nil, errNotFound
	}
	return sc, nil
}

func (h *SceneHandler) writePNG(c echo.Context, sc *scene.Scene, debug bool, offset geometry.Point) error {
	opts := render.OptionsFor(sc)
	opts.Debug = debug
	opts.Offset = offset

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, sc, opts); err != nil {
		h.logger.Error("scene: render failed", "id", sc.ID, "err", err)
		return response.ErrorWithCode(c, http.StatusInternalServerError, response.CodeInternalError, "画像の生成に失敗しました")
	}

	c.Response().Header().Set(HeaderSceneID, sc.ID.String())
	c.Response().Header().Set(HeaderSceneStatus, string(sc.Result.Status))
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (h *SceneHandler) fail(c echo.Context, err error) error {
	status, code, msg := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("scene: generation failed", "err", err)
	}
	return response.ErrorWithCode(c, status, code, msg)
}

func queryBool(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	return err == nil && v
}

var (
	errBadRequest = errors.New("handler: malformed request body")
	errInvalidID  = errors.New("handler: malformed scene id")
	errNotFound   = errors.New("handler: scene not found")
)

// classify maps an error to a status code, an error code and a message.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, scene.ErrInvalidSettings):
		return http.StatusUnprocessableEntity, response.CodeInvalidSettings, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, response.CodeInternalError, "生成が中断されました"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, response.CodeInvalidRequest, "リクエストの形式が不正です"
	case errors.Is(err, errInvalidID):
		return http.StatusBadRequest, response.CodeInvalidRequest, "IDの形式が不正です"
	case errors.Is(err, errNotFound):
		return http.StatusNotFound, response.CodeNotFound, "シーンが見つかりません"
	case isParseError(err):
		return http.StatusBadRequest, response.CodeInvalidRequest, err.Error()
	default:
		return http.StatusInternalServerError, response.CodeInternalError, "サーバーエラーが発生しました"
	}
}

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kyiku/hiddenword-back/internal/response"
	"github.com/kyiku/hiddenword-back/internal/scene"
)

// Stream limits.
const (
	requestTimeout = 10 * time.Second
	writeTimeout   = 5 * time.Second
	maxRequestSize = 64 << 10
)

// Stream message types.
const (
	MessageScene = "scene"
	MessageShape = "shape"
	MessageDone  = "done"
	MessageError = "error"
	MessagePing  = "ping"
	MessagePong  = "pong"
)

// WebSocketConn defines the interface for WebSocket connections.
type WebSocketConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v interface{}) error
	Close() error
}

// SceneMessage opens a stream.
type SceneMessage struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Word       string            `json:"word"`
	Seed       int64             `json:"seed"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Background string            `json:"background"`
	Requested  int               `json:"requested"`
	Letters    []scene.LetterDoc `json:"letters,omitempty"`
}

// ShapeMessage carries one accepted shape in draw order.
type ShapeMessage struct {
	Type  string              `json:"type"`
	Index int                 `json:"index"`
	Shape scene.ShapeDocument `json:"shape"`
}

// DoneMessage closes a stream.
type DoneMessage struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	Placed   int    `json:"placed"`
	Attempts int    `json:"attempts"`
}

// ErrorMessage reports a failed request on an open connection.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StreamHandler upgrades to WebSocket, reads one SceneRequest and streams the
// resulting scene shape by shape. Ping messages sent before the request are
// answered with a pong. With a queue set, clients that have to wait receive
// queue messages first.
type StreamHandler struct {
	runner
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(generator SceneGenerator, defaults scene.Settings) *StreamHandler {
	return &StreamHandler{
		runner: newRunner(generator, defaults),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// SetAllowedOrigins restricts upgrades to the given origins. Requests without
// an Origin header and localhost origins are always accepted.
func (h *StreamHandler) SetAllowedOrigins(origins ...string) {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || strings.HasPrefix(origin, "http://localhost:") || allowed[origin]
	}
}

// Connect handles the WebSocket upgrade and connection.
func (h *StreamHandler) Connect(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Warn("stream: upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	conn.SetReadLimit(maxRequestSize)
	_ = conn.SetReadDeadline(time.Now().Add(requestTimeout))

	req, err := h.readRequest(conn)
	if err != nil {
		h.writeError(conn, response.CodeInvalidRequest, "リクエストの形式が不正です")
		return nil
	}

	ctx := c.Request().Context()
	sc, err := h.generate(ctx, req, conn)
	if err != nil {
		_, code, msg := classify(err)
		h.writeError(conn, code, msg)
		return nil
	}

	if err := Stream(ctx, &deadlineConn{conn}, sc, scene.DocumentOptions{Letters: req.Letters}); err != nil {
		h.logger.Warn("stream: aborted", "id", sc.ID, "err", err)
		return nil
	}

	h.logger.Info("stream: sent", "id", sc.ID, "placed", sc.Result.Placed)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	return nil
}

// readRequest answers pings until the client sends its SceneRequest.
func (h *StreamHandler) readRequest(conn *websocket.Conn) (*SceneRequest, error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if IsPingMessage(data) {
			if err := conn.WriteJSON(map[string]interface{}{"type": MessagePong}); err != nil {
				return nil, err
			}
			continue
		}

		var req SceneRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}
}

// IsPingMessage checks if a message is a ping message without processing it.
func IsPingMessage(message []byte) bool {
	var msg map[string]interface{}
	if err := json.Unmarshal(message, &msg); err != nil {
		return false
	}

	msgType, ok := msg["type"].(string)
	return ok && msgType == MessagePing
}

func (h *StreamHandler) writeError(conn WebSocketConn, code, msg string) {
	if err := conn.WriteJSON(ErrorMessage{Type: MessageError, Code: code, Message: msg}); err != nil {
		h.logger.Warn("stream: failed to write error", "err", err)
	}
}

// Stream writes sc to conn as one SceneMessage, a ShapeMessage per shape in
// draw order and a closing DoneMessage. It stops at the first failed write
// or when ctx is done. The connection is left open.
func Stream(ctx context.Context, conn WebSocketConn, sc *scene.Scene, opts scene.DocumentOptions) error {
	doc := sc.Document(opts)

	header := SceneMessage{
		Type:       MessageScene,
		ID:         doc.ID,
		Word:       doc.Word,
		Seed:       doc.Seed,
		Width:      doc.Width,
		Height:     doc.Height,
		Background: doc.Background,
		Requested:  doc.Requested,
		Letters:    doc.Letters,
	}
	if err := conn.WriteJSON(header); err != nil {
		return fmt.Errorf("stream: failed to write header: %w", err)
	}

	for i, shape := range doc.Shapes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.WriteJSON(ShapeMessage{Type: MessageShape, Index: i, Shape: shape}); err != nil {
			return fmt.Errorf("stream: failed to write shape %d: %w", i, err)
		}
	}

	done := DoneMessage{Type: MessageDone, Status: doc.Status, Placed: doc.Placed, Attempts: doc.Attempts}
	if err := conn.WriteJSON(done); err != nil {
		return fmt.Errorf("stream: failed to write done: %w", err)
	}
	return nil
}

// deadlineConn sets a write deadline before every JSON write.
type deadlineConn struct {
	*websocket.Conn
}

func (c *deadlineConn) WriteJSON(v interface{}) error {
	if err := c.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.Conn.WriteJSON(v)
}

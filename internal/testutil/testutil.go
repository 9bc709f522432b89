// Package testutil provides common test utilities, mocks, and helpers for testing.
package testutil

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/hiddenword-back/internal/geometry"
)

// Error code constants for testing
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// MockWebSocketConn is a mock implementation of WebSocket connection for testing.
type MockWebSocketConn struct {
	mu          sync.Mutex
	Messages    [][]byte
	LastMessage []byte
	IsClosed    bool
	WriteErr    error
	CloseErr    error
	// FailAfter makes every write after the first FailAfter writes return WriteErr.
	FailAfter int
}

// NewMockWebSocketConn creates a new MockWebSocketConn.
func NewMockWebSocketConn() *MockWebSocketConn {
	return &MockWebSocketConn{
		Messages: make([][]byte, 0),
	}
}

// WriteMessage mocks writing a message to WebSocket.
func (m *MockWebSocketConn) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil && len(m.Messages) >= m.FailAfter {
		return m.WriteErr
	}

	m.Messages = append(m.Messages, data)
	m.LastMessage = data
	return nil
}

// WriteJSON mocks writing JSON to WebSocket.
func (m *MockWebSocketConn) WriteJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.WriteMessage(1, data)
}

// Close mocks closing the WebSocket connection.
func (m *MockWebSocketConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsClosed {
		return nil
	}
	m.IsClosed = true
	return m.CloseErr
}

// GetMessages returns all messages sent through this connection.
func (m *MockWebSocketConn) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Messages
}

// GetMessagesAsMaps decodes every message as a JSON object.
func (m *MockWebSocketConn) GetMessagesAsMaps() []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]map[string]interface{}, len(m.Messages))
	for i, msg := range m.Messages {
		var v map[string]interface{}
		_ = json.Unmarshal(msg, &v)
		result[i] = v
	}
	return result
}

// GetLastMessageAsMap returns the last message as a map.
func (m *MockWebSocketConn) GetLastMessageAsMap() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LastMessage == nil {
		return nil
	}

	var result map[string]interface{}
	_ = json.Unmarshal(m.LastMessage, &result)
	return result
}

// BoxGlyphs is a GlyphSource stub that draws every non-space rune as an
// axis-aligned box sitting on the baseline. The box is Ratio*size wide and
// size tall, and its outline is sampled every Step units.
type BoxGlyphs struct {
	Ratio float64
	Step  float64
}

// NewBoxGlyphs returns a BoxGlyphs with half-width boxes sampled every unit.
func NewBoxGlyphs() BoxGlyphs {
	return BoxGlyphs{Ratio: 0.5, Step: 1}
}

// Contour returns the clockwise outline of the box for r.
// Spaces have no outline.
func (b BoxGlyphs) Contour(r rune, x, y, size float64) []geometry.Point {
	if r == ' ' || size <= 0 {
		return nil
	}
	w, h := b.Ratio*size, size
	step := b.Step
	if step <= 0 {
		step = 1
	}

	corners := []geometry.Point{
		geometry.Pt(x, y-h), geometry.Pt(x+w, y-h), geometry.Pt(x+w, y), geometry.Pt(x, y),
	}
	var pts []geometry.Point
	for i := range corners {
		a, c := corners[i], corners[(i+1)%len(corners)]
		n := int(a.Distance(c) / step)
		if n < 1 {
			n = 1
		}
		for k := 0; k < n; k++ {
			t := float64(k) / float64(n)
			pts = append(pts, geometry.Pt(a.X+(c.X-a.X)*t, a.Y+(c.Y-a.Y)*t))
		}
	}
	return pts
}

// Width returns the box width for r. Spaces are a third of the size wide.
func (b BoxGlyphs) Width(r rune, size float64) float64 {
	if r == ' ' {
		return size / 3
	}
	return b.Ratio * size
}

// TestContext wraps Echo context for testing.
type TestContext struct {
	Echo     *echo.Echo
	Context  echo.Context
	Request  *http.Request
	Recorder *httptest.ResponseRecorder
}

// NewTestContext creates a new test context for Echo handlers.
func NewTestContext(method, path string, body io.Reader) *TestContext {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return &TestContext{
		Echo:     e,
		Context:  c,
		Request:  req,
		Recorder: rec,
	}
}

// NewTestContextWithJSON creates a test context with JSON body.
func NewTestContextWithJSON(method, path string, body interface{}) *TestContext {
	jsonBody, _ := json.Marshal(body)
	tc := NewTestContext(method, path, bytes.NewReader(jsonBody))
	tc.Request.Header.Set("Content-Type", "application/json")
	return tc
}

// GetResponseBody returns the response body as a map.
func (tc *TestContext) GetResponseBody() map[string]interface{} {
	var result map[string]interface{}
	_ = json.Unmarshal(tc.Recorder.Body.Bytes(), &result)
	return result
}

// GetResponseCode returns the HTTP response status code.
func (tc *TestContext) GetResponseCode() int {
	return tc.Recorder.Code
}

// DecodePNG decodes a PNG body, returning nil when it is not a valid image.
func DecodePNG(data []byte) image.Image {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

// Package stubserver provides a scripted assistant backend for development
// and tests. It replays a configurable event script over the same two wire
// surfaces the real backend exposes: newline-delimited JSON over HTTP and
// JSON frames over WebSocket. It performs no generation of its own.
package stubserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/caseflow/assistant/internal/domain"
	"github.com/caseflow/assistant/internal/transport"
)

// ScriptFunc produces the event sequence the stub streams back for a request.
type ScriptFunc func(req transport.Request) []domain.StreamEvent

// DefaultScript echoes the user message back as two text fragments and
// completes the turn, minting a conversation id when the request carries none.
func DefaultScript(req transport.Request) []domain.StreamEvent {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = "conv_" + uuid.New().String()[:8]
	}
	return []domain.StreamEvent{
		{Type: domain.EventText, Content: "You said: "},
		{Type: domain.EventText, Content: req.Message},
		{Type: domain.EventDone, ConversationID: conversationID},
	}
}

// Server is the stub assistant backend.
type Server struct {
	echo     *echo.Echo
	script   ScriptFunc
	delay    time.Duration
	upgrader websocket.Upgrader
}

// New creates a stub server. A nil script uses DefaultScript; delay is the
// pause inserted between streamed events.
func New(script ScriptFunc, delay time.Duration) *Server {
	if script == nil {
		script = DefaultScript
	}

	s := &Server{
		script: script,
		delay:  delay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Dev tool, accept everything.
				return true
			},
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.POST("/v1/chat/stream", s.handleStream)
	e.GET("/ws", s.handleWebSocket)

	s.echo = e
	return s
}

// Handler exposes the underlying HTTP handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start runs the server on the given address, blocking until shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// handleStream answers a turn with newline-delimited JSON events.
func (s *Server) handleStream(c echo.Context) error {
	var req transport.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	resp.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for i, evt := range s.script(req) {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.delay):
			}
		}
		if ctx.Err() != nil {
			// Client went away mid-stream.
			return nil
		}

		data, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := resp.Write(append(data, '\n')); err != nil {
			return nil
		}
		resp.Flush()
	}
	return nil
}

// handleWebSocket answers a turn with one JSON event per frame. The client
// sends a single request frame after connecting.
func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	var req transport.Request
	if err := conn.ReadJSON(&req); err != nil {
		return nil
	}
	if req.Message == "" {
		return nil
	}

	for i, evt := range s.script(req) {
		if i > 0 && s.delay > 0 {
			time.Sleep(s.delay)
		}
		if err := conn.WriteJSON(evt); err != nil {
			// Client went away mid-stream.
			return nil
		}
	}

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return nil
}

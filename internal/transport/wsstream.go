package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/caseflow/assistant/internal/domain"
)

// WSClient streams assistant responses over a WebSocket connection: one dial
// per turn, a single request frame out, then one JSON event per frame back
// until a terminal event.
type WSClient struct {
	url    string
	dialer *websocket.Dialer
}

// NewWSClient creates a client for the given ws:// or wss:// URL.
func NewWSClient(url string) *WSClient {
	return &WSClient{
		url:    url,
		dialer: websocket.DefaultDialer,
	}
}

// Stream dials the backend, writes the request frame, and delivers decoded
// event frames to the handler. Cancellation closes the connection, which
// unblocks the pending read.
func (c *WSClient) Stream(ctx context.Context, req Request, handle Handler) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				// Connection closed before a terminal event arrived.
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}

		var evt domain.StreamEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			// Malformed frames are skipped, not fatal.
			continue
		}

		if err := handle(evt); err != nil {
			return err
		}
		if evt.Type.Terminal() {
			return nil
		}
	}
}

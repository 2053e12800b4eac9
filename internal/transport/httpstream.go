package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caseflow/assistant/internal/domain"
)

// streamPath is the backend endpoint that answers a turn with a
// newline-delimited JSON event stream.
const streamPath = "/v1/chat/stream"

// Client streams assistant responses over HTTP. Each response body is a
// sequence of newline-delimited JSON events; malformed lines are skipped.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given backend base URL. The timeout
// bounds the whole exchange including the streamed body; pass 0 for no limit.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Stream sends the request and delivers decoded events to the handler until
// a terminal event, end of stream, handler error, or context cancellation.
func (c *Client) Stream(ctx context.Context, req Request, handle Handler) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+streamPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("assistant returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return readEvents(ctx, resp.Body, handle)
}

// readEvents decodes newline-delimited JSON events from r and feeds them to
// the handler. Delivery stops after the first terminal event.
func readEvents(ctx context.Context, r io.Reader, handle Handler) error {
	reader := bufio.NewReader(r)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read stream: %w", readErr)
		}

		line = strings.TrimSpace(line)
		if line != "" {
			var evt domain.StreamEvent
			if err := json.Unmarshal([]byte(line), &evt); err == nil {
				if err := handle(evt); err != nil {
					return err
				}
				if evt.Type.Terminal() {
					return nil
				}
			}
			// Malformed records are skipped, not fatal.
		}

		if readErr == io.EOF {
			return nil
		}
	}
}

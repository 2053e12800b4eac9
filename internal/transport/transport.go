// Package transport delivers assistant response streams to the chat engine.
// A transport sends one request and invokes the handler for every decoded
// frame until a terminal event arrives, the context is canceled, or the
// handler returns an error.
package transport

import (
	"context"

	"github.com/caseflow/assistant/internal/domain"
)

// Request is the outbound payload for one conversational turn.
type Request struct {
	Message        string         `json:"message"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
}

// Handler is called for each event decoded from the stream. Returning a
// non-nil error stops delivery; the transport returns that error.
type Handler func(evt domain.StreamEvent) error

// Transport opens one request/response cycle against the assistant backend.
type Transport interface {
	Stream(ctx context.Context, req Request, handle Handler) error
}

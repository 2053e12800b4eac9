package domain

import "encoding/json"

// StreamEventType discriminates the frames of an assistant response stream.
type StreamEventType string

const (
	EventText       StreamEventType = "text"
	EventToolStart  StreamEventType = "tool_start"
	EventToolResult StreamEventType = "tool_result"
	EventDone       StreamEventType = "done"
	EventError      StreamEventType = "error"
)

// Terminal reports whether the event type ends the stream.
func (t StreamEventType) Terminal() bool {
	return t == EventDone || t == EventError
}

// StreamEvent is a single frame from the assistant backend. Which fields are
// populated depends on Type; unrecognized types are skipped by consumers so
// the backend can add new frame kinds without breaking older clients.
type StreamEvent struct {
	Type StreamEventType `json:"type"`

	// text
	Content string `json:"content,omitempty"`

	// tool_start and tool_result share the invocation id.
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name,omitempty"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	IsError    bool            `json:"is_error,omitempty"`
	DurationMs int64           `json:"duration_ms,omitempty"`

	// done
	ConversationID string `json:"conversation_id,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

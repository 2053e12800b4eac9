// Package domain defines the conversation entities and the streamed event
// vocabulary shared by the chat engine and its transports.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies which party produced a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one conversational turn. A user message is created complete; an
// assistant message starts empty with Streaming=true and is finalized exactly
// once, when its stream reaches a terminal state.
type Message struct {
	MessageID   string       `json:"message_id"`
	Role        MessageRole  `json:"role"`
	Content     string       `json:"content"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
	Streaming   bool         `json:"streaming"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ToolCall records a tool invocation the assistant requested during a turn.
// The ID is assigned by the backend and unique within the turn.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResult records the outcome of a tool invocation, referencing the
// originating ToolCall by id.
type ToolResult struct {
	ToolCallID string          `json:"tool_call_id"`
	Content    json.RawMessage `json:"content,omitempty"`
	IsError    bool            `json:"is_error,omitempty"`
}

// ToolStatus is the lifecycle state of a live tool execution.
type ToolStatus string

const (
	ToolStatusPending   ToolStatus = "pending"
	ToolStatusRunning   ToolStatus = "running"
	ToolStatusCompleted ToolStatus = "completed"
	ToolStatusError     ToolStatus = "error"
)

// ToolExecution is the live projection of one tool invocation while a turn
// streams. It is turn-scoped: once the turn finalizes its terminal state is
// already folded into the owning Message's ToolCalls/ToolResults and the
// execution itself is discarded.
type ToolExecution struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Status     ToolStatus      `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	IsError    bool            `json:"is_error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	EndedAt    *time.Time      `json:"ended_at,omitempty"`
	DurationMs int64           `json:"duration_ms,omitempty"`
}

// NewUserMessage creates a completed user message.
func NewUserMessage(content string) *Message {
	return &Message{
		MessageID: NewMessageID(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage creates an empty assistant placeholder that is still
// streaming.
func NewAssistantMessage() *Message {
	return &Message{
		MessageID: NewMessageID(),
		Role:      RoleAssistant,
		Streaming: true,
		CreatedAt: time.Now(),
	}
}

// NewMessageID generates a short message identifier.
func NewMessageID() string {
	return "msg_" + uuid.New().String()[:8]
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() Message {
	out := *m
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}
	if m.ToolResults != nil {
		out.ToolResults = make([]ToolResult, len(m.ToolResults))
		copy(out.ToolResults, m.ToolResults)
	}
	return out
}

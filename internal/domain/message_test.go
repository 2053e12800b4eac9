package domain

import (
	"encoding/json"
	"testing"
)

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("hello")
	if msg.Role != RoleUser || msg.Content != "hello" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Streaming {
		t.Fatal("user messages are created complete")
	}
	if msg.MessageID == "" || msg.CreatedAt.IsZero() {
		t.Fatalf("missing identity fields: %+v", msg)
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage()
	if msg.Role != RoleAssistant || msg.Content != "" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if !msg.Streaming {
		t.Fatal("assistant placeholder must start streaming")
	}
}

func TestMessageCloneIsDeep(t *testing.T) {
	msg := NewAssistantMessage()
	msg.ToolCalls = []ToolCall{{ID: "t1", Name: "list_cases"}}
	msg.ToolResults = []ToolResult{{ToolCallID: "t1", Content: json.RawMessage(`"ok"`)}}

	clone := msg.Clone()
	clone.ToolCalls[0].Name = "mutated"
	clone.ToolResults[0].ToolCallID = "mutated"

	if msg.ToolCalls[0].Name != "list_cases" || msg.ToolResults[0].ToolCallID != "t1" {
		t.Fatalf("clone shares backing arrays: %+v", msg)
	}
}

func TestStreamEventTerminal(t *testing.T) {
	for _, typ := range []StreamEventType{EventText, EventToolStart, EventToolResult} {
		if typ.Terminal() {
			t.Fatalf("%s should not be terminal", typ)
		}
	}
	for _, typ := range []StreamEventType{EventDone, EventError} {
		if !typ.Terminal() {
			t.Fatalf("%s should be terminal", typ)
		}
	}
}

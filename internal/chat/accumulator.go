package chat

import (
	"fmt"

	"github.com/caseflow/assistant/internal/domain"
)

const canceledNotice = "Request canceled before a response arrived."

// Accumulator folds the event stream of one assistant turn into a single
// growing message and the turn's tool timeline. Once closed by a terminal
// event or an abort, every later event is dropped.
type Accumulator struct {
	msg     *domain.Message
	tracker *Tracker
	open    bool
}

// NewAccumulator creates an accumulator that records tool lifecycle events in
// the given tracker.
func NewAccumulator(tracker *Tracker) *Accumulator {
	return &Accumulator{tracker: tracker}
}

// Open creates the assistant placeholder message for a new turn and returns
// it. Any tool state left over from a previous turn is discarded.
func (a *Accumulator) Open() *domain.Message {
	a.tracker.Reset()
	a.msg = domain.NewAssistantMessage()
	a.open = true
	return a.msg
}

// IsOpen reports whether the turn is still accepting events.
func (a *Accumulator) IsOpen() bool {
	return a.open
}

// Message returns the message being accumulated.
func (a *Accumulator) Message() *domain.Message {
	return a.msg
}

// Apply routes one event into the message and tracker. Events applied after
// the turn closed are no-ops, which keeps a finalized message immutable even
// when frames arrive late. Unrecognized event types are skipped.
func (a *Accumulator) Apply(evt domain.StreamEvent) {
	if !a.open {
		return
	}

	switch evt.Type {
	case domain.EventText:
		a.msg.Content += evt.Content

	case domain.EventToolStart:
		a.tracker.OnStart(evt.ID, evt.Name, evt.Arguments)
		if !a.hasToolCall(evt.ID) {
			a.msg.ToolCalls = append(a.msg.ToolCalls, domain.ToolCall{
				ID:        evt.ID,
				Name:      evt.Name,
				Arguments: evt.Arguments,
			})
		}

	case domain.EventToolResult:
		a.tracker.OnResult(evt.ID, evt.Result, evt.IsError, evt.DurationMs)
		if !a.hasToolResult(evt.ID) {
			a.msg.ToolResults = append(a.msg.ToolResults, domain.ToolResult{
				ToolCallID: evt.ID,
				Content:    evt.Result,
				IsError:    evt.IsError,
			})
		}

	case domain.EventDone:
		a.close()

	case domain.EventError:
		a.Fail(evt.Message)
	}
}

// Fail finalizes the turn after a backend-reported error or a transport
// fault. Text that already streamed is kept; a turn that had produced nothing
// gets a synthesized notice so it is never left silently blank.
func (a *Accumulator) Fail(reason string) {
	if !a.open {
		return
	}
	if a.msg.Content == "" {
		if reason == "" {
			reason = "stream interrupted"
		}
		a.msg.Content = fmt.Sprintf("The assistant request failed: %s", reason)
	}
	a.close()
}

// Abort finalizes the turn without waiting for a terminal event.
func (a *Accumulator) Abort() {
	if !a.open {
		return
	}
	if a.msg.Content == "" {
		a.msg.Content = canceledNotice
	}
	a.close()
}

func (a *Accumulator) close() {
	a.msg.Streaming = false
	a.open = false
}

func (a *Accumulator) hasToolCall(id string) bool {
	for _, tc := range a.msg.ToolCalls {
		if tc.ID == id {
			return true
		}
	}
	return false
}

func (a *Accumulator) hasToolResult(id string) bool {
	for _, tr := range a.msg.ToolResults {
		if tr.ToolCallID == id {
			return true
		}
	}
	return false
}

package chat

import (
	"encoding/json"
	"time"

	"github.com/caseflow/assistant/internal/domain"
)

// Tracker maintains the live tool executions of the current turn, keyed by
// invocation id. It is turn-scoped: the session resets it when a new turn
// opens and discards its state on abort. Callers are expected to serialize
// access; events within a turn are applied strictly in arrival order.
type Tracker struct {
	order []string
	execs map[string]*domain.ToolExecution
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{execs: make(map[string]*domain.ToolExecution)}
}

// OnStart registers a tool invocation as running. A duplicate start for a
// known id overwrites name and arguments but keeps the original StartedAt and
// never regresses a terminal status.
func (t *Tracker) OnStart(id, name string, args json.RawMessage) {
	if exec, ok := t.execs[id]; ok {
		exec.Name = name
		exec.Arguments = args
		return
	}
	t.execs[id] = &domain.ToolExecution{
		ID:        id,
		Name:      name,
		Arguments: args,
		Status:    domain.ToolStatusRunning,
		StartedAt: time.Now(),
	}
	t.order = append(t.order, id)
}

// OnResult transitions an invocation to its terminal status. A result for an
// unknown id creates a synthetic execution directly in the terminal state, so
// a start frame lost in transit does not lose the result.
func (t *Tracker) OnResult(id string, result json.RawMessage, isError bool, durationMs int64) {
	exec, ok := t.execs[id]
	if !ok {
		exec = &domain.ToolExecution{
			ID:        id,
			StartedAt: time.Now(),
		}
		t.execs[id] = exec
		t.order = append(t.order, id)
	}

	now := time.Now()
	exec.Result = result
	exec.IsError = isError
	exec.EndedAt = &now
	if durationMs > 0 {
		exec.DurationMs = durationMs
	} else {
		exec.DurationMs = now.Sub(exec.StartedAt).Milliseconds()
	}
	if isError {
		exec.Status = domain.ToolStatusError
	} else {
		exec.Status = domain.ToolStatusCompleted
	}
}

// Snapshot returns copies of all tracked executions in observation order.
func (t *Tracker) Snapshot() []domain.ToolExecution {
	if len(t.order) == 0 {
		return nil
	}
	out := make([]domain.ToolExecution, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.execs[id])
	}
	return out
}

// Reset clears all tracked executions.
func (t *Tracker) Reset() {
	t.order = nil
	t.execs = make(map[string]*domain.ToolExecution)
}

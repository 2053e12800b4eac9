package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/assistant/internal/domain"
)

func TestTrackerStartResultLifecycle(t *testing.T) {
	tr := NewTracker()

	tr.OnStart("t1", "list_cases", json.RawMessage(`{"status":"open"}`))

	snap := tr.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "t1", snap[0].ID)
	assert.Equal(t, "list_cases", snap[0].Name)
	assert.Equal(t, domain.ToolStatusRunning, snap[0].Status)
	assert.False(t, snap[0].StartedAt.IsZero())
	assert.Nil(t, snap[0].EndedAt)

	tr.OnResult("t1", json.RawMessage(`"3 cases"`), false, 12)

	snap = tr.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, domain.ToolStatusCompleted, snap[0].Status)
	assert.Equal(t, json.RawMessage(`"3 cases"`), snap[0].Result)
	assert.NotNil(t, snap[0].EndedAt)
	assert.Equal(t, int64(12), snap[0].DurationMs)
}

func TestTrackerErrorResult(t *testing.T) {
	tr := NewTracker()
	tr.OnStart("t1", "update_deadline", nil)
	tr.OnResult("t1", json.RawMessage(`"deadline not found"`), true, 0)

	snap := tr.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, domain.ToolStatusError, snap[0].Status)
	assert.True(t, snap[0].IsError)
}

func TestTrackerDuplicateStartKeepsStartedAt(t *testing.T) {
	tr := NewTracker()
	tr.OnStart("t1", "list_cases", json.RawMessage(`{}`))
	first := tr.Snapshot()[0].StartedAt

	tr.OnStart("t1", "list_all_cases", json.RawMessage(`{"limit":10}`))

	snap := tr.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "list_all_cases", snap[0].Name)
	assert.Equal(t, json.RawMessage(`{"limit":10}`), snap[0].Arguments)
	assert.Equal(t, first, snap[0].StartedAt)
	assert.Equal(t, domain.ToolStatusRunning, snap[0].Status)
}

func TestTrackerResultForUnknownID(t *testing.T) {
	tr := NewTracker()

	// The start frame was lost in transit; the result must still land.
	tr.OnResult("ghost", json.RawMessage(`"ok"`), false, 0)

	snap := tr.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "ghost", snap[0].ID)
	assert.Equal(t, domain.ToolStatusCompleted, snap[0].Status)
	assert.NotNil(t, snap[0].EndedAt)
}

func TestTrackerInterleavedExecutions(t *testing.T) {
	tr := NewTracker()
	tr.OnStart("t1", "list_cases", nil)
	tr.OnStart("t2", "list_tasks", nil)
	tr.OnResult("t2", json.RawMessage(`"5 tasks"`), false, 0)

	snap := tr.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "t1", snap[0].ID)
	assert.Equal(t, domain.ToolStatusRunning, snap[0].Status)
	assert.Equal(t, "t2", snap[1].ID)
	assert.Equal(t, domain.ToolStatusCompleted, snap[1].Status)

	tr.OnResult("t1", json.RawMessage(`"3 cases"`), false, 0)
	snap = tr.Snapshot()
	assert.Equal(t, domain.ToolStatusCompleted, snap[0].Status)
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.OnStart("t1", "list_cases", nil)
	tr.Reset()

	assert.Empty(t, tr.Snapshot())

	tr.OnStart("t1", "list_cases", nil)
	assert.Len(t, tr.Snapshot(), 1)
}

func TestTrackerSnapshotIsCopy(t *testing.T) {
	tr := NewTracker()
	tr.OnStart("t1", "list_cases", nil)

	snap := tr.Snapshot()
	snap[0].Name = "mutated"

	assert.Equal(t, "list_cases", tr.Snapshot()[0].Name)
}

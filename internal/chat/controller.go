// Package chat implements the client-side streaming conversation engine: it
// submits user turns to an assistant backend, folds the streamed response
// events into messages and a live tool timeline, and guarantees that at most
// one stream session is active per conversation.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/caseflow/assistant/internal/domain"
	"github.com/caseflow/assistant/internal/transport"
)

// ErrEmptyMessage is returned by Submit when the user text is blank.
var ErrEmptyMessage = errors.New("chat: message is empty")

// Controller is the outward-facing conversation API. Every submit appends a
// user message and an assistant placeholder, then streams the response
// asynchronously; a prior in-flight turn is aborted first, so turn N always
// reaches a terminal state before turn N+1 begins.
type Controller struct {
	mu        sync.Mutex
	transport transport.Transport
	logger    *zap.Logger

	callbackMu sync.RWMutex
	onChange   func()

	conversationID string
	messages       []*domain.Message
	session        *Session
	tracker        *Tracker
}

// NewController creates a controller over the given transport. A nil logger
// disables logging.
func NewController(t transport.Transport, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{transport: t, logger: logger}
}

// SetOnChange registers a callback invoked after every applied event and
// every lifecycle transition. The callback runs without the controller lock
// held, so it may call back into the controller's snapshot accessors.
func (c *Controller) SetOnChange(fn func()) {
	c.callbackMu.Lock()
	c.onChange = fn
	c.callbackMu.Unlock()
}

// Submit starts a new turn: the user text is appended, an assistant
// placeholder is opened, and a fresh stream session begins. Any active
// session is aborted first. Submit returns once the turn is initiated; the
// response accumulates asynchronously. ctx bounds the whole turn.
func (c *Controller) Submit(ctx context.Context, text string, turnContext map[string]any) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.session != nil {
		c.session.abortLocked()
	}

	user := domain.NewUserMessage(text)
	tracker := NewTracker()
	acc := NewAccumulator(tracker)
	assistant := acc.Open()
	c.messages = append(c.messages, user, assistant)
	c.tracker = tracker

	req := transport.Request{
		Message:        text,
		ConversationID: c.conversationID,
		Context:        turnContext,
	}
	sess := newSession(&c.mu, c.transport, req, acc, tracker, c.logger)
	sess.onEvent = c.emitChange
	sess.onConversationID = func(id string) {
		c.conversationID = id
	}
	c.session = sess
	c.mu.Unlock()

	c.logger.Info("turn submitted",
		zap.String("user_message_id", user.MessageID),
		zap.String("assistant_message_id", assistant.MessageID),
		zap.String("conversation_id", req.ConversationID))

	c.emitChange()
	sess.start(ctx)
	return nil
}

// CancelActive aborts the current session without starting a new one. The
// partially streamed assistant message stays in place, finalized. Calling it
// with no active session is a no-op.
func (c *Controller) CancelActive() {
	c.mu.Lock()
	changed := c.session != nil && c.session.abortLocked()
	c.mu.Unlock()

	if changed {
		c.emitChange()
	}
}

// NewConversation aborts any active session and resets to an empty
// conversation with no backend id, ready for a fresh Submit.
func (c *Controller) NewConversation() {
	c.mu.Lock()
	if c.session != nil {
		c.session.abortLocked()
	}
	c.session = nil
	c.tracker = nil
	c.messages = nil
	c.conversationID = ""
	c.mu.Unlock()

	c.logger.Info("conversation reset")
	c.emitChange()
}

// Conversation returns a point-in-time snapshot of the conversation.
func (c *Controller) Conversation() domain.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]domain.Message, 0, len(c.messages))
	for _, m := range c.messages {
		msgs = append(msgs, m.Clone())
	}
	return domain.Conversation{
		ConversationID: c.conversationID,
		Messages:       msgs,
	}
}

// ToolExecutions returns a snapshot of the live tool executions of the
// current turn, in observation order. Empty once the turn finalizes.
func (c *Controller) ToolExecutions() []domain.ToolExecution {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tracker == nil {
		return nil
	}
	return c.tracker.Snapshot()
}

// Active reports whether a stream session is currently open.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && !c.session.state.Terminal()
}

func (c *Controller) emitChange() {
	c.callbackMu.RLock()
	fn := c.onChange
	c.callbackMu.RUnlock()
	if fn != nil {
		fn()
	}
}

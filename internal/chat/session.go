package chat

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/caseflow/assistant/internal/domain"
	"github.com/caseflow/assistant/internal/transport"
)

// SessionState is the lifecycle state of one stream session.
type SessionState string

const (
	SessionIdle      SessionState = "idle"
	SessionOpening   SessionState = "opening"
	SessionStreaming SessionState = "streaming"
	SessionCompleted SessionState = "completed"
	SessionFailed    SessionState = "failed"
	SessionAborted   SessionState = "aborted"
)

// Terminal reports whether no further transition can leave the state.
func (s SessionState) Terminal() bool {
	return s == SessionCompleted || s == SessionFailed || s == SessionAborted
}

// errSessionClosed tells the transport to stop delivering frames because the
// session already reached a terminal state.
var errSessionClosed = errors.New("chat: session closed")

// Session owns one request/response cycle: it opens the transport, feeds
// every decoded event to the accumulator and tracker, and terminates exactly
// once. The first terminal transition wins; an error racing a done, or an
// abort racing either, is a no-op. The mutex is shared with the controller so
// event application and the controller's public API serialize on one lock.
type Session struct {
	mu        *sync.Mutex
	transport transport.Transport
	req       transport.Request
	acc       *Accumulator
	tracker   *Tracker
	logger    *zap.Logger

	state  SessionState
	cancel context.CancelFunc

	// onEvent is invoked outside the lock after every applied event.
	// onConversationID is invoked with the lock held.
	onEvent          func()
	onConversationID func(id string)
}

func newSession(mu *sync.Mutex, t transport.Transport, req transport.Request, acc *Accumulator, tracker *Tracker, logger *zap.Logger) *Session {
	return &Session{
		mu:        mu,
		transport: t,
		req:       req,
		acc:       acc,
		tracker:   tracker,
		logger:    logger,
		state:     SessionIdle,
	}
}

// start opens the transport and consumes the stream on a new goroutine. The
// caller returns immediately; progress is observable through the conversation
// snapshot and the change notification.
func (s *Session) start(ctx context.Context) {
	s.mu.Lock()
	if s.state != SessionIdle {
		// Aborted before the transport was opened.
		s.mu.Unlock()
		return
	}
	s.state = SessionOpening
	streamCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(streamCtx, cancel)
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	err := s.transport.Stream(ctx, s.req, s.handleEvent)
	s.finish(err)
}

// handleEvent applies one decoded frame. Frames that arrive after the session
// reached a terminal state are dropped and the transport is told to stop.
func (s *Session) handleEvent(evt domain.StreamEvent) error {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return errSessionClosed
	}
	if s.state == SessionOpening {
		s.state = SessionStreaming
	}

	if evt.Type == domain.EventDone && evt.ConversationID != "" && s.onConversationID != nil {
		s.onConversationID(evt.ConversationID)
	}

	s.acc.Apply(evt)

	switch evt.Type {
	case domain.EventDone:
		s.state = SessionCompleted
		s.tracker.Reset()
	case domain.EventError:
		s.state = SessionFailed
		s.tracker.Reset()
		s.logger.Warn("assistant reported error", zap.String("message", evt.Message))
	}

	notify := s.onEvent
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	if evt.Type.Terminal() {
		return errSessionClosed
	}
	return nil
}

// finish resolves a transport-level outcome. A nil error here means the
// stream ended without a terminal event, which counts as a fault; text that
// already streamed is preserved either way.
func (s *Session) finish(err error) {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return
	}

	reason := "stream ended unexpectedly"
	if err != nil {
		reason = err.Error()
	}
	s.state = SessionFailed
	s.acc.Fail(reason)
	s.tracker.Reset()
	s.logger.Warn("stream failed", zap.String("reason", reason))

	notify := s.onEvent
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// abortLocked cancels the session cooperatively: the transport is signaled to
// stop, the message is finalized with whatever content it has, and the live
// tool state is discarded. The caller must hold the shared mutex. Aborting an
// already terminal session is a no-op; returns whether a transition happened.
func (s *Session) abortLocked() bool {
	if s.state.Terminal() {
		return false
	}
	s.state = SessionAborted
	s.acc.Abort()
	s.tracker.Reset()
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("session aborted", zap.String("message_id", s.acc.Message().MessageID))
	return true
}

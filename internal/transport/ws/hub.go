package ws

import (
	"sync"

	"inventory-server-go/internal/platform/logging"
)

// Hub tracks the active feed sessions.
type Hub struct {
	logger   *logging.Logger
	sessions sync.Map // map[string]*Session
}

// NewHub builds an empty session hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{logger: logger}
}

// Add registers a session with the hub.
func (h *Hub) Add(session *Session) {
	if session == nil {
		return
	}
	h.sessions.Store(session.ID(), session)
}

// Remove drops the session from the hub.
func (h *Hub) Remove(id string) {
	if id == "" {
		return
	}
	h.sessions.Delete(id)
}

// Broadcast delivers the message to every session. Sessions that cannot
// keep up are closed and removed so one stalled peer never blocks the rest.
func (h *Hub) Broadcast(message []byte) {
	h.sessions.Range(func(key, value any) bool {
		session, ok := value.(*Session)
		if !ok {
			return true
		}
		if !session.Send(message) {
			h.logger.WarnTag("WS", "dropping slow feed session %s", session.ID())
			session.Close(ErrSlowConsumer)
			h.sessions.Delete(key)
		}
		return true
	})
}

// Len counts the active sessions.
func (h *Hub) Len() int {
	count := 0
	h.sessions.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// CloseAll terminates every session with the given reason.
func (h *Hub) CloseAll(reason error) {
	if reason == nil {
		reason = ErrFeedShutdown
	}

	h.sessions.Range(func(key, value any) bool {
		if session, ok := value.(*Session); ok {
			session.Close(reason)
		}
		h.sessions.Delete(key)
		return true
	})
}

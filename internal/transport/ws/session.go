package ws

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"inventory-server-go/internal/platform/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	readLimit  = 512
	sendBuffer = 32
)

// Session is one live feed subscriber. A single writer goroutine drains the
// send buffer so socket writes never interleave.
type Session struct {
	id     string
	socket *websocket.Conn
	logger *logging.Logger

	send   chan []byte
	ctx    context.Context
	cancel context.CancelCauseFunc
	closed atomic.Bool
}

// NewSession wraps an upgraded websocket connection.
func NewSession(parent context.Context, id string, socket *websocket.Conn, logger *logging.Logger) *Session {
	ctx, cancel := context.WithCancelCause(parent)
	return &Session{
		id:     id,
		socket: socket,
		logger: logger,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID exposes the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Context returns the session context; it is canceled with the close reason.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Send queues a message for delivery. It reports false when the session is
// closed or its buffer is full; it never blocks a broadcast.
func (s *Session) Send(message []byte) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.send <- message:
		return true
	default:
		return false
	}
}

// Run drives the read and write pumps until the peer disconnects or the
// session is closed, then invokes onDone exactly once.
func (s *Session) Run(onDone func(error)) {
	go s.writePump()

	err := s.readPump()
	s.Close(err)

	if onDone != nil {
		onDone(err)
	}
}

// readPump consumes inbound frames. The feed is one-way, so frames only
// refresh the read deadline; the pump exits on the first read error.
func (s *Session) readPump() error {
	s.socket.SetReadLimit(readLimit)
	_ = s.socket.SetReadDeadline(time.Now().Add(pongWait))
	s.socket.SetPongHandler(func(string) error {
		return s.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.socket.ReadMessage(); err != nil {
			return err
		}
		_ = s.socket.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.send:
			_ = s.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				s.Close(err)
				return
			}
		case <-ticker.C:
			_ = s.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close(err)
				return
			}
		case <-s.ctx.Done():
			_ = s.socket.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.socket.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"))
			return
		}
	}
}

// Close terminates the session once; the reason becomes the context cause.
func (s *Session) Close(reason error) {
	if reason == nil {
		reason = ErrFeedShutdown
	}
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	s.cancel(reason)
	if s.socket != nil {
		if err := s.socket.Close(); err != nil {
			s.logger.DebugTag("WS", "session %s socket close: %v", s.id, err)
		}
	}
}

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/gorilla/websocket"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSendQueueFull = errors.New("send queue full")
)

// Options tunes per-connection limits and keepalive timing.
type Options struct {
	MaxMessageSize int64
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	// PingPeriod must be shorter than PongWait.
	PingPeriod time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxMessageSize: 64 << 10,
		SendBuffer:     256,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
	}
}

// Session is one live websocket connection.
type Session struct {
	id     string
	conn   *websocket.Conn
	opts   Options
	logger logging.Logger

	mu     sync.RWMutex
	closed bool
	send   chan []byte
}

func newSession(id string, conn *websocket.Conn, opts Options, logger logging.Logger) *Session {
	return &Session{
		id:     id,
		conn:   conn,
		opts:   opts,
		logger: logger.With("session_id", id),
		send:   make(chan []byte, opts.SendBuffer),
	}
}

func (s *Session) ID() string { return s.id }

// Deliver queues an event for the write loop without blocking.
func (s *Session) Deliver(event string, payload any) error {
	frame, err := json.Marshal(outbound{Event: event, Data: payload})
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSessionClosed
	}
	select {
	case s.send <- frame:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close stops accepting events. The write loop flushes what is queued, sends
// a close frame and closes the connection.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

func (s *Session) readPump(ctx context.Context, dispatch func(ctx context.Context, s *Session, frame []byte)) {
	s.conn.SetReadLimit(s.opts.MaxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait)); err != nil {
		s.logger.Warn(ctx, "set read deadline", "error", err)
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				s.logger.Warn(ctx, "frame exceeds size limit", "limit", s.opts.MaxMessageSize)
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived):
				s.logger.Warn(ctx, "connection closed unexpectedly", "error", err)
			default:
				s.logger.Debug(ctx, "read loop finished", "error", err)
			}
			return
		}
		dispatch(ctx, s, frame)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(s.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

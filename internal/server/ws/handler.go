package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/relay"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Registry is the part of the presence registry the transport mutates.
type Registry interface {
	Register(userID string, s relay.Session)
	Unregister(s relay.Session)
}

// Sender relays one message.
type Sender interface {
	Send(ctx context.Context, req relay.SendRequest) (*models.Message, error)
}

// Handler upgrades HTTP requests to websocket sessions.
type Handler struct {
	ctx      context.Context
	registry Registry
	sender   Sender
	logger   logging.Logger
	opts     Options
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// NewHandler builds the websocket endpoint. ctx is the parent of every
// socket-originated send; cancelling it does not close sessions, CloseAll
// does.
func NewHandler(ctx context.Context, registry Registry, sender Sender, origins *OriginPolicy, logger logging.Logger, opts Options) *Handler {
	h := &Handler{
		ctx:      ctx,
		registry: registry,
		sender:   sender,
		logger:   logger.With("module", "ws"),
		opts:     opts,
		sessions: make(map[*Session]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if origins.Allowed(r) {
				return true
			}
			h.logger.Warn(r.Context(), "blocked websocket from disallowed origin", "origin", r.Header.Get("Origin"))
			return false
		},
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	s := newSession(uuid.NewString(), conn, h.opts, h.logger)
	h.track(s)
	h.logger.Info(h.ctx, "session opened", "session_id", s.ID(), "remote_addr", r.RemoteAddr)

	go s.writePump()
	s.readPump(h.ctx, h.dispatch)

	h.registry.Unregister(s)
	h.untrack(s)
	s.Close()
	h.logger.Info(h.ctx, "session closed", "session_id", s.ID())
}

// CloseAll closes every live session. Used on shutdown.
func (h *Handler) CloseAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Len reports the number of open sessions.
func (h *Handler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Handler) track(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Handler) untrack(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
}

func (h *Handler) dispatch(ctx context.Context, s *Session, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		h.replyError(ctx, s, "", "malformed frame")
		return
	}

	switch env.Event {
	case EventRegisterUser:
		userID, err := parseUserID(env.Data)
		if err != nil {
			h.replyError(ctx, s, env.Event, "invalid user id")
			return
		}
		h.registry.Register(userID, s)
		h.logger.Info(ctx, "user registered", "user_id", userID, "session_id", s.ID())

	case EventSendMessage:
		var req relay.SendRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.replyError(ctx, s, env.Event, "invalid payload")
			return
		}
		if _, err := h.sender.Send(ctx, req); err != nil {
			if errors.Is(err, common.ErrorValidation) {
				h.replyError(ctx, s, env.Event, "senderId, receiverId and message are required")
				return
			}
			h.logger.Error(ctx, "send failed", "session_id", s.ID(), "sender_id", req.SenderID, "error", err)
			h.replyError(ctx, s, env.Event, "failed to send message")
		}

	default:
		h.logger.Debug(ctx, "ignoring unknown event", "event", env.Event, "session_id", s.ID())
	}
}

func (h *Handler) replyError(ctx context.Context, s *Session, event, text string) {
	if err := s.Deliver(EventError, ErrorPayload{Event: event, Error: text}); err != nil {
		h.logger.Debug(ctx, "could not report error to sender", "session_id", s.ID(), "error", err)
	}
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type wsStream struct {
	conn   *websocket.Conn
	events chan Event
	done   chan struct{}

	writeMu sync.Mutex
	once    sync.Once
}

// Connect opens the websocket, registers userID and starts reading events.
func (c *HTTPClient) Connect(ctx context.Context, userID string) (Stream, error) {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/ws"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s := &wsStream{conn: conn, events: make(chan Event, 64), done: make(chan struct{})}
	if err := s.emit("register_user", userID); err != nil {
		_ = conn.Close()
		return nil, err
	}

	go s.readLoop()
	return s, nil
}

func (s *wsStream) Send(senderID, receiverID, text string) error {
	return s.emit("send_message", map[string]string{
		"senderId":   senderID,
		"receiverId": receiverID,
		"message":    text,
	})
}

func (s *wsStream) Events() <-chan Event { return s.events }

func (s *wsStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *wsStream) emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(envelope{Event: event, Data: raw}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *wsStream) readLoop() {
	defer close(s.events)

	for {
		var env envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			return
		}

		switch env.Event {
		case "receive_message":
			var m models.Incoming
			if json.Unmarshal(env.Data, &m) == nil && !s.publish(Event{Message: &m}) {
				return
			}
		case "error":
			var e models.SocketError
			if json.Unmarshal(env.Data, &e) == nil && !s.publish(Event{Error: &e}) {
				return
			}
		}
	}
}

// publish hands ev to the reader unless the stream is being closed.
func (s *wsStream) publish(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// Package models holds the chat data the CLI receives from the server.
package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	AvatarKey string    `json:"avatar_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Incoming is a live receive_message event.
type Incoming struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// SocketError is an error event the server sent about one of our frames.
type SocketError struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

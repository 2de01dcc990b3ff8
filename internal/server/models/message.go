package models

import (
	"slices"
	"time"
)

// Message is one chat message between two users.
type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"message"`
	// DeletedFor lists the viewers who have hidden the message.
	DeletedFor []string  `json:"deletedFor"`
	Timestamp  time.Time `json:"timestamp"`
}

// InvolvesUser reports whether userID is the sender or the receiver.
func (m *Message) InvolvesUser(userID string) bool {
	return userID != "" && (m.SenderID == userID || m.ReceiverID == userID)
}

// HiddenFor reports whether viewerID has hidden the message.
func (m *Message) HiddenFor(viewerID string) bool {
	return slices.Contains(m.DeletedFor, viewerID)
}

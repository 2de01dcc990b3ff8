package client

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

// Client is the API contract the CLI services use.
type Client interface {
	Register(ctx context.Context, name, email, phone string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (string, *models.User, error)
	Logout(ctx context.Context, token string) error
	Users(ctx context.Context, token string) ([]models.User, error)
	History(ctx context.Context, userID, peerID string) ([]models.Message, error)
	AvatarUploadURL(ctx context.Context, token string) (key, url string, err error)
	UploadAvatar(ctx context.Context, url string, data []byte, contentType string) error
	Connect(ctx context.Context, userID string) (Stream, error)
}

// Stream is a registered websocket connection.
type Stream interface {
	Send(senderID, receiverID, text string) error
	// Events is closed when the connection ends.
	Events() <-chan Event
	Close() error
}

// Event is one server push: either a chat message or an error report.
type Event struct {
	Message *models.Incoming
	Error   *models.SocketError
}

//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=mocks/mock_relay.go -package=mocks
package relay

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// Session is a live connection that can receive events. Implementations
// must not block in Deliver.
type Session interface {
	ID() string
	Deliver(event string, payload any) error
}

// MessageStore persists messages. Create returns only once the message is
// durable.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
}

// Directory finds the live session of a user.
type Directory interface {
	Lookup(userID string) (Session, bool)
}

// Package messages stores chat messages and per-viewer hiding.
package messages

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	// ListConversation returns messages exchanged between userID and peerID
	// in either direction, oldest first. A non-empty viewerID drops messages
	// that viewer has hidden.
	ListConversation(ctx context.Context, userID, peerID, viewerID string) ([]*models.Message, error)
	Delete(ctx context.Context, id string) error
	Hide(ctx context.Context, id, viewerID string) error
}

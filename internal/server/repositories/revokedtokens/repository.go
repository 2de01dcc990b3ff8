// Package revokedtokens keeps the ids of bearer tokens that were logged out
// before they expired.
package revokedtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.RevokedToken) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

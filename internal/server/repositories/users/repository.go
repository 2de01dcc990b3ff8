// Package users stores chat accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ListExcept(ctx context.Context, id string) ([]*models.User, error)
	SetAvatarKey(ctx context.Context, id, key string) error
}

//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=mocks/mock_httpapi.go -package=mocks
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/auth"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
)

// Users is the account side the handlers depend on.
type Users interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListOthers(ctx context.Context, callerID string) ([]*models.User, error)
	AvatarUploadURL(ctx context.Context, userID string) (key, url string, err error)
	AvatarDownloadURL(ctx context.Context, userID string) (string, error)
}

// Messages is the message side the handlers depend on.
type Messages interface {
	History(ctx context.Context, userID, peerID, viewerID string) ([]*models.Message, error)
	Delete(ctx context.Context, messageID, callerID string) error
	Hide(ctx context.Context, messageID, callerID string) error
}

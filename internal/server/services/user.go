package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/auth"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/objectstore"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Presigner produces time-limited object storage URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// RegisterInput is a new account as submitted by the client.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// LoginResult is a signed bearer token and the account it belongs to.
type LoginResult struct {
	Token string
	User  *models.User
}

// UserService handles accounts:
// - Register / Login with bcrypt hashes and JWT bearer tokens
// - Authenticate / Logout with a revocation list keyed by token id
// - user lookups and avatar URLs
type UserService struct {
	db                          dbx.DBTX
	runTx                       dbx.Runner
	repomanager                 repomanager.RepositoryManager
	presigner                   Presigner
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
	now                         func() time.Time
}

// NewUserService constructs a UserService. presigner may be nil, in which
// case avatar operations fail with common.ErrorInternal.
func NewUserService(db dbx.DBTX, runTx dbx.Runner, m repomanager.RepositoryManager, presigner Presigner, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		runTx:                       runTx,
		repomanager:                 m,
		presigner:                   presigner,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
		now:                         time.Now,
	}
}

// Register creates an account. An email that is already taken yields
// common.ErrorAlreadyExists and no second record.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	var created *models.User

	err := s.runTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, in.Email)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error looking up email: %w", err)
		}

		hash, err := auth.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return fmt.Errorf("error hashing password: %w", err)
		}

		created, err = repo.Create(ctx, &models.User{
			ID:           uuid.NewString(),
			Name:         in.Name,
			Email:        in.Email,
			Phone:        in.Phone,
			PasswordHash: hash,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Login checks the password and issues a bearer token. Unknown emails are
// common.ErrorNotFound, wrong passwords common.ErrorInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("error checking password: %w", err)
	}

	token, _, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// Authenticate verifies a bearer token and rejects logged-out ones with
// common.ErrInvalidToken.
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	if claims.ID != "" {
		revoked, err := s.repomanager.RevokedTokens(s.db).Exists(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("error checking revocation: %w", err)
		}
		if revoked {
			return nil, common.ErrInvalidToken
		}
	}

	return claims, nil
}

// Logout revokes the token described by claims until it expires. Nil claims
// (no token presented) are a no-op.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}

	expires := s.now().Add(s.accessTokenValidityDuration)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	err := s.repomanager.RevokedTokens(s.db).Create(ctx, &models.RevokedToken{
		TokenID:   claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: expires,
	})
	if err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

// PurgeRevokedTokens forgets revocations of tokens that have expired.
func (s *UserService) PurgeRevokedTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RevokedTokens(s.db).DeleteExpired(ctx, s.now())
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// ListOthers returns every account except callerID.
func (s *UserService) ListOthers(ctx context.Context, callerID string) ([]*models.User, error) {
	return s.repomanager.Users(s.db).ListExcept(ctx, callerID)
}

// AvatarUploadURL assigns a fresh avatar key to the user and returns it with
// a presigned PUT URL for the upload.
func (s *UserService) AvatarUploadURL(ctx context.Context, userID string) (key, url string, err error) {
	if s.presigner == nil {
		return "", "", fmt.Errorf("%w: avatar storage is not configured", common.ErrorInternal)
	}

	key = objectstore.AvatarKey(userID)
	url, err = s.presigner.PresignPut(ctx, key)
	if err != nil {
		return "", "", err
	}

	if err := s.repomanager.Users(s.db).SetAvatarKey(ctx, userID, key); err != nil {
		return "", "", err
	}

	return key, url, nil
}

// AvatarDownloadURL returns a presigned GET URL for the user's avatar, or
// common.ErrorNotFound when the user has none.
func (s *UserService) AvatarDownloadURL(ctx context.Context, userID string) (string, error) {
	if s.presigner == nil {
		return "", fmt.Errorf("%w: avatar storage is not configured", common.ErrorInternal)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.AvatarKey == "" {
		return "", common.ErrorNotFound
	}

	return s.presigner.PresignGet(ctx, user.AvatarKey)
}

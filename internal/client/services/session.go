// Package services holds the CLI's application logic on top of the API
// client: who is logged in, the bearer token and the live message stream.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

var ErrNotLoggedIn = errors.New("not logged in")

// ChatService is what the REPL needs.
type ChatService interface {
	Register(ctx context.Context, name, email, phone string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser() *models.User
	Users(ctx context.Context) ([]models.User, error)
	History(ctx context.Context, peerID string) ([]models.Message, error)
	Send(peerID, text string) error
	UploadAvatar(ctx context.Context, data []byte, contentType string) (string, error)
	Events() <-chan client.Event
	Close(ctx context.Context) error
}

type chatService struct {
	client client.Client

	mu     sync.RWMutex
	token  string
	user   *models.User
	stream client.Stream
}

func NewChatService(c client.Client) ChatService {
	return &chatService{client: c}
}

func (s *chatService) Register(ctx context.Context, name, email, phone string, password []byte) error {
	return s.client.Register(ctx, name, email, phone, password)
}

// Login authenticates, then opens the websocket and registers the user on
// it. If the socket cannot be opened the login is rolled back.
func (s *chatService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	token, user, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	stream, err := s.client.Connect(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("live connection: %w", err)
	}

	s.mu.Lock()
	old := s.stream
	s.token, s.user, s.stream = token, user, stream
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return user, nil
}

// Logout revokes the token on the server and drops local state even when the
// server call fails.
func (s *chatService) Logout(ctx context.Context) error {
	s.mu.Lock()
	token, stream := s.token, s.stream
	s.token, s.user, s.stream = "", nil, nil
	s.mu.Unlock()

	if token == "" {
		return ErrNotLoggedIn
	}
	if stream != nil {
		_ = stream.Close()
	}
	return s.client.Logout(ctx, token)
}

func (s *chatService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *chatService) Users(ctx context.Context) ([]models.User, error) {
	token, _, err := s.session()
	if err != nil {
		return nil, err
	}
	return s.client.Users(ctx, token)
}

func (s *chatService) History(ctx context.Context, peerID string) ([]models.Message, error) {
	_, user, err := s.session()
	if err != nil {
		return nil, err
	}
	return s.client.History(ctx, user.ID, peerID)
}

func (s *chatService) Send(peerID, text string) error {
	s.mu.RLock()
	user, stream := s.user, s.stream
	s.mu.RUnlock()

	if user == nil || stream == nil {
		return ErrNotLoggedIn
	}
	return stream.Send(user.ID, peerID, text)
}

// UploadAvatar asks for a presigned URL and PUTs data to it. It returns the
// object key the server stored for the user.
func (s *chatService) UploadAvatar(ctx context.Context, data []byte, contentType string) (string, error) {
	token, _, err := s.session()
	if err != nil {
		return "", err
	}

	key, url, err := s.client.AvatarUploadURL(ctx, token)
	if err != nil {
		return "", err
	}
	if err := s.client.UploadAvatar(ctx, url, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Events returns the live stream's events, or nil when not logged in.
func (s *chatService) Events() <-chan client.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stream == nil {
		return nil
	}
	return s.stream.Events()
}

// Close releases the stream without revoking the token.
func (s *chatService) Close(ctx context.Context) error {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()

	if stream != nil {
		return stream.Close()
	}
	return nil
}

func (s *chatService) session() (string, *models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.user == nil {
		return "", nil, ErrNotLoggedIn
	}
	return s.token, s.user, nil
}

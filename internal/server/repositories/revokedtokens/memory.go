package revokedtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// MemoryRepository keeps revoked token ids in process memory.
type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: map[string]time.Time{}}
}

func (r *MemoryRepository) Create(ctx context.Context, token *models.RevokedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.TokenID]; !ok {
		r.tokens[token.TokenID] = token.ExpiresAt
	}
	return nil
}

func (r *MemoryRepository) Exists(ctx context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.tokens[tokenID]
	return ok, nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, exp := range r.tokens {
		if !exp.After(now) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

package messages

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/samber/lo"
)

// MemoryRepository keeps messages in process memory in insertion order.
type MemoryRepository struct {
	mu   sync.RWMutex
	msgs []*models.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.DeletedFor == nil {
		msg.DeletedFor = []string{}
	}
	r.msgs = append(r.msgs, clone(msg))
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.index(id); i >= 0 {
		return clone(r.msgs[i]), nil
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) ListConversation(ctx context.Context, userID, peerID, viewerID string) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := lo.FilterMap(r.msgs, func(m *models.Message, _ int) (*models.Message, bool) {
		between := (m.SenderID == userID && m.ReceiverID == peerID) || (m.SenderID == peerID && m.ReceiverID == userID)
		if !between || (viewerID != "" && m.HiddenFor(viewerID)) {
			return nil, false
		}
		return clone(m), true
	})
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	r.msgs = slices.Delete(r.msgs, i, i+1)
	return nil
}

func (r *MemoryRepository) Hide(ctx context.Context, id, viewerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	if !r.msgs[i].HiddenFor(viewerID) {
		r.msgs[i].DeletedFor = append(r.msgs[i].DeletedFor, viewerID)
	}
	return nil
}

func (r *MemoryRepository) index(id string) int {
	return slices.IndexFunc(r.msgs, func(m *models.Message) bool { return m.ID == id })
}

func clone(m *models.Message) *models.Message {
	cp := *m
	cp.DeletedFor = append([]string{}, m.DeletedFor...)
	return &cp
}

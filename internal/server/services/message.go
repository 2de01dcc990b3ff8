package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MessageService stores messages and enforces who may remove them.
type MessageService struct {
	db          dbx.DBTX
	runTx       dbx.Runner
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewMessageService(db dbx.DBTX, runTx dbx.Runner, m repomanager.RepositoryManager) *MessageService {
	return &MessageService{db: db, runTx: runTx, repomanager: m, now: time.Now}
}

// Create persists msg, assigning an id and timestamp when missing.
func (s *MessageService) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now().UTC()
	}
	return s.repomanager.Messages(s.db).Create(ctx, msg)
}

// History returns the conversation between userID and peerID, oldest first.
// With a viewerID, messages that viewer hid are left out.
func (s *MessageService) History(ctx context.Context, userID, peerID, viewerID string) ([]*models.Message, error) {
	return s.repomanager.Messages(s.db).ListConversation(ctx, userID, peerID, viewerID)
}

// Delete removes a message for everyone. Only its sender or receiver may do
// that, anyone else gets common.ErrorForbidden.
func (s *MessageService) Delete(ctx context.Context, messageID, callerID string) error {
	return s.runTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Messages(tx)
		if err := s.checkOwner(ctx, tx, messageID, callerID); err != nil {
			return err
		}
		return repo.Delete(ctx, messageID)
	})
}

// Hide removes a message from callerID's view of the conversation only.
func (s *MessageService) Hide(ctx context.Context, messageID, callerID string) error {
	return s.runTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Messages(tx)
		if err := s.checkOwner(ctx, tx, messageID, callerID); err != nil {
			return err
		}
		return repo.Hide(ctx, messageID, callerID)
	})
}

func (s *MessageService) checkOwner(ctx context.Context, tx dbx.DBTX, messageID, callerID string) error {
	msg, err := s.repomanager.Messages(tx).GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if !msg.InvolvesUser(callerID) {
		return fmt.Errorf("%w: %s is not part of message %s", common.ErrorForbidden, callerID, messageID)
	}
	return nil
}

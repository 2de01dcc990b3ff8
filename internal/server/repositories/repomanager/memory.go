package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/users"
)

// InMemoryRepositoryManager hands out process-local repositories. The DBTX
// argument is ignored, so it pairs with dbx.DirectRunner(nil). Data is lost
// on restart.
type InMemoryRepositoryManager struct {
	users         *users.MemoryRepository
	messages      *messages.MemoryRepository
	revokedTokens *revokedtokens.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		messages:      messages.NewMemoryRepository(),
		revokedTokens: revokedtokens.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *InMemoryRepositoryManager) Messages(dbx.DBTX) messages.Repository { return m.messages }

func (m *InMemoryRepositoryManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository {
	return m.revokedTokens
}

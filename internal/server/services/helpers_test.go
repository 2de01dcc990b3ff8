package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

var errDB = errors.New("db down")

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		BcryptCost:                  bcrypt.MinCost,
	}
}

func newMemUserService(t *testing.T, p Presigner) (*UserService, *repomanager.InMemoryRepositoryManager) {
	t.Helper()
	rm := repomanager.NewInMemoryRepositoryManager()
	return NewUserService(nil, dbx.DirectRunner(nil), rm, p, testConfig()), rm
}

type fakePresigner struct {
	putKey string
	getKey string
	err    error
}

func (f *fakePresigner) PresignPut(ctx context.Context, key string) (string, error) {
	f.putKey = key
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.test/put/" + key, nil
}

func (f *fakePresigner) PresignGet(ctx context.Context, key string) (string, error) {
	f.getKey = key
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.test/get/" + key, nil
}

// failingUsers wraps a repository and fails selected calls.
type failingUsers struct {
	users.Repository
	getByEmailErr error
	createErr     error
	created       int
}

func (f *failingUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmailErr != nil {
		return nil, f.getByEmailErr
	}
	return f.Repository.GetByEmail(ctx, email)
}

func (f *failingUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.created++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.Repository.Create(ctx, u)
}

type failingRevoked struct {
	revokedtokens.Repository
	err error
}

func (f *failingRevoked) Exists(context.Context, string) (bool, error) { return false, f.err }
func (f *failingRevoked) Create(context.Context, *models.RevokedToken) error {
	return f.err
}

type failingMessages struct {
	messages.Repository
	getErr error
}

func (f *failingMessages) GetByID(context.Context, string) (*models.Message, error) {
	return nil, f.getErr
}

// stubRepoManager returns whatever repositories are set, falling back to an
// in-memory manager for the rest.
type stubRepoManager struct {
	mem      *repomanager.InMemoryRepositoryManager
	users    users.Repository
	messages messages.Repository
	revoked  revokedtokens.Repository
	seenTx   []dbx.DBTX
}

func newStubRepoManager() *stubRepoManager {
	return &stubRepoManager{mem: repomanager.NewInMemoryRepositoryManager()}
}

func (m *stubRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *stubRepoManager) Users(db dbx.DBTX) users.Repository {
	m.seenTx = append(m.seenTx, db)
	if m.users != nil {
		return m.users
	}
	return m.mem.Users(db)
}

func (m *stubRepoManager) Messages(db dbx.DBTX) messages.Repository {
	m.seenTx = append(m.seenTx, db)
	if m.messages != nil {
		return m.messages
	}
	return m.mem.Messages(db)
}

func (m *stubRepoManager) RevokedTokens(db dbx.DBTX) revokedtokens.Repository {
	if m.revoked != nil {
		return m.revoked
	}
	return m.mem.RevokedTokens(db)
}

package revokedtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)
	q := `(?s)^\s*INSERT\s+INTO\s+revoked_tokens\s*\(token_id,\s*user_id,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s*\(token_id\)\s*DO\s+NOTHING\s*$`
	mock.ExpectExec(q).WithArgs("jti-1", "u-1", exp).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.RevokedToken{TokenID: "jti-1", UserID: "u-1", ExpiresAt: exp})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+revoked_tokens`).WillReturnError(errors.New("boom"))

	err := repo.Create(context.Background(), &models.RevokedToken{TokenID: "jti-1"})
	if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+revoked_tokens\s+WHERE\s+token_id\s*=\s*\$1\)$`
	mock.ExpectQuery(q).WithArgs("jti-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).WithArgs("jti-2").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(q).WithArgs("jti-3").WillReturnError(errors.New("db err"))

	if ok, err := repo.Exists(context.Background(), "jti-1"); err != nil || !ok {
		t.Fatalf("want revoked, got %v, %v", ok, err)
	}
	if ok, err := repo.Exists(context.Background(), "jti-2"); err != nil || ok {
		t.Fatalf("want not revoked, got %v, %v", ok, err)
	}
	if _, err := repo.Exists(context.Background(), "jti-3"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `^DELETE\s+FROM\s+revoked_tokens\s+WHERE\s+expires_at\s*<=\s*\$1$`
	mock.ExpectExec(q).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q).WithArgs(now).WillReturnError(errors.New("db err"))

	n, err := repo.DeleteExpired(context.Background(), now)
	if err != nil || n != 3 {
		t.Fatalf("want 3 deleted, got %d, %v", n, err)
	}
	if _, err := repo.DeleteExpired(context.Background(), now); err == nil {
		t.Fatal("expected error")
	}
}

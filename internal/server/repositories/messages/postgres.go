package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/jackc/pgx/v5/pgtype"
)

type PostgresRepository struct {
	db    dbx.DBTX
	types *pgtype.Map
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, types: pgtype.NewMap()}
}

func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) error {
	query :=
		`INSERT INTO messages (id, sender_id, receiver_id, message, created_at)
		 VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.SenderID, msg.ReceiverID, msg.Text, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if msg.DeletedFor == nil {
		msg.DeletedFor = []string{}
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query :=
		`SELECT id, sender_id, receiver_id, message, deleted_for, created_at FROM messages
		 WHERE id = $1`

	m, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) ListConversation(ctx context.Context, userID, peerID, viewerID string) ([]*models.Message, error) {
	query :=
		`SELECT id, sender_id, receiver_id, message, deleted_for, created_at FROM messages
		 WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		   AND ($3::text = '' OR NOT ($3::text = ANY(deleted_for)))
		 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, peerID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)
	for rows.Next() {
		m, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return affectedOne(res, err)
}

// Hide adds viewerID to deleted_for unless it is already there.
func (r *PostgresRepository) Hide(ctx context.Context, id, viewerID string) error {
	query :=
		`UPDATE messages
		 SET deleted_for = CASE WHEN $2::text = ANY(deleted_for) THEN deleted_for ELSE array_append(deleted_for, $2::text) END
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, viewerID)
	return affectedOne(res, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scan(row scanner) (*models.Message, error) {
	m := &models.Message{}
	var deletedFor []string
	if err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, r.types.SQLScanner(&deletedFor), &m.Timestamp); err != nil {
		return nil, err
	}
	m.DeletedFor = append([]string{}, deletedFor...)
	return m, nil
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

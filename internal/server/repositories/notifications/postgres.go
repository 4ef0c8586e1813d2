package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/dbx"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query :=
		`INSERT INTO notifications (from_user, to_user, kind, read)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, n.From, n.To, string(n.Kind), n.Read).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	query := `SELECT id, from_user, to_user, kind, read, created_at FROM notifications WHERE id = $1`

	n := &models.Notification{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&n.ID, &n.From, &n.To, &n.Kind, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListByRecipient(ctx context.Context, recipientID string) ([]*models.Notification, error) {
	query :=
		`SELECT id, from_user, to_user, kind, read, created_at FROM notifications
		 WHERE to_user = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.From, &n.To, &n.Kind, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE to_user = $1 AND NOT read`, recipientID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrorNotFound)
}

func (r *PostgresRepository) DeleteByRecipient(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE to_user = $1`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/dbx"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const postColumns = `id, author_id, text, img, likes, comments, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (*models.Post, error) {
	p := &models.Post{}
	var comments []byte
	err := s.Scan(&p.ID, &p.Author, &p.Text, &p.Img, pq.Array(&p.Likes), &comments, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &p.Comments); err != nil {
			return nil, fmt.Errorf("decode comments: %w", err)
		}
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (author_id, text, img)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, post.Author, post.Text, post.Img).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	post.Likes, post.Comments = []string{}, []models.Comment{}
	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	p, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrorNotFound)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrorNotFound)
}

func (r *PostgresRepository) AddLike(ctx context.Context, postID, userID string) error {
	return r.exec(ctx,
		`UPDATE posts SET likes = CASE WHEN $2 = ANY(likes) THEN likes ELSE array_append(likes, $2) END,
		 updated_at = now() WHERE id = $1`, postID, userID)
}

func (r *PostgresRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	return r.exec(ctx, `UPDATE posts SET likes = array_remove(likes, $2), updated_at = now() WHERE id = $1`, postID, userID)
}

func (r *PostgresRepository) AppendComment(ctx context.Context, postID string, comment models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	b, err := json.Marshal([]models.Comment{comment})
	if err != nil {
		return err
	}
	return r.exec(ctx, `UPDATE posts SET comments = comments || $2::jsonb, updated_at = now() WHERE id = $1`, postID, string(b))
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	return r.list(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
}

func (r *PostgresRepository) ListByAuthors(ctx context.Context, authorIDs []string) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+postColumns+` FROM posts WHERE author_id = ANY($1) ORDER BY created_at DESC`, pq.Array(authorIDs))
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ANY($1) ORDER BY created_at DESC`, pq.Array(ids))
}

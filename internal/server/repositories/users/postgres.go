package users

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

const userColumns = `id, username, full_name, email, password_hash, followers, following, liked_posts,
		profile_img, cover_img, bio, link, created_at, updated_at`

var setColumns = map[SetField]string{
	FieldFollowers:  "followers",
	FieldFollowing:  "following",
	FieldLikedPosts: "liked_posts",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*models.User, error) {
	u := &models.User{}
	err := s.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash,
		pq.Array(&u.Followers), pq.Array(&u.Following), pq.Array(&u.LikedPosts),
		&u.ProfileImg, &u.CoverImg, &u.Bio, &u.Link, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func wrapWriteError(err error) error {
	if name, ok := dbx.IsUniqueViolation(err); ok {
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, name)
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, full_name, email, password_hash, profile_img, cover_img, bio, link)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.FullName, user.Email, user.PasswordHash,
		user.ProfileImg, user.CoverImg, user.Bio, user.Link,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, wrapWriteError(err)
	}

	user.Followers, user.Following, user.LikedPosts = []string{}, []string{}, []string{}
	return user, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, pq.Array(ids))
}

func (r *PostgresRepository) Sample(ctx context.Context, excludeID string, size int) ([]*models.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE id <> $1 ORDER BY random() LIMIT $2`, excludeID, size)
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET username = $2, full_name = $3, email = $4, password_hash = $5,
		 profile_img = $6, cover_img = $7, bio = $8, link = $9, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, user.ID,
		user.Username, user.FullName, user.Email, user.PasswordHash,
		user.ProfileImg, user.CoverImg, user.Bio, user.Link)
	if err != nil {
		return wrapWriteError(err)
	}
	return dbx.RequireAffected(res, common.ErrorNotFound)
}

// AddToSet appends value unless it is already present. The membership
// test and the append happen in one UPDATE statement.
func (r *PostgresRepository) AddToSet(ctx context.Context, userID string, field SetField, value string) error {
	if err := field.valid(); err != nil {
		return err
	}
	col := setColumns[field]
	query := fmt.Sprintf(
		`UPDATE users SET %[1]s = CASE WHEN $2 = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2) END,
		 updated_at = now() WHERE id = $1`, col)

	return r.execSet(ctx, query, userID, value)
}

func (r *PostgresRepository) RemoveFromSet(ctx context.Context, userID string, field SetField, value string) error {
	if err := field.valid(); err != nil {
		return err
	}
	col := setColumns[field]
	query := fmt.Sprintf(`UPDATE users SET %[1]s = array_remove(%[1]s, $2), updated_at = now() WHERE id = $1`, col)

	return r.execSet(ctx, query, userID, value)
}

func (r *PostgresRepository) execSet(ctx context.Context, query, userID, value string) error {
	res, err := r.db.ExecContext(ctx, query, userID, value)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrorNotFound)
}

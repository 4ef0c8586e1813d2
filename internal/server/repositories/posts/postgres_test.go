package posts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postCols = []string{"id", "author_id", "text", "img", "likes", "comments", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+posts\s*\(author_id,\s*text,\s*img\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at,\s*updated_at$`).
		WithArgs("u-1", "hello", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("p-1", now, now))

	got, err := repo.Create(context.Background(), &models.Post{Author: "u-1", Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "p-1", got.ID)
	assert.Empty(t, got.Likes)
	assert.Empty(t, got.Comments)
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*author_id,.*FROM\s+posts\s+WHERE\s+id\s*=\s*\$1$`
	now := time.Now()
	comments := `[{"_id":"c-1","user":"u-2","text":"nice","createdAt":"2024-01-01T00:00:00Z"}]`

	mock.ExpectQuery(q).WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows(postCols).AddRow("p-1", "u-1", "hello", "", "{u-2}", []byte(comments), now, now))

	got, err := repo.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.Author)
	assert.Equal(t, []string{"u-2"}, got.Likes)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "u-2", got.Comments[0].Author)
	assert.Equal(t, "nice", got.Comments[0].Text)

	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE\s+FROM\s+posts\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs("p-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "p-1"))

	mock.ExpectExec(q).WithArgs("p-1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "p-1"), common.ErrorNotFound)
}

func TestLikes(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+posts\s+SET\s+likes\s*=\s*CASE\s+WHEN\s+\$2\s*=\s*ANY\(likes\).*WHERE\s+id\s*=\s*\$1$`).
		WithArgs("p-1", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.AddLike(context.Background(), "p-1", "u-1"))

	mock.ExpectExec(`(?s)^UPDATE\s+posts\s+SET\s+likes\s*=\s*array_remove\(likes,\s*\$2\)`).
		WithArgs("p-1", "u-1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.RemoveLike(context.Background(), "p-1", "u-1"), common.ErrorNotFound)

	mock.ExpectExec(`(?s)^UPDATE\s+posts`).WillReturnError(errors.New("boom"))
	err := repo.AddLike(context.Background(), "p-1", "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: boom")
}

func TestAppendComment(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	want := `[{"_id":"c-1","user":"u-2","text":"hi","createdAt":"2024-01-01T00:00:00Z"}]`

	mock.ExpectExec(`(?s)^UPDATE\s+posts\s+SET\s+comments\s*=\s*comments\s*\|\|\s*\$2::jsonb`).
		WithArgs("p-1", want).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendComment(context.Background(), "p-1", models.Comment{ID: "c-1", Author: "u-2", Text: "hi", CreatedAt: at})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(postCols).
			AddRow("p-2", "u-1", "b", "", "{}", []byte("[]"), now, now).
			AddRow("p-1", "u-1", "a", "", "{}", []byte("[]"), now.Add(-time.Minute), now)
	}

	mock.ExpectQuery(`(?s)FROM\s+posts\s+ORDER\s+BY\s+created_at\s+DESC$`).WillReturnRows(rows())
	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p-2", all[0].ID)

	mock.ExpectQuery(`(?s)WHERE\s+author_id\s*=\s*ANY\(\$1\)\s+ORDER\s+BY\s+created_at\s+DESC$`).
		WithArgs(pq.Array([]string{"u-1"})).WillReturnRows(rows())
	byAuthor, err := repo.ListByAuthors(context.Background(), []string{"u-1"})
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	mock.ExpectQuery(`(?s)WHERE\s+id\s*=\s*ANY\(\$1\)`).
		WithArgs(pq.Array([]string{"p-1", "p-2"})).WillReturnRows(rows())
	byID, err := repo.ListByIDs(context.Background(), []string{"p-1", "p-2"})
	require.NoError(t, err)
	assert.Len(t, byID, 2)

	none, err := repo.ListByAuthors(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, mock.ExpectationsWereMet())
}

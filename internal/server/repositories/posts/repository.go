// Package posts is the content store: posts with their like set and
// append-only comment list.
package posts

import (
	"context"

	"github.com/abanwa/twitter/internal/server/models"
)

// Repository is implemented by every store backend. Listings are newest
// first. AddLike, RemoveLike and AppendComment are single atomic updates
// and return common.ErrorNotFound when the post does not exist.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
	AppendComment(ctx context.Context, postID string, comment models.Comment) error
	ListAll(ctx context.Context) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []string) ([]*models.Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Post, error)
}

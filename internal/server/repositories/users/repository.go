// Package users is the identity store: accounts plus the follower,
// following and liked-post sets kept on each user.
package users

import (
	"context"
	"fmt"

	"github.com/abanwa/twitter/internal/server/models"
)

// SetField names one of the id sets stored on a user.
type SetField string

const (
	FieldFollowers  SetField = "followers"
	FieldFollowing  SetField = "following"
	FieldLikedPosts SetField = "likedPosts"
)

func (f SetField) valid() error {
	switch f {
	case FieldFollowers, FieldFollowing, FieldLikedPosts:
		return nil
	}
	return fmt.Errorf("unknown user set %q", string(f))
}

// Repository is implemented by every store backend.
//
// AddToSet and RemoveFromSet are single atomic operations on the stored
// set: adding a present value or removing an absent one is a no-op. Both
// return common.ErrorNotFound when no user has the given id. Update never
// touches the sets.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	AddToSet(ctx context.Context, userID string, field SetField, value string) error
	RemoveFromSet(ctx context.Context, userID string, field SetField, value string) error
	Sample(ctx context.Context, excludeID string, size int) ([]*models.User, error)
}

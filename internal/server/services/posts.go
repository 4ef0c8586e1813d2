package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/logging"
	"github.com/abanwa/twitter/internal/server/events"
	"github.com/abanwa/twitter/internal/server/media"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/abanwa/twitter/internal/server/repositories/repomanager"
)

// PostService manages authored content and the feeds built from it. All
// feeds are newest first with authors and commenters populated.
type PostService struct {
	repomanager repomanager.RepositoryManager
	media       media.Host
	publisher   events.Publisher
	log         logging.Logger
}

func NewPostService(m repomanager.RepositoryManager, host media.Host, pub events.Publisher, log logging.Logger) *PostService {
	return &PostService{repomanager: m, media: host, publisher: pub, log: log.With("module", "posts")}
}

// Create stores a post with text, an image payload, or both.
func (s *PostService) Create(ctx context.Context, authorID, text, img string) (*models.PostView, error) {
	if text == "" && img == "" {
		return nil, common.ErrorEmptyPost
	}

	author, err := s.repomanager.Users().GetByID(ctx, authorID)
	if err != nil {
		return nil, lookupErr("user", err)
	}

	post := &models.Post{Author: authorID, Text: text}
	if img != "" {
		url, err := s.media.Upload(ctx, img)
		if err != nil {
			if errors.Is(err, common.ErrorValidation) {
				return nil, err
			}
			return nil, fmt.Errorf("upload image: %w: %v", common.ErrorInternal, err)
		}
		post.Img = url
	}

	created, err := s.repomanager.Posts().Create(ctx, post)
	if err != nil {
		return nil, storeErr("create post", err)
	}
	s.publish(ctx, events.PostCreated, authorID, created.ID)

	v := postView(map[string]models.UserRef{author.ID: author.Ref()}, created)
	return &v, nil
}

// Delete removes the actor's own post together with its image.
func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	repo := s.repomanager.Posts()

	post, err := repo.GetByID(ctx, postID)
	if err != nil {
		return lookupErr("post", err)
	}
	if post.Author != actorID {
		return fmt.Errorf("%w: you are not authorized to delete this post", common.ErrorForbidden)
	}

	if post.Img != "" {
		if err := s.media.Delete(ctx, post.Img); err != nil {
			return fmt.Errorf("delete image: %w: %v", common.ErrorInternal, err)
		}
	}

	if err := repo.Delete(ctx, postID); err != nil {
		return storeErr("delete post", err)
	}
	s.publish(ctx, events.PostDeleted, actorID, postID)
	return nil
}

func (s *PostService) All(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.repomanager.Posts().ListAll(ctx)
	if err != nil {
		return nil, storeErr("list posts", err)
	}
	return postViews(ctx, s.repomanager.Users(), posts)
}

// Following is the feed of the users userID follows.
func (s *PostService) Following(ctx context.Context, userID string) ([]models.PostView, error) {
	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	return s.byAuthors(ctx, user.Following)
}

// Liked lists the posts the user has liked.
func (s *PostService) Liked(ctx context.Context, userID string) ([]models.PostView, error) {
	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	if len(user.LikedPosts) == 0 {
		return []models.PostView{}, nil
	}

	posts, err := s.repomanager.Posts().ListByIDs(ctx, user.LikedPosts)
	if err != nil {
		return nil, storeErr("list liked posts", err)
	}
	return postViews(ctx, s.repomanager.Users(), posts)
}

func (s *PostService) ByUsername(ctx context.Context, username string) ([]models.PostView, error) {
	user, err := s.repomanager.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	return s.byAuthors(ctx, []string{user.ID})
}

func (s *PostService) byAuthors(ctx context.Context, authorIDs []string) ([]models.PostView, error) {
	if len(authorIDs) == 0 {
		return []models.PostView{}, nil
	}
	posts, err := s.repomanager.Posts().ListByAuthors(ctx, authorIDs)
	if err != nil {
		return nil, storeErr("list posts", err)
	}
	return postViews(ctx, s.repomanager.Users(), posts)
}

func (s *PostService) publish(ctx context.Context, t events.Type, actorID, targetID string) {
	err := s.publisher.Publish(ctx, events.Event{Type: t, ActorID: actorID, TargetID: targetID, OccurredAt: time.Now().UTC()})
	if err != nil {
		s.log.Warn(ctx, "event not published", "type", t, "error", err)
	}
}

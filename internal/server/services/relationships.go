// Package services holds the business logic behind the REST surface.
//
// RelationshipService keeps the mirrored sets in step: followers and
// following on the two users, likes on the post and likedPosts on the
// liker. Every write is a set primitive of the store, the target side is
// always written before the actor side, and nothing is retried. A failure
// after the first write leaves the mirror half-applied and is reported as
// an internal error so the caller can repeat the action.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/logging"
	"github.com/abanwa/twitter/internal/server/config"
	"github.com/abanwa/twitter/internal/server/events"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/abanwa/twitter/internal/server/repositories/repomanager"
	"github.com/abanwa/twitter/internal/server/repositories/users"
)

// Policy switches the notifications that are a matter of taste.
type Policy struct {
	// NotifySelfLike emits a like notification when authors like their
	// own posts.
	NotifySelfLike bool
	// NotifyComment emits a comment notification to the post author.
	NotifyComment bool
}

func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{NotifySelfLike: cfg.NotifySelfLike, NotifyComment: cfg.NotifyComment}
}

type FollowResult struct {
	Following bool
}

type LikeResult struct {
	Liked bool
	Likes []string
}

type RelationshipService struct {
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher
	policy      Policy
	log         logging.Logger
	now         func() time.Time
}

func NewRelationshipService(m repomanager.RepositoryManager, pub events.Publisher, policy Policy, log logging.Logger) *RelationshipService {
	return &RelationshipService{
		repomanager: m,
		publisher:   pub,
		policy:      policy,
		log:         log.With("module", "relationships"),
		now:         time.Now,
	}
}

// FollowOrUnfollow toggles the follow edge from actor to target based on
// whether the actor currently follows the target.
func (s *RelationshipService) FollowOrUnfollow(ctx context.Context, actorID, targetID string) (FollowResult, error) {
	if actorID == targetID {
		return FollowResult{}, common.ErrorSelfFollow
	}

	repo := s.repomanager.Users()

	if _, err := repo.GetByID(ctx, targetID); err != nil {
		return FollowResult{}, lookupErr("user", err)
	}
	actor, err := repo.GetByID(ctx, actorID)
	if err != nil {
		return FollowResult{}, lookupErr("user", err)
	}

	if actor.IsFollowing(targetID) {
		if err := repo.RemoveFromSet(ctx, targetID, users.FieldFollowers, actorID); err != nil {
			return FollowResult{}, storeErr("unfollow", err)
		}
		if err := repo.RemoveFromSet(ctx, actorID, users.FieldFollowing, targetID); err != nil {
			s.partial(ctx, "unfollow", err, "actor", actorID, "target", targetID)
			return FollowResult{}, storeErr("unfollow", err)
		}
		s.publish(ctx, events.UserUnfollowed, actorID, targetID)
		return FollowResult{Following: false}, nil
	}

	if err := repo.AddToSet(ctx, targetID, users.FieldFollowers, actorID); err != nil {
		return FollowResult{}, storeErr("follow", err)
	}
	if err := repo.AddToSet(ctx, actorID, users.FieldFollowing, targetID); err != nil {
		s.partial(ctx, "follow", err, "actor", actorID, "target", targetID)
		return FollowResult{}, storeErr("follow", err)
	}
	if err := s.notify(ctx, actorID, targetID, models.KindFollow); err != nil {
		s.partial(ctx, "follow notification", err, "actor", actorID, "target", targetID)
		return FollowResult{}, storeErr("follow notification", err)
	}
	s.publish(ctx, events.UserFollowed, actorID, targetID)
	return FollowResult{Following: true}, nil
}

// LikeOrUnlike toggles actor's like on the post based on current
// membership of the post's likes.
func (s *RelationshipService) LikeOrUnlike(ctx context.Context, actorID, postID string) (LikeResult, error) {
	postRepo := s.repomanager.Posts()
	userRepo := s.repomanager.Users()

	post, err := postRepo.GetByID(ctx, postID)
	if err != nil {
		return LikeResult{}, lookupErr("post", err)
	}

	if post.LikedBy(actorID) {
		if err := postRepo.RemoveLike(ctx, postID, actorID); err != nil {
			return LikeResult{}, storeErr("unlike", err)
		}
		if err := userRepo.RemoveFromSet(ctx, actorID, users.FieldLikedPosts, postID); err != nil {
			s.partial(ctx, "unlike", err, "actor", actorID, "post", postID)
			return LikeResult{}, storeErr("unlike", err)
		}
		s.publish(ctx, events.PostUnliked, actorID, postID)
		return LikeResult{Liked: false, Likes: without(post.Likes, actorID)}, nil
	}

	if err := postRepo.AddLike(ctx, postID, actorID); err != nil {
		return LikeResult{}, storeErr("like", err)
	}
	if err := userRepo.AddToSet(ctx, actorID, users.FieldLikedPosts, postID); err != nil {
		s.partial(ctx, "like", err, "actor", actorID, "post", postID)
		return LikeResult{}, storeErr("like", err)
	}
	if actorID != post.Author || s.policy.NotifySelfLike {
		if err := s.notify(ctx, actorID, post.Author, models.KindLike); err != nil {
			s.partial(ctx, "like notification", err, "actor", actorID, "post", postID)
			return LikeResult{}, storeErr("like notification", err)
		}
	}
	s.publish(ctx, events.PostLiked, actorID, postID)
	return LikeResult{Liked: true, Likes: append(without(post.Likes, actorID), actorID)}, nil
}

// CommentOnPost appends a comment in arrival order and returns the
// populated post.
func (s *RelationshipService) CommentOnPost(ctx context.Context, actorID, postID, text string) (*models.PostView, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.ErrorEmptyComment
	}

	postRepo := s.repomanager.Posts()

	post, err := postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, lookupErr("post", err)
	}

	comment := models.Comment{Author: actorID, Text: text, CreatedAt: s.now().UTC()}
	if err := postRepo.AppendComment(ctx, postID, comment); err != nil {
		return nil, storeErr("comment", err)
	}

	if s.policy.NotifyComment && actorID != post.Author {
		if err := s.notify(ctx, actorID, post.Author, models.KindComment); err != nil {
			s.partial(ctx, "comment notification", err, "actor", actorID, "post", postID)
			return nil, storeErr("comment notification", err)
		}
	}
	s.publish(ctx, events.PostCommented, actorID, postID)

	updated, err := postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, storeErr("get post", err)
	}
	views, err := postViews(ctx, s.repomanager.Users(), []*models.Post{updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *RelationshipService) notify(ctx context.Context, from, to string, kind models.NotificationKind) error {
	_, err := s.repomanager.Notifications().Create(ctx, &models.Notification{
		From: from,
		To:   to,
		Kind: kind,
	})
	return err
}

func (s *RelationshipService) publish(ctx context.Context, t events.Type, actorID, targetID string) {
	err := s.publisher.Publish(ctx, events.Event{Type: t, ActorID: actorID, TargetID: targetID, OccurredAt: s.now().UTC()})
	if err != nil {
		s.log.Warn(ctx, "event not published", "type", t, "error", err)
	}
}

// partial records a write that failed after an earlier write of the same
// action had already been applied.
func (s *RelationshipService) partial(ctx context.Context, op string, err error, args ...any) {
	s.log.Error(ctx, "partial write", append([]any{"op", op, "error", err}, args...)...)
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

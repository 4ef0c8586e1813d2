// Package events fans social activity out to other consumers. Publishing
// is best effort: the request that produced an event has already been
// committed when it is published.
package events

import (
	"context"
	"time"
)

type Type string

const (
	UserFollowed   Type = "user.followed"
	UserUnfollowed Type = "user.unfollowed"
	PostLiked      Type = "post.liked"
	PostUnliked    Type = "post.unliked"
	PostCommented  Type = "post.commented"
	PostCreated    Type = "post.created"
	PostDeleted    Type = "post.deleted"
)

type Event struct {
	Type       Type      `json:"type"`
	ActorID    string    `json:"actorId"`
	TargetID   string    `json:"targetId"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

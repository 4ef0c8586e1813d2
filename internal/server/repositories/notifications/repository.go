// Package notifications is the notification store: directed events with a
// read flag, listed newest first per recipient.
package notifications

import (
	"context"

	"github.com/abanwa/twitter/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string) ([]*models.Notification, error)
	// MarkRead sets read=true on exactly the given ids.
	MarkRead(ctx context.Context, ids []string) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByRecipient(ctx context.Context, recipientID string) (int64, error)
}

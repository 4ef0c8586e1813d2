package services

import (
	"context"
	"fmt"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/logging"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/abanwa/twitter/internal/server/repositories/repomanager"
)

// NotificationService implements read-on-view: listing marks exactly the
// listed notifications as read. The unread count is always derived from
// the read flags.
type NotificationService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewNotificationService(m repomanager.RepositoryManager, log logging.Logger) *NotificationService {
	return &NotificationService{repomanager: m, log: log.With("module", "notifications")}
}

// List returns the recipient's notifications, newest first, with senders
// populated. The returned read flags are the values before this call.
func (s *NotificationService) List(ctx context.Context, recipientID string) ([]models.NotificationView, error) {
	repo := s.repomanager.Notifications()

	list, err := repo.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}

	senders := make([]string, 0, len(list))
	for _, n := range list {
		senders = append(senders, n.From)
	}
	m, err := refs(ctx, s.repomanager.Users(), senders)
	if err != nil {
		return nil, err
	}

	views := make([]models.NotificationView, 0, len(list))
	var unread []string
	for _, n := range list {
		views = append(views, models.NotificationView{
			ID:        n.ID,
			From:      refOf(m, n.From),
			To:        n.To,
			Type:      n.Kind,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
		if !n.Read {
			unread = append(unread, n.ID)
		}
	}

	if len(unread) > 0 {
		if err := repo.MarkRead(ctx, unread); err != nil {
			return nil, storeErr("mark notifications read", err)
		}
	}
	return views, nil
}

func (s *NotificationService) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	n, err := s.repomanager.Notifications().DeleteByRecipient(ctx, recipientID)
	if err != nil {
		return 0, storeErr("delete notifications", err)
	}
	s.log.Debug(ctx, "notifications deleted", "recipient", recipientID, "count", n)
	return n, nil
}

// DeleteOne removes a single notification owned by recipientID.
func (s *NotificationService) DeleteOne(ctx context.Context, notificationID, recipientID string) error {
	repo := s.repomanager.Notifications()

	n, err := repo.GetByID(ctx, notificationID)
	if err != nil {
		return lookupErr("notification", err)
	}
	if n.To != recipientID {
		return fmt.Errorf("%w: you are not allowed to delete this notification", common.ErrorForbidden)
	}

	if err := repo.Delete(ctx, notificationID); err != nil {
		return storeErr("delete notification", err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	n, err := s.repomanager.Notifications().CountUnread(ctx, recipientID)
	if err != nil {
		return 0, storeErr("count notifications", err)
	}
	return n, nil
}

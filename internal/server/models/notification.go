package models

import "time"

type NotificationKind string

const (
	KindFollow  NotificationKind = "follow"
	KindLike    NotificationKind = "like"
	KindComment NotificationKind = "comment"
)

// Notification is a directed event from one user to another. Read is the
// only field that changes after creation.
type Notification struct {
	ID        string
	From      string
	To        string
	Kind      NotificationKind
	Read      bool
	CreatedAt time.Time
}

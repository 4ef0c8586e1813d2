package services

import (
	"context"
	"testing"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/logging"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotifications(t *testing.T, m *testManager, to string, froms ...string) []*models.Notification {
	t.Helper()
	var out []*models.Notification
	for _, from := range froms {
		n, err := m.Notifications().Create(context.Background(), &models.Notification{From: from, To: to, Kind: models.KindFollow})
		require.NoError(t, err)
		out = append(out, n)
	}
	return out
}

func TestNotificationList_ReadOnView(t *testing.T) {
	m := newTestManager()
	svc := NewNotificationService(m, logging.Nop{})
	ctx := context.Background()

	r := mustUser(t, m, "recipient")
	a := mustUser(t, m, "alice")
	b := mustUser(t, m, "bob")
	seedNotifications(t, m, r.ID, a.ID, b.ID)
	seedNotifications(t, m, a.ID, b.ID)

	count, err := svc.UnreadCount(ctx, r.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	first, err := svc.List(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "bob", first[0].From.Username, "newest first")
	assert.Equal(t, "alice", first[1].From.Username)
	for _, n := range first {
		assert.False(t, n.Read, "returned values are from before the mark")
	}

	second, err := svc.List(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for i, n := range second {
		assert.Equal(t, first[i].ID, n.ID)
		assert.True(t, n.Read)
	}

	count, err = svc.UnreadCount(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// other recipients are untouched
	count, err = svc.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestNotificationList_MissingSender(t *testing.T) {
	m := newTestManager()
	svc := NewNotificationService(m, logging.Nop{})
	r := mustUser(t, m, "recipient")
	seedNotifications(t, m, r.ID, "gone")

	list, err := svc.List(context.Background(), r.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.UserRef{ID: "gone"}, list[0].From)
}

func TestNotificationList_MarkFailure(t *testing.T) {
	m := newTestManager()
	r := mustUser(t, m, "recipient")
	seedNotifications(t, m, r.ID, r.ID)
	m.notifications = failingNotifications{Repository: m.MemoryRepositoryManager.Notifications()}
	svc := NewNotificationService(m, logging.Nop{})

	_, err := svc.List(context.Background(), r.ID)
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestNotificationDeleteOne(t *testing.T) {
	m := newTestManager()
	svc := NewNotificationService(m, logging.Nop{})
	ctx := context.Background()
	r := mustUser(t, m, "recipient")
	other := mustUser(t, m, "other")
	n := seedNotifications(t, m, r.ID, other.ID)[0]

	err := svc.DeleteOne(ctx, n.ID, other.ID)
	require.ErrorIs(t, err, common.ErrorForbidden)
	_, err = m.Notifications().GetByID(ctx, n.ID)
	require.NoError(t, err, "notification left intact")

	require.ErrorIs(t, svc.DeleteOne(ctx, "missing", r.ID), common.ErrorNotFound)

	require.NoError(t, svc.DeleteOne(ctx, n.ID, r.ID))
	_, err = m.Notifications().GetByID(ctx, n.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestNotificationDeleteAll(t *testing.T) {
	m := newTestManager()
	svc := NewNotificationService(m, logging.Nop{})
	ctx := context.Background()
	r := mustUser(t, m, "recipient")
	a := mustUser(t, m, "alice")
	seedNotifications(t, m, r.ID, a.ID, a.ID, a.ID)
	seedNotifications(t, m, a.ID, r.ID)

	n, err := svc.DeleteAll(ctx, r.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Empty(t, inbox(t, m, r.ID))
	assert.Len(t, inbox(t, m, a.ID), 1)
}

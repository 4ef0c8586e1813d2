package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abanwa/twitter/internal/logging"
	"github.com/abanwa/twitter/internal/server/auth"
	"github.com/abanwa/twitter/internal/server/config"
	"github.com/abanwa/twitter/internal/server/events"
	"github.com/abanwa/twitter/internal/server/media"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/abanwa/twitter/internal/server/repositories/notifications"
	"github.com/abanwa/twitter/internal/server/repositories/posts"
	"github.com/abanwa/twitter/internal/server/repositories/repomanager"
	"github.com/abanwa/twitter/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store unavailable")

// testManager serves the in-memory repositories unless one is overridden.
type testManager struct {
	*repomanager.MemoryRepositoryManager
	users         users.Repository
	posts         posts.Repository
	notifications notifications.Repository
}

func newTestManager() *testManager {
	return &testManager{MemoryRepositoryManager: repomanager.NewMemoryRepositoryManager()}
}

func (m *testManager) Users() users.Repository {
	if m.users != nil {
		return m.users
	}
	return m.MemoryRepositoryManager.Users()
}

func (m *testManager) Posts() posts.Repository {
	if m.posts != nil {
		return m.posts
	}
	return m.MemoryRepositoryManager.Posts()
}

func (m *testManager) Notifications() notifications.Repository {
	if m.notifications != nil {
		return m.notifications
	}
	return m.MemoryRepositoryManager.Notifications()
}

// failingUsers fails set writes on one field.
type failingUsers struct {
	users.Repository
	field users.SetField
}

func (f *failingUsers) AddToSet(ctx context.Context, id string, field users.SetField, v string) error {
	if field == f.field {
		return errStore
	}
	return f.Repository.AddToSet(ctx, id, field, v)
}

func (f *failingUsers) RemoveFromSet(ctx context.Context, id string, field users.SetField, v string) error {
	if field == f.field {
		return errStore
	}
	return f.Repository.RemoveFromSet(ctx, id, field, v)
}

type failingNotifications struct {
	notifications.Repository
}

func (failingNotifications) Create(context.Context, *models.Notification) (*models.Notification, error) {
	return nil, errStore
}

func (failingNotifications) MarkRead(context.Context, []string) error { return errStore }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
		NotifySelfLike:        true,
	}
}

func mustUser(t *testing.T, m repomanager.RepositoryManager, username string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password1")
	require.NoError(t, err)
	u, err := m.Users().Create(context.Background(), &models.User{
		Username:     username,
		FullName:     username + " full",
		Email:        username + "@example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return u
}

func mustPost(t *testing.T, m repomanager.RepositoryManager, authorID, text string) *models.Post {
	t.Helper()
	p, err := m.Posts().Create(context.Background(), &models.Post{Author: authorID, Text: text})
	require.NoError(t, err)
	return p
}

func reload(t *testing.T, m repomanager.RepositoryManager, id string) *models.User {
	t.Helper()
	u, err := m.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func reloadPost(t *testing.T, m repomanager.RepositoryManager, id string) *models.Post {
	t.Helper()
	p, err := m.Posts().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func inbox(t *testing.T, m repomanager.RepositoryManager, id string) []*models.Notification {
	t.Helper()
	list, err := m.Notifications().ListByRecipient(context.Background(), id)
	require.NoError(t, err)
	return list
}

func newRelationships(m repomanager.RepositoryManager, pub events.Publisher, policy Policy) *RelationshipService {
	return NewRelationshipService(m, pub, policy, logging.Nop{})
}

func newUsers(m repomanager.RepositoryManager, host media.Host) *UserService {
	return NewUserService(m, host, auth.NewMemoryRevoker(), testConfig(), logging.Nop{})
}

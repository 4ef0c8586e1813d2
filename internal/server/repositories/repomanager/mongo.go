package repomanager

import (
	"context"
	"fmt"

	"github.com/abanwa/twitter/internal/server/repositories/notifications"
	"github.com/abanwa/twitter/internal/server/repositories/posts"
	"github.com/abanwa/twitter/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection         = "users"
	postsCollection         = "posts"
	notificationsCollection = "notifications"
)

// MongoRepositoryManager vends MongoDB-backed repositories over one client.
type MongoRepositoryManager struct {
	client        *mongo.Client
	db            *mongo.Database
	users         *users.MongoRepository
	posts         *posts.MongoRepository
	notifications *notifications.MongoRepository
}

// mongoConnect is a seam for tests.
var mongoConnect = func(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

// NewMongoRepositoryManager connects to uri, pings the primary and makes
// sure the indexes the repositories rely on exist.
func NewMongoRepositoryManager(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongoConnect(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	m := newMongoManager(client, client.Database(database))
	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	if err := m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return m, nil
}

func newMongoManager(client *mongo.Client, db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client:        client,
		db:            db,
		users:         users.NewMongoRepository(db.Collection(usersCollection)),
		posts:         posts.NewMongoRepository(db.Collection(postsCollection)),
		notifications: notifications.NewMongoRepository(db.Collection(notificationsCollection)),
	}
}

// EnsureIndexes creates the unique and listing indexes. It is idempotent.
func (m *MongoRepositoryManager) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "to", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for _, name := range []string{usersCollection, postsCollection, notificationsCollection} {
		if _, err := m.db.Collection(name).Indexes().CreateMany(ctx, indexes[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (m *MongoRepositoryManager) Users() users.Repository { return m.users }

func (m *MongoRepositoryManager) Posts() posts.Repository { return m.posts }

func (m *MongoRepositoryManager) Notifications() notifications.Repository { return m.notifications }

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

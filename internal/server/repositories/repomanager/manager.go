// Package repomanager opens the configured store backend and vends the
// repositories bound to it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/server/config"
	"github.com/abanwa/twitter/internal/server/repositories/notifications"
	"github.com/abanwa/twitter/internal/server/repositories/posts"
	"github.com/abanwa/twitter/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Posts() posts.Repository
	Notifications() notifications.Repository
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// New connects to the backend selected by cfg.StoreBackend and prepares
// its schema (migrations for postgres, indexes for mongo).
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		return NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.BackendPostgres:
		return NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.BackendMemory:
		return NewMemoryRepositoryManager(), nil
	}
	return nil, fmt.Errorf("%w: unknown store backend %q", common.ErrorValidation, cfg.StoreBackend)
}

// Package server wires the configured store, integrations and services
// together and runs the HTTP API and the gRPC health endpoint until the
// process is told to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/abanwa/twitter/internal/logging"
	"github.com/abanwa/twitter/internal/server/auth"
	"github.com/abanwa/twitter/internal/server/config"
	"github.com/abanwa/twitter/internal/server/events"
	"github.com/abanwa/twitter/internal/server/health"
	"github.com/abanwa/twitter/internal/server/httpserver"
	"github.com/abanwa/twitter/internal/server/media"
	"github.com/abanwa/twitter/internal/server/repositories/repomanager"
	"github.com/abanwa/twitter/internal/server/services"
	"github.com/abanwa/twitter/internal/server/tracing"
	"github.com/redis/go-redis/v9"
)

var (
	openRepositories = repomanager.New

	newMediaHost = func(ctx context.Context, c *config.Config) (media.Host, error) {
		return media.NewS3Host(ctx, c)
	}

	newPublisher = func(ctx context.Context, url string) (events.Publisher, error) {
		return events.NewNatsPublisher(ctx, url)
	}

	newRedisClient = func(addr string) redis.UniversalClient {
		return redis.NewClient(&redis.Options{Addr: addr})
	}
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	repos        repomanager.RepositoryManager
	publisher    events.Publisher
	media        media.Host
	redis        redis.UniversalClient
	stopTracing  tracing.ShutdownFunc
	httpServer   *httpserver.Server
	healthServer *health.Server
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	stopTracing, err := tracing.Init(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}
	app.stopTracing = stopTracing

	app.repos, err = openRepositories(ctx, c)
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("store init error: %w", err)
	}

	revoker, err := app.initRevoker(ctx)
	if err != nil {
		app.close(ctx)
		return nil, err
	}

	app.publisher = events.Nop{}
	if c.NatsURL != "" {
		if app.publisher, err = newPublisher(ctx, c.NatsURL); err != nil {
			app.publisher = nil
			app.close(ctx)
			return nil, fmt.Errorf("nats init error: %w", err)
		}
	}

	var host media.Host = media.NewMemoryHost(c.S3PublicURL)
	if c.S3Bucket != "" {
		if host, err = newMediaHost(ctx, c); err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("media init error: %w", err)
		}
	} else {
		logger.Warn(ctx, "no bucket configured, images are kept in memory")
	}
	app.media = host

	app.httpServer = httpserver.NewServer(c, logger, httpserver.Services{
		Users:         services.NewUserService(app.repos, host, revoker, c, logger),
		Relationships: services.NewRelationshipService(app.repos, app.publisher, services.PolicyFromConfig(c), logger),
		Posts:         services.NewPostService(app.repos, host, app.publisher, logger),
		Notifications: services.NewNotificationService(app.repos, logger),
		Health:        app.repos,
	})
	app.healthServer = health.NewServer(c.EndpointAddrGRPC, c.ServiceName, app.repos, c.HealthCheckInterval, logger)

	return app, nil
}

// initRevoker keeps the logout denylist in redis when an address is
// configured and in process memory otherwise.
func (app *App) initRevoker(ctx context.Context) (auth.Revoker, error) {
	if app.config.RedisAddr == "" {
		return auth.NewMemoryRevoker(), nil
	}

	app.redis = newRedisClient(app.config.RedisAddr)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := app.redis.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	return auth.NewRedisRevoker(app.redis), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.healthServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "health server error", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or one
// of the servers fails, and then releases every resource.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "backend", app.config.StoreBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHealthServer(ctx, cancelFunc)
	}()

	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.close(closeCtx)
	app.logger.Info(closeCtx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Warn(ctx, "publisher close error", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close error", "error", err)
		}
	}
	if app.repos != nil {
		if err := app.repos.Close(ctx); err != nil {
			app.logger.Warn(ctx, "store close error", "error", err)
		}
	}
	if app.stopTracing != nil {
		if err := app.stopTracing(ctx); err != nil {
			app.logger.Warn(ctx, "tracing shutdown error", "error", err)
		}
	}
}

// Package httpserver is the REST transport: a gin engine exposing the
// account, graph, post and notification endpoints under /api.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/abanwa/twitter/internal/logging"
	"github.com/abanwa/twitter/internal/server/auth"
	"github.com/abanwa/twitter/internal/server/config"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/abanwa/twitter/internal/server/services"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 5 * time.Second

type Users interface {
	Signup(ctx context.Context, in services.SignupInput) (*models.User, *auth.Session, error)
	Login(ctx context.Context, username, password string) (*models.User, *auth.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	Profile(ctx context.Context, username string) (*models.User, error)
	Suggested(ctx context.Context, callerID string) ([]*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in services.UpdateInput) (*models.User, error)
}

type Relationships interface {
	FollowOrUnfollow(ctx context.Context, actorID, targetID string) (services.FollowResult, error)
	LikeOrUnlike(ctx context.Context, actorID, postID string) (services.LikeResult, error)
	CommentOnPost(ctx context.Context, actorID, postID, text string) (*models.PostView, error)
}

type Posts interface {
	Create(ctx context.Context, authorID, text, img string) (*models.PostView, error)
	Delete(ctx context.Context, actorID, postID string) error
	All(ctx context.Context) ([]models.PostView, error)
	Following(ctx context.Context, userID string) ([]models.PostView, error)
	Liked(ctx context.Context, userID string) ([]models.PostView, error)
	ByUsername(ctx context.Context, username string) ([]models.PostView, error)
}

type Notifications interface {
	List(ctx context.Context, recipientID string) ([]models.NotificationView, error)
	DeleteAll(ctx context.Context, recipientID string) (int64, error)
	DeleteOne(ctx context.Context, notificationID, recipientID string) error
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Users         Users
	Relationships Relationships
	Posts         Posts
	Notifications Notifications
	Health        Pinger
}

type Server struct {
	Services
	address string
	config  *config.Config
	logger  logging.Logger
	engine  *gin.Engine
}

func NewServer(cfg *config.Config, l logging.Logger, svc Services) *Server {
	s := &Server{
		Services: svc,
		address:  cfg.EndpointAddrHTTP,
		config:   cfg,
		logger:   l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

// Handler is the instrumented root handler.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, s.config.ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
		}))
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server forced to shut down", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

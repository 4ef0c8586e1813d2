package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/gin-gonic/gin"
)

const userKey = "user"

// RequireAuth resolves the session cookie to a user and stores it on the
// gin context. Requests without a valid session stop here with 401.
func (s *Server) RequireAuth(c *gin.Context) {
	token, err := c.Cookie(common.AuthCookieName)
	if err != nil || token == "" {
		s.fail(c, common.ErrorUnauthorized)
		return
	}

	user, err := s.Users.Authenticate(c.Request.Context(), token)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Set(userKey, user)
	c.Next()
}

// currentUser is only valid behind RequireAuth.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if v, ok := c.Get(userKey); ok {
			args = append(args, "user", v.(*models.User).ID)
		}

		ctx := c.Request.Context()
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			s.logger.Error(ctx, "request", args...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(ctx, "request", args...)
		default:
			s.logger.Info(ctx, "request", args...)
		}
	}
}

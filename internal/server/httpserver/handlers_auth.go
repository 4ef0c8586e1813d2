package httpserver

import (
	"net/http"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/server/auth"
	"github.com/abanwa/twitter/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) setSessionCookie(c *gin.Context, session *auth.Session) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(common.AuthCookieName, session.Token, int(s.config.TokenValidityDuration.Seconds()), "/", "", !s.config.IsDevelopment(), true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(common.AuthCookieName, "", -1, "/", "", !s.config.IsDevelopment(), true)
}

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}

	user, session, err := s.Users.Signup(c.Request.Context(), services.SignupInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	s.setSessionCookie(c, session)
	c.JSON(http.StatusCreated, user.Public())
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}

	user, session, err := s.Users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.setSessionCookie(c, session)
	c.JSON(http.StatusOK, user.Public())
}

func (s *Server) logout(c *gin.Context) {
	token, _ := c.Cookie(common.AuthCookieName)
	if err := s.Users.Logout(c.Request.Context(), token); err != nil {
		s.fail(c, err)
		return
	}

	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) me(c *gin.Context) {
	user, err := s.Users.Me(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (s *Server) healthz(c *gin.Context) {
	if s.Health != nil {
		if err := s.Health.Ping(c.Request.Context()); err != nil {
			s.logger.Warn(c.Request.Context(), "store unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

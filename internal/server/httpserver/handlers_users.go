package httpserver

import (
	"net/http"

	"github.com/abanwa/twitter/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) profile(c *gin.Context) {
	user, err := s.Users.Profile(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (s *Server) suggested(c *gin.Context) {
	list, err := s.Users.Suggested(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, publicUsers(list))
}

func (s *Server) follow(c *gin.Context) {
	res, err := s.Relationships.FollowOrUnfollow(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	msg := "User unfollowed successfully"
	if res.Following {
		msg = "User followed successfully"
	}
	c.JSON(http.StatusOK, messageResponse{Message: msg})
}

func (s *Server) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}

	user, err := s.Users.UpdateProfile(c.Request.Context(), currentUser(c).ID, services.UpdateInput{
		FullName:        req.FullName,
		Username:        req.Username,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		Bio:             req.Bio,
		Link:            req.Link,
		ProfileImg:      req.ProfileImg,
		CoverImg:        req.CoverImg,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

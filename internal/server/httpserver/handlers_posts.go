package httpserver

import (
	"net/http"

	"github.com/abanwa/twitter/internal/server/models"
	"github.com/gin-gonic/gin"
)

func (s *Server) listPosts(c *gin.Context, list []models.PostView, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) allPosts(c *gin.Context) {
	list, err := s.Posts.All(c.Request.Context())
	s.listPosts(c, list, err)
}

func (s *Server) followingPosts(c *gin.Context) {
	list, err := s.Posts.Following(c.Request.Context(), currentUser(c).ID)
	s.listPosts(c, list, err)
}

func (s *Server) likedPosts(c *gin.Context) {
	list, err := s.Posts.Liked(c.Request.Context(), c.Param("id"))
	s.listPosts(c, list, err)
}

func (s *Server) userPosts(c *gin.Context) {
	list, err := s.Posts.ByUsername(c.Request.Context(), c.Param("username"))
	s.listPosts(c, list, err)
}

func (s *Server) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}

	post, err := s.Posts.Create(c.Request.Context(), currentUser(c).ID, req.Text, req.Img)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) deletePost(c *gin.Context) {
	if err := s.Posts.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Post deleted successfully"})
}

// like answers with the post's likes after the toggle.
func (s *Server) like(c *gin.Context) {
	res, err := s.Relationships.LikeOrUnlike(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Likes)
}

func (s *Server) comment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}

	post, err := s.Relationships.CommentOnPost(c.Request.Context(), currentUser(c).ID, c.Param("id"), req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

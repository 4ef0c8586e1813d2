package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) notifications(c *gin.Context) {
	list, err := s.Notifications.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) unreadCount(c *gin.Context) {
	n, err := s.Notifications.UnreadCount(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, countResponse{Count: n})
}

func (s *Server) deleteNotifications(c *gin.Context) {
	if _, err := s.Notifications.DeleteAll(c.Request.Context(), currentUser(c).ID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Notifications deleted successfully"})
}

func (s *Server) deleteNotification(c *gin.Context) {
	if err := s.Notifications.DeleteOne(c.Request.Context(), c.Param("id"), currentUser(c).ID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Notification deleted successfully"})
}

package httpserver

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNames sync.Once

// useJSONNames makes validation errors name fields the way clients send
// them.
func useJSONNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func (s *Server) routes() *gin.Engine {
	if !s.config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	useJSONNames()

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), requestTimeout(s.config.RequestTimeout))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", s.healthz)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", s.signup)
	authGroup.POST("/login", s.login)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/me", s.RequireAuth, s.me)

	users := api.Group("/users", s.RequireAuth)
	users.GET("/profile/:username", s.profile)
	users.GET("/suggested", s.suggested)
	users.POST("/follow/:id", s.follow)
	users.POST("/update", s.updateUser)

	posts := api.Group("/posts", s.RequireAuth)
	posts.GET("/all", s.allPosts)
	posts.GET("/following", s.followingPosts)
	posts.GET("/likes/:id", s.likedPosts)
	posts.GET("/user/:username", s.userPosts)
	posts.POST("/create", s.createPost)
	posts.POST("/like/:id", s.like)
	posts.POST("/comment/:id", s.comment)
	posts.DELETE("/:id", s.deletePost)

	notifications := api.Group("/notifications", s.RequireAuth)
	notifications.GET("", s.notifications)
	notifications.GET("/unread", s.unreadCount)
	notifications.DELETE("", s.deleteNotifications)
	notifications.DELETE("/:id", s.deleteNotification)

	return r
}

package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/threaddit/internal/config"
	"github.com/emilythestrangee/threaddit/internal/database"
	"github.com/emilythestrangee/threaddit/internal/handlers"
	"github.com/emilythestrangee/threaddit/internal/jobs"
	"github.com/emilythestrangee/threaddit/internal/middleware"
	"github.com/emilythestrangee/threaddit/internal/notify"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
	sweeper *jobs.ScoreSweeper
}

// NewServer creates and configures a new server along with the background
// score sweeper. The sweeper is returned unstarted so the caller controls
// its lifecycle.
func NewServer() (*http.Server, *jobs.ScoreSweeper) {
	cfg := config.Load()

	db := database.New(cfg)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TwilioAccountSID != "" {
		notifier = notify.NewTwilio(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	}

	handler := handlers.NewHandler(db.GetDB(), cfg, notifier)
	sweeper := jobs.NewScoreSweeper(db.GetDB(), nil, cfg.ScoreInterval, cfg.ScoreWindow)

	newServer := &Server{
		db:      db,
		handler: handler,
		sweeper: sweeper,
	}

	router := newServer.RegisterRoutes()

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", cfg.Port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server, sweeper
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)
		api.POST("/forgot-password", s.handler.Auth.ForgotPassword)
		api.POST("/reset-password", s.handler.Auth.ResetPassword)

		// Public reads
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.GET("/comments", s.handler.Comment.GetComments)
		api.GET("/comments/:id", s.handler.Comment.GetComment)
		api.GET("/replies", s.handler.Reply.GetReplies)
		api.GET("/replies/:id", s.handler.Reply.GetReply)
		api.GET("/communities", s.handler.Community.GetCommunities)
		api.GET("/communities/:id", s.handler.Community.GetCommunity)
		api.GET("/users/:id", s.handler.User.GetUserProfile)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/me", s.handler.Auth.GetMe)
			protected.GET("/feed", s.handler.Post.GetFeed)

			// Posts
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
			protected.POST("/posts/:id/upvote", s.handler.Post.Upvote)
			protected.POST("/posts/:id/downvote", s.handler.Post.Downvote)
			protected.DELETE("/posts/:id/upvote", s.handler.Post.RemoveUpvote)
			protected.DELETE("/posts/:id/downvote", s.handler.Post.RemoveDownvote)

			// Comments
			protected.POST("/comments", s.handler.Comment.CreateComment)
			protected.DELETE("/comments/:id", s.handler.Comment.DeleteComment)
			protected.POST("/comments/:id/upvote", s.handler.Comment.Upvote)
			protected.POST("/comments/:id/downvote", s.handler.Comment.Downvote)
			protected.DELETE("/comments/:id/upvote", s.handler.Comment.RemoveUpvote)
			protected.DELETE("/comments/:id/downvote", s.handler.Comment.RemoveDownvote)

			// Replies
			protected.POST("/replies", s.handler.Reply.CreateReply)
			protected.DELETE("/replies/:id", s.handler.Reply.DeleteReply)
			protected.POST("/replies/:id/upvote", s.handler.Reply.Upvote)
			protected.POST("/replies/:id/downvote", s.handler.Reply.Downvote)
			protected.DELETE("/replies/:id/upvote", s.handler.Reply.RemoveUpvote)
			protected.DELETE("/replies/:id/downvote", s.handler.Reply.RemoveDownvote)

			// Communities
			protected.POST("/communities", s.handler.Community.CreateCommunity)
			protected.PUT("/communities/:id", s.handler.Community.UpdateCommunity)
			protected.DELETE("/communities/:id", s.handler.Community.DeleteCommunity)
			protected.POST("/communities/:id/subscribe", s.handler.Community.Subscribe)
			protected.POST("/communities/:id/unsubscribe", s.handler.Community.Unsubscribe)
			protected.POST("/communities/:id/ban", s.handler.Community.Ban)
			protected.POST("/communities/:id/unban", s.handler.Community.Unban)

			// Users
			protected.PUT("/users/:id", s.handler.User.UpdateUserProfile)
		}
	}

	return r
}

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/threaddit/internal/apperr"
	"github.com/emilythestrangee/threaddit/internal/communities"
	"github.com/emilythestrangee/threaddit/internal/config"
	"github.com/emilythestrangee/threaddit/internal/content"
	"github.com/emilythestrangee/threaddit/internal/models"
	"github.com/emilythestrangee/threaddit/internal/notify"
	"github.com/emilythestrangee/threaddit/internal/votes"
)

// voteOp is any of the four vote-transition operations.
type voteOp func(ctx context.Context, k votes.Kind, docID, voterID int) (models.Document, error)

type moderationOp func(ctx context.Context, communityID, targetID, requesterID int) error

// Handler combines all handler types
type Handler struct {
	Auth      *AuthHandler
	Post      *PostHandler
	Comment   *CommentHandler
	Reply     *ReplyHandler
	Community *CommunityHandler
	User      *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, cfg *config.Config, notifier notify.Notifier) *Handler {
	contentSvc := content.New(db)
	voteSvc := votes.New(db)
	communitySvc := communities.New(db)

	return &Handler{
		Auth:      NewAuthHandler(db, cfg, notifier),
		Post:      NewPostHandler(contentSvc, voteSvc),
		Comment:   NewCommentHandler(contentSvc, voteSvc),
		Reply:     NewReplyHandler(contentSvc, voteSvc),
		Community: NewCommunityHandler(communitySvc),
		User:      NewUserHandler(db),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// respondErr translates a service failure into its HTTP shape.
func respondErr(c *gin.Context, err error) {
	status, msg := apperr.Status(err)
	c.JSON(status, gin.H{"error": msg})
}

// listOptions reads the generic query shape: ?sort=-score,created_at&limit=25&page=2
func listOptions(c *gin.Context) content.ListOptions {
	limit, _ := strconv.Atoi(c.Query("limit"))
	page, _ := strconv.Atoi(c.Query("page"))
	return content.ListOptions{
		Sort:  c.Query("sort"),
		Limit: limit,
		Page:  page,
	}
}

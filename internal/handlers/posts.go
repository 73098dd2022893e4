package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/threaddit/internal/content"
	"github.com/emilythestrangee/threaddit/internal/models"
	"github.com/emilythestrangee/threaddit/internal/votes"
)

type PostHandler struct {
	content *content.Service
	votes   *votes.Service
}

func NewPostHandler(contentSvc *content.Service, voteSvc *votes.Service) *PostHandler {
	return &PostHandler{content: contentSvc, votes: voteSvc}
}

func (h *PostHandler) GetPosts(c *gin.Context) {
	communityID, _ := strconv.Atoi(c.Query("community_id"))

	posts, err := h.content.ListPosts(c.Request.Context(), communityID, listOptions(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	// If no posts, return empty array not null
	if posts == nil {
		posts = []models.Post{}
	}

	c.JSON(http.StatusOK, gin.H{"results": len(posts), "posts": posts})
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	post, err := h.content.GetPost(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// GetFeed returns posts from the communities the user subscribes to
func (h *PostHandler) GetFeed(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	posts, err := h.content.Feed(c.Request.Context(), userID, listOptions(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	if posts == nil {
		posts = []models.Post{}
	}

	c.JSON(http.StatusOK, gin.H{"results": len(posts), "posts": posts})
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.content.CreatePost(c.Request.Context(), userID, input)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// DeletePost deletes a post (creator, moderator or admin)
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.content.Delete(c.Request.Context(), votes.KindPost, id, userID); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *PostHandler) Upvote(c *gin.Context)         { h.vote(c, h.votes.Upvote) }
func (h *PostHandler) Downvote(c *gin.Context)       { h.vote(c, h.votes.Downvote) }
func (h *PostHandler) RemoveUpvote(c *gin.Context)   { h.vote(c, h.votes.RemoveUpvote) }
func (h *PostHandler) RemoveDownvote(c *gin.Context) { h.vote(c, h.votes.RemoveDownvote) }

func (h *PostHandler) vote(c *gin.Context, op voteOp) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	doc, err := op(c.Request.Context(), votes.KindPost, id, userID)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

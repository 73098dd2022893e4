package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/threaddit/internal/content"
	"github.com/emilythestrangee/threaddit/internal/models"
	"github.com/emilythestrangee/threaddit/internal/votes"
)

type CommentHandler struct {
	content *content.Service
	votes   *votes.Service
}

func NewCommentHandler(contentSvc *content.Service, voteSvc *votes.Service) *CommentHandler {
	return &CommentHandler{content: contentSvc, votes: voteSvc}
}

// GetComments returns comments, optionally scoped to ?post_id=
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, _ := strconv.Atoi(c.Query("post_id"))

	comments, err := h.content.ListComments(c.Request.Context(), postID, listOptions(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	if comments == nil {
		comments = []models.Comment{}
	}

	c.JSON(http.StatusOK, gin.H{"results": len(comments), "comments": comments})
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	comment, err := h.content.GetComment(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.content.CreateComment(c.Request.Context(), userID, input)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// DeleteComment deletes a comment (creator, moderator or admin)
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.content.Delete(c.Request.Context(), votes.KindComment, id, userID); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (h *CommentHandler) Upvote(c *gin.Context)         { h.vote(c, h.votes.Upvote) }
func (h *CommentHandler) Downvote(c *gin.Context)       { h.vote(c, h.votes.Downvote) }
func (h *CommentHandler) RemoveUpvote(c *gin.Context)   { h.vote(c, h.votes.RemoveUpvote) }
func (h *CommentHandler) RemoveDownvote(c *gin.Context) { h.vote(c, h.votes.RemoveDownvote) }

func (h *CommentHandler) vote(c *gin.Context, op voteOp) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	doc, err := op(c.Request.Context(), votes.KindComment, id, userID)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

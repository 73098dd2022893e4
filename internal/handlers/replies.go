package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/threaddit/internal/content"
	"github.com/emilythestrangee/threaddit/internal/models"
	"github.com/emilythestrangee/threaddit/internal/votes"
)

type ReplyHandler struct {
	content *content.Service
	votes   *votes.Service
}

func NewReplyHandler(contentSvc *content.Service, voteSvc *votes.Service) *ReplyHandler {
	return &ReplyHandler{content: contentSvc, votes: voteSvc}
}

// GetReplies returns replies, optionally scoped to ?parent_type=&parent_id=
func (h *ReplyHandler) GetReplies(c *gin.Context) {
	parentID, _ := strconv.Atoi(c.Query("parent_id"))

	replies, err := h.content.ListReplies(c.Request.Context(), c.Query("parent_type"), parentID, listOptions(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	if replies == nil {
		replies = []models.Reply{}
	}

	c.JSON(http.StatusOK, gin.H{"results": len(replies), "replies": replies})
}

func (h *ReplyHandler) GetReply(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	reply, err := h.content.GetReply(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// CreateReply creates a reply under a comment or another reply
func (h *ReplyHandler) CreateReply(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateReplyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.content.CreateReply(c.Request.Context(), userID, input)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

// DeleteReply deletes a reply (creator, moderator or admin)
func (h *ReplyHandler) DeleteReply(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.content.Delete(c.Request.Context(), votes.KindReply, id, userID); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reply deleted successfully"})
}

func (h *ReplyHandler) Upvote(c *gin.Context)         { h.vote(c, h.votes.Upvote) }
func (h *ReplyHandler) Downvote(c *gin.Context)       { h.vote(c, h.votes.Downvote) }
func (h *ReplyHandler) RemoveUpvote(c *gin.Context)   { h.vote(c, h.votes.RemoveUpvote) }
func (h *ReplyHandler) RemoveDownvote(c *gin.Context) { h.vote(c, h.votes.RemoveDownvote) }

func (h *ReplyHandler) vote(c *gin.Context, op voteOp) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	doc, err := op(c.Request.Context(), votes.KindReply, id, userID)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/threaddit/internal/communities"
	"github.com/emilythestrangee/threaddit/internal/models"
)

type CommunityHandler struct {
	communities *communities.Service
}

func NewCommunityHandler(svc *communities.Service) *CommunityHandler {
	return &CommunityHandler{communities: svc}
}

func (h *CommunityHandler) GetCommunities(c *gin.Context) {
	all, err := h.communities.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}

	if all == nil {
		all = []models.Community{}
	}

	c.JSON(http.StatusOK, gin.H{"results": len(all), "communities": all})
}

func (h *CommunityHandler) GetCommunity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	community, err := h.communities.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, community)
}

// CreateCommunity creates a community (requires 50 karma)
func (h *CommunityHandler) CreateCommunity(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateCommunityRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	community, err := h.communities.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, community)
}

// UpdateCommunity updates community settings (creator only)
func (h *CommunityHandler) UpdateCommunity(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.UpdateCommunityRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	community, err := h.communities.Update(c.Request.Context(), id, userID, input)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, community)
}

// DeleteCommunity deletes a community (creator or admin)
func (h *CommunityHandler) DeleteCommunity(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.communities.Delete(c.Request.Context(), id, userID); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Community deleted successfully"})
}

func (h *CommunityHandler) Subscribe(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.communities.Subscribe(c.Request.Context(), id, userID); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscribed"})
}

func (h *CommunityHandler) Unsubscribe(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.communities.Unsubscribe(c.Request.Context(), id, userID); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
}

// Ban bans a user from a community (creator or moderator)
func (h *CommunityHandler) Ban(c *gin.Context) {
	h.moderate(c, h.communities.Ban, "User banned")
}

// Unban lifts a community ban (creator or moderator)
func (h *CommunityHandler) Unban(c *gin.Context) {
	h.moderate(c, h.communities.Unban, "User unbanned")
}

func (h *CommunityHandler) moderate(c *gin.Context, op moderationOp, message string) {
	requesterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := op(c.Request.Context(), id, input.UserID, requesterID); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

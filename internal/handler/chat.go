package handler

import (
	"errors"
	"net/http"
	"strings"

	"concierge/internal/model"
	"concierge/internal/service"
	"concierge/internal/store"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles conversation HTTP requests
type ChatHandler struct {
	concierge *service.Concierge
}

// NewChatHandler creates a new chat handler
func NewChatHandler(concierge *service.Concierge) *ChatHandler {
	return &ChatHandler{
		concierge: concierge,
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must not be empty"})
		return
	}

	// Turn failures are already folded into an apology response
	response := h.concierge.SendMessage(c.Request.Context(), req.Message, req.UserID)
	c.JSON(http.StatusOK, response)
}

// GetSession handles GET /api/v1/sessions/:userId
func (h *ChatHandler) GetSession(c *gin.Context) {
	userID := c.Param("userId")

	state, err := h.concierge.Session(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get session: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

// UpdatePreferences handles PUT /api/v1/sessions/:userId/preferences
func (h *ChatHandler) UpdatePreferences(c *gin.Context) {
	var req model.PreferenceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.RiskTolerance != "" && !req.RiskTolerance.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid risk_tolerance. Must be one of: low, medium, high"})
		return
	}

	state, err := h.concierge.UpdatePreferences(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

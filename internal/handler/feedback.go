package handler

import (
	"context"
	"net/http"

	"concierge/internal/logger"
	"concierge/internal/model"
	"concierge/internal/service"

	"github.com/gin-gonic/gin"
)

// FeedbackLogger attaches user actions to the search log
type FeedbackLogger interface {
	LogFeedback(ctx context.Context, userID, listingID string, action model.ActionType) error
}

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	leads     *service.LeadManager
	searchLog FeedbackLogger
	log       *logger.Logger
}

// NewFeedbackHandler creates a new feedback handler. searchLog may be nil.
func NewFeedbackHandler(leads *service.LeadManager, searchLog FeedbackLogger, log *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		leads:     leads,
		searchLog: searchLog,
		log:       log.With("handler", "FeedbackHandler"),
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Validate action
	if !req.Action.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action: " + string(req.Action)})
		return
	}

	if _, err := h.leads.RecordFeedback(c.Request.Context(), req.UserID, req.Action, req.PropertyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record feedback: " + err.Error()})
		return
	}

	// The search log is best effort
	if h.searchLog != nil && req.PropertyID != "" {
		if err := h.searchLog.LogFeedback(c.Request.Context(), req.UserID, req.PropertyID, req.Action); err != nil {
			h.log.Warn("failed to log feedback", "user_id", req.UserID, "error", err)
		}
	}

	response := model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	}

	c.JSON(http.StatusOK, response)
}

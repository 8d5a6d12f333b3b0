package handler

import (
	"errors"
	"net/http"

	"concierge/internal/model"
	"concierge/internal/service"
	"concierge/internal/store"

	"github.com/gin-gonic/gin"
)

// LeadHandler handles lead HTTP requests
type LeadHandler struct {
	leads *service.LeadManager
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leads *service.LeadManager) *LeadHandler {
	return &LeadHandler{
		leads: leads,
	}
}

// GetLead handles GET /api/v1/leads/:userId
func (h *LeadHandler) GetLead(c *gin.Context) {
	profile, err := h.leads.Profile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get lead: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Convert handles POST /api/v1/leads/:userId/convert
func (h *LeadHandler) Convert(c *gin.Context) {
	profile, err := h.leads.RecordConversion(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert lead: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Nurturing handles GET /api/v1/nurturing/:level
func (h *LeadHandler) Nurturing(c *gin.Context) {
	level := model.QualificationLevel(c.Param("level"))
	if !level.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid level. Must be one of: low, medium, high, premium"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"level":    level,
		"sequence": h.leads.GetNurturingSequence(level),
	})
}

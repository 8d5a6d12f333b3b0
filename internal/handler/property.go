package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"concierge/internal/model"
	"concierge/internal/service"
	"concierge/internal/store"

	"github.com/gin-gonic/gin"
)

// ListingRepository looks up stored listings and their neighbours
type ListingRepository interface {
	ListingByID(ctx context.Context, listingID string) (*model.PropertyListing, error)
	SimilarListings(ctx context.Context, listingID string, limit int) ([]model.PropertyListing, error)
}

// PropertyHandler handles property intelligence HTTP requests
type PropertyHandler struct {
	engine       *service.PropertyEngine
	listings     ListingRepository
	defaultLimit int
	maxLimit     int
}

// NewPropertyHandler creates a new property handler. listings may be nil
// when no database is configured.
func NewPropertyHandler(engine *service.PropertyEngine, listings ListingRepository, defaultLimit, maxLimit int) *PropertyHandler {
	return &PropertyHandler{
		engine:       engine,
		listings:     listings,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Search handles POST /api/v1/properties/search
func (h *PropertyHandler) Search(c *gin.Context) {
	startTime := time.Now()

	var req model.PropertySearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	results, err := h.engine.SearchProperties(c.Request.Context(), req.Criteria, req.Preferences)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}

	for i := range results {
		results[i] = h.engine.Enrich(results[i])
	}

	c.JSON(http.StatusOK, model.PropertySearchResponse{
		Results: results,
		Total:   len(results),
		Took:    time.Since(startTime).Milliseconds(),
	})
}

// Similar handles GET /api/v1/properties/:id/similar
func (h *PropertyHandler) Similar(c *gin.Context) {
	if h.listings == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Similar listings require a database"})
		return
	}

	listingID := c.Param("id")
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	if _, err := h.listings.ListingByID(c.Request.Context(), listingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing: " + err.Error()})
		return
	}

	similar, err := h.listings.SimilarListings(c.Request.Context(), listingID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find similar listings: " + err.Error()})
		return
	}

	for i := range similar {
		similar[i] = h.engine.Enrich(similar[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"listing_id": listingID,
		"results":    similar,
		"total":      len(similar),
	})
}

// Valuation handles POST /api/v1/valuations
func (h *PropertyHandler) Valuation(c *gin.Context) {
	var req model.ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.engine.DetailedValuation(req.Address))
}

// Market handles GET /api/v1/market/:location
func (h *PropertyHandler) Market(c *gin.Context) {
	// Unknown locations fall back to the default market
	c.JSON(http.StatusOK, h.engine.MarketInsights(c.Param("location")))
}

package handler

import (
	"context"
	"fmt"
	"net/http"

	"concierge/internal/model"

	"github.com/gin-gonic/gin"
)

// EmbeddingStore persists listing embeddings
type EmbeddingStore interface {
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
}

// EmbeddingHandler handles embedding-related HTTP requests
type EmbeddingHandler struct {
	store      EmbeddingStore
	dimensions int
}

// NewEmbeddingHandler creates a new embedding handler. store may be nil
// when no database is configured.
func NewEmbeddingHandler(store EmbeddingStore, dimensions int) *EmbeddingHandler {
	return &EmbeddingHandler{
		store:      store,
		dimensions: dimensions,
	}
}

// BatchUpdate handles POST /api/v1/properties/embeddings
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Embeddings require a database"})
		return
	}

	var req model.EmbeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No embeddings provided"})
		return
	}

	// Validate embedding dimensions
	for i, item := range req.Embeddings {
		if len(item.Embedding) != h.dimensions {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid embedding dimension at index %d, expected %d", i, h.dimensions),
			})
			return
		}
	}

	// Update embeddings
	success, errs := h.store.BatchUpdateEmbeddings(c.Request.Context(), req.Embeddings)

	response := model.EmbeddingBatchResponse{
		Success: success,
		Failed:  len(req.Embeddings) - success,
		Errors:  errs,
	}

	if len(errs) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}

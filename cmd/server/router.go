package main

import (
	"context"
	"net/http"
	"time"

	"concierge/internal/config"
	"concierge/internal/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func setupRouter(cfg *config.Config, app *application) *gin.Engine {
	// Initialize handlers
	var (
		listings   handler.ListingRepository
		embeddings handler.EmbeddingStore
		feedback   handler.FeedbackLogger
	)
	if app.repo != nil {
		listings, embeddings, feedback = app.repo, app.repo, app.repo
	}

	chatHandler := handler.NewChatHandler(app.concierge)
	propertyHandler := handler.NewPropertyHandler(app.engine, listings, cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	embeddingHandler := handler.NewEmbeddingHandler(embeddings, cfg.Search.EmbeddingDimensions)
	leadHandler := handler.NewLeadHandler(app.leads)
	feedbackHandler := handler.NewFeedbackHandler(app.leads, feedback, app.log)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))
	router.Use(requestLogger(app))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		deps := gin.H{}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if app.repo != nil {
			deps["postgres"] = "up"
			if err := app.repo.Ping(ctx); err != nil {
				deps["postgres"] = "down"
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		if app.redis != nil {
			deps["redis"] = "up"
			if err := app.redis.Ping(ctx); err != nil {
				deps["redis"] = "down"
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":       status,
			"service":      "property-concierge",
			"version":      Version,
			"build_time":   BuildTime,
			"git_commit":   GitCommit,
			"dependencies": deps,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Conversation endpoints
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.GET("/sessions/:userId", chatHandler.GetSession)
		apiV1.PUT("/sessions/:userId/preferences", chatHandler.UpdatePreferences)

		// Property intelligence endpoints
		apiV1.POST("/properties/search", propertyHandler.Search)
		apiV1.GET("/properties/:id/similar", propertyHandler.Similar)
		apiV1.POST("/properties/embeddings", embeddingHandler.BatchUpdate)
		apiV1.GET("/market/:location", propertyHandler.Market)
		apiV1.POST("/valuations", propertyHandler.Valuation)

		// Lead endpoints
		apiV1.GET("/leads/:userId", leadHandler.GetLead)
		apiV1.POST("/leads/:userId/convert", leadHandler.Convert)
		apiV1.GET("/nurturing/:level", leadHandler.Nurturing)

		// Feedback endpoint
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	return router
}

func requestLogger(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		app.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took_ms", time.Since(start).Milliseconds(),
		)
	}
}

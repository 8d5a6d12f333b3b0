package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"concierge/internal/config"
	"concierge/internal/id"
	"concierge/internal/logger"
	"concierge/internal/repository"
	"concierge/internal/service"
	"concierge/internal/store"

	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logg.Sync()

	logg.Info("property concierge starting",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	if err := id.Init(cfg.ID.NodeID); err != nil {
		logg.Fatal("failed to init id generator", "node_id", cfg.ID.NodeID, "error", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	app, err := wire(cfg, logg)
	if err != nil {
		logg.Fatal("failed to initialize services", "error", err)
	}
	defer app.close()

	router := setupRouter(cfg, app)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logg.Info("http server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("http server shutdown error", "error", err)
	}
	app.concierge.Wait()

	logg.Info("shutdown complete")
}

// application holds the wired services and the resources to release on exit
type application struct {
	concierge *service.Concierge
	engine    *service.PropertyEngine
	leads     *service.LeadManager
	repo      *repository.PostgresRepository
	redis     *store.RedisSessionStore
	log       *logger.Logger
}

func wire(cfg *config.Config, logg *logger.Logger) (*application, error) {
	app := &application{log: logg}

	var (
		catalog  service.Catalog = service.NewStaticCatalog(service.DefaultListings())
		leads    store.LeadStore = store.NewMemoryLeadStore()
		sessions store.SessionStore
		searches service.SearchLogger
	)

	if cfg.PostgreSQL.Enabled {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return nil, err
		}
		app.repo = repo

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			app.close()
			return nil, err
		}
		if cfg.PostgreSQL.SeedListings {
			for _, l := range service.DefaultListings() {
				if err := repo.UpsertListing(ctx, l); err != nil {
					app.close()
					return nil, err
				}
			}
		}

		catalog, leads, searches = repo, repo, repo
		logg.Info("connected to postgres", "seed_listings", cfg.PostgreSQL.SeedListings)
	} else {
		logg.Warn("postgres disabled, using the built-in catalog and in-memory leads")
	}

	if cfg.Redis.Addr != "" {
		rs, err := store.NewRedisSessionStore(store.RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Redis.SessionTTL,
		})
		if err != nil {
			app.close()
			return nil, err
		}
		app.redis = rs
		sessions = rs
		logg.Info("connected to redis", "addr", cfg.Redis.Addr, "session_ttl", cfg.Redis.SessionTTL.String())
	} else {
		sessions = store.NewMemorySessionStore()
		logg.Warn("redis disabled, sessions are kept in memory")
	}

	ranker := service.NewPreferenceRanker(
		cfg.Ranking.WeightBudget,
		cfg.Ranking.WeightLocation,
		cfg.Ranking.WeightType,
		cfg.Ranking.WeightFeatures,
		cfg.Ranking.WeightRisk,
	)
	app.engine = service.NewPropertyEngine(catalog, ranker, nil, nil, logg)
	app.leads = service.NewLeadManager(leads, nil, logg)

	app.concierge = service.NewConcierge(service.ConciergeDeps{
		Sessions:   sessions,
		Engine:     app.engine,
		Leads:      app.leads,
		Language:   service.NewLanguageService(logg, service.DefaultLanguageProfiles(), service.DefaultGlossary()),
		Extractor:  service.NewEntityExtractor(service.DefaultLocations(), service.DefaultPropertyTypes()),
		Classifier: service.NewIntentClassifier(service.DefaultIntentDefinitions()),
		SearchLog:  searches,
		Log:        logg,
	}, service.ConciergeOptions{
		AmbiguityThreshold: cfg.Conversation.AmbiguityThreshold,
		DefaultMarket:      cfg.Conversation.DefaultMarket,
		EnrichTop:          cfg.Conversation.EnrichTop,
	})

	logg.Info("services initialized")
	return app, nil
}

func (a *application) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis", "error", err)
		}
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Warn("failed to close postgres", "error", err)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL   PostgreSQLConfig
	Redis        RedisConfig
	Server       ServerConfig
	Conversation ConversationConfig
	Ranking      RankingConfig
	Search       SearchConfig
	Logging      LoggingConfig
	ID           IDConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	Enabled            bool
	DSN                string // full connection string, preferred over the parts below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	SeedListings       bool // insert the demo listings on startup
}

// RedisConfig holds session store configuration. Sessions stay in memory
// when Addr is empty.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	SessionTTL time.Duration
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// ConversationConfig holds router tuning
type ConversationConfig struct {
	AmbiguityThreshold float64
	DefaultMarket      string
	EnrichTop          int
}

// RankingConfig holds preference ranking weights
type RankingConfig struct {
	WeightBudget   float64
	WeightLocation float64
	WeightType     float64
	WeightFeatures float64
	WeightRisk     float64
}

// SearchConfig holds search configuration
type SearchConfig struct {
	DefaultLimit        int
	MaxLimit            int
	EmbeddingDimensions int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
	Mode  string
}

// IDConfig holds the snowflake node for generated record ids
type IDConfig struct {
	NodeID int64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			Enabled:            getEnvAsBool("PG_ENABLED", postgresConfigured()),
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "concierge"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			SeedListings:       getEnvAsBool("PG_SEED_LISTINGS", true),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			KeyPrefix:  getEnv("REDIS_KEY_PREFIX", "concierge:"),
			SessionTTL: time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 72)) * time.Hour,
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Conversation: ConversationConfig{
			AmbiguityThreshold: getEnvAsFloat("AMBIGUITY_THRESHOLD", 0.6),
			DefaultMarket:      getEnv("DEFAULT_MARKET", "Sydney"),
			EnrichTop:          getEnvAsInt("ENRICH_TOP", 5),
		},
		Ranking: RankingConfig{
			WeightBudget:   getEnvAsFloat("RANK_WEIGHT_BUDGET", 0.30),
			WeightLocation: getEnvAsFloat("RANK_WEIGHT_LOCATION", 0.25),
			WeightType:     getEnvAsFloat("RANK_WEIGHT_TYPE", 0.20),
			WeightFeatures: getEnvAsFloat("RANK_WEIGHT_FEATURES", 0.15),
			WeightRisk:     getEnvAsFloat("RANK_WEIGHT_RISK", 0.10),
		},
		Search: SearchConfig{
			DefaultLimit:        getEnvAsInt("SEARCH_DEFAULT_LIMIT", 5),
			MaxLimit:            getEnvAsInt("SEARCH_MAX_LIMIT", 20),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Mode:  getEnv("LOG_MODE", "production"),
		},
		ID: IDConfig{
			NodeID: int64(getEnvAsInt("SNOWFLAKE_NODE_ID", 1)),
		},
	}

	if cfg.Conversation.AmbiguityThreshold < 0 || cfg.Conversation.AmbiguityThreshold > 1 {
		return nil, fmt.Errorf("AMBIGUITY_THRESHOLD must be within [0,1], got %.2f", cfg.Conversation.AmbiguityThreshold)
	}
	if cfg.Conversation.EnrichTop <= 0 {
		return nil, fmt.Errorf("ENRICH_TOP must be positive, got %d", cfg.Conversation.EnrichTop)
	}

	if cfg.Search.EmbeddingDimensions <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", cfg.Search.EmbeddingDimensions)
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

// postgresConfigured reports whether a DSN or host was given explicitly
func postgresConfigured() bool {
	for _, key := range []string{"DATABASE_URL", "PG_DSN", "PG_HOST"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return defaultValue
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
}

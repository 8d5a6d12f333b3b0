package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_DSN", "")
	t.Setenv("PG_HOST", "")
	t.Setenv("PG_ENABLED", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PostgreSQL.Enabled {
		t.Error("postgres should be disabled without a DSN")
	}
	if cfg.Redis.Addr != "" || cfg.Redis.SessionTTL != 72*time.Hour {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Conversation.AmbiguityThreshold != 0.6 || cfg.Conversation.DefaultMarket != "Sydney" || cfg.Conversation.EnrichTop != 5 {
		t.Errorf("conversation = %+v", cfg.Conversation)
	}
	if cfg.Search.EmbeddingDimensions != 1536 {
		t.Errorf("embedding dimensions = %d", cfg.Search.EmbeddingDimensions)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/concierge")
	t.Setenv("PG_ENABLED", "")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("AMBIGUITY_THRESHOLD", "0.5")
	t.Setenv("SEARCH_MAX_LIMIT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.PostgreSQL.Enabled || cfg.GetPostgreSQLDSN() != "postgres://u:p@db:5432/concierge" {
		t.Errorf("postgres enabled = %v dsn = %q", cfg.PostgreSQL.Enabled, cfg.GetPostgreSQLDSN())
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.SessionTTL != 2*time.Hour {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Conversation.AmbiguityThreshold != 0.5 {
		t.Errorf("threshold = %v", cfg.Conversation.AmbiguityThreshold)
	}
	if cfg.Search.MaxLimit != 20 {
		t.Errorf("invalid int should fall back to the default, got %d", cfg.Search.MaxLimit)
	}
}

func TestLoad_PostgresEnabledByConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		enabled bool
	}{
		{"Nothing configured", map[string]string{}, false},
		{"DATABASE_URL", map[string]string{"DATABASE_URL": "postgres://u:p@db:5432/concierge"}, true},
		{"PG_DSN", map[string]string{"PG_DSN": "postgres://u:p@db:5432/concierge"}, true},
		{"PG_HOST", map[string]string{"PG_HOST": "db"}, true},
		{"Explicitly disabled", map[string]string{"PG_HOST": "db", "PG_ENABLED": "false"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DATABASE_URL", "PG_DSN", "PG_HOST", "PG_ENABLED"} {
				t.Setenv(key, tt.env[key])
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.PostgreSQL.Enabled != tt.enabled {
				t.Errorf("postgres enabled = %v, want %v", cfg.PostgreSQL.Enabled, tt.enabled)
			}
		})
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"AMBIGUITY_THRESHOLD", "1.5"},
		{"ENRICH_TOP", "0"},
		{"EMBEDDING_DIMENSIONS", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestGetPostgreSQLDSN_FromParts(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5433, User: "app", Password: "secret", Database: "concierge", SSLMode: "require",
	}}
	want := "host=db port=5433 user=app password=secret dbname=concierge sslmode=require"
	if got := cfg.GetPostgreSQLDSN(); got != want {
		t.Errorf("GetPostgreSQLDSN() = %q, want %q", got, want)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"yes", false, true},
		{"OFF", true, false},
		{"maybe", true, true},
	}

	for _, tt := range tests {
		t.Setenv("CONCIERGE_TEST_BOOL", tt.value)
		if got := getEnvAsBool("CONCIERGE_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("getEnvAsBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

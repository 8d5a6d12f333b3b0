package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"concierge/internal/model"
	"concierge/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

const listingColumns = `
	id, address, price, property_type, bedrooms, bathrooms, sqft,
	location, features, images, market_trend, days_on_market`

// candidateLimit caps the rows a catalog query returns
const candidateLimit = 200

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureSchema creates the tables the concierge needs if they are missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS listings (
			id             TEXT PRIMARY KEY,
			address        TEXT NOT NULL,
			price          DOUBLE PRECISION NOT NULL,
			property_type  TEXT NOT NULL,
			bedrooms       INTEGER NOT NULL DEFAULT 0,
			bathrooms      INTEGER NOT NULL DEFAULT 0,
			sqft           INTEGER NOT NULL DEFAULT 0,
			location       TEXT NOT NULL,
			features       JSONB NOT NULL DEFAULT '[]',
			images         JSONB NOT NULL DEFAULT '[]',
			market_trend   TEXT NOT NULL DEFAULT 'stable',
			days_on_market INTEGER NOT NULL DEFAULT 0,
			embedding      vector,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS lead_profiles (
			id                  TEXT PRIMARY KEY,
			score               DOUBLE PRECISION NOT NULL,
			qualification_level TEXT NOT NULL,
			nurturing_stage     TEXT NOT NULL,
			profile             JSONB NOT NULL,
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS search_logs (
			search_id           BIGINT PRIMARY KEY,
			user_id             TEXT NOT NULL,
			query               TEXT NOT NULL,
			criteria            JSONB NOT NULL,
			result_count        INTEGER NOT NULL,
			returned_listing_ids TEXT[] NOT NULL DEFAULT '{}',
			response_time_ms    INTEGER NOT NULL,
			clicked_listing_id  TEXT,
			action              TEXT,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_logs_user ON search_logs (user_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Candidates returns listings narrowed by criteria. The budget filter keeps
// the same 10% tolerance the engine applies.
func (r *PostgresRepository) Candidates(ctx context.Context, criteria model.SearchCriteria) ([]model.PropertyListing, error) {
	// Build WHERE clause
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if criteria.Budget != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *criteria.Budget*1.1)
		argIndex++
	}
	if criteria.Location != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("location ILIKE $%d", argIndex))
		args = append(args, "%"+strings.TrimSpace(*criteria.Location)+"%")
		argIndex++
	}
	if criteria.PropertyType != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("property_type = $%d", argIndex))
		args = append(args, string(*criteria.PropertyType))
		argIndex++
	}
	if criteria.MinBedrooms != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("bedrooms >= $%d", argIndex))
		args = append(args, *criteria.MinBedrooms)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE %s
		ORDER BY days_on_market ASC, id ASC
		LIMIT $%d
	`, listingColumns, strings.Join(whereClauses, " AND "), argIndex)
	args = append(args, candidateLimit)

	var listings []model.PropertyListing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	return listings, nil
}

// ListingByID retrieves a single listing by its ID
func (r *PostgresRepository) ListingByID(ctx context.Context, listingID string) (*model.PropertyListing, error) {
	var listing model.PropertyListing
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns)
	err := r.db.GetContext(ctx, &listing, query, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// UpsertListing inserts or replaces a catalog listing
func (r *PostgresRepository) UpsertListing(ctx context.Context, l model.PropertyListing) error {
	query := `
		INSERT INTO listings (id, address, price, property_type, bedrooms, bathrooms, sqft,
			location, features, images, market_trend, days_on_market)
		VALUES (:id, :address, :price, :property_type, :bedrooms, :bathrooms, :sqft,
			:location, :features, :images, :market_trend, :days_on_market)
		ON CONFLICT (id) DO UPDATE SET
			address = EXCLUDED.address,
			price = EXCLUDED.price,
			property_type = EXCLUDED.property_type,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			sqft = EXCLUDED.sqft,
			location = EXCLUDED.location,
			features = EXCLUDED.features,
			images = EXCLUDED.images,
			market_trend = EXCLUDED.market_trend,
			days_on_market = EXCLUDED.days_on_market,
			updated_at = NOW()
	`
	if _, err := r.db.NamedExecContext(ctx, query, l); err != nil {
		return fmt.Errorf("failed to upsert listing %s: %w", l.ID, err)
	}
	return nil
}

// SimilarListings returns the listings whose embeddings are closest to the
// given listing's embedding. Listings without embeddings are skipped.
func (r *PostgresRepository) SimilarListings(ctx context.Context, listingID string, limit int) ([]model.PropertyListing, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE id <> $1
			AND embedding IS NOT NULL
		ORDER BY embedding <-> (SELECT embedding FROM listings WHERE id = $1)
		LIMIT $2
	`, listingColumns)

	var listings []model.PropertyListing
	if err := r.db.SelectContext(ctx, &listings, query, listingID, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch similar listings: %w", err)
	}
	return listings, nil
}

// BatchUpdateEmbeddings updates embeddings for multiple listings
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errs []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errs
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE listings SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errs
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		res, err := stmt.ExecContext(ctx, vec, item.ListingID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("listing_id %s: %v", item.ListingID, err))
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			errs = append(errs, fmt.Sprintf("listing_id %s: not found", item.ListingID))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errs = append(errs, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errs
	}

	return success, errs
}

// GetLead loads a lead profile
func (r *PostgresRepository) GetLead(ctx context.Context, leadID string) (*model.LeadProfile, error) {
	var raw []byte
	err := r.db.GetContext(ctx, &raw, `SELECT profile FROM lead_profiles WHERE id = $1`, leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	var lead model.LeadProfile
	if err := json.Unmarshal(raw, &lead); err != nil {
		return nil, fmt.Errorf("failed to decode lead: %w", err)
	}
	return &lead, nil
}

// SaveLead upserts a lead profile
func (r *PostgresRepository) SaveLead(ctx context.Context, lead *model.LeadProfile) error {
	raw, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to encode lead: %w", err)
	}

	query := `
		INSERT INTO lead_profiles (id, score, qualification_level, nurturing_stage, profile, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			score = EXCLUDED.score,
			qualification_level = EXCLUDED.qualification_level,
			nurturing_stage = EXCLUDED.nurturing_stage,
			profile = EXCLUDED.profile,
			updated_at = NOW()
	`
	_, err = r.db.ExecContext(ctx, query, lead.ID, lead.Score, string(lead.Level), string(lead.Stage), string(raw))
	if err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}

// LogSearch logs a search query
func (r *PostgresRepository) LogSearch(ctx context.Context, entry model.SearchLogEntry) error {
	criteria, err := json.Marshal(entry.Criteria)
	if err != nil {
		return fmt.Errorf("failed to encode criteria: %w", err)
	}

	logQuery := `
		INSERT INTO search_logs (search_id, user_id, query, criteria, result_count, returned_listing_ids, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, logQuery,
		entry.SearchID, entry.UserID, entry.Query, string(criteria), entry.ResultCount, pq.Array(entry.ListingIDs), entry.ResponseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback attaches a user action to that user's most recent search
func (r *PostgresRepository) LogFeedback(ctx context.Context, userID, listingID string, action model.ActionType) error {
	query := `
		UPDATE search_logs
		SET clicked_listing_id = $2, action = $3
		WHERE search_id = (
			SELECT search_id FROM search_logs
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT 1
		)
	`
	_, err := r.db.ExecContext(ctx, query, userID, listingID, string(action))
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}

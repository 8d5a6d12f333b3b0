package repository

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"concierge/internal/model"
	"concierge/internal/store"
)

// newTestRepository connects to TEST_DATABASE_URL and skips the test when unset.
// The database needs the pgvector extension available.
func newTestRepository(t *testing.T) *PostgresRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	repo, err := NewPostgresRepository(dsn, 5, 2)
	if err != nil {
		t.Fatalf("NewPostgresRepository() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return repo
}

func testListing(prefix string, price float64, location string) model.PropertyListing {
	return model.PropertyListing{
		ID:           prefix + "-" + uuid.NewString(),
		Address:      "1 Test Street, " + location,
		Price:        price,
		Type:         model.PropertyHouse,
		Bedrooms:     3,
		Bathrooms:    1,
		Location:     location,
		Features:     model.JSONArray{"Garden"},
		MarketTrend:  model.TrendStable,
		DaysOnMarket: 1,
	}
}

func TestPostgresRepository_Listings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	location := "Testville " + uuid.NewString()[:8]

	cheap := testListing("cheap", 500000, location)
	pricey := testListing("pricey", 900000, location)
	for _, l := range []model.PropertyListing{cheap, pricey} {
		if err := repo.UpsertListing(ctx, l); err != nil {
			t.Fatalf("UpsertListing() error = %v", err)
		}
	}

	got, err := repo.ListingByID(ctx, cheap.ID)
	if err != nil {
		t.Fatalf("ListingByID() error = %v", err)
	}
	if got.Price != 500000 || !reflect.DeepEqual(got.Features, model.JSONArray{"Garden"}) {
		t.Errorf("ListingByID() = %+v", got)
	}

	if _, err := repo.ListingByID(ctx, "missing-"+uuid.NewString()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ListingByID(missing) error = %v, want ErrNotFound", err)
	}

	budget := 460000.0
	candidates, err := repo.Candidates(ctx, model.SearchCriteria{Budget: &budget, Location: &location})
	if err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != cheap.ID {
		t.Errorf("Candidates() = %d listings, want only the one within 10%% of budget", len(candidates))
	}
}

func TestPostgresRepository_Embeddings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	location := "Vectorville " + uuid.NewString()[:8]

	a := testListing("a", 500000, location)
	b := testListing("b", 600000, location)
	for _, l := range []model.PropertyListing{a, b} {
		if err := repo.UpsertListing(ctx, l); err != nil {
			t.Fatalf("UpsertListing() error = %v", err)
		}
	}

	success, errs := repo.BatchUpdateEmbeddings(ctx, []model.EmbeddingItem{
		{ListingID: a.ID, Embedding: []float32{1, 0, 0}},
		{ListingID: b.ID, Embedding: []float32{0.9, 0.1, 0}},
		{ListingID: "missing-" + uuid.NewString(), Embedding: []float32{0, 0, 1}},
	})
	if success != 2 || len(errs) != 1 {
		t.Fatalf("BatchUpdateEmbeddings() = %d, %v", success, errs)
	}

	similar, err := repo.SimilarListings(ctx, a.ID, 50)
	if err != nil {
		t.Fatalf("SimilarListings() error = %v", err)
	}
	found := false
	for _, l := range similar {
		if l.ID == a.ID {
			t.Error("SimilarListings() returned the listing itself")
		}
		if l.ID == b.ID {
			found = true
		}
	}
	if !found {
		t.Error("SimilarListings() did not return the nearest listing")
	}
}

func TestPostgresRepository_Leads(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	leadID := "lead-" + uuid.NewString()

	if _, err := repo.GetLead(ctx, leadID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetLead() error = %v, want ErrNotFound", err)
	}

	lead := &model.LeadProfile{
		ID:           leadID,
		Score:        0.72,
		Level:        model.LevelHigh,
		Stage:        model.StageConsideration,
		Interactions: []model.Interaction{{ID: "1", Kind: model.InteractionMessage, Message: "hi"}},
	}
	if err := repo.SaveLead(ctx, lead); err != nil {
		t.Fatalf("SaveLead() error = %v", err)
	}
	lead.Stage = model.StageIntent
	if err := repo.SaveLead(ctx, lead); err != nil {
		t.Fatalf("SaveLead() update error = %v", err)
	}

	got, err := repo.GetLead(ctx, leadID)
	if err != nil {
		t.Fatalf("GetLead() error = %v", err)
	}
	if got.Stage != model.StageIntent || got.Score != 0.72 || len(got.Interactions) != 1 {
		t.Errorf("GetLead() = %+v", got)
	}
}

func TestPostgresRepository_SearchLog(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	userID := "user-" + uuid.NewString()
	location := "sydney"

	entry := model.SearchLogEntry{
		SearchID:       time.Now().UnixNano(),
		UserID:         userID,
		Query:          "house in sydney",
		Criteria:       model.SearchCriteria{Location: &location},
		ResultCount:    2,
		ListingIDs:     []string{"prop_001", "prop_002"},
		ResponseTimeMs: 3,
	}
	if err := repo.LogSearch(ctx, entry); err != nil {
		t.Fatalf("LogSearch() error = %v", err)
	}
	if err := repo.LogFeedback(ctx, userID, "prop_002", model.ActionBookTour); err != nil {
		t.Fatalf("LogFeedback() error = %v", err)
	}

	var row struct {
		Clicked string `db:"clicked_listing_id"`
		Action  string `db:"action"`
	}
	err := repo.db.GetContext(ctx, &row, `SELECT clicked_listing_id, action FROM search_logs WHERE search_id = $1`, entry.SearchID)
	if err != nil {
		t.Fatalf("select search log: %v", err)
	}
	if row.Clicked != "prop_002" || row.Action != string(model.ActionBookTour) {
		t.Errorf("search log row = %+v", row)
	}
}

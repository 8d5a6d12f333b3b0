package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"concierge/internal/model"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	if _, err := s.GetSession(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSession() on empty store error = %v, want ErrNotFound", err)
	}

	state := model.NewConversationState("user-1", "en", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	state.InteractionCount = 3
	state.Preferences.AddLocation("Sydney")
	if err := s.SaveSession(ctx, state); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	// later changes to the caller's copy must not leak into the store
	state.InteractionCount = 99
	state.Preferences.AddLocation("Perth")

	got, err := s.GetSession(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.InteractionCount != 3 || len(got.Preferences.Locations) != 1 {
		t.Errorf("stored session = count %d locations %v", got.InteractionCount, got.Preferences.Locations)
	}

	got.Preferences.AddLocation("Hobart")
	again, _ := s.GetSession(ctx, "user-1")
	if len(again.Preferences.Locations) != 1 {
		t.Errorf("GetSession() shares state between callers: %v", again.Preferences.Locations)
	}

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestMemorySessionStore_CancelledContext(t *testing.T) {
	s := NewMemorySessionStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.SaveSession(ctx, model.NewConversationState("user-1", "en", time.Now())); !errors.Is(err, context.Canceled) {
		t.Errorf("SaveSession() error = %v, want context.Canceled", err)
	}
	if _, err := s.GetSession(ctx, "user-1"); !errors.Is(err, context.Canceled) {
		t.Errorf("GetSession() error = %v, want context.Canceled", err)
	}
}

func TestMemoryLeadStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryLeadStore()

	if _, err := s.GetLead(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetLead() on empty store error = %v, want ErrNotFound", err)
	}

	lead := &model.LeadProfile{
		ID:           "user-1",
		Score:        0.42,
		Level:        model.LevelMedium,
		Interactions: []model.Interaction{{ID: "a", Kind: model.InteractionMessage}},
	}
	if err := s.SaveLead(ctx, lead); err != nil {
		t.Fatalf("SaveLead() error = %v", err)
	}
	lead.Interactions[0].ID = "mutated"
	lead.Interactions = append(lead.Interactions, model.Interaction{ID: "b"})

	got, err := s.GetLead(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetLead() error = %v", err)
	}
	if len(got.Interactions) != 1 || got.Interactions[0].ID != "a" {
		t.Errorf("stored interactions = %+v", got.Interactions)
	}
	if got.Score != 0.42 || got.Level != model.LevelMedium {
		t.Errorf("stored lead = %+v", got)
	}
}

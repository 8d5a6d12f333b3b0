package store

import (
	"context"
	"errors"

	"concierge/internal/model"
)

// ErrNotFound is returned when a session or lead does not exist
var ErrNotFound = errors.New("not found")

// SessionStore persists conversation state by user id
type SessionStore interface {
	GetSession(ctx context.Context, userID string) (*model.ConversationState, error)
	SaveSession(ctx context.Context, state *model.ConversationState) error
}

// LeadStore persists lead profiles by lead id
type LeadStore interface {
	GetLead(ctx context.Context, leadID string) (*model.LeadProfile, error)
	SaveLead(ctx context.Context, lead *model.LeadProfile) error
}

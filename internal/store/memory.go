package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"concierge/internal/model"
)

// MemorySessionStore keeps sessions in process memory.
// Stored values are copies; callers never share state with the store.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemorySessionStore creates an empty session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string][]byte)}
}

// GetSession returns a copy of the session for userID
func (s *MemorySessionStore) GetSession(ctx context.Context, userID string) (*model.ConversationState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	raw, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var state model.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &state, nil
}

// SaveSession stores a copy of state
func (s *MemorySessionStore) SaveSession(ctx context.Context, state *model.ConversationState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	s.mu.Lock()
	s.sessions[state.UserID] = raw
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// MemoryLeadStore keeps lead profiles in process memory
type MemoryLeadStore struct {
	mu    sync.RWMutex
	leads map[string]model.LeadProfile
}

// NewMemoryLeadStore creates an empty lead store
func NewMemoryLeadStore() *MemoryLeadStore {
	return &MemoryLeadStore{leads: make(map[string]model.LeadProfile)}
}

// GetLead returns a copy of the lead profile
func (s *MemoryLeadStore) GetLead(ctx context.Context, leadID string) (*model.LeadProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	lead, ok := s.leads[leadID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := copyLead(lead)
	return &out, nil
}

// SaveLead stores a copy of lead
func (s *MemoryLeadStore) SaveLead(ctx context.Context, lead *model.LeadProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.leads[lead.ID] = copyLead(*lead)
	s.mu.Unlock()
	return nil
}

func copyLead(l model.LeadProfile) model.LeadProfile {
	out := l
	out.Interactions = append([]model.Interaction(nil), l.Interactions...)
	return out
}

package model

import (
	"slices"
	"strings"
	"time"
)

// ConversationStateName labels the last handler that ran for a session.
// It does not gate which intents may follow.
type ConversationStateName string

const (
	StateInitial           ConversationStateName = "initial"
	StatePropertySearch    ConversationStateName = "property_search"
	StateValuation         ConversationStateName = "valuation"
	StateViewingScheduling ConversationStateName = "viewing_scheduling"
	StateLeadNurturing     ConversationStateName = "lead_nurturing"
	StateMarketInsights    ConversationStateName = "market_insights"
)

// RiskTolerance is a buyer's appetite for risky properties
type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

// Valid reports whether r is one of the known tolerances
func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ConversationState is the per-user session carried across messages
type ConversationState struct {
	UserID            string                `json:"user_id"`
	CurrentState      ConversationStateName `json:"current_state"`
	Preferences       UserPreferences       `json:"user_preferences"`
	SearchHistory     []PropertySearch      `json:"search_history"`
	LastSearchResults []PropertyListing     `json:"last_search_results"`
	LeadScore         *float64              `json:"lead_score,omitempty"`
	Language          string                `json:"language"`
	SessionStart      time.Time             `json:"session_start"`
	InteractionCount  int                   `json:"interaction_count"`
}

// NewConversationState creates the state for a user's first message
func NewConversationState(userID, language string, now time.Time) *ConversationState {
	return &ConversationState{
		UserID:            userID,
		CurrentState:      StateInitial,
		SearchHistory:     []PropertySearch{},
		LastSearchResults: []PropertyListing{},
		Language:          language,
		SessionStart:      now,
	}
}

// PropertySearch is one entry of a session's search history
type PropertySearch struct {
	ID        int64             `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Criteria  SearchCriteria    `json:"criteria"`
	Results   []PropertyListing `json:"results"`
}

// UserPreferences accumulates what a user has told the concierge.
// Sets are append-only and never hold duplicates.
type UserPreferences struct {
	BudgetMin        *float64       `json:"budget_min,omitempty"`
	BudgetMax        *float64       `json:"budget_max,omitempty"`
	Locations        []string       `json:"locations,omitempty"`
	PropertyTypes    []PropertyType `json:"property_types,omitempty"`
	Bedrooms         *int           `json:"bedrooms,omitempty"`
	Bathrooms        *int           `json:"bathrooms,omitempty"`
	MustHaveFeatures []string       `json:"must_have_features,omitempty"`
	RiskTolerance    RiskTolerance  `json:"risk_tolerance,omitempty"`
	InvestmentGoals  []string       `json:"investment_goals,omitempty"`
}

// MergeEntities folds newly extracted entities into the preferences.
// The budget is only written once; locations and types are appended when novel.
func (p *UserPreferences) MergeEntities(e Entities) {
	if e.Budget != nil && p.BudgetMax == nil {
		v := *e.Budget
		p.BudgetMax = &v
	}
	if e.Location != nil {
		p.AddLocation(*e.Location)
	}
	if e.PropertyType != nil && !slices.Contains(p.PropertyTypes, *e.PropertyType) {
		p.PropertyTypes = append(p.PropertyTypes, *e.PropertyType)
	}
	if e.Bedrooms != nil && p.Bedrooms == nil {
		v := *e.Bedrooms
		p.Bedrooms = &v
	}
}

// AddLocation appends a location unless an equal one (ignoring case) is present
func (p *UserPreferences) AddLocation(location string) {
	location = strings.TrimSpace(location)
	if location == "" {
		return
	}
	for _, l := range p.Locations {
		if strings.EqualFold(l, location) {
			return
		}
	}
	p.Locations = append(p.Locations, location)
}

// Merge applies an explicit preference update. Scalars overwrite, sets append.
func (p *UserPreferences) Merge(u PreferenceUpdate) {
	if u.BudgetMin != nil {
		p.BudgetMin = u.BudgetMin
	}
	if u.BudgetMax != nil {
		p.BudgetMax = u.BudgetMax
	}
	for _, l := range u.Locations {
		p.AddLocation(l)
	}
	for _, t := range u.PropertyTypes {
		if !slices.Contains(p.PropertyTypes, t) {
			p.PropertyTypes = append(p.PropertyTypes, t)
		}
	}
	if u.Bedrooms != nil {
		p.Bedrooms = u.Bedrooms
	}
	if u.Bathrooms != nil {
		p.Bathrooms = u.Bathrooms
	}
	p.MustHaveFeatures = appendUnique(p.MustHaveFeatures, u.MustHaveFeatures...)
	p.InvestmentGoals = appendUnique(p.InvestmentGoals, u.InvestmentGoals...)
	if u.RiskTolerance != "" {
		p.RiskTolerance = u.RiskTolerance
	}
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if strings.EqualFold(existing, v) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}

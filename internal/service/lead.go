package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"concierge/internal/logger"
	"concierge/internal/model"
	"concierge/internal/store"
)

// LeadWeights are the weights of the six lead sub-scores. They sum to 1.
type LeadWeights struct {
	Budget      float64
	Timeline    float64
	Engagement  float64
	Contact     float64
	Specificity float64
	Risk        float64
}

// DefaultLeadWeights are the production lead score weights
var DefaultLeadWeights = LeadWeights{
	Budget:      0.25,
	Timeline:    0.20,
	Engagement:  0.20,
	Contact:     0.15,
	Specificity: 0.10,
	Risk:        0.10,
}

// Sum returns the total weight
func (w LeadWeights) Sum() float64 {
	return w.Budget + w.Timeline + w.Engagement + w.Contact + w.Specificity + w.Risk
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// Australian numbers ("0412 345 678", "+61 2 9876 5432") or an explicit
	// international prefix. Bare digit runs are budgets, not phones.
	phonePattern = regexp.MustCompile(`(?:\+61[ \-]?|\b0)[2-478](?:[ \-]?\d){8}\b|\+\d{1,3}(?:[ \-]?\d){7,11}\b`)

	urgentKeywords   = []string{"urgent", "asap", "immediately", "right away", "this week", "ready to buy", "pre-approved", "preapproved"}
	moderateKeywords = []string{"soon", "this month", "next month", "few months", "within 3 months", "this year"}
	casualKeywords   = []string{"just looking", "browsing", "someday", "next year", "no rush", "curious"}
)

// feedbackBoost raises a lead score when the user acts on a suggestion
var feedbackBoost = map[model.ActionType]float64{
	model.ActionBookTour:     0.05,
	model.ActionContactAgent: 0.05,
	model.ActionScheduleCall: 0.05,
	model.ActionGetValuation: 0.02,
	model.ActionViewProperty: 0.01,
}

// LeadManager scores leads and tracks them through the nurturing funnel
type LeadManager struct {
	store     store.LeadStore
	weights   LeadWeights
	sequences map[model.QualificationLevel][]model.NurturingStep
	now       func() time.Time
	log       *logger.Logger
}

// NewLeadManager creates a lead manager. The nurturing templates are built
// once here and never modified afterwards.
func NewLeadManager(leads store.LeadStore, now func() time.Time, log *logger.Logger) *LeadManager {
	if now == nil {
		now = time.Now
	}
	return &LeadManager{
		store:     leads,
		weights:   DefaultLeadWeights,
		sequences: defaultNurturingSequences(),
		now:       now,
		log:       log.With("service", "LeadManager"),
	}
}

// QualifyLead scores the lead behind a message and updates its profile
// under leadID. The score is always within [0,1].
func (m *LeadManager) QualifyLead(ctx context.Context, leadID string, session *model.ConversationState, entities model.Entities, message string) (float64, error) {
	profile, err := m.loadOrCreate(ctx, leadID)
	if err != nil {
		return 0, err
	}

	if email := emailPattern.FindString(message); email != "" {
		profile.Email = email
	}
	if phone := phonePattern.FindString(message); phone != "" {
		profile.Phone = strings.TrimSpace(phone)
	}

	prefs := session.Preferences
	budget := entities.Budget
	if budget == nil {
		budget = prefs.BudgetMax
	}

	score := m.weights.Budget*BudgetScore(budget) +
		m.weights.Timeline*TimelineScore(message) +
		m.weights.Engagement*EngagementScore(session.InteractionCount) +
		m.weights.Contact*ContactScore(profile.Email, profile.Phone) +
		m.weights.Specificity*SpecificityScore(entities, prefs) +
		m.weights.Risk*RiskToleranceScore(prefs.RiskTolerance)
	score = clamp01(score)

	now := m.now()
	profile.Score = score
	profile.Level = model.LevelForScore(score)
	profile.Interactions = append(profile.Interactions, model.Interaction{
		ID:        uuid.NewString(),
		Kind:      model.InteractionMessage,
		Timestamp: now,
		Message:   message,
		Score:     score,
	})
	profile.Counters.Qualifications++
	profile.Counters.Messages++
	profile.Counters.Searches = len(session.SearchHistory)
	m.advance(profile)
	profile.LastActivityAt = now

	if err := m.store.SaveLead(ctx, profile); err != nil {
		return 0, fmt.Errorf("failed to save lead: %w", err)
	}

	m.log.Info("lead qualified", "lead_id", leadID, "score", score, "level", profile.Level)
	return score, nil
}

// RecordFeedback logs a UI action taken by the lead. High-intent actions
// raise the score slightly.
func (m *LeadManager) RecordFeedback(ctx context.Context, leadID string, action model.ActionType, propertyID string) (*model.LeadProfile, error) {
	profile, err := m.loadOrCreate(ctx, leadID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	profile.Score = clamp01(profile.Score + feedbackBoost[action])
	profile.Level = model.LevelForScore(profile.Score)
	profile.Interactions = append(profile.Interactions, model.Interaction{
		ID:         uuid.NewString(),
		Kind:       model.InteractionFeedback,
		Timestamp:  now,
		Action:     action,
		PropertyID: propertyID,
		Score:      profile.Score,
	})
	profile.Counters.Feedback++
	m.advance(profile)
	if (action == model.ActionBookTour || action == model.ActionContactAgent) && profile.Stage.Before(model.StageConsideration) {
		profile.Stage = model.StageConsideration
	}
	profile.LastActivityAt = now

	if err := m.store.SaveLead(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}
	return profile, nil
}

// RecordConversion moves a lead to the purchase stage
func (m *LeadManager) RecordConversion(ctx context.Context, leadID string) (*model.LeadProfile, error) {
	profile, err := m.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	profile.Stage = model.StagePurchase
	profile.NextAction = "Hand over to settlement team"
	profile.Interactions = append(profile.Interactions, model.Interaction{
		ID:        uuid.NewString(),
		Kind:      model.InteractionConvert,
		Timestamp: now,
		Score:     profile.Score,
	})
	profile.LastActivityAt = now

	if err := m.store.SaveLead(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}
	m.log.Info("lead converted", "lead_id", leadID)
	return profile, nil
}

// Profile returns the stored profile of a lead
func (m *LeadManager) Profile(ctx context.Context, leadID string) (*model.LeadProfile, error) {
	return m.store.GetLead(ctx, leadID)
}

// GetNurturingSequence returns a copy of the template for level.
// Unknown levels get the low template.
func (m *LeadManager) GetNurturingSequence(level model.QualificationLevel) []model.NurturingStep {
	seq, ok := m.sequences[level]
	if !ok {
		seq = m.sequences[model.LevelLow]
	}
	out := make([]model.NurturingStep, len(seq))
	copy(out, seq)
	return out
}

func (m *LeadManager) loadOrCreate(ctx context.Context, leadID string) (*model.LeadProfile, error) {
	profile, err := m.store.GetLead(ctx, leadID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}

	now := m.now()
	return &model.LeadProfile{
		ID:             leadID,
		Level:          model.LevelLow,
		Interactions:   []model.Interaction{},
		Stage:          model.StageAwareness,
		NextAction:     nextActions[model.LevelLow],
		Sequence:       model.LevelLow,
		CreatedAt:      now,
		LastActivityAt: now,
	}, nil
}

// advance sets the level-driven fields. The stage never moves backwards.
func (m *LeadManager) advance(p *model.LeadProfile) {
	if stage := stageForLevel[p.Level]; p.Stage.Before(stage) {
		p.Stage = stage
	}
	if p.Stage != model.StagePurchase {
		p.NextAction = nextActions[p.Level]
	}
	p.Sequence = p.Level
}

// BudgetScore steps on the buyer's budget
func BudgetScore(budget *float64) float64 {
	if budget == nil {
		return 0.1
	}
	switch b := *budget; {
	case b >= 1_500_000:
		return 1.0
	case b >= 1_000_000:
		return 0.8
	case b >= 750_000:
		return 0.6
	case b >= 500_000:
		return 0.4
	case b >= 250_000:
		return 0.2
	default:
		return 0.1
	}
}

// TimelineScore reads purchase urgency from the message wording
func TimelineScore(message string) float64 {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, urgentKeywords):
		return 1.0
	case containsAny(lower, moderateKeywords):
		return 0.6
	case containsAny(lower, casualKeywords):
		return 0.2
	default:
		return 0.4
	}
}

// EngagementScore steps on the session's interaction count
func EngagementScore(interactions int) float64 {
	switch {
	case interactions >= 10:
		return 1.0
	case interactions >= 5:
		return 0.7
	case interactions >= 3:
		return 0.5
	case interactions >= 1:
		return 0.3
	default:
		return 0.1
	}
}

// ContactScore is half a point per known contact channel
func ContactScore(email, phone string) float64 {
	score := 0.0
	if email != "" {
		score += 0.5
	}
	if phone != "" {
		score += 0.5
	}
	return score
}

// SpecificityScore steps on how many search dimensions the lead has named,
// either in this message or earlier
func SpecificityScore(e model.Entities, prefs model.UserPreferences) float64 {
	n := 0
	if e.Budget != nil || prefs.BudgetMax != nil || prefs.BudgetMin != nil {
		n++
	}
	if e.Location != nil || len(prefs.Locations) > 0 {
		n++
	}
	if e.PropertyType != nil || len(prefs.PropertyTypes) > 0 {
		n++
	}
	if e.Bedrooms != nil || prefs.Bedrooms != nil {
		n++
	}
	if e.Address != nil {
		n++
	}
	if len(prefs.MustHaveFeatures) > 0 {
		n++
	}

	switch {
	case n >= 4:
		return 1.0
	case n == 3:
		return 0.8
	case n == 2:
		return 0.6
	case n == 1:
		return 0.4
	default:
		return 0.2
	}
}

// RiskToleranceScore favours buyers willing to take on risk
func RiskToleranceScore(r model.RiskTolerance) float64 {
	switch r {
	case model.RiskHigh:
		return 1.0
	case model.RiskMedium:
		return 0.6
	case model.RiskLow:
		return 0.3
	default:
		return 0.5
	}
}

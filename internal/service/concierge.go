package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"concierge/internal/id"
	"concierge/internal/logger"
	"concierge/internal/model"
	"concierge/internal/store"
	"concierge/internal/utils"
)

// PropertyIntelligence is the property engine as seen by the router
type PropertyIntelligence interface {
	SearchProperties(ctx context.Context, criteria model.SearchCriteria, prefs *model.UserPreferences) ([]model.PropertyListing, error)
	Enrich(l model.PropertyListing) model.PropertyListing
	DetailedValuation(address string) model.ValuationReport
	MarketInsights(location string) model.MarketInsights
}

// LeadQualifier scores leads
type LeadQualifier interface {
	QualifyLead(ctx context.Context, leadID string, session *model.ConversationState, entities model.Entities, message string) (float64, error)
}

// SearchLogger records searches for later analysis
type SearchLogger interface {
	LogSearch(ctx context.Context, entry model.SearchLogEntry) error
}

// ConciergeDeps holds the collaborators of a Concierge. SearchLog and Now
// are optional.
type ConciergeDeps struct {
	Sessions   store.SessionStore
	Engine     PropertyIntelligence
	Leads      LeadQualifier
	Language   *LanguageService
	Extractor  *EntityExtractor
	Classifier *IntentClassifier
	SearchLog  SearchLogger
	Now        func() time.Time
	Log        *logger.Logger
}

// ConciergeOptions tunes routing
type ConciergeOptions struct {
	AmbiguityThreshold float64
	DefaultMarket      string
	EnrichTop          int
}

// DefaultConciergeOptions returns the production routing settings
func DefaultConciergeOptions() ConciergeOptions {
	return ConciergeOptions{
		AmbiguityThreshold: 0.6,
		DefaultMarket:      "Sydney",
		EnrichTop:          5,
	}
}

// Concierge routes chat messages to intent handlers and keeps per-user
// conversation state. Turns for the same user are serialized.
type Concierge struct {
	sessions   store.SessionStore
	engine     PropertyIntelligence
	leads      LeadQualifier
	language   *LanguageService
	extractor  *EntityExtractor
	classifier *IntentClassifier
	searchLog  SearchLogger
	now        func() time.Time
	log        *logger.Logger
	opts       ConciergeOptions
	faq        []FAQEntry

	locks    *utils.KeyedMutex
	inflight sync.WaitGroup
}

// NewConcierge creates a router over deps
func NewConcierge(deps ConciergeDeps, opts ConciergeOptions) *Concierge {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Concierge{
		sessions:   deps.Sessions,
		engine:     deps.Engine,
		leads:      deps.Leads,
		language:   deps.Language,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		searchLog:  deps.SearchLog,
		now:        now,
		log:        deps.Log.With("service", "Concierge"),
		opts:       opts,
		faq:        DefaultFAQ(),
		locks:      utils.NewKeyedMutex(),
	}
}

// SendMessage handles one chat turn. It never fails: any error or panic
// inside the turn becomes an apology with the error intent.
func (c *Concierge) SendMessage(ctx context.Context, text, userID string) (resp *model.ChatResponse) {
	unlock := c.locks.Lock(userID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("panic while handling message", "user_id", userID, "panic", r)
			resp = errorResponse()
		}
	}()

	out, err := c.handleMessage(ctx, text, userID)
	if err != nil {
		c.log.Error("failed to handle message", "user_id", userID, "error", err)
		return errorResponse()
	}
	return out
}

func (c *Concierge) handleMessage(ctx context.Context, text, userID string) (*model.ChatResponse, error) {
	lang := NormalizeLanguage(c.language.DetectLanguage(text))

	state, loadErr := c.sessions.GetSession(ctx, userID)
	if errors.Is(loadErr, store.ErrNotFound) {
		state = model.NewConversationState(userID, lang, c.now())
	} else if loadErr != nil {
		return nil, fmt.Errorf("failed to load session: %w", loadErr)
	}
	state.Language = lang

	working := text
	if lang != DefaultLanguage {
		working = c.language.TranslateMessage(text, lang, DefaultLanguage)
	}

	entities := c.extractor.Extract(working)
	intent := c.classifier.Classify(working)

	state.InteractionCount++
	state.Preferences.MergeEntities(entities)

	var (
		resp *model.ChatResponse
		err  error
	)
	if intent.Confidence < c.opts.AmbiguityThreshold {
		resp = c.handleAmbiguous()
	} else {
		switch intent.Name {
		case model.IntentPropertySearch:
			resp, err = c.handlePropertySearch(ctx, state, entities, working)
		case model.IntentValuation:
			resp = c.handleValuation(state, entities)
		case model.IntentMarketInsights:
			resp = c.handleMarketInsights(state, entities)
		case model.IntentScheduling:
			resp = c.handleScheduling(state)
		case model.IntentLeadNurturing:
			resp, err = c.handleLeadNurturing(ctx, state, entities, working)
		case model.IntentFAQ:
			resp = c.handleFAQ(working)
		default:
			resp = c.handleAmbiguous()
		}
		if err != nil {
			return nil, err
		}
	}

	resp.Intent = intent
	if !entities.IsEmpty() {
		e := entities
		resp.Entities = &e
	}
	if state.Language != DefaultLanguage {
		resp.Message = c.language.TranslateMessage(resp.Message, DefaultLanguage, state.Language)
	}

	if err := c.sessions.SaveSession(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	c.log.Debug("message handled",
		"user_id", userID,
		"intent", intent.Name,
		"confidence", intent.Confidence,
		"state", state.CurrentState,
		"language", state.Language,
	)
	return resp, nil
}

// Session returns the stored conversation state of a user
func (c *Concierge) Session(ctx context.Context, userID string) (*model.ConversationState, error) {
	return c.sessions.GetSession(ctx, userID)
}

// UpdatePreferences merges an explicit preference update into a user's
// session, creating the session if needed
func (c *Concierge) UpdatePreferences(ctx context.Context, userID string, u model.PreferenceUpdate) (*model.ConversationState, error) {
	if u.RiskTolerance != "" && !u.RiskTolerance.Valid() {
		return nil, fmt.Errorf("invalid risk tolerance %q", u.RiskTolerance)
	}

	unlock := c.locks.Lock(userID)
	defer unlock()

	state, err := c.sessions.GetSession(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		state = model.NewConversationState(userID, DefaultLanguage, c.now())
	} else if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	state.Preferences.Merge(u)
	if err := c.sessions.SaveSession(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return state, nil
}

// Wait blocks until background search log writes have finished
func (c *Concierge) Wait() {
	c.inflight.Wait()
}

// logSearch writes the search log in the background
func (c *Concierge) logSearch(ctx context.Context, entry model.SearchLogEntry) {
	if c.searchLog == nil {
		return
	}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := c.searchLog.LogSearch(logCtx, entry); err != nil {
			c.log.Warn("failed to log search", "search_id", entry.SearchID, "error", err)
		}
	}()
}

func newSearchRecord(criteria model.SearchCriteria, results []model.PropertyListing, now time.Time) model.PropertySearch {
	return model.PropertySearch{
		ID:        id.New(),
		Timestamp: now,
		Criteria:  criteria,
		Results:   results,
	}
}

func errorResponse() *model.ChatResponse {
	return &model.ChatResponse{
		Message: "I'm sorry, something went wrong while handling your message. Please try again in a moment.",
		Actions: []model.Action{},
		Intent: model.Intent{
			Name:       model.IntentError,
			Confidence: 0,
			Category:   "error",
		},
	}
}

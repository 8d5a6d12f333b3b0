package model

// SearchCriteria represents the hard filters of a property search
type SearchCriteria struct {
	Budget       *float64      `json:"budget,omitempty"`
	Location     *string       `json:"location,omitempty"`
	PropertyType *PropertyType `json:"property_type,omitempty"`
	MinBedrooms  *int          `json:"min_bedrooms,omitempty"`
}

// CriteriaFromEntities builds search filters from extracted entities
func CriteriaFromEntities(e Entities) SearchCriteria {
	return SearchCriteria{
		Budget:       e.Budget,
		Location:     e.Location,
		PropertyType: e.PropertyType,
		MinBedrooms:  e.Bedrooms,
	}
}

// ChatRequest represents a message sent to the concierge
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	UserID  string `json:"user_id" binding:"required"`
}

// PreferenceUpdate represents an explicit change to a user's preferences
type PreferenceUpdate struct {
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

// PropertySearchRequest represents a direct catalog search
type PropertySearchRequest struct {
	Criteria    SearchCriteria   `json:"criteria"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
}

// PropertySearchResponse represents the result of a direct catalog search
type PropertySearchResponse struct {
	Results []PropertyListing `json:"results"`
	Total   int               `json:"total"`
	Took    int64             `json:"took_ms"` // Response time in milliseconds
}

// ValuationRequest represents a valuation request for an address
type ValuationRequest struct {
	Address string `json:"address" binding:"required"`
}

// EmbeddingBatchRequest represents a batch embedding update request
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem represents a single listing embedding
type EmbeddingItem struct {
	ListingID string    `json:"listing_id" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
}

// EmbeddingBatchResponse represents the response for batch embedding update
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// FeedbackRequest represents a user acting on a suggested action
type FeedbackRequest struct {
	UserID     string     `json:"user_id" binding:"required"`
	PropertyID string     `json:"property_id"`
	Action     ActionType `json:"action" binding:"required"`
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SearchLogEntry represents one search written to the search log
type SearchLogEntry struct {
	SearchID       int64          `json:"search_id" db:"search_id"`
	UserID         string         `json:"user_id" db:"user_id"`
	Query          string         `json:"query" db:"query"`
	Criteria       SearchCriteria `json:"criteria" db:"-"`
	ResultCount    int            `json:"result_count" db:"result_count"`
	ListingIDs     []string       `json:"listing_ids" db:"-"`
	ResponseTimeMs int            `json:"response_time_ms" db:"response_time_ms"`
}

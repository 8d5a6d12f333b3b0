package model

// IntentName identifies the purpose of a user message
type IntentName string

const (
	IntentPropertySearch IntentName = "property_search"
	IntentValuation      IntentName = "valuation"
	IntentMarketInsights IntentName = "market_insights"
	IntentScheduling     IntentName = "scheduling"
	IntentLeadNurturing  IntentName = "lead_nurturing"
	IntentFAQ            IntentName = "faq"

	// IntentError is only ever produced when a turn fails
	IntentError IntentName = "error"
)

// Intent represents the classified purpose of a message
type Intent struct {
	Name       IntentName `json:"name"`
	Confidence float64    `json:"confidence"`
	Category   string     `json:"category"`
}

// Entities represents structured values extracted from free text.
// A nil field means the extractor found nothing for it.
type Entities struct {
	Budget       *float64      `json:"budget,omitempty"`
	Location     *string       `json:"location,omitempty"`
	PropertyType *PropertyType `json:"property_type,omitempty"`
	Bedrooms     *int          `json:"bedrooms,omitempty"`
	Address      *string       `json:"address,omitempty"`
}

// IsEmpty reports whether no entity was extracted
func (e Entities) IsEmpty() bool {
	return e.Budget == nil && e.Location == nil && e.PropertyType == nil &&
		e.Bedrooms == nil && e.Address == nil
}

package service

import (
	"math"
	"strings"

	"concierge/internal/model"
)

const (
	// confidenceBase is added to every keyword ratio
	confidenceBase = 0.2
	// confidenceCap bounds a keyword-matched confidence
	confidenceCap = 0.95
	// fallbackConfidence is reported for the faq default
	fallbackConfidence = 0.3
)

// IntentDefinition is the keyword list of one intent
type IntentDefinition struct {
	Name     model.IntentName
	Category string
	Keywords []string
}

// IntentClassifier scores messages against keyword lists
type IntentClassifier struct {
	definitions []IntentDefinition
}

// NewIntentClassifier creates a classifier. Definitions are tried in order
// and a later intent only wins with a strictly higher confidence.
func NewIntentClassifier(definitions []IntentDefinition) *IntentClassifier {
	return &IntentClassifier{definitions: definitions}
}

// Classify returns the best intent for message. Confidence for an intent is
// min(matches/keywords + 0.2, 0.95); with nothing above 0.3 the result is faq at 0.3.
func (c *IntentClassifier) Classify(message string) model.Intent {
	lower := strings.ToLower(message)

	best := model.Intent{
		Name:       model.IntentFAQ,
		Confidence: fallbackConfidence,
		Category:   c.categoryOf(model.IntentFAQ),
	}

	for _, def := range c.definitions {
		if len(def.Keywords) == 0 {
			continue
		}
		matches := 0
		for _, kw := range def.Keywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		confidence := KeywordConfidence(matches, len(def.Keywords))
		if confidence > best.Confidence {
			best = model.Intent{Name: def.Name, Confidence: confidence, Category: def.Category}
		}
	}

	return best
}

// KeywordConfidence is the additive-baseline confidence of a keyword match ratio
func KeywordConfidence(matches, total int) float64 {
	if total <= 0 {
		return confidenceBase
	}
	return math.Min(float64(matches)/float64(total)+confidenceBase, confidenceCap)
}

func (c *IntentClassifier) categoryOf(name model.IntentName) string {
	for _, def := range c.definitions {
		if def.Name == name {
			return def.Category
		}
	}
	return "support"
}

// DefaultIntentDefinitions returns the built-in keyword lists.
// Keywords are matched as lowercase substrings, so stems such as "valu"
// cover "value" and "valuation".
func DefaultIntentDefinitions() []IntentDefinition {
	return []IntentDefinition{
		{
			Name:     model.IntentPropertySearch,
			Category: "search",
			Keywords: []string{"looking", "search", "find", "buy", "house", "bedroom", "under", "property"},
		},
		{
			Name:     model.IntentValuation,
			Category: "analysis",
			Keywords: []string{"price", "worth", "valu", "how much", "what is"},
		},
		{
			Name:     model.IntentMarketInsights,
			Category: "analysis",
			Keywords: []string{"market", "trend", "insight", "growth", "forecast", "suburb", "investment"},
		},
		{
			Name:     model.IntentScheduling,
			Category: "action",
			Keywords: []string{"schedule", "book", "tour", "viewing", "visit", "appointment", "inspect"},
		},
		{
			Name:     model.IntentLeadNurturing,
			Category: "engagement",
			Keywords: []string{"interested", "contact", "call me", "agent", "ready", "serious", "pre-approved", "mortgage"},
		},
		{
			Name:     model.IntentFAQ,
			Category: "support",
			Keywords: []string{"how do", "help", "process", "fees", "question", "explain"},
		},
	}
}

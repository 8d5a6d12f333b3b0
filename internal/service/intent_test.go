package service

import (
	"math"
	"testing"

	"concierge/internal/model"
)

func TestIntentClassifier_Classify(t *testing.T) {
	classifier := NewIntentClassifier(DefaultIntentDefinitions())

	tests := []struct {
		name           string
		message        string
		wantIntent     model.IntentName
		wantConfidence float64
		wantCategory   string
	}{
		{
			name:           "Property search",
			message:        "Looking for a 3 bedroom house in Melbourne under $800k",
			wantIntent:     model.IntentPropertySearch,
			wantConfidence: 0.7,
			wantCategory:   "search",
		},
		{
			name:           "Valuation",
			message:        "what is the price",
			wantIntent:     model.IntentValuation,
			wantConfidence: 2.0/5.0 + 0.2,
			wantCategory:   "analysis",
		},
		{
			name:           "Market insights",
			message:        "What are the market trends and growth forecast in Sydney?",
			wantIntent:     model.IntentMarketInsights,
			wantConfidence: 4.0/7.0 + 0.2,
			wantCategory:   "analysis",
		},
		{
			name:           "Scheduling",
			message:        "I want to book a tour and schedule a viewing",
			wantIntent:     model.IntentScheduling,
			wantConfidence: 4.0/7.0 + 0.2,
			wantCategory:   "action",
		},
		{
			name:           "Lead nurturing",
			message:        "I'm ready to buy and pre-approved, please have an agent contact me",
			wantIntent:     model.IntentLeadNurturing,
			wantConfidence: 0.7,
			wantCategory:   "engagement",
		},
		{
			name:           "FAQ",
			message:        "Can you explain the buying process and fees?",
			wantIntent:     model.IntentFAQ,
			wantConfidence: 0.7,
			wantCategory:   "support",
		},
		{
			name:           "No keywords falls back to faq",
			message:        "hello there",
			wantIntent:     model.IntentFAQ,
			wantConfidence: 0.3,
			wantCategory:   "support",
		},
		{
			name:           "Empty message",
			message:        "",
			wantIntent:     model.IntentFAQ,
			wantConfidence: 0.3,
			wantCategory:   "support",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.message)
			if got.Name != tt.wantIntent {
				t.Errorf("Classify(%q) intent = %s, want %s", tt.message, got.Name, tt.wantIntent)
			}
			if math.Abs(got.Confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("Classify(%q) confidence = %v, want %v", tt.message, got.Confidence, tt.wantConfidence)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Classify(%q) category = %s, want %s", tt.message, got.Category, tt.wantCategory)
			}
		})
	}
}

func TestIntentClassifier_ConfidenceRange(t *testing.T) {
	classifier := NewIntentClassifier(DefaultIntentDefinitions())

	messages := []string{
		"find",
		"search find buy house bedroom under property looking",
		"how much is it worth, what is the value and price",
		"schedule book tour viewing visit appointment inspect",
		"market trend insight growth forecast suburb investment",
		"I have a question, can you help explain the process and fees? how do I start",
	}

	for _, msg := range messages {
		got := classifier.Classify(msg)
		if got.Confidence < 0.2 || got.Confidence > 0.95 {
			t.Errorf("Classify(%q) confidence %v outside [0.2, 0.95]", msg, got.Confidence)
		}
	}
}

func TestIntentClassifier_CapAndTieBreak(t *testing.T) {
	classifier := NewIntentClassifier([]IntentDefinition{
		{Name: model.IntentValuation, Category: "analysis", Keywords: []string{"alpha", "beta"}},
		{Name: model.IntentScheduling, Category: "action", Keywords: []string{"alpha", "beta"}},
		{Name: model.IntentFAQ, Category: "support", Keywords: []string{"gamma"}},
	})

	got := classifier.Classify("alpha beta")
	if got.Name != model.IntentValuation {
		t.Errorf("tie should keep the earlier intent, got %s", got.Name)
	}
	if got.Confidence != 0.95 {
		t.Errorf("confidence should be capped at 0.95, got %v", got.Confidence)
	}
}

func TestKeywordConfidence(t *testing.T) {
	tests := []struct {
		matches, total int
		want           float64
	}{
		{0, 5, 0.2},
		{1, 4, 0.45},
		{4, 8, 0.7},
		{5, 5, 0.95},
		{0, 0, 0.2},
	}

	for _, tt := range tests {
		got := KeywordConfidence(tt.matches, tt.total)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("KeywordConfidence(%d, %d) = %v, want %v", tt.matches, tt.total, got, tt.want)
		}
	}
}

package service

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"concierge/internal/logger"
	"concierge/internal/model"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestEngine(random float64) *PropertyEngine {
	return NewPropertyEngine(
		NewStaticCatalog(DefaultListings()),
		DefaultPreferenceRanker(),
		RandomFunc(func() float64 { return random }),
		fixedClock,
		logger.Nop(),
	)
}

func listingIDs(listings []model.PropertyListing) []string {
	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	return ids
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

func typePtr(t model.PropertyType) *model.PropertyType { return &t }

func TestPropertyEngine_SearchProperties(t *testing.T) {
	engine := newTestEngine(0.5)

	tests := []struct {
		name     string
		criteria model.SearchCriteria
		want     []string
	}{
		{
			name: "All criteria",
			criteria: model.SearchCriteria{
				Budget:       floatPtr(800000),
				Location:     strPtr("melbourne"),
				PropertyType: typePtr(model.PropertyHouse),
				MinBedrooms:  intPtr(3),
			},
			want: []string{"prop_001"},
		},
		{
			name:     "Budget allows ten percent over",
			criteria: model.SearchCriteria{Budget: floatPtr(700000)},
			want:     []string{"prop_001", "prop_003"},
		},
		{
			name:     "Budget ceiling excludes",
			criteria: model.SearchCriteria{Budget: floatPtr(680000)},
			want:     []string{"prop_003"},
		},
		{
			name:     "No lower bound under the budget",
			criteria: model.SearchCriteria{Budget: floatPtr(2000000)},
			want:     []string{"prop_001", "prop_002", "prop_003"},
		},
		{
			name:     "Location is case insensitive",
			criteria: model.SearchCriteria{Location: strPtr("  SYDNEY ")},
			want:     []string{"prop_002"},
		},
		{
			name:     "Bedrooms are a minimum",
			criteria: model.SearchCriteria{MinBedrooms: intPtr(3)},
			want:     []string{"prop_001", "prop_003"},
		},
		{
			name:     "No criteria returns everything in catalog order",
			criteria: model.SearchCriteria{},
			want:     []string{"prop_001", "prop_002", "prop_003"},
		},
		{
			name:     "Nothing matches",
			criteria: model.SearchCriteria{Location: strPtr("hobart")},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.SearchProperties(context.Background(), tt.criteria, nil)
			if err != nil {
				t.Fatalf("SearchProperties() error = %v", err)
			}
			if ids := listingIDs(got); !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("SearchProperties() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestPropertyEngine_SearchPropertiesRanked(t *testing.T) {
	engine := newTestEngine(0.5)
	prefs := &model.UserPreferences{
		Locations:     []string{"Brisbane"},
		PropertyTypes: []model.PropertyType{model.PropertyTownhouse},
	}

	got, err := engine.SearchProperties(context.Background(), model.SearchCriteria{}, prefs)
	if err != nil {
		t.Fatalf("SearchProperties() error = %v", err)
	}

	want := []string{"prop_003", "prop_001", "prop_002"}
	if ids := listingIDs(got); !reflect.DeepEqual(ids, want) {
		t.Fatalf("ranked order = %v, want %v", ids, want)
	}
	if math.Abs(got[0].MatchScore-0.725) > 1e-9 {
		t.Errorf("top match score = %v, want 0.725", got[0].MatchScore)
	}
	for _, l := range got[1:] {
		if math.Abs(l.MatchScore-0.275) > 1e-9 {
			t.Errorf("%s match score = %v, want 0.275", l.ID, l.MatchScore)
		}
	}
}

func TestPropertyEngine_SearchPropertiesCancelled(t *testing.T) {
	engine := newTestEngine(0.5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.SearchProperties(ctx, model.SearchCriteria{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("SearchProperties() error = %v, want context.Canceled", err)
	}
}

func TestRiskScore(t *testing.T) {
	listings := map[string]model.PropertyListing{}
	for _, l := range DefaultListings() {
		listings[l.ID] = l
	}

	tests := []struct {
		name    string
		listing model.PropertyListing
		want    float64
	}{
		{"Baseline", listings["prop_001"], 0.2},
		{"Coastal", listings["prop_002"], 0.35},
		{"Flood", listings["prop_003"], 0.45},
		{
			name:    "Cheap declining bushfire area",
			listing: model.PropertyListing{Location: "Canberra", Price: 350000, MarketTrend: model.TrendDeclining},
			want:    0.2 + 0.25 + 0.15 + 0.1,
		},
		{
			name:    "Expensive flood and coastal",
			listing: model.PropertyListing{Location: "Gold Coast", Price: 2500000},
			want:    0.2 + 0.25 + 0.15 + 0.1,
		},
		{
			name:    "Clamped to one",
			listing: model.PropertyListing{Location: "Gold Coast", Address: "1 Ridge Rd, Blue Mountains", Price: 300000, MarketTrend: model.TrendDeclining},
			want:    1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RiskScore(tt.listing); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RiskScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValuation(t *testing.T) {
	tests := []struct {
		name    string
		listing model.PropertyListing
		want    float64
	}{
		{"Brisbane growth", model.PropertyListing{Location: "Brisbane", Price: 620000}, 663000},
		{"Sydney growth", model.PropertyListing{Location: "Sydney", Price: 1250000}, 1350000},
		{"Entry level bonus", model.PropertyListing{Location: "Perth", Price: 300000}, 318000},
		{"Premium discount", model.PropertyListing{Location: "Adelaide", Price: 2000000}, 2080000},
		{"Unknown city", model.PropertyListing{Location: "Hobart", Price: 600000}, 618000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valuation(tt.listing); got != tt.want {
				t.Errorf("Valuation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvironmentalRisks(t *testing.T) {
	tests := []struct {
		location string
		want     []string
	}{
		{"Melbourne", []string{}},
		{"Brisbane", []string{"flood"}},
		{"Canberra", []string{"bushfire"}},
		{"Gold Coast", []string{"flood", "coastal_erosion"}},
	}

	for _, tt := range tests {
		got := EnvironmentalRisks(model.PropertyListing{Location: tt.location})
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("EnvironmentalRisks(%s) = %v, want %v", tt.location, got, tt.want)
		}
	}
}

func TestPropertyEngine_Enrich(t *testing.T) {
	engine := newTestEngine(0.5)
	original := DefaultListings()[2]

	got := engine.Enrich(original)
	if got.RiskScore != RiskScore(original) || got.Valuation != 663000 {
		t.Errorf("Enrich() risk = %v valuation = %v", got.RiskScore, got.Valuation)
	}
	if !reflect.DeepEqual(got.EnvironmentalRisks, []string{"flood"}) {
		t.Errorf("Enrich() environmental risks = %v", got.EnvironmentalRisks)
	}

	got.Features[0] = "changed"
	if original.Features[0] == "changed" {
		t.Error("Enrich() result shares features with its input")
	}
	if original.RiskScore != 0 {
		t.Error("Enrich() modified its input")
	}
}

func TestPropertyEngine_DetailedValuation(t *testing.T) {
	tests := []struct {
		name      string
		random    float64
		address   string
		wantValue float64
		wantLow   float64
		wantHigh  float64
		wantRisk  model.RiskBreakdown
		wantPot   float64
		wantMkt   string
	}{
		{
			name:      "Flood area",
			random:    0.5,
			address:   "10 Queen Street, Brisbane",
			wantValue: 1000000,
			wantLow:   900000,
			wantHigh:  1100000,
			wantRisk:  model.RiskBreakdown{Flood: 0.6, Fire: 0.1, Market: 0.3, Overall: 0.33},
			wantPot:   6.7,
			wantMkt:   "Sydney",
		},
		{
			name:      "Bushfire area",
			random:    0,
			address:   "5 Ridge Road, Blue Mountains",
			wantValue: 500000,
			wantLow:   450000,
			wantHigh:  550000,
			wantRisk:  model.RiskBreakdown{Flood: 0.1, Fire: 0.5, Market: 0.3, Overall: 0.3},
			wantPot:   7,
			wantMkt:   "Sydney",
		},
		{
			name:      "Known market",
			random:    0.25,
			address:   "1 George Street, Melbourne",
			wantValue: 750000,
			wantLow:   675000,
			wantHigh:  825000,
			wantRisk:  model.RiskBreakdown{Flood: 0.1, Fire: 0.1, Market: 0.3, Overall: 0.17},
			wantPot:   8.3,
			wantMkt:   "Melbourne",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestEngine(tt.random).DetailedValuation(tt.address)

			if got.Address != tt.address {
				t.Errorf("address = %q", got.Address)
			}
			if got.EstimatedValue != tt.wantValue || got.ValueRangeLow != tt.wantLow || got.ValueRangeHigh != tt.wantHigh {
				t.Errorf("value = %v [%v, %v], want %v [%v, %v]",
					got.EstimatedValue, got.ValueRangeLow, got.ValueRangeHigh, tt.wantValue, tt.wantLow, tt.wantHigh)
			}
			if got.Risk != tt.wantRisk {
				t.Errorf("risk = %+v, want %+v", got.Risk, tt.wantRisk)
			}
			if math.Abs(got.InvestmentPotential-tt.wantPot) > 1e-9 {
				t.Errorf("investment potential = %v, want %v", got.InvestmentPotential, tt.wantPot)
			}
			if got.ConfidenceScore != 0.85 {
				t.Errorf("confidence = %v, want 0.85", got.ConfidenceScore)
			}
			if got.Market != tt.wantMkt {
				t.Errorf("market = %q, want %q", got.Market, tt.wantMkt)
			}
			if !got.GeneratedAt.Equal(testNow) {
				t.Errorf("generated at = %v, want %v", got.GeneratedAt, testNow)
			}
		})
	}
}

func TestPropertyEngine_MarketInsights(t *testing.T) {
	engine := newTestEngine(0.5)

	tests := []struct {
		location string
		want     string
	}{
		{"Sydney", "Sydney"},
		{"MELBOURNE", "Melbourne"},
		{" melbourne ", "Melbourne"},
		{"Narnia", "Sydney"},
		{"", "Sydney"},
	}

	for _, tt := range tests {
		if got := engine.MarketInsights(tt.location); got.Location != tt.want {
			t.Errorf("MarketInsights(%q) = %s, want %s", tt.location, got.Location, tt.want)
		}
	}
}

func TestPreferenceRanker_RankResults(t *testing.T) {
	ranker := DefaultPreferenceRanker()
	listings := DefaultListings()

	t.Run("Never removes listings", func(t *testing.T) {
		got := ranker.RankResults(listings, model.UserPreferences{Locations: []string{"Perth"}})
		if len(got) != len(listings) {
			t.Fatalf("RankResults() returned %d listings, want %d", len(got), len(listings))
		}
	})

	t.Run("Does not modify input", func(t *testing.T) {
		ranker.RankResults(listings, model.UserPreferences{Locations: []string{"Sydney"}})
		if listings[1].MatchScore != 0 || listings[1].MatchedReasons != nil {
			t.Error("RankResults() modified its input")
		}
	})

	t.Run("No preferences is a general match", func(t *testing.T) {
		got := ranker.RankResults(listings, model.UserPreferences{})
		for _, l := range got {
			if math.Abs(l.MatchScore-0.5) > 1e-9 {
				t.Errorf("%s match score = %v, want 0.5", l.ID, l.MatchScore)
			}
			if !reflect.DeepEqual(l.MatchedReasons, []string{ReasonGeneralMatch}) {
				t.Errorf("%s reasons = %v", l.ID, l.MatchedReasons)
			}
		}
		if ids := listingIDs(got); !reflect.DeepEqual(ids, []string{"prop_001", "prop_002", "prop_003"}) {
			t.Errorf("ties should keep catalog order, got %v", ids)
		}
	})

	t.Run("Reasons", func(t *testing.T) {
		prefs := model.UserPreferences{
			BudgetMax:        floatPtr(1300000),
			Locations:        []string{"sydney"},
			PropertyTypes:    []model.PropertyType{model.PropertyApartment},
			MustHaveFeatures: []string{"pool", "garden"},
			RiskTolerance:    model.RiskMedium,
		}
		got := ranker.RankResults(listings, prefs)
		if got[0].ID != "prop_002" {
			t.Fatalf("top result = %s, want prop_002", got[0].ID)
		}
		want := []string{
			ReasonWithinBudget,
			ReasonLocationMatch,
			ReasonTypeMatch,
			ReasonFeatureMatch + ": Swimming pool",
			ReasonRiskFit,
		}
		if !reflect.DeepEqual(got[0].MatchedReasons, want) {
			t.Errorf("reasons = %v, want %v", got[0].MatchedReasons, want)
		}
	})
}

func TestPreferenceRanker_BudgetScore(t *testing.T) {
	ranker := DefaultPreferenceRanker()

	tests := []struct {
		name  string
		price float64
		prefs model.UserPreferences
		want  float64
	}{
		{"No budget", 500000, model.UserPreferences{}, 0.5},
		{"Within max", 500000, model.UserPreferences{BudgetMax: floatPtr(600000)}, 1},
		{"Below min", 400000, model.UserPreferences{BudgetMin: floatPtr(450000)}, 0.5},
		{"Min only", 500000, model.UserPreferences{BudgetMin: floatPtr(450000)}, 1},
		{"Over max decays", 750000, model.UserPreferences{BudgetMax: floatPtr(500000)}, 0.5},
		{"Far over max", 1500000, model.UserPreferences{BudgetMax: floatPtr(500000)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ranker.calculateBudgetScore(tt.price, tt.prefs); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("calculateBudgetScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

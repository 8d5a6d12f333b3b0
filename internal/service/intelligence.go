package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"concierge/internal/logger"
	"concierge/internal/model"
)

// budgetTolerance lets listings up to 10% over the stated budget through
const budgetTolerance = 1.10

var (
	floodAreas    = []string{"brisbane", "gold coast", "cairns", "townsville", "lismore"}
	bushfireAreas = []string{"blue mountains", "adelaide hills", "dandenong", "perth hills", "canberra"}
	coastalAreas  = []string{"gold coast", "sunshine coast", "bondi", "manly", "harbour", "beach"}

	// growthMultipliers is the yearly price growth applied by Valuation
	growthMultipliers = []struct {
		city       string
		multiplier float64
	}{
		{"sydney", 1.08},
		{"melbourne", 1.05},
		{"brisbane", 1.07},
		{"perth", 1.04},
		{"adelaide", 1.06},
	}
)

const defaultGrowthMultiplier = 1.03

// RandomSource yields floats in [0,1)
type RandomSource interface {
	Float64() float64
}

// RandomFunc adapts a function to RandomSource
type RandomFunc func() float64

// Float64 calls f
func (f RandomFunc) Float64() float64 { return f() }

// PropertyEngine searches the catalog and computes heuristic risk,
// valuation and market data for listings
type PropertyEngine struct {
	catalog Catalog
	ranker  *PreferenceRanker
	random  RandomSource
	now     func() time.Time
	markets []model.MarketInsights
	log     *logger.Logger
}

// NewPropertyEngine creates an engine. A nil ranker, random source or clock
// falls back to the defaults.
func NewPropertyEngine(catalog Catalog, ranker *PreferenceRanker, random RandomSource, now func() time.Time, log *logger.Logger) *PropertyEngine {
	if ranker == nil {
		ranker = DefaultPreferenceRanker()
	}
	if random == nil {
		random = RandomFunc(rand.Float64)
	}
	if now == nil {
		now = time.Now
	}
	return &PropertyEngine{
		catalog: catalog,
		ranker:  ranker,
		random:  random,
		now:     now,
		markets: DefaultMarkets(),
		log:     log.With("service", "PropertyEngine"),
	}
}

// SearchProperties returns catalog listings that pass every criterion.
// When prefs is non-nil the survivors are reordered by preference fit;
// ranking never removes a listing.
func (e *PropertyEngine) SearchProperties(ctx context.Context, criteria model.SearchCriteria, prefs *model.UserPreferences) ([]model.PropertyListing, error) {
	candidates, err := e.catalog.Candidates(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	results := make([]model.PropertyListing, 0, len(candidates))
	for _, l := range candidates {
		if matchesCriteria(l, criteria) {
			results = append(results, l)
		}
	}

	if prefs != nil {
		results = e.ranker.RankResults(results, *prefs)
	}

	e.log.Debug("property search finished", "candidates", len(candidates), "results", len(results))
	return results, nil
}

func matchesCriteria(l model.PropertyListing, c model.SearchCriteria) bool {
	if c.Budget != nil && l.Price > *c.Budget*budgetTolerance {
		return false
	}
	if c.Location != nil && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(strings.TrimSpace(*c.Location))) {
		return false
	}
	if c.PropertyType != nil && l.Type != *c.PropertyType {
		return false
	}
	if c.MinBedrooms != nil && l.Bedrooms < *c.MinBedrooms {
		return false
	}
	return true
}

// Enrich fills the computed risk, valuation and environmental fields
func (e *PropertyEngine) Enrich(l model.PropertyListing) model.PropertyListing {
	out := l.Clone()
	out.RiskScore = RiskScore(l)
	out.Valuation = Valuation(l)
	out.EnvironmentalRisks = EnvironmentalRisks(l)
	return out
}

// RiskScore is a heuristic risk in [0,1] from location and price bracket
func RiskScore(l model.PropertyListing) float64 {
	place := listingPlace(l)
	score := 0.2
	if containsAny(place, floodAreas) {
		score += 0.25
	}
	if containsAny(place, bushfireAreas) {
		score += 0.25
	}
	if containsAny(place, coastalAreas) {
		score += 0.15
	}
	switch {
	case l.Price > 2_000_000:
		score += 0.1
	case l.Price < 400_000:
		score += 0.15
	}
	if l.MarketTrend == model.TrendDeclining {
		score += 0.1
	}
	return clamp01(score)
}

// Valuation projects a listing's price one year out, rounded to the nearest thousand
func Valuation(l model.PropertyListing) float64 {
	place := listingPlace(l)
	multiplier := defaultGrowthMultiplier
	for _, g := range growthMultipliers {
		if strings.Contains(place, g.city) {
			multiplier = g.multiplier
			break
		}
	}

	switch {
	case l.Price >= 2_000_000:
		multiplier -= 0.02
	case l.Price < 500_000:
		multiplier += 0.02
	}

	return math.Round(l.Price*multiplier/1000) * 1000
}

// EnvironmentalRisks lists the hazard tags of a listing's location
func EnvironmentalRisks(l model.PropertyListing) []string {
	place := listingPlace(l)
	risks := []string{}
	if containsAny(place, floodAreas) {
		risks = append(risks, "flood")
	}
	if containsAny(place, bushfireAreas) {
		risks = append(risks, "bushfire")
	}
	if containsAny(place, coastalAreas) {
		risks = append(risks, "coastal_erosion")
	}
	return risks
}

// DetailedValuation produces a valuation report for an address. The
// estimated value is drawn from [500k, 1.5M) through the random source;
// every other field is derived from the address.
func (e *PropertyEngine) DetailedValuation(address string) model.ValuationReport {
	place := strings.ToLower(address)
	estimate := math.Round((500_000+e.random.Float64()*1_000_000)/1000) * 1000

	risk := model.RiskBreakdown{Flood: 0.1, Fire: 0.1, Market: 0.3}
	if containsAny(place, floodAreas) {
		risk.Flood = 0.6
	}
	if containsAny(place, bushfireAreas) {
		risk.Fire = 0.5
	}
	risk.Overall = math.Round((risk.Flood+risk.Fire+risk.Market)/3*100) / 100

	market := e.markets[0].Location
	for _, m := range e.markets {
		if strings.Contains(place, strings.ToLower(m.Location)) {
			market = m.Location
			break
		}
	}

	return model.ValuationReport{
		Address:             address,
		EstimatedValue:      estimate,
		ValueRangeLow:       math.Round(estimate*0.9/1000) * 1000,
		ValueRangeHigh:      math.Round(estimate*1.1/1000) * 1000,
		ConfidenceScore:     0.85,
		Risk:                risk,
		InvestmentPotential: math.Round((1-risk.Overall)*100) / 10,
		Market:              market,
		GeneratedAt:         e.now(),
	}
}

// MarketInsights returns market data for location, or the first known
// market when the location is unknown
func (e *PropertyEngine) MarketInsights(location string) model.MarketInsights {
	key := strings.ToLower(strings.TrimSpace(location))
	for _, m := range e.markets {
		if strings.ToLower(m.Location) == key {
			return m
		}
	}
	return e.markets[0]
}

// DefaultMarkets returns the built-in market table. The first entry is
// the fallback for unknown locations.
func DefaultMarkets() []model.MarketInsights {
	return []model.MarketInsights{
		{
			Location:             "Sydney",
			MedianPrice:          1_150_000,
			PriceGrowthYoY:       8.2,
			AverageDaysOnMarket:  32,
			AuctionClearanceRate: 72.5,
			RentalYield:          3.1,
			Trend:                model.TrendRising,
			Demand:               "high",
			Forecast:             "Continued growth expected as supply stays tight",
		},
		{
			Location:             "Melbourne",
			MedianPrice:          850_000,
			PriceGrowthYoY:       5.4,
			AverageDaysOnMarket:  38,
			AuctionClearanceRate: 68.0,
			RentalYield:          3.6,
			Trend:                model.TrendStable,
			Demand:               "moderate",
			Forecast:             "Steady conditions with modest price gains",
		},
	}
}

func listingPlace(l model.PropertyListing) string {
	return strings.ToLower(l.Location + " " + l.Address)
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

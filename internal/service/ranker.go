package service

import (
	"math"
	"sort"
	"strings"

	"concierge/internal/model"
	"concierge/internal/utils"
)

// Match reason constants
const (
	ReasonWithinBudget  = "Within budget"
	ReasonLocationMatch = "Preferred location"
	ReasonTypeMatch     = "Preferred property type"
	ReasonFeatureMatch  = "Has must-have features"
	ReasonRiskFit       = "Fits risk tolerance"
	ReasonGeneralMatch  = "General match"
)

// neutralScore is used for a factor the user expressed no preference on
const neutralScore = 0.5

// riskTargets is the ideal listing risk per tolerance
var riskTargets = map[model.RiskTolerance]float64{
	model.RiskLow:    0.2,
	model.RiskMedium: 0.5,
	model.RiskHigh:   0.8,
}

// PreferenceRanker reorders listings by how well they fit user preferences.
// It never removes a listing.
type PreferenceRanker struct {
	weightBudget   float64
	weightLocation float64
	weightType     float64
	weightFeatures float64
	weightRisk     float64
	riskScore      func(model.PropertyListing) float64
}

// NewPreferenceRanker creates a new ranker with specified weights
func NewPreferenceRanker(weightBudget, weightLocation, weightType, weightFeatures, weightRisk float64) *PreferenceRanker {
	return &PreferenceRanker{
		weightBudget:   weightBudget,
		weightLocation: weightLocation,
		weightType:     weightType,
		weightFeatures: weightFeatures,
		weightRisk:     weightRisk,
		riskScore:      RiskScore,
	}
}

// DefaultPreferenceRanker uses weights 0.30/0.25/0.20/0.15/0.10
func DefaultPreferenceRanker() *PreferenceRanker {
	return NewPreferenceRanker(0.30, 0.25, 0.20, 0.15, 0.10)
}

// RankResults scores listings against prefs and sorts them by score descending.
// Ties keep their catalog order.
func (r *PreferenceRanker) RankResults(listings []model.PropertyListing, prefs model.UserPreferences) []model.PropertyListing {
	results := make([]model.PropertyListing, len(listings))
	copy(results, listings)

	for i := range results {
		l := &results[i]

		budgetScore := r.calculateBudgetScore(l.Price, prefs)
		locationScore := r.calculateLocationScore(*l, prefs)
		typeScore := r.calculateTypeScore(l.Type, prefs)
		featureScore := r.calculateFeatureScore(l.Features, prefs)
		riskScore := r.calculateRiskScore(*l, prefs)

		l.MatchScore = (r.weightBudget * budgetScore) +
			(r.weightLocation * locationScore) +
			(r.weightType * typeScore) +
			(r.weightFeatures * featureScore) +
			(r.weightRisk * riskScore)

		l.MatchedReasons = r.generateMatchedReasons(*l, prefs, budgetScore, locationScore, typeScore, featureScore, riskScore)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	return results
}

// calculateBudgetScore is 1 inside the budget and decays linearly above it
func (r *PreferenceRanker) calculateBudgetScore(price float64, prefs model.UserPreferences) float64 {
	if prefs.BudgetMax == nil && prefs.BudgetMin == nil {
		return neutralScore
	}

	if prefs.BudgetMin != nil && price < *prefs.BudgetMin {
		return neutralScore
	}

	if prefs.BudgetMax == nil || *prefs.BudgetMax <= 0 {
		return 1.0
	}

	maxPrice := *prefs.BudgetMax
	if price <= maxPrice {
		return 1.0
	}
	return math.Max(0, 1-(price-maxPrice)/maxPrice)
}

func (r *PreferenceRanker) calculateLocationScore(l model.PropertyListing, prefs model.UserPreferences) float64 {
	if len(prefs.Locations) == 0 {
		return neutralScore
	}
	location := strings.ToLower(l.Location + " " + l.Address)
	for _, want := range prefs.Locations {
		if strings.Contains(location, strings.ToLower(want)) {
			return 1.0
		}
	}
	return 0
}

func (r *PreferenceRanker) calculateTypeScore(t model.PropertyType, prefs model.UserPreferences) float64 {
	if len(prefs.PropertyTypes) == 0 {
		return neutralScore
	}
	for _, want := range prefs.PropertyTypes {
		if want == t {
			return 1.0
		}
	}
	return 0
}

func (r *PreferenceRanker) calculateFeatureScore(features []string, prefs model.UserPreferences) float64 {
	if len(prefs.MustHaveFeatures) == 0 {
		return neutralScore
	}
	return utils.FeatureOverlap(prefs.MustHaveFeatures, features)
}

func (r *PreferenceRanker) calculateRiskScore(l model.PropertyListing, prefs model.UserPreferences) float64 {
	target, ok := riskTargets[prefs.RiskTolerance]
	if !ok {
		return neutralScore
	}
	return 1 - math.Abs(r.riskScore(l)-target)
}

// generateMatchedReasons lists the preferences a listing satisfied
func (r *PreferenceRanker) generateMatchedReasons(
	l model.PropertyListing,
	prefs model.UserPreferences,
	budgetScore, locationScore, typeScore, featureScore, riskScore float64,
) []string {
	reasons := []string{}

	if prefs.BudgetMax != nil && budgetScore >= 1.0 {
		reasons = append(reasons, ReasonWithinBudget)
	}
	if len(prefs.Locations) > 0 && locationScore >= 1.0 {
		reasons = append(reasons, ReasonLocationMatch)
	}
	if len(prefs.PropertyTypes) > 0 && typeScore >= 1.0 {
		reasons = append(reasons, ReasonTypeMatch)
	}
	if len(prefs.MustHaveFeatures) > 0 && featureScore > 0 {
		matched := []string{}
		for _, want := range prefs.MustHaveFeatures {
			for _, f := range l.Features {
				if utils.FuzzyMatchFeature(want, f) {
					matched = append(matched, utils.NormalizeFeature(want))
					break
				}
			}
		}
		reasons = append(reasons, ReasonFeatureMatch+": "+strings.Join(matched, ", "))
	}
	if prefs.RiskTolerance != "" && riskScore >= 0.8 {
		reasons = append(reasons, ReasonRiskFit)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}
	return reasons
}

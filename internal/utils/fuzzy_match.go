package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// featureAliases groups the ways listings and buyers name the same feature
var featureAliases = map[string][]string{
	"pool":    {"swimming pool", "pool", "lap pool", "plunge pool"},
	"gym":     {"gym", "gymnasium", "fitness", "fitness center"},
	"parking": {"parking", "garage", "carport", "car space", "double garage"},
	"garden":  {"garden", "yard", "backyard", "courtyard", "lawn"},
	"view":    {"view", "views", "harbour views", "river views", "ocean views", "city views"},
	"aircon":  {"air conditioning", "aircon", "ducted cooling", "split system", "a/c"},
	"solar":   {"solar", "solar panels", "solar power"},
	"kitchen": {"kitchen", "renovated kitchen", "open kitchen", "gourmet kitchen"},
	"balcony": {"balcony", "terrace", "deck"},
	"storage": {"storage", "storage cage", "walk-in wardrobe", "built-in wardrobe"},
	"security": {
		"security", "24-hour security", "secure entry", "intercom", "concierge",
	},
}

var featureNormalizations = map[string]string{
	"pool":             "Swimming pool",
	"swimming pool":    "Swimming pool",
	"gym":              "Gym",
	"gymnasium":        "Gym",
	"fitness":          "Gym",
	"garage":           "Garage",
	"double garage":    "Garage",
	"carport":          "Parking",
	"car space":        "Parking",
	"parking":          "Parking",
	"yard":             "Garden",
	"backyard":         "Garden",
	"garden":           "Garden",
	"aircon":           "Air conditioning",
	"a/c":              "Air conditioning",
	"air conditioning": "Air conditioning",
	"solar":            "Solar panels",
	"solar panels":     "Solar panels",
	"terrace":          "Balcony",
	"balcony":          "Balcony",
}

// FuzzyMatchFeature performs fuzzy matching between a requested feature and
// a listing feature
func FuzzyMatchFeature(searchTerm, feature string) bool {
	searchLower := strings.ToLower(strings.TrimSpace(searchTerm))
	featureLower := strings.ToLower(strings.TrimSpace(feature))
	if searchLower == "" || featureLower == "" {
		return false
	}

	if searchLower == featureLower {
		return true
	}
	if strings.Contains(featureLower, searchLower) || strings.Contains(searchLower, featureLower) {
		return true
	}

	for key, values := range featureAliases {
		if !containsAny(searchLower, key, values) {
			continue
		}
		if containsAny(featureLower, key, values) {
			return true
		}
	}

	return false
}

// FeatureOverlap returns the share of wanted features present in offered, in [0,1]
func FeatureOverlap(wanted, offered []string) float64 {
	if len(wanted) == 0 {
		return 0
	}
	matched := 0
	for _, w := range wanted {
		for _, o := range offered {
			if FuzzyMatchFeature(w, o) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(wanted))
}

// NormalizeFeature normalizes feature names to a standard form
func NormalizeFeature(feature string) string {
	featureLower := strings.ToLower(strings.TrimSpace(feature))
	if normalized, ok := featureNormalizations[featureLower]; ok {
		return normalized
	}
	// Casers keep state, so one is built per call
	return cases.Title(language.English).String(featureLower)
}

func containsAny(s, key string, values []string) bool {
	if strings.Contains(s, key) {
		return true
	}
	for _, v := range values {
		if strings.Contains(s, v) {
			return true
		}
	}
	return false
}

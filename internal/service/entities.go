package service

import (
	"regexp"
	"strconv"
	"strings"

	"concierge/internal/model"
)

var (
	// "$800k", "$1.2 million", "$1,250,000", "750 thousand"
	budgetPattern = regexp.MustCompile(`(?i)(?:\$\s*([\d,]+(?:\.\d+)?)\s*(k|thousand|m|million)?\b|\b([\d,]+(?:\.\d+)?)\s*(k|thousand|m|million)\b)`)

	bedroomPattern = regexp.MustCompile(`(?i)\b(\d+)\s*-?\s*bed(?:room)?s?\b`)

	addressPattern = regexp.MustCompile(`(?i)\b\d+[a-z]?\s+(?:[a-z]+\s+){0,3}?(?:street|st|road|rd|avenue|ave|drive|dr|lane|ln|boulevard|blvd|court|ct|place|pl|terrace|tce|parade|pde|crescent|cres|highway|hwy|way)\b\.?`)
)

// EntityExtractor pulls structured values out of free text using a fixed vocabulary
type EntityExtractor struct {
	locations     []string
	propertyTypes []model.PropertyType
}

// DefaultLocations lists the cities the extractor recognizes
func DefaultLocations() []string {
	return []string{
		"sydney", "melbourne", "brisbane", "perth", "adelaide",
		"gold coast", "canberra", "hobart", "darwin", "newcastle",
	}
}

// DefaultPropertyTypes lists the recognized property types in match order.
// Townhouse precedes house so that the longer word wins.
func DefaultPropertyTypes() []model.PropertyType {
	return []model.PropertyType{
		model.PropertyTownhouse,
		model.PropertyApartment,
		model.PropertyCondo,
		model.PropertyVilla,
		model.PropertyHouse,
		model.PropertyUnit,
		model.PropertyLand,
	}
}

// NewEntityExtractor creates an extractor over the given vocabulary
func NewEntityExtractor(locations []string, propertyTypes []model.PropertyType) *EntityExtractor {
	lower := make([]string, len(locations))
	for i, l := range locations {
		lower[i] = strings.ToLower(l)
	}
	return &EntityExtractor{locations: lower, propertyTypes: propertyTypes}
}

// Extract returns every entity found in message. Each kind is extracted
// independently and the first match of each wins.
func (x *EntityExtractor) Extract(message string) model.Entities {
	var e model.Entities
	lower := strings.ToLower(message)

	if budget, ok := parseBudget(message); ok {
		e.Budget = &budget
	}

	for _, loc := range x.locations {
		if strings.Contains(lower, loc) {
			l := loc
			e.Location = &l
			break
		}
	}

	for _, t := range x.propertyTypes {
		if strings.Contains(lower, string(t)) {
			pt := t
			e.PropertyType = &pt
			break
		}
	}

	if m := bedroomPattern.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			e.Bedrooms = &n
		}
	}

	for _, m := range addressPattern.FindAllString(message, -1) {
		if describesBedrooms(m) {
			continue
		}
		addr := strings.TrimSuffix(strings.TrimSpace(m), ".")
		e.Address = &addr
		break
	}

	return e
}

// describesBedrooms reports whether an address candidate such as "4 bed place"
// is really a bedroom count
func describesBedrooms(candidate string) bool {
	for _, w := range strings.Fields(strings.ToLower(candidate)) {
		switch strings.TrimSuffix(w, ".") {
		case "bed", "beds", "bedroom", "bedrooms", "br":
			return true
		}
	}
	return false
}

func parseBudget(message string) (float64, bool) {
	m := budgetPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}

	amount, suffix := m[1], m[2]
	if amount == "" {
		amount, suffix = m[3], m[4]
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(amount, ",", ""), 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(suffix) {
	case "k", "thousand":
		value *= 1_000
	case "m", "million":
		value *= 1_000_000
	}
	return value, true
}

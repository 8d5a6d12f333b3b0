package service

import (
	"context"

	"concierge/internal/model"
)

// Catalog supplies candidate listings for a search. Implementations may
// narrow the candidates by criteria, but the engine always applies its own
// filter afterwards.
type Catalog interface {
	Candidates(ctx context.Context, criteria model.SearchCriteria) ([]model.PropertyListing, error)
}

// StaticCatalog serves a fixed in-memory inventory
type StaticCatalog struct {
	listings []model.PropertyListing
}

// NewStaticCatalog creates a catalog over listings
func NewStaticCatalog(listings []model.PropertyListing) *StaticCatalog {
	return &StaticCatalog{listings: listings}
}

// Candidates returns copies of every listing
func (c *StaticCatalog) Candidates(ctx context.Context, _ model.SearchCriteria) ([]model.PropertyListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.PropertyListing, len(c.listings))
	for i, l := range c.listings {
		out[i] = l.Clone()
	}
	return out, nil
}

// DefaultListings returns the demo inventory
func DefaultListings() []model.PropertyListing {
	return []model.PropertyListing{
		{
			ID:           "prop_001",
			Address:      "123 Collins Street, Melbourne VIC 3000",
			Price:        750000,
			Type:         model.PropertyHouse,
			Bedrooms:     3,
			Bathrooms:    2,
			Sqft:         1800,
			Location:     "Melbourne",
			Features:     model.JSONArray{"Garden", "Double garage", "Renovated kitchen", "Air conditioning"},
			Images:       model.JSONArray{"https://images.example.com/prop_001/front.jpg", "https://images.example.com/prop_001/kitchen.jpg"},
			MarketTrend:  model.TrendRising,
			DaysOnMarket: 12,
		},
		{
			ID:           "prop_002",
			Address:      "45 Harbour View Road, Sydney NSW 2000",
			Price:        1250000,
			Type:         model.PropertyApartment,
			Bedrooms:     2,
			Bathrooms:    2,
			Sqft:         1100,
			Location:     "Sydney",
			Features:     model.JSONArray{"Harbour views", "Swimming pool", "Gym", "Concierge", "Balcony"},
			Images:       model.JSONArray{"https://images.example.com/prop_002/view.jpg"},
			MarketTrend:  model.TrendStable,
			DaysOnMarket: 30,
		},
		{
			ID:           "prop_003",
			Address:      "78 River Terrace, Brisbane QLD 4000",
			Price:        620000,
			Type:         model.PropertyTownhouse,
			Bedrooms:     3,
			Bathrooms:    2,
			Sqft:         1500,
			Location:     "Brisbane",
			Features:     model.JSONArray{"River views", "Courtyard", "Solar panels", "Carport"},
			Images:       model.JSONArray{"https://images.example.com/prop_003/river.jpg"},
			MarketTrend:  model.TrendRising,
			DaysOnMarket: 21,
		},
	}
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PropertyType is one of the fixed property kinds the concierge understands
type PropertyType string

const (
	PropertyTownhouse PropertyType = "townhouse"
	PropertyApartment PropertyType = "apartment"
	PropertyCondo     PropertyType = "condo"
	PropertyVilla     PropertyType = "villa"
	PropertyHouse     PropertyType = "house"
	PropertyUnit      PropertyType = "unit"
	PropertyLand      PropertyType = "land"
)

// MarketTrend describes the price direction of a listing's market
type MarketTrend string

const (
	TrendRising    MarketTrend = "rising"
	TrendStable    MarketTrend = "stable"
	TrendDeclining MarketTrend = "declining"
)

// PropertyListing is a snapshot of a catalog entry, enriched per fetch
type PropertyListing struct {
	ID           string       `json:"id" db:"id"`
	Address      string       `json:"address" db:"address"`
	Price        float64      `json:"price" db:"price"`
	Type         PropertyType `json:"type" db:"property_type"`
	Bedrooms     int          `json:"bedrooms" db:"bedrooms"`
	Bathrooms    int          `json:"bathrooms" db:"bathrooms"`
	Sqft         int          `json:"sqft" db:"sqft"`
	Location     string       `json:"location" db:"location"`
	Features     JSONArray    `json:"features" db:"features"`
	Images       JSONArray    `json:"images" db:"images"`
	MarketTrend  MarketTrend  `json:"market_trend" db:"market_trend"`
	DaysOnMarket int          `json:"days_on_market" db:"days_on_market"`

	// Computed by the intelligence engine, never stored
	RiskScore          float64  `json:"risk_score" db:"-"`
	Valuation          float64  `json:"valuation" db:"-"`
	EnvironmentalRisks []string `json:"environmental_risks" db:"-"`

	// Filled in when results are personalized against preferences
	MatchScore     float64  `json:"match_score,omitempty" db:"-"`
	MatchedReasons []string `json:"matched_reasons,omitempty" db:"-"`
}

// Clone returns a copy that shares no slices with the receiver
func (p PropertyListing) Clone() PropertyListing {
	out := p
	out.Features = append(JSONArray(nil), p.Features...)
	out.Images = append(JSONArray(nil), p.Images...)
	out.EnvironmentalRisks = append([]string(nil), p.EnvironmentalRisks...)
	out.MatchedReasons = append([]string(nil), p.MatchedReasons...)
	return out
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONArray source %T", value)
	}
}

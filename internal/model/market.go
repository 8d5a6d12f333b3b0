package model

import "time"

// MarketInsights holds market statistics for one location
type MarketInsights struct {
	Location             string      `json:"location"`
	MedianPrice          float64     `json:"median_price"`
	PriceGrowthYoY       float64     `json:"price_growth_yoy"` // percent
	AverageDaysOnMarket  int         `json:"average_days_on_market"`
	AuctionClearanceRate float64     `json:"auction_clearance_rate"` // percent
	RentalYield          float64     `json:"rental_yield"`           // percent
	Trend                MarketTrend `json:"trend"`
	Demand               string      `json:"demand"`
	Forecast             string      `json:"forecast"`
}

// RiskBreakdown splits a valuation's risk into its sources, each in [0,1]
type RiskBreakdown struct {
	Flood   float64 `json:"flood"`
	Fire    float64 `json:"fire"`
	Market  float64 `json:"market"`
	Overall float64 `json:"overall"`
}

// ValuationReport is the detailed valuation of an address
type ValuationReport struct {
	Address             string        `json:"address"`
	EstimatedValue      float64       `json:"estimated_value"`
	ValueRangeLow       float64       `json:"value_range_low"`
	ValueRangeHigh      float64       `json:"value_range_high"`
	ConfidenceScore     float64       `json:"confidence_score"`
	Risk                RiskBreakdown `json:"risk"`
	InvestmentPotential float64       `json:"investment_potential"` // 0-10
	Market              string        `json:"market"`
	GeneratedAt         time.Time     `json:"generated_at"`
}

// ViewingMode is how a viewing takes place
type ViewingMode string

const (
	ViewingInPerson ViewingMode = "in_person"
	ViewingVirtual  ViewingMode = "virtual"
)

// BookingSlot is one bookable viewing time
type BookingSlot struct {
	ID         string      `json:"id"`
	PropertyID string      `json:"property_id"`
	Start      time.Time   `json:"start"`
	Duration   int         `json:"duration_minutes"`
	Mode       ViewingMode `json:"mode"`
}

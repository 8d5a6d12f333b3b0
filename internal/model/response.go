package model

import (
	"encoding/json"
	"fmt"
)

// ActionType names a UI affordance suggested alongside a reply
type ActionType string

const (
	ActionViewProperty    ActionType = "viewProperty"
	ActionBookTour        ActionType = "bookTour"
	ActionGetValuation    ActionType = "getValuation"
	ActionSearchProperty  ActionType = "searchProperties"
	ActionMarketInsights  ActionType = "marketInsights"
	ActionProvideAddress  ActionType = "provideAddress"
	ActionSelectSlot      ActionType = "selectSlot"
	ActionContactAgent    ActionType = "contactAgent"
	ActionScheduleCall    ActionType = "scheduleCall"
	ActionDownloadGuide   ActionType = "downloadGuide"
	ActionSubscribeAlerts ActionType = "subscribeAlerts"
)

// ActionPriority orders actions for display
type ActionPriority string

const (
	PriorityHigh   ActionPriority = "high"
	PriorityMedium ActionPriority = "medium"
	PriorityLow    ActionPriority = "low"
)

// Action is a typed UI affordance returned with a reply
type Action struct {
	Type     ActionType        `json:"type"`
	Label    string            `json:"label"`
	Priority ActionPriority    `json:"priority"`
	Payload  map[string]string `json:"payload,omitempty"`
}

// RichContentType tags the widget a RichContent value describes
type RichContentType string

const (
	ContentPropertyCards   RichContentType = "property_cards"
	ContentMarketChart     RichContentType = "market_chart"
	ContentValuationReport RichContentType = "valuation_report"
	ContentCalendarWidget  RichContentType = "calendar_widget"
)

// RichContent is a rendering hint for the presentation layer.
// The set of implementations is closed to this package.
type RichContent interface {
	ContentType() RichContentType
	richContent()
}

// PropertyCards renders a list of listings
type PropertyCards struct {
	Properties []PropertyListing `json:"properties"`
}

// MarketChart renders market data for one location
type MarketChart struct {
	Insights MarketInsights `json:"insights"`
}

// ValuationReportCard renders a detailed valuation
type ValuationReportCard struct {
	Report ValuationReport `json:"report"`
}

// CalendarWidget renders bookable viewing slots for a property
type CalendarWidget struct {
	Property PropertyListing `json:"property"`
	Slots    []BookingSlot   `json:"slots"`
}

func (PropertyCards) ContentType() RichContentType       { return ContentPropertyCards }
func (MarketChart) ContentType() RichContentType         { return ContentMarketChart }
func (ValuationReportCard) ContentType() RichContentType { return ContentValuationReport }
func (CalendarWidget) ContentType() RichContentType      { return ContentCalendarWidget }

func (PropertyCards) richContent()       {}
func (MarketChart) richContent()         {}
func (ValuationReportCard) richContent() {}
func (CalendarWidget) richContent()      {}

// ChatResponse is the structured reply to one message
type ChatResponse struct {
	Message     string      `json:"message"`
	Actions     []Action    `json:"actions"`
	Intent      Intent      `json:"intent"`
	Entities    *Entities   `json:"entities,omitempty"`
	RichContent RichContent `json:"-"`
}

type richContentEnvelope struct {
	Type RichContentType `json:"type"`
	Data json.RawMessage `json:"data"`
}

type chatResponseJSON struct {
	Message     string               `json:"message"`
	Actions     []Action             `json:"actions"`
	Intent      Intent               `json:"intent"`
	Entities    *Entities            `json:"entities,omitempty"`
	RichContent *richContentEnvelope `json:"rich_content,omitempty"`
}

// MarshalJSON encodes RichContent as {"type": ..., "data": ...}
func (r ChatResponse) MarshalJSON() ([]byte, error) {
	out := chatResponseJSON{
		Message:  r.Message,
		Actions:  r.Actions,
		Intent:   r.Intent,
		Entities: r.Entities,
	}
	if out.Actions == nil {
		out.Actions = []Action{}
	}
	if r.RichContent != nil {
		data, err := json.Marshal(r.RichContent)
		if err != nil {
			return nil, fmt.Errorf("failed to encode rich content: %w", err)
		}
		out.RichContent = &richContentEnvelope{Type: r.RichContent.ContentType(), Data: data}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the envelope written by MarshalJSON
func (r *ChatResponse) UnmarshalJSON(b []byte) error {
	var in chatResponseJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	r.Message = in.Message
	r.Actions = in.Actions
	r.Intent = in.Intent
	r.Entities = in.Entities
	r.RichContent = nil
	if in.RichContent == nil {
		return nil
	}

	var content RichContent
	var err error
	switch in.RichContent.Type {
	case ContentPropertyCards:
		var v PropertyCards
		err = json.Unmarshal(in.RichContent.Data, &v)
		content = v
	case ContentMarketChart:
		var v MarketChart
		err = json.Unmarshal(in.RichContent.Data, &v)
		content = v
	case ContentValuationReport:
		var v ValuationReportCard
		err = json.Unmarshal(in.RichContent.Data, &v)
		content = v
	case ContentCalendarWidget:
		var v CalendarWidget
		err = json.Unmarshal(in.RichContent.Data, &v)
		content = v
	default:
		return fmt.Errorf("unknown rich content type %q", in.RichContent.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", in.RichContent.Type, err)
	}
	r.RichContent = content
	return nil
}

// Valid reports whether a is one of the known action types
func (a ActionType) Valid() bool {
	switch a {
	case ActionViewProperty, ActionBookTour, ActionGetValuation, ActionSearchProperty,
		ActionMarketInsights, ActionProvideAddress, ActionSelectSlot, ActionContactAgent,
		ActionScheduleCall, ActionDownloadGuide, ActionSubscribeAlerts:
		return true
	}
	return false
}

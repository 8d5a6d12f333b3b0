package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"concierge/internal/model"
)

// FAQEntry answers messages containing any of its keywords
type FAQEntry struct {
	Keywords []string
	Answer   string
}

// DefaultFAQ returns the built-in answers in lookup order
func DefaultFAQ() []FAQEntry {
	return []FAQEntry{
		{
			Keywords: []string{"process", "steps", "how do i buy"},
			Answer: "Buying usually runs in four steps: get pre-approved for finance, shortlist and inspect properties, " +
				"make an offer or bid at auction, then exchange contracts and settle, typically 30 to 90 days later.",
		},
		{
			Keywords: []string{"fee", "stamp duty", "cost"},
			Answer: "Besides the purchase price, budget for stamp duty, conveyancing (around $1,500 to $3,000), " +
				"building and pest inspections, and loan establishment fees. First home buyers may be eligible for concessions.",
		},
		{
			Keywords: []string{"mortgage", "loan", "finance", "deposit"},
			Answer: "Most lenders look for a 20% deposit to avoid lenders mortgage insurance. " +
				"A pre-approval tells you your borrowing power before you start making offers.",
		},
		{
			Keywords: []string{"inspection", "open home", "open house"},
			Answer: "Open homes usually run for 15 to 30 minutes on weekends. " +
				"I can also arrange a private or virtual viewing once you've picked a property.",
		},
		{
			Keywords: []string{"contact", "office", "hours"},
			Answer: "Our agents are available 8am to 6pm on weekdays and 9am to 4pm on Saturdays. " +
				"Ask me to have an agent call you at any time.",
		},
	}
}

const defaultFAQAnswer = "I can help you search for properties, value a home, explain the buying process or share market insights. What would you like to know?"

func (c *Concierge) handleAmbiguous() *model.ChatResponse {
	return &model.ChatResponse{
		Message: "I'm not quite sure what you're after. I can search for properties, value a home, or share market insights.",
		Actions: []model.Action{
			{Type: model.ActionSearchProperty, Label: "Search properties", Priority: model.PriorityHigh},
			{Type: model.ActionGetValuation, Label: "Get a valuation", Priority: model.PriorityMedium},
			{Type: model.ActionMarketInsights, Label: "Market insights", Priority: model.PriorityMedium},
		},
	}
}

func (c *Concierge) handlePropertySearch(ctx context.Context, state *model.ConversationState, entities model.Entities, query string) (*model.ChatResponse, error) {
	start := c.now()
	criteria := model.CriteriaFromEntities(entities)
	prefs := state.Preferences

	results, err := c.engine.SearchProperties(ctx, criteria, &prefs)
	if err != nil {
		return nil, fmt.Errorf("property search failed: %w", err)
	}

	for i := range results {
		if i >= c.opts.EnrichTop {
			break
		}
		results[i] = c.engine.Enrich(results[i])
	}

	record := newSearchRecord(criteria, results, start)
	state.SearchHistory = append(state.SearchHistory, record)
	state.LastSearchResults = results
	state.CurrentState = model.StatePropertySearch

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	c.logSearch(ctx, model.SearchLogEntry{
		SearchID:       record.ID,
		UserID:         state.UserID,
		Query:          query,
		Criteria:       criteria,
		ResultCount:    len(results),
		ListingIDs:     ids,
		ResponseTimeMs: int(c.now().Sub(start).Milliseconds()),
	})

	if len(results) == 0 {
		return &model.ChatResponse{
			Message: "I couldn't find any properties matching that. Try widening your budget, location or property type.",
			Actions: []model.Action{
				{Type: model.ActionSearchProperty, Label: "Adjust search", Priority: model.PriorityHigh},
				{Type: model.ActionMarketInsights, Label: "Explore market insights", Priority: model.PriorityLow},
			},
			RichContent: model.PropertyCards{Properties: []model.PropertyListing{}},
		}, nil
	}

	top := results[0]
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s for you. The top match is %s, a %d bedroom %s priced at %s",
		len(results), plural(len(results), "property", "properties"), top.Address, top.Bedrooms, top.Type, formatPrice(top.Price))
	if top.Valuation > 0 {
		fmt.Fprintf(&b, " with an estimated value of %s", formatPrice(top.Valuation))
	}
	b.WriteString(".")
	if rest := len(results) - 1; rest > 0 {
		fmt.Fprintf(&b, " There %s %d more %s below.", plural(rest, "is", "are"), rest, plural(rest, "option", "options"))
	}

	return &model.ChatResponse{
		Message: b.String(),
		Actions: []model.Action{
			{Type: model.ActionViewProperty, Label: "View details", Priority: model.PriorityHigh, Payload: map[string]string{"property_id": top.ID}},
			{Type: model.ActionBookTour, Label: "Book a tour", Priority: model.PriorityMedium, Payload: map[string]string{"property_id": top.ID}},
			{Type: model.ActionGetValuation, Label: "Get valuation", Priority: model.PriorityLow, Payload: map[string]string{"address": top.Address}},
		},
		RichContent: model.PropertyCards{Properties: results},
	}, nil
}

func (c *Concierge) handleValuation(state *model.ConversationState, entities model.Entities) *model.ChatResponse {
	state.CurrentState = model.StateValuation

	if entities.Address == nil {
		return &model.ChatResponse{
			Message: "I'd be happy to value a property for you. What's the street address?",
			Actions: []model.Action{
				{Type: model.ActionProvideAddress, Label: "Enter address", Priority: model.PriorityHigh},
			},
		}
	}

	report := c.engine.DetailedValuation(*entities.Address)
	msg := fmt.Sprintf("The estimated value of %s is %s, with a likely range of %s to %s (confidence %.0f%%). "+
		"Overall risk is %s and the investment potential scores %.1f out of 10.",
		report.Address,
		formatPrice(report.EstimatedValue),
		formatPrice(report.ValueRangeLow),
		formatPrice(report.ValueRangeHigh),
		report.ConfidenceScore*100,
		riskLabel(report.Risk.Overall),
		report.InvestmentPotential,
	)

	return &model.ChatResponse{
		Message: msg,
		Actions: []model.Action{
			{Type: model.ActionSearchProperty, Label: "Find similar properties", Priority: model.PriorityMedium},
			{Type: model.ActionMarketInsights, Label: report.Market + " market insights", Priority: model.PriorityLow, Payload: map[string]string{"location": report.Market}},
		},
		RichContent: model.ValuationReportCard{Report: report},
	}
}

func (c *Concierge) handleMarketInsights(state *model.ConversationState, entities model.Entities) *model.ChatResponse {
	state.CurrentState = model.StateMarketInsights

	location := c.opts.DefaultMarket
	switch {
	case entities.Location != nil:
		location = *entities.Location
	case len(state.Preferences.Locations) > 0:
		location = state.Preferences.Locations[0]
	}

	insights := c.engine.MarketInsights(location)
	msg := fmt.Sprintf("%s market update: the median price is %s with %.1f%% growth over the last year. "+
		"Homes sell in %d days on average, auction clearance is %.1f%% and rental yields sit at %.1f%%. "+
		"Demand is %s. %s.",
		insights.Location,
		formatPrice(insights.MedianPrice),
		insights.PriceGrowthYoY,
		insights.AverageDaysOnMarket,
		insights.AuctionClearanceRate,
		insights.RentalYield,
		insights.Demand,
		insights.Forecast,
	)

	return &model.ChatResponse{
		Message: msg,
		Actions: []model.Action{
			{Type: model.ActionSearchProperty, Label: "Search in " + insights.Location, Priority: model.PriorityHigh, Payload: map[string]string{"location": insights.Location}},
			{Type: model.ActionSubscribeAlerts, Label: "Get market alerts", Priority: model.PriorityLow, Payload: map[string]string{"location": insights.Location}},
		},
		RichContent: model.MarketChart{Insights: insights},
	}
}

func (c *Concierge) handleScheduling(state *model.ConversationState) *model.ChatResponse {
	if len(state.LastSearchResults) == 0 {
		state.CurrentState = model.StatePropertySearch
		return &model.ChatResponse{
			Message: "Let's find you a property to view first. Tell me what you're looking for and I'll line up viewing times.",
			Actions: []model.Action{
				{Type: model.ActionSearchProperty, Label: "Search properties", Priority: model.PriorityHigh},
			},
		}
	}

	state.CurrentState = model.StateViewingScheduling
	property := state.LastSearchResults[0]
	slots := viewingSlots(property.ID, c.now())

	actions := make([]model.Action, 0, len(slots))
	for _, s := range slots {
		label := fmt.Sprintf("%s %s", s.Start.Format("Mon 2 Jan 3:04pm"), viewingModeLabel(s.Mode))
		actions = append(actions, model.Action{
			Type:     model.ActionSelectSlot,
			Label:    label,
			Priority: model.PriorityMedium,
			Payload:  map[string]string{"slot_id": s.ID, "property_id": property.ID},
		})
	}

	return &model.ChatResponse{
		Message: fmt.Sprintf("Here are the available viewing times for %s over the next two days. Pick a virtual or in-person slot.", property.Address),
		Actions: actions,
		RichContent: model.CalendarWidget{
			Property: property,
			Slots:    slots,
		},
	}
}

// viewingSlots offers a virtual morning and an in-person afternoon viewing
// on each of the next two days
func viewingSlots(propertyID string, now time.Time) []model.BookingSlot {
	slots := make([]model.BookingSlot, 0, 4)
	for day := 1; day <= 2; day++ {
		date := now.AddDate(0, 0, day)
		y, m, d := date.Date()
		slots = append(slots,
			model.BookingSlot{
				ID:         uuid.NewString(),
				PropertyID: propertyID,
				Start:      time.Date(y, m, d, 10, 0, 0, 0, now.Location()),
				Duration:   30,
				Mode:       model.ViewingVirtual,
			},
			model.BookingSlot{
				ID:         uuid.NewString(),
				PropertyID: propertyID,
				Start:      time.Date(y, m, d, 14, 0, 0, 0, now.Location()),
				Duration:   45,
				Mode:       model.ViewingInPerson,
			},
		)
	}
	return slots
}

var tierMessages = map[model.QualificationLevel]string{
	model.LevelPremium: "You're in a great position to buy. I'll have one of our senior agents reach out within 24 hours with off-market opportunities.",
	model.LevelHigh:    "Thanks, it sounds like you're well prepared. Let's set up a call with an agent and book some viewings.",
	model.LevelMedium:  "Great to hear you're interested. I'll send you tailored listings and a buyer's guide to help you plan your next steps.",
	model.LevelLow:     "No rush at all. I'll share some market updates and guides so you can explore at your own pace.",
}

var tierActions = map[model.QualificationLevel][]model.Action{
	model.LevelPremium: {
		{Type: model.ActionContactAgent, Label: "Talk to a senior agent", Priority: model.PriorityHigh},
		{Type: model.ActionBookTour, Label: "Book a private viewing", Priority: model.PriorityHigh},
	},
	model.LevelHigh: {
		{Type: model.ActionScheduleCall, Label: "Schedule a call", Priority: model.PriorityHigh},
		{Type: model.ActionBookTour, Label: "Book a tour", Priority: model.PriorityMedium},
	},
	model.LevelMedium: {
		{Type: model.ActionDownloadGuide, Label: "Download buyer's guide", Priority: model.PriorityMedium},
		{Type: model.ActionSubscribeAlerts, Label: "Get listing alerts", Priority: model.PriorityMedium},
	},
	model.LevelLow: {
		{Type: model.ActionDownloadGuide, Label: "Download buyer's guide", Priority: model.PriorityLow},
		{Type: model.ActionSearchProperty, Label: "Browse properties", Priority: model.PriorityLow},
	},
}

func (c *Concierge) handleLeadNurturing(ctx context.Context, state *model.ConversationState, entities model.Entities, text string) (*model.ChatResponse, error) {
	score, err := c.leads.QualifyLead(ctx, state.UserID, state, entities, text)
	if err != nil {
		return nil, fmt.Errorf("lead qualification failed: %w", err)
	}
	state.LeadScore = &score
	state.CurrentState = model.StateLeadNurturing

	level := model.LevelForScore(score)
	actions := append([]model.Action(nil), tierActions[level]...)
	return &model.ChatResponse{
		Message: tierMessages[level],
		Actions: actions,
	}, nil
}

func (c *Concierge) handleFAQ(text string) *model.ChatResponse {
	lower := strings.ToLower(text)
	answer := defaultFAQAnswer
	for _, entry := range c.faq {
		if containsAny(lower, entry.Keywords) {
			answer = entry.Answer
			break
		}
	}

	return &model.ChatResponse{
		Message: answer,
		Actions: []model.Action{
			{Type: model.ActionSearchProperty, Label: "Search properties", Priority: model.PriorityMedium},
			{Type: model.ActionContactAgent, Label: "Talk to an agent", Priority: model.PriorityLow},
		},
	}
}

func formatPrice(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("$%d", int64(v))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func riskLabel(r float64) string {
	switch {
	case r >= 0.6:
		return "high"
	case r >= 0.3:
		return "moderate"
	default:
		return "low"
	}
}

func viewingModeLabel(m model.ViewingMode) string {
	if m == model.ViewingVirtual {
		return "(virtual)"
	}
	return "(in person)"
}

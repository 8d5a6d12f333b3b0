package service

import "concierge/internal/model"

var stageForLevel = map[model.QualificationLevel]model.NurturingStage{
	model.LevelLow:     model.StageAwareness,
	model.LevelMedium:  model.StageInterest,
	model.LevelHigh:    model.StageConsideration,
	model.LevelPremium: model.StageIntent,
}

var nextActions = map[model.QualificationLevel]string{
	model.LevelLow:     "Send market education content",
	model.LevelMedium:  "Share curated listings matching preferences",
	model.LevelHigh:    "Offer a property viewing",
	model.LevelPremium: "Connect with a senior agent within 24 hours",
}

func defaultNurturingSequences() map[model.QualificationLevel][]model.NurturingStep {
	return map[model.QualificationLevel][]model.NurturingStep{
		model.LevelPremium: {
			{Type: model.StepCall, Trigger: "qualified_premium", DelayHours: 0, Content: "Personal call from a senior agent"},
			{Type: model.StepEmail, Trigger: "after_call", DelayHours: 2, Content: "Exclusive off-market listings"},
			{Type: model.StepSMS, Trigger: "viewing_reminder", DelayHours: 24, Content: "Private viewing invitation"},
			{Type: model.StepEmail, Trigger: "follow_up", DelayHours: 72, Content: "Pre-auction strategy session"},
		},
		model.LevelHigh: {
			{Type: model.StepEmail, Trigger: "qualified_high", DelayHours: 1, Content: "Curated listings matching your criteria"},
			{Type: model.StepCall, Trigger: "no_reply", DelayHours: 24, Content: "Agent check-in call"},
			{Type: model.StepSMS, Trigger: "open_home", DelayHours: 48, Content: "Upcoming open home times"},
		},
		model.LevelMedium: {
			{Type: model.StepEmail, Trigger: "qualified_medium", DelayHours: 24, Content: "Suburb profile and price guide"},
			{Type: model.StepContent, Trigger: "weekly", DelayHours: 168, Content: "Weekly market update"},
			{Type: model.StepEmail, Trigger: "new_listing", DelayHours: 336, Content: "New listings alert"},
		},
		model.LevelLow: {
			{Type: model.StepContent, Trigger: "qualified_low", DelayHours: 48, Content: "First home buyer guide"},
			{Type: model.StepEmail, Trigger: "monthly", DelayHours: 720, Content: "Monthly market newsletter"},
		},
	}
}

package model

import "time"

// QualificationLevel is the lead tier derived from a lead score
type QualificationLevel string

const (
	LevelLow     QualificationLevel = "low"
	LevelMedium  QualificationLevel = "medium"
	LevelHigh    QualificationLevel = "high"
	LevelPremium QualificationLevel = "premium"
)

// LevelForScore maps a score in [0,1] to its qualification level
func LevelForScore(score float64) QualificationLevel {
	switch {
	case score >= 0.8:
		return LevelPremium
	case score >= 0.6:
		return LevelHigh
	case score >= 0.4:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Valid reports whether l is one of the known levels
func (l QualificationLevel) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelPremium:
		return true
	}
	return false
}

// NurturingStage tracks a lead through the buying funnel
type NurturingStage string

const (
	StageAwareness     NurturingStage = "awareness"
	StageInterest      NurturingStage = "interest"
	StageConsideration NurturingStage = "consideration"
	StageIntent        NurturingStage = "intent"
	StagePurchase      NurturingStage = "purchase"
)

var stageOrder = map[NurturingStage]int{
	StageAwareness:     0,
	StageInterest:      1,
	StageConsideration: 2,
	StageIntent:        3,
	StagePurchase:      4,
}

// Before reports whether s comes earlier in the funnel than other
func (s NurturingStage) Before(other NurturingStage) bool {
	return stageOrder[s] < stageOrder[other]
}

// InteractionKind classifies entries of a lead's interaction log
type InteractionKind string

const (
	InteractionMessage  InteractionKind = "message"
	InteractionFeedback InteractionKind = "feedback"
	InteractionConvert  InteractionKind = "conversion"
)

// Interaction is one entry of a lead's append-only history
type Interaction struct {
	ID         string          `json:"id"`
	Kind       InteractionKind `json:"kind"`
	Timestamp  time.Time       `json:"timestamp"`
	Message    string          `json:"message,omitempty"`
	Action     ActionType      `json:"action,omitempty"`
	PropertyID string          `json:"property_id,omitempty"`
	Score      float64         `json:"score"`
}

// LeadCounters counts lead activity
type LeadCounters struct {
	Qualifications int `json:"qualifications"`
	Messages       int `json:"messages"`
	Feedback       int `json:"feedback"`
	Searches       int `json:"searches"`
}

// LeadProfile is the lead manager's record of one prospective buyer
type LeadProfile struct {
	ID             string             `json:"id"`
	Score          float64            `json:"score"`
	Level          QualificationLevel `json:"qualification_level"`
	Interactions   []Interaction      `json:"interaction_history"`
	Stage          NurturingStage     `json:"nurturing_stage"`
	NextAction     string             `json:"next_action"`
	Sequence       QualificationLevel `json:"nurturing_sequence"`
	Email          string             `json:"email,omitempty"`
	Phone          string             `json:"phone,omitempty"`
	Counters       LeadCounters       `json:"counters"`
	CreatedAt      time.Time          `json:"created_at"`
	LastActivityAt time.Time          `json:"last_activity_at"`
}

// StepType is the channel of a nurturing touch-point
type StepType string

const (
	StepEmail   StepType = "email"
	StepSMS     StepType = "sms"
	StepCall    StepType = "call"
	StepContent StepType = "content"
)

// StepTracking records delivery of a dispatched touch-point
type StepTracking struct {
	Sent    bool `json:"sent"`
	Opened  bool `json:"opened"`
	Clicked bool `json:"clicked"`
}

// NurturingStep is one timed touch-point of a nurturing sequence
type NurturingStep struct {
	Type       StepType     `json:"type"`
	Trigger    string       `json:"trigger"`
	DelayHours int          `json:"delay_hours"`
	Content    string       `json:"content"`
	Tracking   StepTracking `json:"tracking"`
}

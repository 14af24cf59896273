package models

import "time"

// Severity grades a finding and doubles as the overall risk level band.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Finding is one detected compliance issue. A rule emits at most one
// finding per evaluation; findings keep rule evaluation order, not
// severity order.
type Finding struct {
	RuleID        string   `json:"rule_id"`
	Severity      Severity `json:"severity"`
	Reason        string   `json:"reason"`
	FixSuggestion string   `json:"fix_suggestion"`
}

// ActionType is a predicted customs intervention.
type ActionType string

const (
	ActionQuery       ActionType = "QUERY"
	ActionDelay       ActionType = "DELAY"
	ActionRejection   ActionType = "REJECTION"
	ActionRefundBlock ActionType = "REFUND_BLOCK"
)

// CustomsAction is one predicted customs outcome with the rules that drove
// it. Findings mapping to the same action are merged: rule ids are unioned
// and the highest observed severity wins.
type CustomsAction struct {
	Action            ActionType `json:"action"`
	Severity          Severity   `json:"severity"`
	TriggeringRuleIDs []string   `json:"triggering_rule_ids"`
}

// Shipment decisions derived from the risk level.
const (
	DecisionSafeToShip  = "SAFE_TO_SHIP"
	DecisionReviewFirst = "REVIEW_BEFORE_SHIPPING"
	DecisionDoNotShip   = "DO_NOT_SHIP"
	QualityGood         = "good"
	QualityPoor         = "poor"
	MethodAIPlusRules   = "ai+rules"
	MethodRulesOnly     = "rules"
)

// RiskReport is the terminal output of one invoice evaluation. It is
// created once, never mutated, and owned by the caller. The JSON layout
// below is the stable export format consumed by the UI and by downstream
// diff tooling; key names must not change without a version bump.
type RiskReport struct {
	InvoiceID        string          `json:"invoice_id"`
	Score            int             `json:"score"`
	Level            Severity        `json:"level"`
	Decision         string          `json:"decision"`
	Summary          string          `json:"summary"`
	Findings         []Finding       `json:"findings"`
	PredictedActions []CustomsAction `json:"predicted_actions"`
	OfficerView      string          `json:"customs_officer_view"`
	Invoice          *InvoiceRecord  `json:"invoice_data"`
	Quality          string          `json:"invoice_quality"`
	ExtractionMethod string          `json:"extraction_method"`
	ProcessedAt      time.Time       `json:"processed_at"`
}

// SimulationResult is the what-if simulator's answer.
type SimulationResult struct {
	Score   int      `json:"score"`
	Level   Severity `json:"level"`
	Summary string   `json:"summary"`
}

// SystemStats is a point-in-time snapshot of the in-memory counters.
type SystemStats struct {
	InvoicesAnalyzed int `json:"invoices_analyzed"`
	RiskyShipments   int `json:"risky_shipments"`
	HoldsPredicted   int `json:"holds_predicted"`
}

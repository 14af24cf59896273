// Package customs maps compliance findings to predicted customs actions.
// The mapping is a fixed lookup: missing or invalid regulatory codes mean
// outright rejection, GST/LUT conflicts block the refund, everything else
// draws a query or a delay.
package customs

import (
	"sort"

	"github.com/exportops/customs-risk-service/internal/models"
)

type actionSpec struct {
	action   models.ActionType
	severity models.Severity
}

// actionTable maps rule ids to their predicted customs outcome. Rules
// absent from the table default to a QUERY at the finding's severity,
// floored at MEDIUM, so a future rule always yields a prediction.
var actionTable = map[string]actionSpec{
	"missing_iec_code":        {models.ActionRejection, models.SeverityHigh},
	"missing_gstin":           {models.ActionRejection, models.SeverityHigh},
	"missing_hsn_code":        {models.ActionRejection, models.SeverityHigh},
	"invalid_iec_format":      {models.ActionRejection, models.SeverityHigh},
	"invalid_gstin_format":    {models.ActionRejection, models.SeverityHigh},
	"invalid_hsn_format":      {models.ActionRejection, models.SeverityHigh},
	"gst_lut_conflict":        {models.ActionRefundBlock, models.SeverityHigh},
	"missing_incoterm":        {models.ActionDelay, models.SeverityHigh},
	"invalid_incoterm":        {models.ActionDelay, models.SeverityMedium},
	"export_currency_inr":     {models.ActionDelay, models.SeverityHigh},
	"missing_currency":        {models.ActionDelay, models.SeverityMedium},
	"invalid_currency_format": {models.ActionDelay, models.SeverityMedium},
	"tax_total_mismatch":      {models.ActionQuery, models.SeverityMedium},
	"non_positive_total":      {models.ActionQuery, models.SeverityMedium},
	"missing_total":           {models.ActionQuery, models.SeverityMedium},
	"missing_invoice_number":  {models.ActionQuery, models.SeverityMedium},
	"missing_invoice_date":    {models.ActionQuery, models.SeverityMedium},
}

// Predictor translates findings into customs actions.
type Predictor struct{}

// NewPredictor creates a predictor over the fixed action table.
func NewPredictor() *Predictor {
	return &Predictor{}
}

// Predict maps each finding through the action table and merges findings
// that land on the same action: triggering rule ids are unioned (in first-
// trigger order) and the highest severity wins. Output is ordered by
// severity descending, then by the first triggering rule's evaluation
// order.
func (p *Predictor) Predict(findings []models.Finding) []models.CustomsAction {
	type merged struct {
		models.CustomsAction
		firstIndex int
	}

	byAction := make(map[models.ActionType]*merged)
	order := make([]models.ActionType, 0, 4)

	for i, f := range findings {
		spec, ok := actionTable[f.RuleID]
		if !ok {
			spec = actionSpec{models.ActionQuery, floorMedium(f.Severity)}
		}

		m, seen := byAction[spec.action]
		if !seen {
			m = &merged{
				CustomsAction: models.CustomsAction{Action: spec.action, Severity: spec.severity},
				firstIndex:    i,
			}
			byAction[spec.action] = m
			order = append(order, spec.action)
		}
		m.TriggeringRuleIDs = appendUnique(m.TriggeringRuleIDs, f.RuleID)
		if rank(spec.severity) > rank(m.Severity) {
			m.Severity = spec.severity
		}
	}

	out := make([]models.CustomsAction, 0, len(order))
	for _, a := range order {
		out = append(out, byAction[a].CustomsAction)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].Severity), rank(out[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return byAction[out[i].Action].firstIndex < byAction[out[j].Action].firstIndex
	})
	return out
}

func rank(s models.Severity) int {
	switch s {
	case models.SeverityHigh:
		return 3
	case models.SeverityMedium:
		return 2
	case models.SeverityLow:
		return 1
	default:
		return 0
	}
}

func floorMedium(s models.Severity) models.Severity {
	if s == models.SeverityHigh {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

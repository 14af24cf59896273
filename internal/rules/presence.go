package rules

import (
	"fmt"

	"github.com/exportops/customs-risk-service/internal/models"
)

// presenceRule flags a required field that no extraction pass produced.
// The engine cannot distinguish extraction failure from genuine omission;
// both are actionable risks for the exporter, so both get the same finding.
type presenceRule struct {
	field string
}

func (r presenceRule) ID() string { return "missing_" + r.field }

func (r presenceRule) Evaluate(record *models.InvoiceRecord) *models.Finding {
	if record.FieldPresent(r.field) {
		return nil
	}
	return &models.Finding{
		RuleID:        r.ID(),
		Severity:      models.SeverityHigh,
		Reason:        "missing " + r.field,
		FixSuggestion: fmt.Sprintf("provide %s before filing the shipping bill", r.field),
	}
}

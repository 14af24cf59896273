package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/exportops/customs-risk-service/internal/models"
)

// totalsRule checks subtotal + tax against the declared total, within the
// larger of an absolute tolerance and a percentage of the total. Applies
// only when all three amounts are present.
type totalsRule struct {
	absolute decimal.Decimal
	percent  decimal.Decimal
}

func newTotalsRule(tol models.ToleranceConfig) Rule {
	return totalsRule{
		absolute: decimal.NewFromFloat(tol.Absolute),
		percent:  decimal.NewFromFloat(tol.Percent),
	}
}

func (r totalsRule) ID() string { return "tax_total_mismatch" }

func (r totalsRule) Evaluate(record *models.InvoiceRecord) *models.Finding {
	if !record.Subtotal.Present || !record.Tax.Present || !record.Total.Present {
		return nil
	}

	expected := record.Subtotal.Value.Add(record.Tax.Value)
	diff := record.Total.Value.Sub(expected).Abs()

	tolerance := r.absolute
	if pct := record.Total.Value.Abs().Mul(r.percent).Div(decimal.NewFromInt(100)); pct.GreaterThan(tolerance) {
		tolerance = pct
	}
	if diff.LessThanOrEqual(tolerance) {
		return nil
	}
	return &models.Finding{
		RuleID:   r.ID(),
		Severity: models.SeverityMedium,
		Reason: fmt.Sprintf("tax/total mismatch: subtotal %s + tax %s = %s but invoice states %s",
			record.Subtotal.Value, record.Tax.Value, expected, record.Total.Value),
		FixSuggestion: "recheck the subtotal, tax and total arithmetic on the invoice",
	}
}

// gstLUTConflictRule: an export invoiced in a foreign currency should not
// carry domestic GST unless a Letter of Undertaking reference is quoted
// (or the supply is explicitly zero-rated with justification, which cannot
// be read off the invoice; a present LUT reference suppresses the finding).
type gstLUTConflictRule struct{}

func (gstLUTConflictRule) ID() string { return "gst_lut_conflict" }

func (gstLUTConflictRule) Evaluate(record *models.InvoiceRecord) *models.Finding {
	if !record.Currency.Present || record.Currency.Value == "INR" {
		return nil
	}
	if !record.Tax.Present || !record.Tax.Value.GreaterThan(decimal.Zero) {
		return nil
	}
	if record.LUTReference.Present {
		return nil
	}
	return &models.Finding{
		RuleID:   "gst_lut_conflict",
		Severity: models.SeverityHigh,
		Reason: fmt.Sprintf("possible GST/LUT conflict: export in %s carries tax %s with no LUT reference",
			record.Currency.Value, record.Tax.Value),
		FixSuggestion: "quote the LUT/ARN reference, or invoice without GST for exports under LUT",
	}
}

// inrCurrencyRule flags an export invoiced in INR.
type inrCurrencyRule struct{}

func (inrCurrencyRule) ID() string { return "export_currency_inr" }

func (inrCurrencyRule) Evaluate(record *models.InvoiceRecord) *models.Finding {
	if !record.Currency.Present || record.Currency.Value != "INR" {
		return nil
	}
	return &models.Finding{
		RuleID:        "export_currency_inr",
		Severity:      models.SeverityHigh,
		Reason:        "export invoiced in INR",
		FixSuggestion: "invoice in a permitted foreign currency",
	}
}

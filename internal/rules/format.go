package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/exportops/customs-risk-service/internal/models"
)

// formatRule checks a present text field against its structural layout.
// Absent fields are the presence rules' business and are skipped here.
type formatRule struct {
	id       string
	field    string
	severity models.Severity
	problem  string
	fix      string
	valid    func(value string) bool
}

func (r formatRule) ID() string { return r.id }

func (r formatRule) Evaluate(record *models.InvoiceRecord) *models.Finding {
	f, ok := record.TextFieldByName(r.field)
	if !ok || !f.Present {
		return nil
	}
	if r.valid(f.Value) {
		return nil
	}
	return &models.Finding{
		RuleID:        r.id,
		Severity:      r.severity,
		Reason:        fmt.Sprintf("%s %q %s", r.field, f.Value, r.problem),
		FixSuggestion: r.fix,
	}
}

func iecFormatRule() Rule {
	return formatRule{
		id:       "invalid_iec_format",
		field:    models.FieldIECCode,
		severity: models.SeverityMedium,
		problem:  "is not a 10-digit Importer-Exporter Code",
		fix:      "quote the IEC exactly as issued by DGFT (10 digits)",
		valid:    models.IECStructureRe.MatchString,
	}
}

func gstinFormatRule() Rule {
	return formatRule{
		id:       "invalid_gstin_format",
		field:    models.FieldGSTIN,
		severity: models.SeverityMedium,
		problem:  "does not match the 15-character GSTIN layout",
		fix:      "correct the GSTIN (state code + PAN + entity + Z + checksum)",
		valid:    models.GSTINStructureRe.MatchString,
	}
}

func hsnFormatRule() Rule {
	return formatRule{
		id:       "invalid_hsn_format",
		field:    models.FieldHSNCode,
		severity: models.SeverityMedium,
		problem:  "is not a 4, 6 or 8 digit HSN code",
		fix:      "declare the HSN classification at 4, 6 or 8 digits",
		valid:    models.HSNStructureRe.MatchString,
	}
}

func currencyFormatRule() Rule {
	return formatRule{
		id:       "invalid_currency_format",
		field:    models.FieldCurrency,
		severity: models.SeverityMedium,
		problem:  "is not a 3-letter currency code",
		fix:      "state the invoice currency as an ISO code (USD, EUR, ...)",
		valid: func(v string) bool {
			return models.PlausibleFormat(models.FieldCurrency, v)
		},
	}
}

// incotermRule validates a present incoterm against the configured set.
// An unrecognized trade term is HIGH: customs cannot establish the
// responsibility split at all.
type incotermRule struct {
	accepted map[string]bool
}

func newIncotermRule(incoterms []string) Rule {
	accepted := make(map[string]bool, len(incoterms))
	for _, t := range incoterms {
		accepted[t] = true
	}
	return incotermRule{accepted: accepted}
}

func (r incotermRule) ID() string { return "invalid_incoterm" }

func (r incotermRule) Evaluate(record *models.InvoiceRecord) *models.Finding {
	if !record.Incoterm.Present {
		return nil
	}
	if r.accepted[record.Incoterm.Value] {
		return nil
	}
	return &models.Finding{
		RuleID:        r.ID(),
		Severity:      models.SeverityHigh,
		Reason:        fmt.Sprintf("incoterm %q is not a recognized trade term", record.Incoterm.Value),
		FixSuggestion: "use an Incoterms 2020 term such as FOB or CIF",
	}
}

// nonPositiveTotalRule flags a declared total of zero or less.
type nonPositiveTotalRule struct{}

func (nonPositiveTotalRule) ID() string { return "non_positive_total" }

func (nonPositiveTotalRule) Evaluate(record *models.InvoiceRecord) *models.Finding {
	if !record.Total.Present {
		return nil
	}
	if record.Total.Value.GreaterThan(decimal.Zero) {
		return nil
	}
	return &models.Finding{
		RuleID:        "non_positive_total",
		Severity:      models.SeverityMedium,
		Reason:        fmt.Sprintf("invoice total %s is not a positive amount", record.Total.Value),
		FixSuggestion: "correct the invoice total before filing",
	}
}

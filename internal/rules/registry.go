package rules

import "github.com/exportops/customs-risk-service/internal/models"

// Defaults builds the production rule set in its fixed evaluation order:
// presence rules in schema order, then format rules, then cross-field
// consistency rules. New rules slot into this list without touching the
// engine's control flow.
func Defaults(cfg *models.Config) []Rule {
	required := make(map[string]bool, len(cfg.Extraction.RequiredFields))
	for _, f := range cfg.Extraction.RequiredFields {
		required[f] = true
	}

	rules := make([]Rule, 0, len(models.FieldNames)+8)
	for _, name := range models.FieldNames {
		if required[name] {
			rules = append(rules, presenceRule{field: name})
		}
	}

	rules = append(rules,
		iecFormatRule(),
		gstinFormatRule(),
		hsnFormatRule(),
		currencyFormatRule(),
		newIncotermRule(cfg.Extraction.Incoterms),
		nonPositiveTotalRule{},
		newTotalsRule(cfg.Tolerance),
		gstLUTConflictRule{},
		inrCurrencyRule{},
	)
	return rules
}

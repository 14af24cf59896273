// Package rules evaluates a fixed ordered set of customs-compliance rules
// over a canonical invoice record. Rules are independent pure predicates;
// each emits at most one finding per evaluation, and a faulty rule can
// never suppress the others.
package rules

import (
	"fmt"
	"log"

	"github.com/exportops/customs-risk-service/internal/models"
)

// Rule is one compliance predicate. Evaluate returns nil when the rule is
// satisfied or not applicable.
type Rule interface {
	ID() string
	Evaluate(record *models.InvoiceRecord) *models.Finding
}

// Engine runs rules in their declared order.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over a fixed ordered rule set.
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Evaluate runs every rule against the record and returns the findings in
// rule order. The only error case is an incoherent record, which signals a
// construction bug rather than an exporter input problem.
func (e *Engine) Evaluate(record *models.InvoiceRecord) ([]models.Finding, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil record", models.ErrInvariant)
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	findings := make([]models.Finding, 0, len(e.rules))
	for _, rule := range e.rules {
		if f := e.evaluateOne(rule, record); f != nil {
			findings = append(findings, *f)
		}
	}
	return findings, nil
}

// evaluateOne isolates a single rule. A panic inside a rule is converted
// into a LOW "inconclusive" finding and evaluation continues.
func (e *Engine) evaluateOne(rule Rule, record *models.InvoiceRecord) (finding *models.Finding) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Rules] %s panicked: %v", rule.ID(), r)
			finding = &models.Finding{
				RuleID:        rule.ID(),
				Severity:      models.SeverityLow,
				Reason:        fmt.Sprintf("rule evaluation inconclusive for %s", rule.ID()),
				FixSuggestion: "re-run the assessment; contact support if this repeats",
			}
		}
	}()
	return rule.Evaluate(record)
}

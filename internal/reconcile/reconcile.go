// Package reconcile merges the AI and fallback extraction passes into one
// candidate per schema field. The AI oracle is never trusted blindly: an AI
// value must clear both the confidence cutoff and a lightweight format
// check before it can displace the deterministic fallback.
package reconcile

import (
	"github.com/exportops/customs-risk-service/internal/models"
)

// Reconciler applies the precedence policy.
type Reconciler struct {
	cutoff float64
}

// NewReconciler creates a reconciler with the given AI confidence cutoff.
func NewReconciler(cutoff float64) *Reconciler {
	return &Reconciler{cutoff: cutoff}
}

// Reconcile returns exactly one candidate per schema field, in schema
// order. A field neither pass produced is emitted as an explicit absent
// candidate so the normalizer always builds a complete record.
//
// Per field: the AI candidate wins when its confidence clears the cutoff
// AND its value is structurally plausible; otherwise the fallback value is
// used when present. When both qualify the AI wins, unless the fallback was
// an exact keyword match (confidence 1.0), which is harder evidence than
// model context.
func (r *Reconciler) Reconcile(aiCandidates, fallbackCandidates []models.RawFieldCandidate) []models.RawFieldCandidate {
	ai := bestPerField(aiCandidates)
	fallback := bestPerField(fallbackCandidates)

	out := make([]models.RawFieldCandidate, 0, len(models.FieldNames))
	for _, name := range models.FieldNames {
		out = append(out, r.choose(name, ai[name], fallback[name]))
	}
	return out
}

func (r *Reconciler) choose(field string, ai, fallback *models.RawFieldCandidate) models.RawFieldCandidate {
	aiUsable := ai != nil && ai.Value != nil &&
		ai.Confidence >= r.cutoff &&
		models.PlausibleFormat(field, *ai.Value)
	fallbackUsable := fallback != nil && fallback.Value != nil

	switch {
	case aiUsable && fallbackUsable:
		if fallback.Confidence >= 1.0 {
			return *fallback
		}
		return *ai
	case aiUsable:
		return *ai
	case fallbackUsable:
		return *fallback
	default:
		return models.RawFieldCandidate{
			FieldName: field,
			Value:     nil,
			Source:    models.SourceNone,
		}
	}
}

// bestPerField keeps the highest-confidence candidate per field name.
// Candidates for names outside the schema are dropped.
func bestPerField(candidates []models.RawFieldCandidate) map[string]*models.RawFieldCandidate {
	known := make(map[string]bool, len(models.FieldNames))
	for _, name := range models.FieldNames {
		known[name] = true
	}

	best := make(map[string]*models.RawFieldCandidate)
	for i := range candidates {
		c := &candidates[i]
		if !known[c.FieldName] {
			continue
		}
		cur, ok := best[c.FieldName]
		if !ok || c.Confidence > cur.Confidence {
			best[c.FieldName] = c
		}
	}
	return best
}

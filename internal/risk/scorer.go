// Package risk turns a finding set into a 0-100 score and a risk band.
// Weights and thresholds come from configuration so they can be
// recalibrated without touching this code.
package risk

import "github.com/exportops/customs-risk-service/internal/models"

// Scorer aggregates findings deterministically.
type Scorer struct {
	weights    models.SeverityWeights
	thresholds models.Thresholds
}

// NewScorer creates a scorer from the configured weight table and band
// thresholds.
func NewScorer(cfg models.RiskConfig) *Scorer {
	return &Scorer{weights: cfg.Weights, thresholds: cfg.Thresholds}
}

// Score sums the per-severity weights, capped at 100, and bands the
// result. No findings means 0/LOW.
func (s *Scorer) Score(findings []models.Finding) (int, models.Severity) {
	score := 0
	for _, f := range findings {
		switch f.Severity {
		case models.SeverityHigh:
			score += s.weights.High
		case models.SeverityMedium:
			score += s.weights.Medium
		case models.SeverityLow:
			score += s.weights.Low
		}
	}
	if score > 100 {
		score = 100
	}
	return score, s.Level(score)
}

// Level bands a score per the configured thresholds. Pure function of the
// score; no hidden state.
func (s *Scorer) Level(score int) models.Severity {
	switch {
	case score >= s.thresholds.High:
		return models.SeverityHigh
	case score >= s.thresholds.Medium:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

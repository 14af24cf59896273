package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exportops/customs-risk-service/internal/models"
)

func testScorer() *Scorer {
	return NewScorer(models.RiskConfig{
		Weights:    models.SeverityWeights{High: 25, Medium: 10, Low: 3},
		Thresholds: models.Thresholds{High: 60, Medium: 25},
	})
}

func findings(severities ...models.Severity) []models.Finding {
	out := make([]models.Finding, len(severities))
	for i, s := range severities {
		out[i] = models.Finding{RuleID: "r", Severity: s}
	}
	return out
}

func TestScore_NoFindings(t *testing.T) {
	score, level := testScorer().Score(nil)
	assert.Equal(t, 0, score)
	assert.Equal(t, models.SeverityLow, level)
}

func TestScore_Weights(t *testing.T) {
	score, level := testScorer().Score(findings(models.SeverityHigh, models.SeverityMedium, models.SeverityLow))
	assert.Equal(t, 38, score)
	assert.Equal(t, models.SeverityMedium, level)
}

func TestScore_TwoHighIsMedium(t *testing.T) {
	score, level := testScorer().Score(findings(models.SeverityHigh, models.SeverityHigh))
	assert.Equal(t, 50, score)
	assert.Equal(t, models.SeverityMedium, level)
}

func TestScore_ThreeHighCrossesHighThreshold(t *testing.T) {
	score, level := testScorer().Score(findings(models.SeverityHigh, models.SeverityHigh, models.SeverityHigh))
	assert.Equal(t, 75, score)
	assert.Equal(t, models.SeverityHigh, level)
}

func TestScore_CappedAt100(t *testing.T) {
	many := findings(
		models.SeverityHigh, models.SeverityHigh, models.SeverityHigh,
		models.SeverityHigh, models.SeverityHigh,
	)
	score, level := testScorer().Score(many)
	assert.Equal(t, 100, score)
	assert.Equal(t, models.SeverityHigh, level)
}

func TestLevel_ThresholdBoundaries(t *testing.T) {
	s := testScorer()
	assert.Equal(t, models.SeverityLow, s.Level(0))
	assert.Equal(t, models.SeverityLow, s.Level(24))
	assert.Equal(t, models.SeverityMedium, s.Level(25))
	assert.Equal(t, models.SeverityMedium, s.Level(59))
	assert.Equal(t, models.SeverityHigh, s.Level(60))
	assert.Equal(t, models.SeverityHigh, s.Level(100))
}

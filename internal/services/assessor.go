// Package services wires the assessment pipeline together: dual-source
// extraction, reconciliation, normalization, rule evaluation, scoring and
// customs impact prediction. One Assessor serves all requests; every
// evaluation is pure and holds no cross-invoice state, so concurrent use
// is safe by construction.
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/exportops/customs-risk-service/internal/ai"
	"github.com/exportops/customs-risk-service/internal/customs"
	"github.com/exportops/customs-risk-service/internal/extract"
	"github.com/exportops/customs-risk-service/internal/models"
	"github.com/exportops/customs-risk-service/internal/normalize"
	"github.com/exportops/customs-risk-service/internal/reconcile"
	"github.com/exportops/customs-risk-service/internal/risk"
	"github.com/exportops/customs-risk-service/internal/rules"
)

// Text shorter than this is considered a poor extraction.
const goodTextLength = 300

// Assessor runs the full invoice risk pipeline.
type Assessor struct {
	structurer *ai.Structurer // nil when no AI provider is configured
	fallback   *extract.FallbackExtractor
	reconciler *reconcile.Reconciler
	normalizer *normalize.Normalizer
	engine     *rules.Engine
	scorer     *risk.Scorer
	predictor  *customs.Predictor

	stats    *Stats
	feedback *FeedbackLog
}

// NewAssessor builds the pipeline from configuration. provider may be nil;
// the pipeline then runs on fallback extraction alone.
func NewAssessor(cfg *models.Config, provider ai.Provider) *Assessor {
	var structurer *ai.Structurer
	if provider != nil {
		structurer = ai.NewStructurer(provider, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
	}
	return &Assessor{
		structurer: structurer,
		fallback:   extract.NewFallbackExtractor(),
		reconciler: reconcile.NewReconciler(cfg.Extraction.ConfidenceCutoff),
		normalizer: normalize.NewNormalizer(cfg.Extraction.DateFormats),
		engine:     rules.NewEngine(rules.Defaults(cfg)),
		scorer:     risk.NewScorer(cfg.Risk),
		predictor:  customs.NewPredictor(),
		stats:      &Stats{},
		feedback:   &FeedbackLog{},
	}
}

// Stats exposes the in-memory system counters.
func (a *Assessor) Stats() *Stats { return a.stats }

// Feedback exposes the in-memory outcome feedback log.
func (a *Assessor) Feedback() *FeedbackLog { return a.feedback }

// Assess evaluates one invoice's extracted text and returns its risk
// report. The AI oracle failing, timing out or being unconfigured never
// fails the assessment; only an internal invariant violation does.
func (a *Assessor) Assess(ctx context.Context, text string) (*models.RiskReport, error) {
	fallbackCandidates := a.fallback.Extract(text)

	var aiCandidates []models.RawFieldCandidate
	method := models.MethodRulesOnly
	if a.structurer != nil && strings.TrimSpace(text) != "" {
		candidates, err := a.structurer.Structure(ctx, text)
		if err != nil {
			log.Printf("[Assess] AI oracle contributed nothing: %v", err)
		} else {
			aiCandidates = candidates
			method = models.MethodAIPlusRules
		}
	}

	reconciled := a.reconciler.Reconcile(aiCandidates, fallbackCandidates)
	record := a.normalizer.Normalize(reconciled)

	findings, err := a.engine.Evaluate(record)
	if err != nil {
		return nil, fmt.Errorf("evaluation aborted: %w", err)
	}

	score, level := a.scorer.Score(findings)
	actions := a.predictor.Predict(findings)

	quality := models.QualityPoor
	if len(text) > goodTextLength {
		quality = models.QualityGood
	}

	report := &models.RiskReport{
		InvoiceID:        uuid.New().String(),
		Score:            score,
		Level:            level,
		Decision:         decisionFor(level),
		Summary:          summaryFor(level),
		Findings:         findings,
		PredictedActions: actions,
		OfficerView:      OfficerView(findings),
		Invoice:          record,
		Quality:          quality,
		ExtractionMethod: method,
		ProcessedAt:      time.Now().UTC(),
	}

	a.stats.Record(report)
	return report, nil
}

// Simulate re-evaluates a caller-held record with the what-if adjustments
// applied. Nothing is recorded in the system stats; the base record is not
// mutated.
func (a *Assessor) Simulate(record *models.InvoiceRecord, newTotal *decimal.Decimal, newIncoterm string) (*models.SimulationResult, error) {
	if record == nil {
		return nil, fmt.Errorf("simulation aborted: %w: nil record", models.ErrInvariant)
	}
	adjusted := record.WithOverrides(newTotal, newIncoterm)

	findings, err := a.engine.Evaluate(&adjusted)
	if err != nil {
		return nil, fmt.Errorf("simulation aborted: %w", err)
	}
	score, level := a.scorer.Score(findings)
	return &models.SimulationResult{
		Score:   score,
		Level:   level,
		Summary: summaryFor(level),
	}, nil
}

func decisionFor(level models.Severity) string {
	switch level {
	case models.SeverityLow:
		return models.DecisionSafeToShip
	case models.SeverityMedium:
		return models.DecisionReviewFirst
	default:
		return models.DecisionDoNotShip
	}
}

func summaryFor(level models.Severity) string {
	return fmt.Sprintf("%s customs risk based on compliance signals", level)
}

package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportops/customs-risk-service/internal/models"
)

const cleanInvoiceText = `EXPORT INVOICE
Invoice No: EXP-2024-0042
Date: 2024-03-15
Seller: Acme Textiles Pvt Ltd
Buyer: Globex Trading GmbH
Currency: USD
Subtotal: 10,000.00
IGST: 0.00
Grand Total 10,000.00
IEC Code: 0512345678
GSTIN: 27AAPFU0939F1ZV
HSN Code: 520100
Incoterm: FOB
LUT ARN: AD270323000123N
Goods: 100% raw cotton bales, packed for sea freight.
Port of loading: Nhava Sheva. Port of discharge: Hamburg.
`

func newTestAssessor() *Assessor {
	return NewAssessor(models.DefaultConfig(), nil)
}

func TestAssess_CleanInvoice(t *testing.T) {
	a := newTestAssessor()
	report, err := a.Assess(context.Background(), cleanInvoiceText)
	require.NoError(t, err)

	assert.NotEmpty(t, report.InvoiceID)
	assert.Equal(t, 0, report.Score)
	assert.Equal(t, models.SeverityLow, report.Level)
	assert.Equal(t, models.DecisionSafeToShip, report.Decision)
	assert.Empty(t, report.Findings)
	assert.Empty(t, report.PredictedActions)
	assert.Equal(t, "Invoice appears standard with no obvious red flags.", report.OfficerView)
	assert.Equal(t, models.MethodRulesOnly, report.ExtractionMethod)
	assert.Equal(t, models.QualityGood, report.Quality)
	require.NotNil(t, report.Invoice)
	assert.Equal(t, "EXP-2024-0042", report.Invoice.InvoiceNumber.Value)
}

func TestAssess_MissingRegulatoryCodes(t *testing.T) {
	// Same invoice without the IEC and GSTIN lines: two HIGH findings,
	// score 50, MEDIUM band, predicted rejection.
	text := `EXPORT INVOICE
Invoice No: EXP-2024-0042
Date: 2024-03-15
Currency: USD
Subtotal: 10,000.00
IGST: 0.00
Grand Total 10,000.00
HSN Code: 520100
Incoterm: FOB
Seller: Acme Textiles Pvt Ltd shipping raw cotton bales to Europe,
packed for sea freight, port of loading Nhava Sheva, discharge Hamburg,
with all supporting documents attached to the shipping bill filing.
`
	a := newTestAssessor()
	report, err := a.Assess(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, report.Findings, 2)
	assert.Equal(t, "missing_iec_code", report.Findings[0].RuleID)
	assert.Equal(t, "missing_gstin", report.Findings[1].RuleID)
	assert.Equal(t, 50, report.Score)
	assert.Equal(t, models.SeverityMedium, report.Level)
	assert.Equal(t, models.DecisionReviewFirst, report.Decision)

	require.Len(t, report.PredictedActions, 1)
	assert.Equal(t, models.ActionRejection, report.PredictedActions[0].Action)
	assert.ElementsMatch(t, []string{"missing_iec_code", "missing_gstin"},
		report.PredictedActions[0].TriggeringRuleIDs)

	assert.Contains(t, report.OfficerView, "A customs officer may question this shipment because")
	assert.Contains(t, report.OfficerView, "missing iec_code")
}

func TestAssess_EmptyText(t *testing.T) {
	a := newTestAssessor()
	report, err := a.Assess(context.Background(), "")
	require.NoError(t, err)

	// One presence finding per required field, all HIGH.
	cfg := models.DefaultConfig()
	require.Len(t, report.Findings, len(cfg.Extraction.RequiredFields))
	for _, f := range report.Findings {
		assert.Equal(t, models.SeverityHigh, f.Severity)
	}
	assert.Equal(t, 100, report.Score)
	assert.Equal(t, models.SeverityHigh, report.Level)
	assert.Equal(t, models.DecisionDoNotShip, report.Decision)
	assert.Equal(t, models.QualityPoor, report.Quality)
}

func TestAssess_GSTLUTConflict(t *testing.T) {
	text := `Invoice No: EXP-7
Date: 2024-03-15
Currency: USD
Subtotal: 10,000.00
IGST: 1,800.00
Grand Total 11,800.00
IEC Code: 0512345678
GSTIN: 27AAPFU0939F1ZV
HSN Code: 520100
Incoterm: FOB
`
	a := newTestAssessor()
	report, err := a.Assess(context.Background(), text)
	require.NoError(t, err)

	var conflict *models.Finding
	for i := range report.Findings {
		if report.Findings[i].RuleID == "gst_lut_conflict" {
			conflict = &report.Findings[i]
		}
	}
	require.NotNil(t, conflict, "expected gst_lut_conflict, got %v", report.Findings)
	assert.Equal(t, models.SeverityHigh, conflict.Severity)

	var refundBlock bool
	for _, action := range report.PredictedActions {
		if action.Action == models.ActionRefundBlock {
			refundBlock = true
			assert.Contains(t, action.TriggeringRuleIDs, "gst_lut_conflict")
		}
	}
	assert.True(t, refundBlock, "expected a REFUND_BLOCK prediction")
}

func TestAssess_RecordsStats(t *testing.T) {
	a := newTestAssessor()

	_, err := a.Assess(context.Background(), cleanInvoiceText)
	require.NoError(t, err)
	_, err = a.Assess(context.Background(), "")
	require.NoError(t, err)

	snapshot := a.Stats().Snapshot()
	assert.Equal(t, 2, snapshot.InvoicesAnalyzed)
	assert.Equal(t, 1, snapshot.RiskyShipments)
	assert.Equal(t, 1, snapshot.HoldsPredicted)
}

func TestAssess_ConcurrentUse(t *testing.T) {
	a := newTestAssessor()
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := a.Assess(context.Background(), cleanInvoiceText)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
	assert.Equal(t, 8, a.Stats().Snapshot().InvoicesAnalyzed)
}

func TestSimulate_FixingIncotermLowersScore(t *testing.T) {
	a := newTestAssessor()

	text := `Invoice No: EXP-9
Date: 2024-03-15
Currency: USD
Subtotal: 10,000.00
IGST: 0.00
Grand Total 10,000.00
IEC Code: 0512345678
GSTIN: 27AAPFU0939F1ZV
HSN Code: 520100
`
	report, err := a.Assess(context.Background(), text)
	require.NoError(t, err)
	require.Equal(t, models.SeverityMedium, report.Level, "fixture should start with a missing incoterm")

	result, err := a.Simulate(report.Invoice, nil, "FOB")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, models.SeverityLow, result.Level)

	// The base record is untouched.
	assert.False(t, report.Invoice.Incoterm.Present)
}

func TestSimulate_TotalOverride(t *testing.T) {
	a := newTestAssessor()
	report, err := a.Assess(context.Background(), cleanInvoiceText)
	require.NoError(t, err)

	// Breaking the total arithmetic surfaces the mismatch finding.
	badTotal := decimal.RequireFromString("12000.00")
	result, err := a.Simulate(report.Invoice, &badTotal, "")
	require.NoError(t, err)
	assert.Greater(t, result.Score, 0)
}

func TestSimulate_NilRecord(t *testing.T) {
	a := newTestAssessor()
	_, err := a.Simulate(nil, nil, "FOB")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvariant)
}

func TestSummaryMentionsLevel(t *testing.T) {
	for _, level := range []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh} {
		assert.Equal(t, fmt.Sprintf("%s customs risk based on compliance signals", level), summaryFor(level))
	}
}

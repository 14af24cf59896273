package services

import (
	"sync"
	"time"

	"github.com/exportops/customs-risk-service/internal/models"
)

// Stats keeps the demo-safe in-memory counters shown on the evidence
// dashboard. Nothing here survives a restart; invoice history persistence
// is explicitly out of scope.
type Stats struct {
	mu               sync.Mutex
	invoicesAnalyzed int
	riskyShipments   int
	holdsPredicted   int
}

// Record folds one finished report into the counters. A shipment counts as
// risky above the LOW band; a hold is predicted when customs rejection or
// a refund block is on the table.
func (s *Stats) Record(report *models.RiskReport) {
	hold := false
	for _, a := range report.PredictedActions {
		if a.Action == models.ActionRejection || a.Action == models.ActionRefundBlock {
			hold = true
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoicesAnalyzed++
	if report.Level != models.SeverityLow {
		s.riskyShipments++
	}
	if hold {
		s.holdsPredicted++
	}
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() models.SystemStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SystemStats{
		InvoicesAnalyzed: s.invoicesAnalyzed,
		RiskyShipments:   s.riskyShipments,
		HoldsPredicted:   s.holdsPredicted,
	}
}

// OutcomeFeedback is one exporter-reported shipment outcome.
type OutcomeFeedback struct {
	InvoiceID  string    `json:"invoice_id"`
	Outcome    string    `json:"outcome"`
	RecordedAt time.Time `json:"recorded_at"`
}

// FeedbackLog collects shipment outcomes in process memory. The system
// records them for operators to read; it does not learn from them.
type FeedbackLog struct {
	mu      sync.Mutex
	entries []OutcomeFeedback
}

// Add records one outcome.
func (l *FeedbackLog) Add(invoiceID, outcome string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, OutcomeFeedback{
		InvoiceID:  invoiceID,
		Outcome:    outcome,
		RecordedAt: time.Now().UTC(),
	})
}

// Count returns how many outcomes have been recorded.
func (l *FeedbackLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

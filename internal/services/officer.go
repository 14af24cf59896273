package services

import (
	"strings"

	"github.com/exportops/customs-risk-service/internal/models"
)

// OfficerView renders the findings as a customs officer would put them to
// the exporter.
func OfficerView(findings []models.Finding) string {
	if len(findings) == 0 {
		return "Invoice appears standard with no obvious red flags."
	}
	reasons := make([]string, 0, len(findings))
	for _, f := range findings {
		reasons = append(reasons, f.Reason)
	}
	return "A customs officer may question this shipment because " + strings.Join(reasons, "; ") + "."
}

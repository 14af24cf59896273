// Package extract implements the deterministic keyword/regex extraction
// pass. It is the correctness backstop for the AI oracle: it never fails
// and always returns, even when it finds nothing.
package extract

import (
	"regexp"
	"strings"

	"github.com/exportops/customs-risk-service/internal/models"
)

// Labeled matches (the field name literally appears next to the value) are
// emitted at confidence 1.0 and therefore beat an AI candidate in the
// reconciler's tie-break. Bare token matches are weaker guesses.
const (
	confExact = 1.0
	confGuess = 0.7
)

type fieldPattern struct {
	field      string
	re         *regexp.Regexp
	confidence float64
}

// Patterns are tried top to bottom per field; the first hit wins. Labeled
// forms come before bare-token forms.
var fieldPatterns = []fieldPattern{
	{models.FieldInvoiceNumber, regexp.MustCompile(`(?i)invoice\s*(?:no|number|#)[.:\-]?\s*([A-Za-z0-9][A-Za-z0-9\-/]*)`), confExact},
	{models.FieldInvoiceDate, regexp.MustCompile(`(?i)(?:invoice\s*)?date[.:\-]?\s*([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{2,4})`), confExact},
	{models.FieldSeller, regexp.MustCompile(`(?i)(?:seller|exporter|shipper)\s*[.:\-]\s*([^\r\n]+)`), confGuess},
	{models.FieldBuyer, regexp.MustCompile(`(?i)(?:buyer|consignee|bill\s*to)\s*[.:\-]\s*([^\r\n]+)`), confGuess},
	{models.FieldCurrency, regexp.MustCompile(`(?i)currency\s*[.:\-]?\s*([A-Za-z]{3})\b`), confExact},
	{models.FieldCurrency, regexp.MustCompile(`\b(USD|EUR|GBP|INR|AED|JPY|AUD|CAD|SGD|CHF)\b`), confGuess},
	{models.FieldSubtotal, regexp.MustCompile(`(?i)sub[\s\-]?total[^0-9\r\n]{0,12}([0-9][0-9,. ]*)`), confExact},
	{models.FieldTax, regexp.MustCompile(`(?i)(?:igst|cgst|sgst|gst|tax)(?:\s*amount)?\s*[.:\-][^0-9%\r\n]{0,10}([0-9][0-9,. ]*)`), confExact},
	{models.FieldTotal, regexp.MustCompile(`(?i)(?:grand\s*total|total\s*amount|invoice\s*(?:total|value))[^0-9\r\n]{0,12}([0-9][0-9,. ]*)`), confExact},
	{models.FieldTotal, regexp.MustCompile(`(?i)\btotal\b[^a-z0-9\r\n]{0,12}([0-9][0-9,. ]*)`), confGuess},
	{models.FieldIECCode, regexp.MustCompile(`(?i)IEC(?:\s*code)?[^0-9\r\n]{0,4}([0-9]{10})\b`), confExact},
	{models.FieldGSTIN, regexp.MustCompile(`(?i)GSTIN[^0-9A-Za-z]{0,4}([0-9A-Za-z]{15})\b`), confExact},
	{models.FieldHSNCode, regexp.MustCompile(`(?i)\bHSN(?:\s*code)?[^0-9\r\n]{0,4}([0-9]{4,8})\b`), confExact},
	{models.FieldIncoterm, regexp.MustCompile(`(?i)(?:incoterms?|terms\s*of\s*delivery)\s*[.:\-]?\s*([A-Za-z]{3})\b`), confExact},
	{models.FieldIncoterm, regexp.MustCompile(`\b(EXW|FCA|FAS|FOB|CFR|CIF|CPT|CIP|DAP|DPU|DDP)\b`), confGuess},
	{models.FieldLUTReference, regexp.MustCompile(`(?i)\bLUT[^0-9A-Za-z\r\n]{0,12}([A-Za-z0-9]{6,20})\b`), confExact},
	{models.FieldLUTReference, regexp.MustCompile(`(?i)\bARN[^0-9A-Za-z\r\n]{0,4}([A-Za-z0-9]{10,20})\b`), confExact},
}

// FallbackExtractor runs the regex pass over raw invoice text.
type FallbackExtractor struct{}

// NewFallbackExtractor creates the deterministic extraction pass.
func NewFallbackExtractor() *FallbackExtractor {
	return &FallbackExtractor{}
}

// Extract returns one candidate per field it could locate, in schema order.
// Fields it cannot locate are simply omitted; the reconciler fills the gaps
// with explicit absent candidates.
func (e *FallbackExtractor) Extract(text string) []models.RawFieldCandidate {
	found := make(map[string]models.RawFieldCandidate)
	for _, p := range fieldPatterns {
		if _, done := found[p.field]; done {
			continue
		}
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		found[p.field] = models.RawFieldCandidate{
			FieldName:  p.field,
			Value:      &value,
			Source:     models.SourceFallback,
			Confidence: p.confidence,
		}
	}

	out := make([]models.RawFieldCandidate, 0, len(found))
	for _, name := range models.FieldNames {
		if c, ok := found[name]; ok {
			out = append(out, c)
		}
	}
	return out
}

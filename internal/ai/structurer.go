package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/exportops/customs-risk-service/internal/models"
)

// DefaultConfidence is assumed for AI values the model did not score
// itself. It clears the reconciler cutoff but loses the tie-break against
// an exact fallback keyword match.
const DefaultConfidence = 0.8

// Model output is truncated input-side; invoices rarely need more.
const maxPromptText = 6000

// Structurer turns raw invoice text into field candidates via an AI
// provider. Every call is time-boxed; on any failure the caller gets an
// error and no candidates, never a partial panic.
type Structurer struct {
	provider Provider
	timeout  time.Duration
}

// NewStructurer creates a structurer around the given provider.
func NewStructurer(provider Provider, timeout time.Duration) *Structurer {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Structurer{provider: provider, timeout: timeout}
}

// ProviderName reports which backend this structurer uses.
func (s *Structurer) ProviderName() string { return s.provider.Name() }

// Structure asks the provider for a structured field set and converts the
// response into AI-source candidates. Fields the model marked null or left
// out produce no candidate.
func (s *Structurer) Structure(ctx context.Context, text string) ([]models.RawFieldCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.provider.ExtractData(ctx, buildPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("AI structuring failed: %w", err)
	}
	log.Printf("[AI] %s response length: %d", s.provider.Name(), len(response))

	parsed := extractJSONBlock(response)
	if parsed == nil {
		return nil, fmt.Errorf("AI response contained no JSON object")
	}

	var raw struct {
		Fields     map[string]any     `json:"fields"`
		Confidence map[string]float64 `json:"confidence"`
	}
	if err := json.Unmarshal(parsed, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	candidates := make([]models.RawFieldCandidate, 0, len(models.FieldNames))
	for _, name := range models.FieldNames {
		value, ok := stringifyValue(raw.Fields[name])
		if !ok {
			continue
		}
		confidence := DefaultConfidence
		if c, ok := raw.Confidence[name]; ok {
			confidence = clamp01(c)
		}
		v := value
		candidates = append(candidates, models.RawFieldCandidate{
			FieldName:  name,
			Value:      &v,
			Source:     models.SourceAI,
			Confidence: confidence,
		})
	}
	return candidates, nil
}

func buildPrompt(text string) string {
	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}

	return fmt.Sprintf(`You are an expert in Indian commercial export invoices.
Return ONLY valid JSON, no markdown, no comments.

Schema (every key must exist, use null when the value cannot be read):
{
  "fields": {
    "invoice_number": null,
    "invoice_date": "YYYY-MM-DD or as printed",
    "seller": null,
    "buyer": null,
    "currency": "3-letter code",
    "subtotal": null,
    "tax": null,
    "total": null,
    "iec_code": "10 digits",
    "gstin": "15 characters",
    "hsn_code": "4, 6 or 8 digits",
    "incoterm": "EXW/FOB/CIF/...",
    "lut_reference": null
  },
  "confidence": {"<field>": 0.0 to 1.0 for each field you filled}
}

Rules:
1. NEVER invent data - use null when you cannot read a value.
2. Copy amounts exactly as printed, including separators.
3. GSTIN and IEC belong to the SELLER (Indian exporter).
4. lut_reference is a Letter of Undertaking / ARN reference if present.

Invoice text:
%s`, text)
}

// extractJSONBlock pulls the outermost JSON object out of a possibly
// fenced or chatty model response.
func extractJSONBlock(response string) []byte {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	return []byte(cleaned[start : end+1])
}

// stringifyValue renders a JSON scalar as the candidate string. Numbers are
// formatted without exponent noise; null, empty strings and composites are
// treated as absent.
func stringifyValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" || strings.EqualFold(trimmed, "null") {
			return "", false
		}
		return trimmed, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

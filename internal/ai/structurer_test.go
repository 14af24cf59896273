package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportops/customs-risk-service/internal/models"
)

type stubProvider struct {
	response string
	err      error
}

func (s stubProvider) Name() string { return "stub" }
func (s stubProvider) ExtractData(ctx context.Context, prompt string) (string, error) {
	return s.response, s.err
}

func byName(candidates []models.RawFieldCandidate) map[string]models.RawFieldCandidate {
	out := make(map[string]models.RawFieldCandidate, len(candidates))
	for _, c := range candidates {
		out[c.FieldName] = c
	}
	return out
}

func TestStructure_FencedJSONResponse(t *testing.T) {
	s := NewStructurer(stubProvider{response: "```json\n" + `{
		"fields": {
			"invoice_number": "EXP-1",
			"currency": "USD",
			"total": 11800.5,
			"gstin": null,
			"seller": ""
		},
		"confidence": {"invoice_number": 0.95, "currency": 1.4}
	}` + "\n```"}, time.Second)

	candidates, err := s.Structure(context.Background(), "invoice text")
	require.NoError(t, err)

	got := byName(candidates)

	inv := got[models.FieldInvoiceNumber]
	require.NotNil(t, inv.Value)
	assert.Equal(t, "EXP-1", *inv.Value)
	assert.Equal(t, models.SourceAI, inv.Source)
	assert.Equal(t, 0.95, inv.Confidence)

	// Out-of-range confidences are clamped.
	assert.Equal(t, 1.0, got[models.FieldCurrency].Confidence)

	// Numeric values are stringified without exponent noise.
	total := got[models.FieldTotal]
	require.NotNil(t, total.Value)
	assert.Equal(t, "11800.5", *total.Value)
	// Unscored fields get the default confidence.
	assert.Equal(t, DefaultConfidence, total.Confidence)

	// null and empty values produce no candidate.
	_, hasGSTIN := got[models.FieldGSTIN]
	assert.False(t, hasGSTIN)
	_, hasSeller := got[models.FieldSeller]
	assert.False(t, hasSeller)
}

func TestStructure_ChattyResponseAroundJSON(t *testing.T) {
	s := NewStructurer(stubProvider{
		response: `Sure! Here is the extraction:
{"fields": {"currency": "EUR"}, "confidence": {}}
Let me know if you need anything else.`,
	}, time.Second)

	candidates, err := s.Structure(context.Background(), "invoice text")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, models.FieldCurrency, candidates[0].FieldName)
	assert.Equal(t, "EUR", *candidates[0].Value)
}

func TestStructure_NoJSONInResponse(t *testing.T) {
	s := NewStructurer(stubProvider{response: "I could not read the invoice."}, time.Second)
	_, err := s.Structure(context.Background(), "invoice text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON")
}

func TestStructure_ProviderError(t *testing.T) {
	s := NewStructurer(stubProvider{err: errors.New("rate limited")}, time.Second)
	_, err := s.Structure(context.Background(), "invoice text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestStructure_UnknownFieldsIgnored(t *testing.T) {
	s := NewStructurer(stubProvider{
		response: `{"fields": {"port_of_loading": "Nhava Sheva", "currency": "USD"}, "confidence": {}}`,
	}, time.Second)

	candidates, err := s.Structure(context.Background(), "invoice text")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, models.FieldCurrency, candidates[0].FieldName)
}

package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportops/customs-risk-service/internal/models"
	"github.com/exportops/customs-risk-service/internal/services"
)

const testInvoiceText = `EXPORT INVOICE
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

func newTestHandler() *Handler {
	cfg := models.DefaultConfig()
	return NewHandler(cfg, services.NewAssessor(cfg, nil))
}

func postText(t *testing.T, router http.Handler, text string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("text", text))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/assess-invoice", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAssessInvoice_TextUpload(t *testing.T) {
	router := newTestHandler().SetupRoutes()
	rec := postText(t, router, testInvoiceText)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report models.RiskReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.NotEmpty(t, report.InvoiceID)
	assert.Equal(t, models.SeverityLow, report.Level)
	assert.Equal(t, models.DecisionSafeToShip, report.Decision)
	require.NotNil(t, report.Invoice)
	assert.Equal(t, "EXP-2024-0042", report.Invoice.InvoiceNumber.Value)
}

func TestAssessInvoice_StableJSONKeys(t *testing.T) {
	router := newTestHandler().SetupRoutes()
	rec := postText(t, router, testInvoiceText)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{
		"invoice_id", "score", "level", "decision", "summary", "findings",
		"predicted_actions", "customs_officer_view", "invoice_data",
		"invoice_quality", "extraction_method", "processed_at",
	} {
		assert.Contains(t, raw, key)
	}
}

func TestAssessInvoice_NoContent(t *testing.T) {
	router := newTestHandler().SetupRoutes()
	rec := postText(t, router, "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no invoice content")
}

func TestAssessInvoice_NotMultipart(t *testing.T) {
	router := newTestHandler().SetupRoutes()
	req := httptest.NewRequest(http.MethodPost, "/api/assess-invoice", strings.NewReader("text=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulate_RoundTrip(t *testing.T) {
	handler := newTestHandler()
	router := handler.SetupRoutes()

	// Assess first to obtain a record, then re-score with a broken total.
	rec := postText(t, router, testInvoiceText)
	require.Equal(t, http.StatusOK, rec.Code)
	var report models.RiskReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	newTotal := "12000.00"
	body, err := json.Marshal(SimulateRequest{Invoice: report.Invoice, NewTotal: &newTotal})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/simulate", bytes.NewReader(body))
	simRec := httptest.NewRecorder()
	router.ServeHTTP(simRec, req)
	require.Equal(t, http.StatusOK, simRec.Code, simRec.Body.String())

	var result models.SimulationResult
	require.NoError(t, json.Unmarshal(simRec.Body.Bytes(), &result))
	assert.Greater(t, result.Score, 0)
}

func TestSimulate_MissingInvoice(t *testing.T) {
	router := newTestHandler().SetupRoutes()
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(`{"new_incoterm": "FOB"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulate_BadTotal(t *testing.T) {
	handler := newTestHandler()
	router := handler.SetupRoutes()

	rec := postText(t, router, testInvoiceText)
	require.Equal(t, http.StatusOK, rec.Code)
	var report models.RiskReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	bad := "twelve thousand"
	body, err := json.Marshal(SimulateRequest{Invoice: report.Invoice, NewTotal: &bad})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/simulate", bytes.NewReader(body))
	simRec := httptest.NewRecorder()
	router.ServeHTTP(simRec, req)
	assert.Equal(t, http.StatusBadRequest, simRec.Code)
}

func TestFeedbackAndStats(t *testing.T) {
	handler := newTestHandler()
	router := handler.SetupRoutes()

	rec := postText(t, router, testInvoiceText)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/feedback",
		strings.NewReader(`{"invoice_id": "inv-1", "outcome": "Cleared"}`))
	fbRec := httptest.NewRecorder()
	router.ServeHTTP(fbRec, req)
	require.Equal(t, http.StatusOK, fbRec.Code, fbRec.Body.String())

	statsReq := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	statsRec := httptest.NewRecorder()
	router.ServeHTTP(statsRec, statsReq)
	require.Equal(t, http.StatusOK, statsRec.Code)

	var stats map[string]int
	require.NoError(t, json.Unmarshal(statsRec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats["invoices_analyzed"])
	assert.Equal(t, 0, stats["risky_shipments"])
	assert.Equal(t, 1, stats["feedback_count"])
}

func TestFeedback_RejectsUnknownOutcome(t *testing.T) {
	router := newTestHandler().SetupRoutes()
	req := httptest.NewRequest(http.MethodPost, "/api/feedback",
		strings.NewReader(`{"invoice_id": "inv-1", "outcome": "lost at sea"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newTestHandler().SetupRoutes()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.False(t, health.Database.Available)
	assert.False(t, health.Storage.Available)
}

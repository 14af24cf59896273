package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/exportops/customs-risk-service/internal/auth"
	"github.com/exportops/customs-risk-service/internal/db"
	"github.com/exportops/customs-risk-service/internal/models"
	"github.com/exportops/customs-risk-service/internal/pdf"
	"github.com/exportops/customs-risk-service/internal/services"
	"github.com/exportops/customs-risk-service/internal/storage"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "1.0.0"
)

// Handler handles HTTP requests for invoice risk assessment
type Handler struct {
	config   *models.Config
	assessor *services.Assessor
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, assessor *services.Assessor) *Handler {
	return &Handler{
		config:   config,
		assessor: assessor,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Assessment pipeline
	router.HandleFunc("/api/assess-invoice", h.AssessInvoice).Methods("POST")
	router.HandleFunc("/api/simulate", h.Simulate).Methods("POST")

	// Outcome feedback and evidence counters
	router.HandleFunc("/api/feedback", h.RecordFeedback).Methods("POST")
	router.HandleFunc("/api/stats", h.GetStats).Methods("GET")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Memory    MemoryStats       `json:"memory"`
	Database  ServiceStatus     `json:"database"`
	Storage   ServiceStatus     `json:"storage"`
	AI        map[string]string `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of an optional service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint. The database and object store are optional; the
// assessment pipeline itself has no external dependencies, so the service
// reports healthy whenever it can answer at all.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Database: h.checkDatabase(),
		Storage:  ServiceStatus{Available: storage.Available()},
		AI: map[string]string{
			"defaultProvider": h.config.AI.DefaultProvider,
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{Available: false, Error: "assessment-only mode"}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.Pool.Ping(ctx); err != nil {
		return ServiceStatus{Available: false, Error: err.Error()}
	}
	return ServiceStatus{Available: true}
}

// AssessInvoice accepts either a PDF upload (multipart field "file") or
// pasted invoice text (form field "text") and returns the full risk report.
func (h *Handler) AssessInvoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid multipart form or file too large (max 10MB)")
		return
	}

	var text string
	var fileData []byte
	var filename string

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		fileData, err = io.ReadAll(file)
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}
		filename = header.Filename

		text, err = pdf.ExtractText(fileData)
		if err != nil {
			h.sendError(w, http.StatusUnprocessableEntity, fmt.Sprintf("could not extract text from document: %v", err))
			return
		}
	} else {
		text = r.FormValue("text")
	}

	if strings.TrimSpace(text) == "" {
		h.sendError(w, http.StatusBadRequest, "no invoice content: upload a PDF as 'file' or pass 'text'")
		return
	}

	report, err := h.assessor.Assess(r.Context(), text)
	if err != nil {
		log.Printf("[AssessInvoice] assessment failed: %v", err)
		h.sendError(w, http.StatusInternalServerError, "assessment failed")
		return
	}

	// Best-effort archive of the original upload; never blocks the report.
	if len(fileData) > 0 && storage.Available() {
		exporterID := "anonymous"
		if claims, err := auth.GetClaimsFromContext(r.Context()); err == nil {
			exporterID = claims.UserID
		}
		objectName := fmt.Sprintf("%s_%s", uuid.New().String(), filename)
		if _, err := storage.UploadInvoiceDocument(r.Context(), exporterID, objectName,
			bytes.NewReader(fileData), int64(len(fileData)), "application/pdf"); err != nil {
			log.Printf("[AssessInvoice] document archival failed: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// SimulateRequest carries a previously returned invoice record plus the
// what-if adjustments to apply.
type SimulateRequest struct {
	Invoice     *models.InvoiceRecord `json:"invoice"`
	NewTotal    *string               `json:"new_total,omitempty"`
	NewIncoterm string                `json:"new_incoterm,omitempty"`
}

// Simulate re-scores an invoice with adjustments applied, without touching
// the stats counters.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Invoice == nil {
		h.sendError(w, http.StatusBadRequest, "invoice record is required")
		return
	}

	var newTotal *decimal.Decimal
	if req.NewTotal != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.NewTotal))
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "new_total is not a valid amount")
			return
		}
		newTotal = &parsed
	}

	result, err := h.assessor.Simulate(req.Invoice, newTotal, strings.TrimSpace(req.NewIncoterm))
	if err != nil {
		log.Printf("[Simulate] simulation failed: %v", err)
		h.sendError(w, http.StatusUnprocessableEntity, "simulation failed on the supplied record")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// FeedbackRequest is one reported shipment outcome for an assessed invoice.
type FeedbackRequest struct {
	InvoiceID string `json:"invoice_id"`
	Outcome   string `json:"outcome"`
}

var validOutcomes = map[string]bool{
	"cleared":  true,
	"queried":  true,
	"delayed":  true,
	"rejected": true,
}

// RecordFeedback stores an exporter-reported outcome in the in-memory log.
func (h *Handler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Outcome = strings.ToLower(strings.TrimSpace(req.Outcome))
	if req.InvoiceID == "" || !validOutcomes[req.Outcome] {
		h.sendError(w, http.StatusBadRequest, "invoice_id and an outcome of cleared/queried/delayed/rejected are required")
		return
	}

	h.assessor.Feedback().Add(req.InvoiceID, req.Outcome)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"recorded":       true,
		"feedback_count": h.assessor.Feedback().Count(),
	})
}

// GetStats returns the in-memory evidence counters.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	snapshot := h.assessor.Stats().Snapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"invoices_analyzed": snapshot.InvoicesAnalyzed,
		"risky_shipments":   snapshot.RiskyShipments,
		"holds_predicted":   snapshot.HoldsPredicted,
		"feedback_count":    h.assessor.Feedback().Count(),
	})
}

func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

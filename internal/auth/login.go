package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/exportops/customs-risk-service/internal/db"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Company string `json:"company"`
	IECCode string `json:"iec_code"`
}

// LoginHandler authenticates an exporter account against the database and
// issues a session token. Returns 503 when the service runs without a
// database.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "accounts unavailable in assessment-only mode"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "email and password are required"})
		return
	}

	exporter, err := db.GetExporterByEmail(r.Context(), req.Email)
	if err != nil {
		// Same response for unknown account and locked account.
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(exporter.PasswordHash), []byte(req.Password)); err != nil {
		if err := db.RecordLoginFailure(r.Context(), exporter.ID); err != nil {
			log.Printf("[Login] failed to record login failure: %v", err)
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
		return
	}

	token, err := GenerateToken(exporter.ID, exporter.Email, exporter.CompanyName, "exporter")
	if err != nil {
		log.Printf("[Login] token generation failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "could not create session"})
		return
	}

	if err := db.RecordLoginSuccess(r.Context(), exporter.ID); err != nil {
		log.Printf("[Login] failed to record login success: %v", err)
	}

	json.NewEncoder(w).Encode(loginResponse{
		Token:   token,
		UserID:  exporter.ID,
		Email:   exporter.Email,
		Company: exporter.CompanyName,
		IECCode: exporter.IECCode,
	})
}

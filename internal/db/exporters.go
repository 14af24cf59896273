package db

import (
	"context"
	"fmt"
	"time"
)

// Exporter is one registered exporter account. Only account data lives in
// the database; assessed invoices are never persisted.
type Exporter struct {
	ID           string
	CompanyName  string
	Email        string
	IECCode      string
	PasswordHash string
	LastLogin    *time.Time
}

// GetExporterByEmail loads an active, non-locked exporter account.
func GetExporterByEmail(ctx context.Context, email string) (*Exporter, error) {
	if Pool == nil {
		return nil, fmt.Errorf("database not available")
	}

	query := `SELECT id, company_name, email, iec_code, password_hash, last_login
	          FROM exporters
	          WHERE lower(email) = lower($1)
	          AND active = true
	          AND (locked_until IS NULL OR locked_until < NOW())`

	var e Exporter
	err := Pool.QueryRow(ctx, query, email).Scan(
		&e.ID, &e.CompanyName, &e.Email, &e.IECCode, &e.PasswordHash, &e.LastLogin,
	)
	if err != nil {
		return nil, fmt.Errorf("exporter lookup failed: %w", err)
	}
	return &e, nil
}

// RecordLoginSuccess clears failed attempts and stamps the last login.
func RecordLoginSuccess(ctx context.Context, exporterID string) error {
	if Pool == nil {
		return nil
	}
	_, err := Pool.Exec(ctx, `UPDATE exporters SET
	    last_login = NOW(),
	    failed_attempts = 0,
	    locked_until = NULL
	    WHERE id = $1::uuid`, exporterID)
	return err
}

// RecordLoginFailure bumps the failed-attempt counter and locks the
// account for 30 minutes after the fifth consecutive failure.
func RecordLoginFailure(ctx context.Context, exporterID string) error {
	if Pool == nil {
		return nil
	}
	_, err := Pool.Exec(ctx, `UPDATE exporters SET
	    failed_attempts = COALESCE(failed_attempts, 0) + 1,
	    locked_until = CASE WHEN COALESCE(failed_attempts, 0) >= 4
	    THEN NOW() + INTERVAL '30 minutes' ELSE NULL END
	    WHERE id = $1::uuid`, exporterID)
	return err
}

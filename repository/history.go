package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fintech-analyst/models"
	"fintech-analyst/observability"
)

// EnsureSchema creates the report history table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if err := r.checkDB(); err != nil {
		return err
	}

	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_reports (
			id UUID PRIMARY KEY,
			prompt TEXT NOT NULL,
			analysis_type TEXT NOT NULL,
			provider_used TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			live_data BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveReport persists the trace of an assembled report
func (r *Repository) SaveReport(ctx context.Context, rec *models.ReportRecord) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("insert", "analysis_reports")

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO analysis_reports (id, prompt, analysis_type, provider_used, confidence, live_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.Prompt, rec.AnalysisType, rec.ProviderUsed, rec.Confidence, rec.LiveData, rec.CreatedAt)
	if err != nil {
		metrics.RecordDBError("insert", "analysis_reports")
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

// RecentReports returns the most recent report records, newest first
func (r *Repository) RecentReports(ctx context.Context, limit int) ([]models.ReportRecord, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "analysis_reports")

	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, prompt, analysis_type, provider_used, confidence, live_data, created_at
		FROM analysis_reports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		metrics.RecordDBError("select", "analysis_reports")
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var records []models.ReportRecord
	for rows.Next() {
		var rec models.ReportRecord
		if err := rows.Scan(&rec.ID, &rec.Prompt, &rec.AnalysisType, &rec.ProviderUsed, &rec.Confidence, &rec.LiveData, &rec.CreatedAt); err != nil {
			metrics.RecordDBError("select", "analysis_reports")
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

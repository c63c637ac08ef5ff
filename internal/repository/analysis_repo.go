package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nikola254/breaking-news-sub000/internal/models"
)

var ErrNotFound = errors.New("not found")

const analysisColumns = `id, platform, source_url, author, content, label, confidence,
	risk_score, risk_level, keywords, analysis_method, metadata, created_at`

// SaveAnalysis saves a single classified item and sets its ID.
func (s *Store) SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) error {
	query := s.db.Rebind(`
		INSERT INTO content_analysis (
			platform, source_url, author, content, label, confidence,
			risk_score, risk_level, keywords, analysis_method, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := s.db.QueryRowxContext(ctx, query,
		rec.Platform,
		rec.SourceURL,
		rec.Author,
		rec.Content,
		rec.Label,
		rec.Confidence,
		rec.RiskScore,
		rec.RiskLevel,
		rec.Keywords,
		rec.AnalysisMethod,
		rec.Metadata,
		rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns stored analyses, newest first. An empty label matches all.
// A non-positive limit returns every row.
func (s *Store) ListAnalyses(ctx context.Context, label models.Label, limit, offset int) ([]models.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM content_analysis`
	var args []interface{}

	if label != "" {
		query += ` WHERE label = ?`
		args = append(args, label)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	records := []models.AnalysisRecord{}
	if err := s.db.SelectContext(ctx, &records, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	return records, nil
}

// Stats returns per-label counts and average confidence.
func (s *Store) Stats(ctx context.Context) ([]models.LabelStat, error) {
	query := `
		SELECT label, COUNT(*) AS count, AVG(confidence) AS avg_confidence
		FROM content_analysis
		GROUP BY label
		ORDER BY label
	`

	stats := []models.LabelStat{}
	if err := s.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return stats, nil
}

// CreateJob creates a new batch job.
func (s *Store) CreateJob(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO analysis_jobs (id, status, total_count, processed_count, failed_count, created_at, completed_at, error_message)
		VALUES (:id, :status, :total_count, :processed_count, :failed_count, :created_at, :completed_at, :error_message)
	`
	if _, err := s.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// UpdateJob updates job progress and status.
func (s *Store) UpdateJob(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE analysis_jobs
		SET status = :status, processed_count = :processed_count, failed_count = :failed_count,
		    completed_at = :completed_at, error_message = :error_message
		WHERE id = :id
	`
	res, err := s.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("job %s: %w", job.ID, ErrNotFound)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, id string) (*models.Job, error) {
	query := s.db.Rebind(`
		SELECT id, status, total_count, processed_count, failed_count, created_at, completed_at, error_message
		FROM analysis_jobs
		WHERE id = ?
	`)

	var job models.Job
	if err := s.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

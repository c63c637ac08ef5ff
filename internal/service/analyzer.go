package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/models"
)

// Store is the persistence the analyzer needs.
type Store interface {
	SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) error
	ListAnalyses(ctx context.Context, label models.Label, limit, offset int) ([]models.AnalysisRecord, error)
	Stats(ctx context.Context) ([]models.LabelStat, error)
	CreateJob(ctx context.Context, job *models.Job) error
	UpdateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
}

// Classifier scores texts. It never fails per call.
type Classifier interface {
	Classify(ctx context.Context, text string) models.ClassificationResult
	ExtremismPercentage(ctx context.Context, text string) models.ExtremismAssessment
	BatchAnalyze(ctx context.Context, texts []string) []models.BatchItem
}

// Recorder receives classification and job outcomes. *metrics.Metrics implements it.
type Recorder interface {
	ObserveClassification(label, method string, degraded bool, took time.Duration)
	ObserveJob(status string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveClassification(string, string, bool, time.Duration) {}
func (nopRecorder) ObserveJob(string)                                        {}

// Analyzer classifies content and stores the results.
type Analyzer struct {
	classifier Classifier
	repo       Store
	recorder   Recorder
	logger     *zap.Logger

	// jobs tracks running batch goroutines so Wait can drain them on shutdown.
	jobs sync.WaitGroup
}

// NewAnalyzer creates a new analyzer service
func NewAnalyzer(classifier Classifier, repo Store, recorder Recorder, logger *zap.Logger) *Analyzer {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Analyzer{
		classifier: classifier,
		repo:       repo,
		recorder:   recorder,
		logger:     logger,
	}
}

// Classify scores a text without persisting it.
func (a *Analyzer) Classify(ctx context.Context, text string) models.ClassificationResult {
	start := time.Now()
	res := a.classifier.Classify(ctx, text)
	a.recorder.ObserveClassification(string(res.Label), res.AnalysisMethod, res.Degraded, time.Since(start))
	return res
}

// ExtremismPercentage returns the 0-100 estimate for a text.
func (a *Analyzer) ExtremismPercentage(ctx context.Context, text string) models.ExtremismAssessment {
	return a.classifier.ExtremismPercentage(ctx, text)
}

// BatchClassify scores many texts synchronously without persisting them.
func (a *Analyzer) BatchClassify(ctx context.Context, texts []string) []models.BatchItem {
	return a.classifier.BatchAnalyze(ctx, texts)
}

// Analyze classifies a single item and saves it
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisRecord, models.ClassificationResult, error) {
	res := a.Classify(ctx, req.Text)

	rec := newRecord(req, res)
	if err := a.repo.SaveAnalysis(ctx, rec); err != nil {
		return nil, res, fmt.Errorf("failed to save analysis: %w", err)
	}

	a.logger.Info("Content analyzed",
		zap.Int64("id", rec.ID),
		zap.String("platform", rec.Platform),
		zap.String("label", string(rec.Label)),
		zap.Float64("risk_score", rec.RiskScore))

	return rec, res, nil
}

func newRecord(req models.AnalyzeRequest, res models.ClassificationResult) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		Platform:       req.Platform,
		SourceURL:      req.URL,
		Author:         req.Author,
		Content:        req.Text,
		Label:          res.Label,
		Confidence:     res.Confidence,
		RiskScore:      res.RiskScore,
		RiskLevel:      res.RiskLevel,
		Keywords:       models.StringList(res.Keywords),
		AnalysisMethod: res.AnalysisMethod,
		Metadata:       string(req.Metadata),
		CreatedAt:      res.AnalyzedAt,
	}
}

// AnalyzeBatch starts async batch analysis and returns the job ID.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, items []models.AnalyzeRequest) (string, error) {
	job := &models.Job{
		ID:         uuid.New().String(),
		Status:     models.JobPending,
		TotalCount: len(items),
		CreatedAt:  time.Now().UTC(),
	}

	if err := a.repo.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}

	a.jobs.Add(1)
	go func() {
		defer a.jobs.Done()
		// the request context ends with the HTTP response
		a.processBatchJob(context.WithoutCancel(ctx), job, items)
	}()

	return job.ID, nil
}

// processBatchJob processes batch analysis job asynchronously
func (a *Analyzer) processBatchJob(ctx context.Context, job *models.Job, items []models.AnalyzeRequest) {
	job.Status = models.JobProcessing
	a.updateJob(ctx, job)

	for i, item := range items {
		if _, _, err := a.Analyze(ctx, item); err != nil {
			a.logger.Error("Failed to analyze item in batch",
				zap.String("job_id", job.ID),
				zap.Int("index", i),
				zap.Error(err))
			job.FailedCount++
		} else {
			job.ProcessedCount++
		}

		a.updateJob(ctx, job)
	}

	job.Status = models.JobCompleted
	if job.TotalCount > 0 && job.FailedCount == job.TotalCount {
		job.Status = models.JobFailed
		job.ErrorMessage = "every item failed to persist"
	}
	completedAt := time.Now().UTC()
	job.CompletedAt = &completedAt
	a.updateJob(ctx, job)
	a.recorder.ObserveJob(job.Status)

	a.logger.Info("Batch job completed",
		zap.String("job_id", job.ID),
		zap.String("status", job.Status),
		zap.Int("processed", job.ProcessedCount),
		zap.Int("failed", job.FailedCount))
}

func (a *Analyzer) updateJob(ctx context.Context, job *models.Job) {
	if err := a.repo.UpdateJob(ctx, job); err != nil {
		a.logger.Error("Failed to update job", zap.String("job_id", job.ID), zap.Error(err))
	}
}

// Wait blocks until all running batch jobs finish.
func (a *Analyzer) Wait() {
	a.jobs.Wait()
}

// GetJobStatus returns job status
func (a *Analyzer) GetJobStatus(ctx context.Context, jobID string) (*models.Job, error) {
	return a.repo.GetJob(ctx, jobID)
}

// ListAnalyses returns stored analyses filtered by label; empty label means all.
func (a *Analyzer) ListAnalyses(ctx context.Context, label models.Label, limit, offset int) ([]models.AnalysisRecord, error) {
	return a.repo.ListAnalyses(ctx, label, limit, offset)
}

// GetStats returns per-label statistics.
func (a *Analyzer) GetStats(ctx context.Context) ([]models.LabelStat, error) {
	return a.repo.Stats(ctx)
}
